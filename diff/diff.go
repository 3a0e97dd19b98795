package diff

import (
	"github.com/ridoystarlord/fksync/introspect"
	"github.com/ridoystarlord/fksync/schema"
)

type OperationType string

const (
	AddForeignKey OperationType = "ADD_FOREIGN_KEY"
)

type Operation struct {
	Type       OperationType
	Namespace  string
	TableName  string
	ColumnName string
	ForeignKey *schema.ForeignKeyRule
}

// Mismatch is an existing foreign key on a rule column that points at a
// different table than the rule expects.
type Mismatch struct {
	Rule     schema.ForeignKeyRule
	Existing introspect.ExistingForeignKey
}

// Plan is the outcome of comparing rules against a snapshot.
type Plan struct {
	Operations []Operation
	Satisfied  []schema.ForeignKeyRule
	Mismatched []Mismatch
	// MissingTables holds rule tables that are not in the snapshot. They
	// are never touched.
	MissingTables []string
}

// DiffForeignKeys compares the expected rules with what the snapshot
// holds. A rule produces an ADD_FOREIGN_KEY operation when its table is
// present and its column takes part in no foreign key. A rule is satisfied
// when any foreign key on its column references the rule's table in the
// same namespace. Reflected tables without rules are ignored.
func DiffForeignKeys(rules []schema.ForeignKeyRule, snap *introspect.Snapshot) *Plan {
	plan := &Plan{}

	byTable := map[string][]schema.ForeignKeyRule{}
	var order []string
	for _, r := range rules {
		if _, ok := byTable[r.TableName]; !ok {
			order = append(order, r.TableName)
		}
		byTable[r.TableName] = append(byTable[r.TableName], r)
	}

	for _, tableName := range order {
		table, exists := snap.Table(tableName)
		if !exists {
			plan.MissingTables = append(plan.MissingTables, tableName)
			continue
		}

		existingFKs := map[string][]introspect.ExistingForeignKey{}
		for _, fk := range table.ForeignKeys {
			existingFKs[fk.ColumnName] = append(existingFKs[fk.ColumnName], fk)
		}

		for _, rule := range byTable[tableName] {
			fks := existingFKs[rule.ColumnName]
			if len(fks) == 0 {
				r := rule
				plan.Operations = append(plan.Operations, Operation{
					Type:       AddForeignKey,
					Namespace:  snap.Namespace,
					TableName:  tableName,
					ColumnName: rule.ColumnName,
					ForeignKey: &r,
				})
				continue
			}

			if satisfies(fks, snap.Namespace, rule) {
				plan.Satisfied = append(plan.Satisfied, rule)
				continue
			}
			plan.Mismatched = append(plan.Mismatched, Mismatch{Rule: rule, Existing: fks[0]})
		}
	}

	return plan
}

func satisfies(fks []introspect.ExistingForeignKey, namespace string, rule schema.ForeignKeyRule) bool {
	for _, fk := range fks {
		if fk.ReferencesSchema == namespace && fk.ReferencesTable == rule.ReferencesTable {
			return true
		}
	}
	return false
}

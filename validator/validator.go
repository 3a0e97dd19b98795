package validator

import (
	"fmt"

	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/loader"
	"github.com/ridoystarlord/fksync/schema"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}
}

func (r *ValidationResult) addError(typ, table, column, msg string) {
	r.Errors = append(r.Errors, ValidationError{Type: typ, Table: table, Column: column, Message: msg, Severity: "error"})
}

func (r *ValidationResult) addWarning(typ, table, column, msg string) {
	r.Warnings = append(r.Warnings, ValidationError{Type: typ, Table: table, Column: column, Message: msg, Severity: "warning"})
}

func (r *ValidationResult) addInfo(typ, table, column, msg string) {
	r.Info = append(r.Info, ValidationError{Type: typ, Table: table, Column: column, Message: msg, Severity: "info"})
}

// ValidateRules checks a rules file without touching a database. Anything
// that would make the generated DDL unsafe or unrenderable is an error;
// rules that disagree with the catalog are warnings, since the live
// database is the final judge.
func ValidateRules(catalog *schema.Catalog, rf *loader.RulesFile, namespace string) *ValidationResult {
	result := newResult()

	if err := generator.ValidateIdentifier(namespace); err != nil {
		result.addError("schema_name", "", "", err.Error())
	}

	policy, err := generator.ParseNamingPolicy(rf.Naming)
	if err != nil {
		result.addError("naming", "", "", err.Error())
		policy = generator.NameByColumn
	}

	if len(rf.Rules) == 0 {
		result.addWarning("no_rules", "", "", "Rules file declares no foreign keys")
	}

	for _, rule := range rf.Rules {
		validateRule(catalog, rule, policy, result)
	}

	validateCoverage(catalog, rf.Rules, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateRule(catalog *schema.Catalog, rule schema.ForeignKeyRule, policy generator.NamingPolicy, result *ValidationResult) {
	table, column := rule.TableName, rule.ColumnName

	identifiers := []struct {
		typ, value string
	}{
		{"table_name", table},
		{"column_name", column},
		{"referenced_table", rule.ReferencesTable},
	}
	if rule.ReferencesColumn != "" {
		identifiers = append(identifiers, struct{ typ, value string }{"referenced_column", rule.ReferencesColumn})
	}

	valid := true
	for _, id := range identifiers {
		if err := generator.ValidateIdentifier(id.value); err != nil {
			result.addError(id.typ, table, column, err.Error())
			valid = false
		}
	}
	if !valid {
		return
	}

	name := generator.ConstraintName(policy, table, column)
	if err := generator.ValidateIdentifier(name); err != nil {
		result.addError("constraint_name", table, column, fmt.Sprintf("constraint name: %v", err))
	}

	t, ok := catalog.Table(table)
	if !ok {
		result.addWarning("unknown_table", table, column, fmt.Sprintf("Table '%s' is not part of the catalog", table))
		return
	}
	if !catalog.HasColumn(table, column) {
		result.addWarning("unknown_column", table, column, fmt.Sprintf("Column '%s' does not exist in table '%s'", column, table))
		return
	}

	col, _ := t.Column(column)

	ref, ok := catalog.Table(rule.ReferencesTable)
	if !ok {
		result.addWarning("unknown_referenced_table", table, column, fmt.Sprintf("Referenced table '%s' is not part of the catalog", rule.ReferencesTable))
		return
	}

	refColumn := rule.ReferencesColumn
	if refColumn == "" {
		if len(ref.PrimaryKey) != 1 {
			result.addWarning("referenced_key", table, column,
				fmt.Sprintf("Referenced table '%s' has no single-column primary key; name the referenced column", ref.Name))
			return
		}
		refColumn = ref.PrimaryKey[0]
	}

	target, ok := ref.Column(refColumn)
	if !ok {
		result.addWarning("unknown_referenced_column", table, column,
			fmt.Sprintf("Column '%s' does not exist in referenced table '%s'", refColumn, ref.Name))
		return
	}
	if !ref.IsPrimaryKey(refColumn) {
		result.addWarning("referenced_key", table, column,
			fmt.Sprintf("Referenced column '%s.%s' is not a primary key", ref.Name, refColumn))
	}
	if col.SQLType() != target.SQLType() {
		result.addWarning("type_mismatch", table, column,
			fmt.Sprintf("Column type %s does not match referenced %s.%s type %s", col.SQLType(), ref.Name, refColumn, target.SQLType()))
	}
}

// validateCoverage notes catalog relationships the rules file leaves out.
func validateCoverage(catalog *schema.Catalog, rules []schema.ForeignKeyRule, result *ValidationResult) {
	declared := map[string]bool{}
	for _, r := range rules {
		declared[r.TableName+"."+r.ColumnName] = true
	}
	for _, r := range catalog.ForeignKeyRules() {
		if !declared[r.TableName+"."+r.ColumnName] {
			result.addInfo("not_declared", r.TableName, r.ColumnName,
				fmt.Sprintf("Catalog relationship %s.%s -> %s is not in the rules file", r.TableName, r.ColumnName, r.ReferencesTable))
		}
	}
}

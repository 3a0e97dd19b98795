package schema

import (
	"fmt"
	"sort"
)

// Catalog is the immutable, declared description of every table in a
// namespace. Build it once and pass it to whatever needs table metadata.
type Catalog struct {
	namespace string
	tables    []Table
	byName    map[string]int
}

// NewCatalog builds a catalog for namespace. Each table's Schema is set to
// namespace; the slice is copied.
func NewCatalog(namespace string, tables []Table) *Catalog {
	c := &Catalog{
		namespace: namespace,
		tables:    make([]Table, len(tables)),
		byName:    make(map[string]int, len(tables)),
	}
	for i, t := range tables {
		t.Schema = namespace
		c.tables[i] = t
		c.byName[t.Name] = i
	}
	return c
}

func (c *Catalog) Namespace() string {
	return c.namespace
}

// Tables returns the tables in declaration order.
func (c *Catalog) Tables() []Table {
	out := make([]Table, len(c.tables))
	copy(out, c.tables)
	return out
}

func (c *Catalog) Table(name string) (Table, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Table{}, false
	}
	return c.tables[i], true
}

func (c *Catalog) HasTable(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Catalog) HasColumn(table, column string) bool {
	t, ok := c.Table(table)
	if !ok {
		return false
	}
	_, ok = t.Column(column)
	return ok
}

// ForeignKeyRules returns one rule per column that declares a reference,
// sorted by table and column.
func (c *Catalog) ForeignKeyRules() []ForeignKeyRule {
	var rules []ForeignKeyRule
	for _, t := range c.tables {
		for _, col := range t.Columns {
			if col.References == nil {
				continue
			}
			rules = append(rules, NewForeignKeyRule(t.Name, col.Name, col.References.Table, col.References.Column))
		}
	}
	SortRules(rules)
	return rules
}

// Validate checks that column names are unique per table, that primary-key
// columns exist and are not nullable, and that references point at
// declared tables.
func (c *Catalog) Validate() error {
	for _, t := range c.tables {
		seen := map[string]bool{}
		for _, col := range t.Columns {
			if seen[col.Name] {
				return fmt.Errorf("table %s: duplicate column %s", t.Name, col.Name)
			}
			seen[col.Name] = true
		}

		for _, pk := range t.PrimaryKey {
			col, ok := t.Column(pk)
			if !ok {
				return fmt.Errorf("table %s: primary key column %s is not declared", t.Name, pk)
			}
			if col.Nullable {
				return fmt.Errorf("table %s: primary key column %s is nullable", t.Name, pk)
			}
		}

		for _, col := range t.Columns {
			if col.References == nil {
				continue
			}
			if !c.HasTable(col.References.Table) {
				return fmt.Errorf("table %s: column %s references unknown table %s", t.Name, col.Name, col.References.Table)
			}
		}
	}
	return nil
}

// SortRules orders rules by table, then column.
func SortRules(rules []ForeignKeyRule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].TableName != rules[j].TableName {
			return rules[i].TableName < rules[j].TableName
		}
		return rules[i].ColumnName < rules[j].ColumnName
	})
}

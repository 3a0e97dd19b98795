package schema

import "fmt"

type TypeKind string

const (
	Integer   TypeKind = "integer"
	SmallInt  TypeKind = "smallint"
	Numeric   TypeKind = "numeric"
	Char      TypeKind = "char"
	Varchar   TypeKind = "varchar"
	Timestamp TypeKind = "timestamp"
	Text      TypeKind = "text"
)

// ColumnType is the semantic type of a column. Length applies to char and
// varchar, Precision and Scale to numeric.
type ColumnType struct {
	Kind      TypeKind
	Length    int
	Precision int
	Scale     int
}

type Table struct {
	Name       string
	Schema     string
	Columns    []Column
	PrimaryKey []string
	Relations  []Relation
}

type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	References *Reference
}

// Reference is a foreign key declared on a catalog column.
type Reference struct {
	Table  string
	Column string
}

// Relation is a named navigation from one table to another, following a
// declared foreign-key column.
type Relation struct {
	Name       string
	FromColumn string
	ToTable    string
}

const (
	Restrict = "RESTRICT"
	Cascade  = "CASCADE"
)

// ForeignKeyRule is a relationship that must exist in the live database.
// ReferencesColumn may be empty, in which case the referenced table's
// primary key is used.
type ForeignKeyRule struct {
	TableName        string
	ColumnName       string
	ReferencesTable  string
	ReferencesColumn string
	OnDelete         string
	OnUpdate         string
}

// NewForeignKeyRule builds a rule with the fixed referential actions.
func NewForeignKeyRule(table, column, refTable, refColumn string) ForeignKeyRule {
	return ForeignKeyRule{
		TableName:        table,
		ColumnName:       column,
		ReferencesTable:  refTable,
		ReferencesColumn: refColumn,
		OnDelete:         Restrict,
		OnUpdate:         Cascade,
	}
}

func (t ColumnType) SQL() string {
	switch t.Kind {
	case Char, Varchar:
		if t.Length > 0 {
			return fmt.Sprintf("%s(%d)", t.Kind, t.Length)
		}
	case Numeric:
		if t.Precision > 0 {
			return fmt.Sprintf("numeric(%d,%d)", t.Precision, t.Scale)
		}
	}
	return string(t.Kind)
}

// SQLType renders the column's PostgreSQL type.
func (c Column) SQLType() string {
	return c.Type.SQL()
}

func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t Table) IsPrimaryKey(column string) bool {
	for _, pk := range t.PrimaryKey {
		if pk == column {
			return true
		}
	}
	return false
}

// QualifiedName returns schema.table.
func (t Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

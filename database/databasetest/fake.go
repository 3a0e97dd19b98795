package databasetest

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FakeDB is an in-memory stand-in for a PostgreSQL namespace, used by
// tests. It answers the reflection queries of the introspect package and
// applies ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY statements.
type FakeDB struct {
	Namespace string
	// Tables maps a table name to its ordered column names.
	Tables      map[string][]string
	ForeignKeys []FakeForeignKey

	// QueryErr, when set, is returned by every Query call.
	QueryErr error
	// ExecErr, when set, is consulted before a statement is applied.
	ExecErr func(sql string) error

	Executed []string
}

type FakeForeignKey struct {
	Constraint string
	Table      string
	Column     string
	RefTable   string
	RefColumn  string
	OnDelete   string
	OnUpdate   string
}

func NewFakeDB(namespace string, tables map[string][]string) *FakeDB {
	return &FakeDB{Namespace: namespace, Tables: tables}
}

// AddForeignKey records an existing constraint directly.
func (f *FakeDB) AddForeignKey(constraint, table, column, refTable string) {
	f.ForeignKeys = append(f.ForeignKeys, FakeForeignKey{
		Constraint: constraint,
		Table:      table,
		Column:     column,
		RefTable:   refTable,
		RefColumn:  f.firstColumn(refTable),
		OnDelete:   "RESTRICT",
		OnUpdate:   "CASCADE",
	})
}

func (f *FakeDB) HasForeignKey(table, column, refTable string) bool {
	for _, fk := range f.ForeignKeys {
		if fk.Table == table && fk.Column == column && fk.RefTable == refTable {
			return true
		}
	}
	return false
}

func (f *FakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	if len(args) == 0 || args[0] != f.Namespace {
		return &FakeRows{}, nil
	}

	switch {
	case strings.Contains(sql, "FROM information_schema.tables"):
		var rows [][]any
		for _, name := range f.tableNames() {
			rows = append(rows, []any{name})
		}
		return &FakeRows{Data: rows}, nil

	case strings.Contains(sql, "FROM information_schema.columns"):
		var rows [][]any
		for _, name := range f.tableNames() {
			for _, col := range f.Tables[name] {
				rows = append(rows, []any{name, col, "integer", true})
			}
		}
		return &FakeRows{Data: rows}, nil

	case strings.Contains(sql, "con.contype = 'f'"):
		var rows [][]any
		for _, fk := range f.ForeignKeys {
			rows = append(rows, []any{fk.Constraint, fk.Table, fk.Column, f.Namespace, fk.RefTable, fk.RefColumn, fk.OnDelete, fk.OnUpdate})
		}
		return &FakeRows{Data: rows}, nil
	}

	return nil, fmt.Errorf("fake: unsupported query: %s", sql)
}

var addForeignKeyPattern = regexp.MustCompile(
	`^ALTER TABLE (\w+)\.(\w+) ADD CONSTRAINT (\w+) FOREIGN KEY \((\w+)\) REFERENCES (\w+)\.(\w+)(?: \((\w+)\))? ON DELETE ([A-Z ]+) ON UPDATE ([A-Z ]+)$`,
)

func (f *FakeDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	f.Executed = append(f.Executed, sql)

	if f.ExecErr != nil {
		if err := f.ExecErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}

	m := addForeignKeyPattern.FindStringSubmatch(sql)
	if m == nil {
		return pgconn.CommandTag{}, fmt.Errorf("fake: unsupported statement: %s", sql)
	}
	ns, table, constraint, column, refNs, refTable, refColumn := m[1], m[2], m[3], m[4], m[5], m[6], m[7]

	if ns != f.Namespace || refNs != f.Namespace {
		return pgconn.CommandTag{}, fmt.Errorf(`schema "%s" does not exist`, ns)
	}
	cols, ok := f.Tables[table]
	if !ok {
		return pgconn.CommandTag{}, fmt.Errorf(`relation "%s.%s" does not exist`, ns, table)
	}
	if !contains(cols, column) {
		return pgconn.CommandTag{}, fmt.Errorf(`column "%s" referenced in foreign key constraint does not exist`, column)
	}
	if _, ok := f.Tables[refTable]; !ok {
		return pgconn.CommandTag{}, fmt.Errorf(`relation "%s.%s" does not exist`, refNs, refTable)
	}
	for _, fk := range f.ForeignKeys {
		if fk.Table == table && fk.Constraint == constraint {
			return pgconn.CommandTag{}, fmt.Errorf(`constraint "%s" for relation "%s" already exists`, constraint, table)
		}
	}

	if refColumn == "" {
		refColumn = f.firstColumn(refTable)
	}
	f.ForeignKeys = append(f.ForeignKeys, FakeForeignKey{
		Constraint: constraint,
		Table:      table,
		Column:     column,
		RefTable:   refTable,
		RefColumn:  refColumn,
		OnDelete:   m[8],
		OnUpdate:   m[9],
	})

	return pgconn.NewCommandTag("ALTER TABLE"), nil
}

func (f *FakeDB) tableNames() []string {
	names := make([]string, 0, len(f.Tables))
	for name := range f.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *FakeDB) firstColumn(table string) string {
	if cols := f.Tables[table]; len(cols) > 0 {
		return cols[0]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FakeRows serves fixed rows through the pgx.Rows interface.
type FakeRows struct {
	Data [][]any
	// Failure is returned by Err once iteration is done.
	Failure error

	pos int
}

func (r *FakeRows) Close() {}

func (r *FakeRows) Err() error { return r.Failure }

func (r *FakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }

func (r *FakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *FakeRows) Next() bool {
	if r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *FakeRows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.Data) {
		return fmt.Errorf("fake: scan called without a current row")
	}
	row := r.Data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("fake: expected %d destinations, got %d", len(row), len(dest))
	}

	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			v, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("fake: column %d is %T, not string", i, row[i])
			}
			*p = v
		case *bool:
			v, ok := row[i].(bool)
			if !ok {
				return fmt.Errorf("fake: column %d is %T, not bool", i, row[i])
			}
			*p = v
		default:
			return fmt.Errorf("fake: unsupported scan destination %T", d)
		}
	}
	return nil
}

func (r *FakeRows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.Data) {
		return nil, fmt.Errorf("fake: no current row")
	}
	return r.Data[r.pos-1], nil
}

func (r *FakeRows) RawValues() [][]byte { return nil }

func (r *FakeRows) Conn() *pgx.Conn { return nil }

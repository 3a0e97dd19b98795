package introspect

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/fksync/database"
)

// Snapshot is the reflected state of one namespace. It is built fresh on
// every run and never persisted.
type Snapshot struct {
	Namespace string
	Tables    []ExistingTable

	byName map[string]int
}

type ExistingTable struct {
	TableName   string
	Columns     []ExistingColumn
	ForeignKeys []ExistingForeignKey
}

type ExistingColumn struct {
	ColumnName string
	DataType   string
	IsNullable bool
}

type ExistingForeignKey struct {
	ConstraintName   string
	TableName        string
	ColumnName       string
	ReferencesSchema string
	ReferencesTable  string
	ReferencesColumn string
	OnDelete         string
	OnUpdate         string
}

// NewSnapshot indexes tables by name.
func NewSnapshot(namespace string, tables []ExistingTable) *Snapshot {
	snap := &Snapshot{
		Namespace: namespace,
		Tables:    tables,
		byName:    make(map[string]int, len(tables)),
	}
	for i, t := range tables {
		snap.byName[t.TableName] = i
	}
	return snap
}

func (s *Snapshot) Table(name string) (ExistingTable, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ExistingTable{}, false
	}
	return s.Tables[i], true
}

// DescribeSchema reflects every base table of namespace with its columns
// and foreign keys.
func DescribeSchema(ctx context.Context, q database.Querier, namespace string) (*Snapshot, error) {
	tableNames, err := getTableNames(ctx, q, namespace)
	if err != nil {
		return nil, fmt.Errorf("getting tables of %s: %w", namespace, err)
	}

	columns, err := getColumns(ctx, q, namespace)
	if err != nil {
		return nil, fmt.Errorf("getting columns of %s: %w", namespace, err)
	}

	foreignKeys, err := getForeignKeys(ctx, q, namespace)
	if err != nil {
		return nil, fmt.Errorf("getting foreign keys of %s: %w", namespace, err)
	}

	return assembleSnapshot(namespace, tableNames, columns, foreignKeys), nil
}

type tableColumn struct {
	table  string
	column ExistingColumn
}

func assembleSnapshot(namespace string, tableNames []string, columns []tableColumn, foreignKeys []ExistingForeignKey) *Snapshot {
	tables := make([]ExistingTable, 0, len(tableNames))
	for _, name := range tableNames {
		tables = append(tables, ExistingTable{TableName: name})
	}
	snap := NewSnapshot(namespace, tables)

	// Views and other relations show up in columns but not in tables.
	for _, c := range columns {
		if i, ok := snap.byName[c.table]; ok {
			snap.Tables[i].Columns = append(snap.Tables[i].Columns, c.column)
		}
	}
	for _, fk := range foreignKeys {
		if i, ok := snap.byName[fk.TableName]; ok {
			snap.Tables[i].ForeignKeys = append(snap.Tables[i].ForeignKeys, fk)
		}
	}

	return snap
}

func getTableNames(ctx context.Context, q database.Querier, namespace string) ([]string, error) {
	tablesQuery := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := q.Query(ctx, tablesQuery, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tableNames = append(tableNames, tableName)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table rows: %w", err)
	}

	return tableNames, nil
}

func getColumns(ctx context.Context, q database.Querier, namespace string) ([]tableColumn, error) {
	columnsQuery := `
	SELECT
		c.table_name,
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') AS is_nullable
	FROM information_schema.columns c
	WHERE c.table_schema = $1
	ORDER BY c.table_name, c.ordinal_position;
	`

	rows, err := q.Query(ctx, columnsQuery, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []tableColumn
	for rows.Next() {
		var tc tableColumn
		if err := rows.Scan(
			&tc.table,
			&tc.column.ColumnName,
			&tc.column.DataType,
			&tc.column.IsNullable,
		); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}

	return columns, nil
}

func getForeignKeys(ctx context.Context, q database.Querier, namespace string) ([]ExistingForeignKey, error) {
	// pg_constraint is keyed by table oid, so constraints that share a name
	// across tables stay apart.
	foreignKeysQuery := `
	SELECT
		con.conname::text,
		c.relname::text,
		a.attname::text,
		fn.nspname::text,
		fc.relname::text,
		fa.attname::text,
		CASE con.confdeltype
			WHEN 'r' THEN 'RESTRICT' WHEN 'c' THEN 'CASCADE' WHEN 'n' THEN 'SET NULL'
			WHEN 'd' THEN 'SET DEFAULT' ELSE 'NO ACTION' END,
		CASE con.confupdtype
			WHEN 'r' THEN 'RESTRICT' WHEN 'c' THEN 'CASCADE' WHEN 'n' THEN 'SET NULL'
			WHEN 'd' THEN 'SET DEFAULT' ELSE 'NO ACTION' END
	FROM pg_constraint con
	JOIN pg_class c ON c.oid = con.conrelid
	JOIN pg_namespace n ON n.oid = c.relnamespace
	JOIN pg_class fc ON fc.oid = con.confrelid
	JOIN pg_namespace fn ON fn.oid = fc.relnamespace
	JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS cols(col_num, ref_num, ord) ON true
	JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = cols.col_num
	JOIN pg_attribute fa ON fa.attrelid = fc.oid AND fa.attnum = cols.ref_num
	WHERE con.contype = 'f'
		AND n.nspname = $1
	ORDER BY c.relname, con.conname, cols.ord;
	`

	rows, err := q.Query(ctx, foreignKeysQuery, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []ExistingForeignKey
	for rows.Next() {
		var fk ExistingForeignKey
		if err := rows.Scan(
			&fk.ConstraintName,
			&fk.TableName,
			&fk.ColumnName,
			&fk.ReferencesSchema,
			&fk.ReferencesTable,
			&fk.ReferencesColumn,
			&fk.OnDelete,
			&fk.OnUpdate,
		); err != nil {
			return nil, fmt.Errorf("scanning foreign key: %w", err)
		}
		foreignKeys = append(foreignKeys, fk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating foreign key rows: %w", err)
	}

	return foreignKeys, nil
}

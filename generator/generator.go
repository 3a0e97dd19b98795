package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ridoystarlord/fksync/diff"
	"github.com/ridoystarlord/fksync/schema"
)

// NamingPolicy decides how constraint names are derived.
type NamingPolicy string

const (
	// NameByColumn yields fk_<column>.
	NameByColumn NamingPolicy = "column"
	// NameByTableColumn yields fk_<table>_<column>.
	NameByTableColumn NamingPolicy = "table_column"
)

const maxIdentifierLength = 63

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// Statement is one generated DDL statement. Err is set when the operation
// could not be rendered; SQL and Rollback are empty in that case.
type Statement struct {
	Operation      diff.Operation
	ConstraintName string
	SQL            string
	Rollback       string
	Err            error
}

func ParseNamingPolicy(s string) (NamingPolicy, error) {
	switch NamingPolicy(s) {
	case "", NameByColumn:
		return NameByColumn, nil
	case NameByTableColumn:
		return NameByTableColumn, nil
	default:
		return "", fmt.Errorf("unknown naming policy %q (use %q or %q)", s, NameByColumn, NameByTableColumn)
	}
}

func ConstraintName(policy NamingPolicy, table, column string) string {
	if policy == NameByTableColumn {
		return fmt.Sprintf("fk_%s_%s", table, column)
	}
	return fmt.Sprintf("fk_%s", column)
}

// ValidateIdentifier accepts only lower-case unquoted PostgreSQL
// identifiers. Anything else is refused rather than quoted.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("identifier '%s' is too long (max %d characters)", name, maxIdentifierLength)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("identifier '%s' is not a plain lower-case identifier", name)
	}
	return nil
}

// GenerateStatements renders every operation. A failure to render one
// operation is recorded on its Statement and does not affect the others.
func GenerateStatements(ops []diff.Operation, policy NamingPolicy) []Statement {
	stmts := make([]Statement, 0, len(ops))
	for _, op := range ops {
		stmt := Statement{Operation: op}

		switch op.Type {
		case diff.AddForeignKey:
			stmt.ConstraintName = ConstraintName(policy, op.TableName, op.ColumnName)
			stmt.SQL, stmt.Err = generateAddForeignKey(op, stmt.ConstraintName)
			if stmt.Err == nil {
				stmt.Rollback = generateDropConstraint(op, stmt.ConstraintName)
			}
		default:
			stmt.Err = fmt.Errorf("unsupported operation: %s", op.Type)
		}

		stmts = append(stmts, stmt)
	}
	return stmts
}

func generateAddForeignKey(op diff.Operation, constraint string) (string, error) {
	if op.ForeignKey == nil {
		return "", fmt.Errorf("foreign key is nil")
	}
	fk := op.ForeignKey

	idents := []string{op.Namespace, op.TableName, op.ColumnName, fk.ReferencesTable, constraint}
	if fk.ReferencesColumn != "" {
		idents = append(idents, fk.ReferencesColumn)
	}
	for _, ident := range idents {
		if err := ValidateIdentifier(ident); err != nil {
			return "", err
		}
	}

	onDelete, onUpdate := fk.OnDelete, fk.OnUpdate
	if onDelete == "" {
		onDelete = schema.Restrict
	}
	if onUpdate == "" {
		onUpdate = schema.Cascade
	}
	if err := validateAction(onDelete); err != nil {
		return "", err
	}
	if err := validateAction(onUpdate); err != nil {
		return "", err
	}

	refTarget := fmt.Sprintf("%s.%s", op.Namespace, fk.ReferencesTable)
	if fk.ReferencesColumn != "" {
		refTarget += fmt.Sprintf(" (%s)", fk.ReferencesColumn)
	}

	return fmt.Sprintf("ALTER TABLE %s.%s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s ON DELETE %s ON UPDATE %s",
		op.Namespace,
		op.TableName,
		constraint,
		op.ColumnName,
		refTarget,
		onDelete,
		onUpdate,
	), nil
}

func generateDropConstraint(op diff.Operation, constraint string) string {
	return fmt.Sprintf("ALTER TABLE %s.%s DROP CONSTRAINT %s", op.Namespace, op.TableName, constraint)
}

func validateAction(action string) error {
	switch action {
	case "RESTRICT", "CASCADE", "SET NULL", "SET DEFAULT", "NO ACTION":
		return nil
	}
	return fmt.Errorf("unsupported referential action %q", action)
}

// GenerateCreateSchema renders CREATE SCHEMA for the namespace.
func GenerateCreateSchema(namespace string) (string, error) {
	if err := ValidateIdentifier(namespace); err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", namespace), nil
}

// GenerateCreateTable renders a CREATE TABLE for a catalog table. Foreign
// keys are not included; they are added separately so tables can be
// created in any order.
func GenerateCreateTable(t schema.Table) (string, error) {
	if err := ValidateIdentifier(t.Schema); err != nil {
		return "", fmt.Errorf("table %s: %w", t.Name, err)
	}
	if err := ValidateIdentifier(t.Name); err != nil {
		return "", err
	}

	var defs []string
	for _, col := range t.Columns {
		if err := ValidateIdentifier(col.Name); err != nil {
			return "", fmt.Errorf("table %s: %w", t.Name, err)
		}
		def := fmt.Sprintf("%s %s", col.Name, col.SQLType())
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.QualifiedName(), strings.Join(defs, ", ")), nil
}

// GenerateCatalogDDL renders the schema and every table of the catalog,
// followed by the catalog's foreign keys when withForeignKeys is set.
func GenerateCatalogDDL(catalog *schema.Catalog, withForeignKeys bool, policy NamingPolicy) ([]string, error) {
	stmt, err := GenerateCreateSchema(catalog.Namespace())
	if err != nil {
		return nil, err
	}
	sqls := []string{stmt}

	for _, t := range catalog.Tables() {
		stmt, err := GenerateCreateTable(t)
		if err != nil {
			return nil, fmt.Errorf("generate CREATE TABLE: %w", err)
		}
		sqls = append(sqls, stmt)
	}

	if !withForeignKeys {
		return sqls, nil
	}

	var ops []diff.Operation
	for _, rule := range catalog.ForeignKeyRules() {
		r := rule
		ops = append(ops, diff.Operation{
			Type:       diff.AddForeignKey,
			Namespace:  catalog.Namespace(),
			TableName:  r.TableName,
			ColumnName: r.ColumnName,
			ForeignKey: &r,
		})
	}
	for _, s := range GenerateStatements(ops, policy) {
		if s.Err != nil {
			return nil, fmt.Errorf("generate foreign key %s.%s: %w", s.Operation.TableName, s.Operation.ColumnName, s.Err)
		}
		sqls = append(sqls, s.SQL)
	}

	return sqls, nil
}

// WriteScriptFile saves the statements into a timestamped .sql file with
// up/down sections inside dir. Statements that failed to render are kept
// as comments.
func WriteScriptFile(dir string, stmts []Statement) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output folder: %w", err)
	}

	timestamp := time.Now().Format("20060102150405")
	filename := filepath.Join(dir, fmt.Sprintf("%s_foreign_keys.sql", timestamp))

	var b strings.Builder
	b.WriteString("-- Foreign keys: " + timestamp + "\n")
	b.WriteString("-- Description: Missing foreign-key constraints\n\n")

	b.WriteString("-- Up\n")
	b.WriteString("-- ==\n")
	for _, s := range stmts {
		if s.Err != nil {
			fmt.Fprintf(&b, "-- skipped %s.%s: %v\n", s.Operation.TableName, s.Operation.ColumnName, s.Err)
			continue
		}
		b.WriteString(s.SQL + ";\n")
	}

	b.WriteString("\n-- Down (Rollback)\n")
	b.WriteString("-- ================\n")
	for i := len(stmts) - 1; i >= 0; i-- {
		if stmts[i].Err != nil {
			continue
		}
		b.WriteString(stmts[i].Rollback + ";\n")
	}

	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing script file: %w", err)
	}

	return filename, nil
}

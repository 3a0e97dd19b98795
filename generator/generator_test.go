package generator

import (
	"os"
	"strings"
	"testing"

	"github.com/ridoystarlord/fksync/diff"
	"github.com/ridoystarlord/fksync/schema"
)

func addFK(ns, table, column, refTable, refColumn string) diff.Operation {
	rule := schema.NewForeignKeyRule(table, column, refTable, refColumn)
	return diff.Operation{
		Type:       diff.AddForeignKey,
		Namespace:  ns,
		TableName:  table,
		ColumnName: column,
		ForeignKey: &rule,
	}
}

func TestGenerateAddForeignKey(t *testing.T) {
	tests := []struct {
		name     string
		op       diff.Operation
		policy   NamingPolicy
		want     string
		rollback string
	}{
		{
			name:     "column naming",
			op:       addFK("northwind", "orders", "customerid", "customers", ""),
			policy:   NameByColumn,
			want:     "ALTER TABLE northwind.orders ADD CONSTRAINT fk_customerid FOREIGN KEY (customerid) REFERENCES northwind.customers ON DELETE RESTRICT ON UPDATE CASCADE",
			rollback: "ALTER TABLE northwind.orders DROP CONSTRAINT fk_customerid",
		},
		{
			name:     "table and column naming",
			op:       addFK("northwind", "products", "categoryid", "categories", ""),
			policy:   NameByTableColumn,
			want:     "ALTER TABLE northwind.products ADD CONSTRAINT fk_products_categoryid FOREIGN KEY (categoryid) REFERENCES northwind.categories ON DELETE RESTRICT ON UPDATE CASCADE",
			rollback: "ALTER TABLE northwind.products DROP CONSTRAINT fk_products_categoryid",
		},
		{
			name:     "explicit referenced column",
			op:       addFK("northwind", "order_details", "orderid", "orders", "orderid"),
			policy:   NameByColumn,
			want:     "ALTER TABLE northwind.order_details ADD CONSTRAINT fk_orderid FOREIGN KEY (orderid) REFERENCES northwind.orders (orderid) ON DELETE RESTRICT ON UPDATE CASCADE",
			rollback: "ALTER TABLE northwind.order_details DROP CONSTRAINT fk_orderid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := GenerateStatements([]diff.Operation{tt.op}, tt.policy)
			if len(stmts) != 1 {
				t.Fatalf("Expected 1 statement, got %d", len(stmts))
			}
			s := stmts[0]
			if s.Err != nil {
				t.Fatalf("Unexpected error: %v", s.Err)
			}
			if s.SQL != tt.want {
				t.Errorf("SQL =\n%s\nwant\n%s", s.SQL, tt.want)
			}
			if s.Rollback != tt.rollback {
				t.Errorf("Rollback = %s, want %s", s.Rollback, tt.rollback)
			}
		})
	}
}

func TestGenerateStatementsRejectsUnsafeIdentifiers(t *testing.T) {
	ops := []diff.Operation{
		addFK("northwind", "orders", "customerid); DROP TABLE orders; --", "customers", ""),
		addFK("northwind", "orders", "employeeid", "employees", ""),
		addFK("North Wind", "orders", "customerid", "customers", ""),
		addFK("northwind", "Orders", "customerid", "customers", ""),
		{Type: diff.AddForeignKey, Namespace: "northwind", TableName: "orders", ColumnName: "x"},
		{Type: "DROP_TABLE", Namespace: "northwind", TableName: "orders"},
	}

	stmts := GenerateStatements(ops, NameByColumn)
	if len(stmts) != len(ops) {
		t.Fatalf("Expected %d statements, got %d", len(ops), len(stmts))
	}

	if stmts[1].Err != nil || stmts[1].SQL == "" {
		t.Errorf("valid operation was affected by its neighbours: %+v", stmts[1])
	}
	for _, i := range []int{0, 2, 3, 4, 5} {
		if stmts[i].Err == nil {
			t.Errorf("statement %d: expected error, got SQL %q", i, stmts[i].SQL)
		}
		if stmts[i].SQL != "" {
			t.Errorf("statement %d: SQL should be empty on error", i)
		}
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		ident   string
		wantErr bool
	}{
		{"orders", false},
		{"order_details", false},
		{"_x1$", false},
		{"", true},
		{"1orders", true},
		{"Orders", true},
		{"orders.customerid", true},
		{`"orders"`, true},
		{strings.Repeat("a", 63), false},
		{strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		err := ValidateIdentifier(tt.ident)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) = %v, wantErr %v", tt.ident, err, tt.wantErr)
		}
	}
}

func TestParseNamingPolicy(t *testing.T) {
	for in, want := range map[string]NamingPolicy{"": NameByColumn, "column": NameByColumn, "table_column": NameByTableColumn} {
		got, err := ParseNamingPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseNamingPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseNamingPolicy("random"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}

func TestGenerateCreateTable(t *testing.T) {
	c := schema.NewNorthwindCatalog("northwind")
	details, _ := c.Table("order_details")

	got, err := GenerateCreateTable(details)
	if err != nil {
		t.Fatalf("GenerateCreateTable() error: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS northwind.order_details (orderid integer NOT NULL, productid integer NOT NULL, unitprice numeric(13,4), quantity smallint, discount numeric(10,4), PRIMARY KEY (orderid, productid))"
	if got != want {
		t.Errorf("GenerateCreateTable() =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerateCatalogDDL(t *testing.T) {
	c := schema.NewNorthwindCatalog("northwind")

	plain, err := GenerateCatalogDDL(c, false, NameByColumn)
	if err != nil {
		t.Fatalf("GenerateCatalogDDL() error: %v", err)
	}
	if len(plain) != 1+len(c.Tables()) {
		t.Errorf("Expected %d statements, got %d", 1+len(c.Tables()), len(plain))
	}
	if plain[0] != "CREATE SCHEMA IF NOT EXISTS northwind" {
		t.Errorf("first statement = %q", plain[0])
	}

	withFKs, err := GenerateCatalogDDL(c, true, NameByColumn)
	if err != nil {
		t.Fatalf("GenerateCatalogDDL() error: %v", err)
	}
	fks := withFKs[len(plain):]
	if len(fks) != len(c.ForeignKeyRules()) {
		t.Fatalf("Expected %d foreign keys, got %d", len(c.ForeignKeyRules()), len(fks))
	}
	for _, s := range fks {
		if !strings.HasPrefix(s, "ALTER TABLE northwind.") {
			t.Errorf("unexpected statement %q", s)
		}
	}
}

func TestWriteScriptFile(t *testing.T) {
	dir := t.TempDir()
	stmts := GenerateStatements([]diff.Operation{
		addFK("northwind", "orders", "customerid", "customers", ""),
		addFK("northwind", "orders", "Bad", "customers", ""),
		addFK("northwind", "orders", "employeeid", "employees", ""),
	}, NameByColumn)

	filename, err := WriteScriptFile(dir, stmts)
	if err != nil {
		t.Fatalf("WriteScriptFile() error: %v", err)
	}
	if !strings.HasSuffix(filename, "_foreign_keys.sql") {
		t.Errorf("unexpected filename %s", filename)
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)

	up := strings.Index(content, "-- Up")
	down := strings.Index(content, "-- Down (Rollback)")
	if up < 0 || down < up {
		t.Fatalf("missing sections:\n%s", content)
	}
	if !strings.Contains(content[up:down], "ADD CONSTRAINT fk_customerid") {
		t.Error("up section lacks fk_customerid")
	}
	if !strings.Contains(content[up:down], "-- skipped orders.Bad") {
		t.Error("up section lacks the skipped statement comment")
	}
	rollback := content[down:]
	if strings.Index(rollback, "DROP CONSTRAINT fk_employeeid") > strings.Index(rollback, "DROP CONSTRAINT fk_customerid") {
		t.Error("rollback statements are not in reverse order")
	}
}

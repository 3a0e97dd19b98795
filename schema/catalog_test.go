package schema

import (
	"strings"
	"testing"
)

func TestNorthwindCatalogIsValid(t *testing.T) {
	c := NewNorthwindCatalog(DefaultNamespace)
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	want := []string{"categories", "customers", "employees", "products", "shippers", "suppliers", "orders", "order_details"}
	tables := c.Tables()
	if len(tables) != len(want) {
		t.Fatalf("Expected %d tables, got %d", len(want), len(tables))
	}
	for i, name := range want {
		if tables[i].Name != name {
			t.Errorf("table %d: expected %s, got %s", i, name, tables[i].Name)
		}
		if tables[i].Schema != DefaultNamespace {
			t.Errorf("table %s: expected schema %s, got %s", name, DefaultNamespace, tables[i].Schema)
		}
	}
}

func TestNorthwindForeignKeyRules(t *testing.T) {
	rules := NewNorthwindCatalog(DefaultNamespace).ForeignKeyRules()

	want := []struct {
		table, column, refTable string
	}{
		{"order_details", "orderid", "orders"},
		{"order_details", "productid", "products"},
		{"orders", "customerid", "customers"},
		{"orders", "employeeid", "employees"},
		{"products", "categoryid", "categories"},
		{"products", "supplierid", "suppliers"},
	}

	if len(rules) != len(want) {
		t.Fatalf("Expected %d rules, got %d: %+v", len(want), len(rules), rules)
	}
	for i, w := range want {
		r := rules[i]
		if r.TableName != w.table || r.ColumnName != w.column || r.ReferencesTable != w.refTable {
			t.Errorf("rule %d: expected %s.%s -> %s, got %s.%s -> %s", i, w.table, w.column, w.refTable, r.TableName, r.ColumnName, r.ReferencesTable)
		}
		if r.OnDelete != Restrict || r.OnUpdate != Cascade {
			t.Errorf("rule %d: expected RESTRICT/CASCADE, got %s/%s", i, r.OnDelete, r.OnUpdate)
		}
	}
}

func TestColumnSQLType(t *testing.T) {
	c := NewNorthwindCatalog(DefaultNamespace)

	tests := []struct {
		table, column, want string
	}{
		{"customers", "customerid", "varchar(5)"},
		{"products", "unitprice", "numeric(13,4)"},
		{"orders", "freight", "numeric(15,4)"},
		{"products", "unitsinstock", "smallint"},
		{"employees", "birthdate", "timestamp"},
		{"employees", "notes", "text"},
		{"categories", "categoryid", "integer"},
	}

	for _, tt := range tests {
		t.Run(tt.table+"."+tt.column, func(t *testing.T) {
			table, ok := c.Table(tt.table)
			if !ok {
				t.Fatalf("Table %s not found", tt.table)
			}
			col, ok := table.Column(tt.column)
			if !ok {
				t.Fatalf("Column %s not found in %s", tt.column, tt.table)
			}
			if got := col.SQLType(); got != tt.want {
				t.Errorf("SQLType() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := (ColumnType{Kind: Char, Length: 2}).SQL(); got != "char(2)" {
		t.Errorf("char SQL() = %q", got)
	}
}

func TestCatalogLookups(t *testing.T) {
	c := NewNorthwindCatalog("sales")

	if c.Namespace() != "sales" {
		t.Errorf("Namespace() = %q", c.Namespace())
	}
	if !c.HasColumn("orders", "customerid") {
		t.Error("expected orders.customerid to exist")
	}
	if c.HasColumn("orders", "nope") || c.HasColumn("nope", "customerid") {
		t.Error("unexpected column match")
	}

	orders, _ := c.Table("orders")
	if orders.QualifiedName() != "sales.orders" {
		t.Errorf("QualifiedName() = %q", orders.QualifiedName())
	}
	if !orders.IsPrimaryKey("orderid") || orders.IsPrimaryKey("customerid") {
		t.Error("IsPrimaryKey mismatch for orders")
	}
	if len(orders.Relations) != 2 {
		t.Errorf("Expected 2 relations on orders, got %d", len(orders.Relations))
	}

	// Tables returns a copy
	tables := c.Tables()
	tables[0].Name = "mutated"
	if _, ok := c.Table("categories"); !ok {
		t.Error("catalog was mutated through Tables()")
	}
}

func TestCatalogValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		tables  []Table
		wantErr string
	}{
		{
			name: "duplicate column",
			tables: []Table{{
				Name:    "t",
				Columns: []Column{integer("a"), integer("a")},
			}},
			wantErr: "duplicate column a",
		},
		{
			name: "nullable primary key",
			tables: []Table{{
				Name:       "t",
				Columns:    []Column{integer("id")},
				PrimaryKey: []string{"id"},
			}},
			wantErr: "is nullable",
		},
		{
			name: "undeclared primary key",
			tables: []Table{{
				Name:       "t",
				Columns:    []Column{notNull(integer("id"))},
				PrimaryKey: []string{"other"},
			}},
			wantErr: "is not declared",
		},
		{
			name: "unknown reference",
			tables: []Table{{
				Name:    "t",
				Columns: []Column{references(integer("ref"), "missing", "id")},
			}},
			wantErr: "unknown table missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCatalog("ns", tt.tables).Validate()
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

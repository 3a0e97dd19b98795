package schema

// DefaultNamespace is the schema the Northwind tables live in.
const DefaultNamespace = "northwind"

func column(name string, t ColumnType) Column {
	return Column{Name: name, Type: t, Nullable: true}
}

func integer(name string) Column   { return column(name, ColumnType{Kind: Integer}) }
func smallint(name string) Column  { return column(name, ColumnType{Kind: SmallInt}) }
func timestamp(name string) Column { return column(name, ColumnType{Kind: Timestamp}) }
func text(name string) Column      { return column(name, ColumnType{Kind: Text}) }

func varchar(name string, n int) Column {
	return column(name, ColumnType{Kind: Varchar, Length: n})
}

func numeric(name string, precision, scale int) Column {
	return column(name, ColumnType{Kind: Numeric, Precision: precision, Scale: scale})
}

func notNull(c Column) Column {
	c.Nullable = false
	return c
}

func references(c Column, table, refColumn string) Column {
	c.References = &Reference{Table: table, Column: refColumn}
	return c
}

// NewNorthwindCatalog returns the Northwind tables placed in namespace.
func NewNorthwindCatalog(namespace string) *Catalog {
	return NewCatalog(namespace, northwindTables())
}

func northwindTables() []Table {
	return []Table{
		{
			Name: "categories",
			Columns: []Column{
				notNull(integer("categoryid")),
				varchar("categoryname", 50),
				varchar("description", 100),
			},
			PrimaryKey: []string{"categoryid"},
		},
		{
			Name: "customers",
			Columns: []Column{
				notNull(varchar("customerid", 5)),
				varchar("companyname", 50),
				varchar("contactname", 30),
				varchar("contacttitle", 30),
				varchar("address", 50),
				varchar("city", 20),
				varchar("region", 15),
				varchar("postalcode", 9),
				varchar("country", 15),
				varchar("phone", 17),
				varchar("fax", 17),
			},
			PrimaryKey: []string{"customerid"},
		},
		{
			Name: "employees",
			Columns: []Column{
				notNull(integer("employeeid")),
				varchar("lastname", 10),
				varchar("firstname", 10),
				varchar("title", 25),
				varchar("titleofcourtesy", 5),
				timestamp("birthdate"),
				timestamp("hiredate"),
				varchar("address", 50),
				varchar("city", 20),
				varchar("region", 2),
				varchar("postalcode", 9),
				varchar("country", 15),
				varchar("homephone", 14),
				varchar("extension", 4),
				integer("reportsto"),
				text("notes"),
			},
			PrimaryKey: []string{"employeeid"},
		},
		{
			Name: "products",
			Columns: []Column{
				notNull(integer("productid")),
				varchar("productname", 35),
				references(notNull(integer("supplierid")), "suppliers", "supplierid"),
				references(notNull(integer("categoryid")), "categories", "categoryid"),
				varchar("quantityperunit", 20),
				numeric("unitprice", 13, 4),
				smallint("unitsinstock"),
				smallint("unitsonorder"),
				smallint("reorderlevel"),
				varchar("discontinued", 1),
			},
			PrimaryKey: []string{"productid"},
		},
		{
			Name: "shippers",
			Columns: []Column{
				notNull(integer("shipperid")),
				varchar("companyname", 20),
				varchar("phone", 14),
			},
			PrimaryKey: []string{"shipperid"},
		},
		{
			Name: "suppliers",
			Columns: []Column{
				notNull(integer("supplierid")),
				varchar("companyname", 50),
				varchar("contactname", 30),
				varchar("contacttitle", 30),
				varchar("address", 50),
				varchar("city", 20),
				varchar("region", 15),
				varchar("postalcode", 8),
				varchar("country", 15),
				varchar("phone", 15),
				varchar("fax", 15),
				varchar("homepage", 100),
			},
			PrimaryKey: []string{"supplierid"},
		},
		{
			Name: "orders",
			Columns: []Column{
				notNull(integer("orderid")),
				references(notNull(varchar("customerid", 5)), "customers", "customerid"),
				references(notNull(integer("employeeid")), "employees", "employeeid"),
				timestamp("orderdate"),
				timestamp("requireddate"),
				timestamp("shippeddate"),
				numeric("freight", 15, 4),
				varchar("shipname", 35),
				varchar("shipaddress", 50),
				varchar("shipcity", 15),
				varchar("shipregion", 15),
				varchar("shippostalcode", 9),
				varchar("shipcountry", 15),
				integer("shipperid"),
			},
			PrimaryKey: []string{"orderid"},
			Relations: []Relation{
				{Name: "customer", FromColumn: "customerid", ToTable: "customers"},
				{Name: "employee", FromColumn: "employeeid", ToTable: "employees"},
			},
		},
		{
			Name: "order_details",
			Columns: []Column{
				references(notNull(integer("orderid")), "orders", "orderid"),
				references(notNull(integer("productid")), "products", "productid"),
				numeric("unitprice", 13, 4),
				smallint("quantity"),
				numeric("discount", 10, 4),
			},
			PrimaryKey: []string{"orderid", "productid"},
			Relations: []Relation{
				{Name: "order", FromColumn: "orderid", ToTable: "orders"},
				{Name: "product", FromColumn: "productid", ToTable: "products"},
			},
		},
	}
}

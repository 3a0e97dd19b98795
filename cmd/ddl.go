package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/runner"
	"github.com/ridoystarlord/fksync/schema"
)

var (
	applyDDL       bool
	ddlForeignKeys bool
)

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Print or create the Northwind tables",
	Long: `Render CREATE SCHEMA and CREATE TABLE statements for the Northwind catalog.

Examples:
  fksync ddl                         # Print the statements
  fksync ddl --with-foreign-keys     # Include the foreign keys
  fksync ddl --apply                 # Create the schema and tables
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDDL(cmd); err != nil {
			fmt.Println("❌ DDL failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	ddlCmd.Flags().BoolVar(&applyDDL, "apply", false, "Execute the statements instead of printing them")
	ddlCmd.Flags().BoolVar(&ddlForeignKeys, "with-foreign-keys", false, "Also add the catalog foreign keys")
}

func runDDL(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog := schema.NewNorthwindCatalog(cfg.Namespace)
	if err := catalog.Validate(); err != nil {
		return err
	}

	sqls, err := generator.GenerateCatalogDDL(catalog, ddlForeignKeys, cfg.Naming)
	if err != nil {
		return err
	}

	if !applyDDL {
		for _, sql := range sqls {
			fmt.Println(sql + ";")
		}
		return nil
	}

	ctx, cancel := commandContext()
	defer cancel()

	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	failed := runner.ApplySQL(ctx, conn, os.Stdout, sqls)
	fmt.Printf("\n📊 Summary: %d executed, %d failed\n", len(sqls)-len(failed), len(failed))
	return nil
}

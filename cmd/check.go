package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/database"
	"github.com/ridoystarlord/fksync/introspect"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check database connectivity and the target schema",
	Long: `Check that the database is reachable and report the state of the schema.

This command will:
- Verify database connectivity
- Check that the schema exists
- Count its tables and foreign keys

Examples:
  fksync check                    # Check current state
  fksync check --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabaseSchema(cmd); err != nil {
			fmt.Printf("❌ Schema check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Schema check completed successfully")
	},
}

func checkDatabaseSchema(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())
	fmt.Println("🔌 Database connection OK")

	exists, err := database.SchemaExists(ctx, conn, cfg.Namespace)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("⚠️  Schema %s not found\n", cfg.Namespace)
		fmt.Println("   Run 'fksync ddl --apply' to create the Northwind tables")
		return nil
	}

	snap, err := introspect.DescribeSchema(ctx, conn, cfg.Namespace)
	if err != nil {
		return err
	}

	foreignKeys := 0
	for _, t := range snap.Tables {
		names := map[string]bool{}
		for _, fk := range t.ForeignKeys {
			names[fk.ConstraintName] = true
		}
		foreignKeys += len(names)
	}
	fmt.Printf("📊 Schema %s has %d tables and %d foreign keys\n", cfg.Namespace, len(snap.Tables), foreignKeys)

	for _, table := range cfg.RulesFile.Tables() {
		if _, ok := snap.Table(table); !ok {
			fmt.Printf("⚠️  Table %s has rules but does not exist\n", table)
		}
	}

	return nil
}

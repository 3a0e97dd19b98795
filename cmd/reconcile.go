package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/runner"
)

var (
	dryRunReconcile bool
	reconcileOut    string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Add the foreign keys that are missing from the database",
	Long: `Reflect the schema, compare its foreign keys with the rules and add every
missing one with ON DELETE RESTRICT ON UPDATE CASCADE.

Each constraint is created on its own: a failure is reported and the run
continues with the next one. Only a failure to reflect the schema stops it.

Examples:
  fksync reconcile                     # Add missing foreign keys
  fksync reconcile --dry-run           # Print the statements without running them
  fksync reconcile --out migrations    # Also save them as a .sql script
  fksync reconcile -s northwind_test   # Work on another schema
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := reconcile(cmd); err != nil {
			fmt.Println("❌ Reconcile failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&dryRunReconcile, "dry-run", false, "Preview the SQL that would be executed without applying it")
	reconcileCmd.Flags().StringVarP(&reconcileOut, "out", "o", "", "Write the planned statements to a timestamped .sql file in this folder")
}

func reconcile(cmd *cobra.Command) error {
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

	report, err := runner.Reconcile(ctx, conn, cfg.Namespace, cfg.Rules(), runner.Options{
		Naming: cfg.Naming,
		DryRun: dryRunReconcile,
	})
	if err != nil {
		return err
	}

	if reconcileOut != "" && len(report.Statements) > 0 {
		filename, err := generator.WriteScriptFile(reconcileOut, report.Statements)
		if err != nil {
			return err
		}
		fmt.Println("📝 Script written to", filename)
	}

	return nil
}

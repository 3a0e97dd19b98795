package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/diff"
	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/introspect"
)

var diffVisual bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show which foreign keys are missing from the database",
	Long: `Compare the rules with the foreign keys of the live schema without changing
anything.

Examples:
  fksync diff                    # Show missing foreign keys in text format
  fksync diff --visual           # Show every relationship per table with colors
  fksync diff -r custom.yaml     # Use a custom rules file
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("❌ Error loading rules: %v\n", err)
			os.Exit(1)
		}

		plan, err := planForeignKeys(cfg)
		if err != nil {
			fmt.Printf("❌ Error introspecting database: %v\n", err)
			os.Exit(1)
		}

		stmts := generator.GenerateStatements(plan.Operations, cfg.Naming)

		if diffVisual {
			showVisualDiff(plan, stmts)
			return
		}

		if len(plan.Operations) == 0 && len(plan.Mismatched) == 0 && len(plan.MissingTables) == 0 {
			fmt.Println("✅ No differences found between rules and database")
			return
		}
		showTextDiff(plan, stmts)
	},
}

func init() {
	diffCmd.Flags().BoolVarP(&diffVisual, "visual", "v", false, "Show changes in visual tree format")
}

func planForeignKeys(cfg *config) (*diff.Plan, error) {
	ctx, cancel := commandContext()
	defer cancel()

	conn, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(context.Background())

	snap, err := introspect.DescribeSchema(ctx, conn, cfg.Namespace)
	if err != nil {
		return nil, err
	}
	return diff.DiffForeignKeys(cfg.Rules(), snap), nil
}

func showTextDiff(plan *diff.Plan, stmts []generator.Statement) {
	fmt.Println("📋 Foreign Key Changes (Text Format)")
	fmt.Println(strings.Repeat("=", 40))

	for i, s := range stmts {
		op := s.Operation
		fmt.Printf("%d. ADD FOREIGN KEY %s.%s → %s", i+1, op.TableName, op.ColumnName, op.ForeignKey.ReferencesTable)
		if s.Err != nil {
			fmt.Printf(" (cannot be generated: %v)\n", s.Err)
			continue
		}
		fmt.Printf(" as %s\n", s.ConstraintName)
	}

	for _, m := range plan.Mismatched {
		fmt.Printf("⚠️  %s.%s references %s through %s, rules expect %s\n",
			m.Rule.TableName, m.Rule.ColumnName, m.Existing.ReferencesSchema+"."+m.Existing.ReferencesTable, m.Existing.ConstraintName, m.Rule.ReferencesTable)
	}
	for _, table := range plan.MissingTables {
		fmt.Printf("⚠️  Table %s does not exist\n", table)
	}
}

func showVisualDiff(plan *diff.Plan, stmts []generator.Statement) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	faint := color.New(color.Faint)

	fmt.Println("🌳 Foreign Keys (Visual Diff)")
	fmt.Println(strings.Repeat("=", 50))

	byTable := map[string][]func(){}
	var tables []string
	add := func(table string, l func()) {
		if _, ok := byTable[table]; !ok {
			tables = append(tables, table)
		}
		byTable[table] = append(byTable[table], l)
	}

	for _, r := range plan.Satisfied {
		add(r.TableName, func() { faint.Printf("    ✔ %s → %s\n", r.ColumnName, r.ReferencesTable) })
	}
	for _, s := range stmts {
		op := s.Operation
		add(op.TableName, func() {
			if s.Err != nil {
				red.Printf("    ❌ ADD FK %s → %s: %v\n", op.ColumnName, op.ForeignKey.ReferencesTable, s.Err)
				return
			}
			green.Printf("    ➕ ADD FK %s → %s (%s)\n", op.ColumnName, op.ForeignKey.ReferencesTable, s.ConstraintName)
		})
	}
	for _, m := range plan.Mismatched {
		add(m.Rule.TableName, func() {
			yellow.Printf("    ⚡ %s → %s, expected %s\n", m.Rule.ColumnName, m.Existing.ReferencesSchema+"."+m.Existing.ReferencesTable, m.Rule.ReferencesTable)
		})
	}

	fmt.Println("\n🔗 Foreign Keys:")
	for _, table := range tables {
		fmt.Printf("  📋 %s:\n", table)
		for _, l := range byTable[table] {
			l()
		}
	}

	if len(plan.MissingTables) > 0 {
		fmt.Println("\n📋 Tables:")
		for _, table := range plan.MissingTables {
			red.Printf("  ❌ MISSING %s\n", table)
		}
	}
}

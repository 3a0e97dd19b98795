package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/loader"
	"github.com/ridoystarlord/fksync/schema"
	"github.com/ridoystarlord/fksync/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a rules file with the Northwind relationships",
	Long: `Write a rules file declaring the six Northwind foreign keys.

Examples:
  fksync init                     # Create fksync.yaml
  fksync init -r rules.yaml       # Create a rules file elsewhere
  fksync init -s northwind_test   # Record another schema in the file
`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(rulesFile); err == nil {
			fmt.Printf("❌ %s already exists!\n", rulesFile)
			return
		}

		rf := &loader.RulesFile{
			Schema: utils.GetSchemaName(schemaName, schema.DefaultNamespace),
			Naming: string(generator.NameByColumn),
			Rules:  defaultRules(schema.DefaultNamespace),
		}
		if namingFlag != "" {
			policy, err := generator.ParseNamingPolicy(namingFlag)
			if err != nil {
				fmt.Println("❌", err)
				os.Exit(1)
			}
			rf.Naming = string(policy)
		}

		if err := loader.WriteRulesFile(rulesFile, rf); err != nil {
			fmt.Println("❌ Error creating rules file:", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Created %s with %d foreign keys.\n", rulesFile, len(rf.Rules))
		fmt.Println("📝 Edit it to declare the relationships fksync should keep in place")
		fmt.Println("🚀 Run 'fksync reconcile' to add the missing ones")
	},
}

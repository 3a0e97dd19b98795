package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/schema"
	"github.com/ridoystarlord/fksync/validator"
)

var validateFormat string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the rules file against the Northwind catalog",
	Long: `Validate your rules file without connecting to a database.

This command checks:
- Identifiers (plain lower-case PostgreSQL names, max 63 characters)
- The naming policy and the resulting constraint names
- Tables, columns and referenced tables against the catalog
- Referenced keys and column types
- Catalog relationships missing from the rules file

Examples:
  fksync validate                     # Validate fksync.yaml
  fksync validate -r custom.yaml      # Validate a custom rules file
  fksync validate --format json       # Output validation results as JSON
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateRules(cmd); err != nil {
			fmt.Printf("❌ Rules validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateRules(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog := schema.NewNorthwindCatalog(cfg.Namespace)
	result := validator.ValidateRules(catalog, cfg.RulesFile, cfg.Namespace)

	switch validateFormat {
	case "json":
		if err := outputJSON(result); err != nil {
			return err
		}
	case "text":
		outputText(result)
	default:
		return fmt.Errorf("unknown format %q (use text or json)", validateFormat)
	}

	if !result.Valid {
		return fmt.Errorf("%d error(s) found", len(result.Errors))
	}
	return nil
}

func outputJSON(result *validator.ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *validator.ValidationResult) {
	if result.Valid {
		color.Green("✅ Rules validation passed!")
	} else {
		color.Red("❌ Rules validation failed!")
	}

	printIssues("🔴 Errors", result.Errors)
	printIssues("🟡 Warnings", result.Warnings)
	printIssues("🔵 Info", result.Info)

	fmt.Printf("\n📊 Summary: %d errors, %d warnings, %d info\n", len(result.Errors), len(result.Warnings), len(result.Info))
}

func printIssues(title string, issues []validator.ValidationError) {
	if len(issues) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", title, len(issues))
	for i, issue := range issues {
		fmt.Printf("  %d. ", i+1)
		if issue.Table != "" {
			fmt.Printf("[%s]", issue.Table)
		}
		if issue.Column != "" {
			fmt.Printf(".%s", issue.Column)
		}
		fmt.Printf(": %s\n", issue.Message)
	}
}

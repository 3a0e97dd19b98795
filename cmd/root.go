package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/database"
	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/loader"
	"github.com/ridoystarlord/fksync/schema"
	"github.com/ridoystarlord/fksync/utils"
)

const defaultRulesFile = "fksync.yaml"

var (
	rulesFile   string
	schemaName  string
	databaseURL string
	namingFlag  string
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "fksync",
	Short: "Keep the foreign keys of a PostgreSQL schema in place",
	Long: `fksync reflects a PostgreSQL schema, compares its foreign keys with the
relationships declared in fksync.yaml and adds the ones that are missing.

Examples:

  fksync init
  fksync diff
  fksync reconcile --dry-run
  fksync reconcile
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.LoadEnv()
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", defaultRulesFile, "Rules file declaring the expected foreign keys")
	rootCmd.PersistentFlags().StringVarP(&schemaName, "schema", "s", "", "Schema to reconcile (default: $FKSYNC_SCHEMA, the rules file, then northwind)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Connection string (default: $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&namingFlag, "naming", "", "Constraint naming policy: column or table_column")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort database work after this long (0 = no limit)")

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(ddlCmd)
	rootCmd.AddCommand(initCmd)
}

// config is what the commands resolve from flags, environment and the
// rules file.
type config struct {
	Namespace string
	Naming    generator.NamingPolicy
	RulesFile *loader.RulesFile
	// FromCatalog is set when no rules file was found and the built-in
	// Northwind relationships are used instead.
	FromCatalog bool
}

func (c *config) Rules() []schema.ForeignKeyRule {
	return c.RulesFile.Rules
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	cfg := &config{}

	rf, err := loader.LoadRulesFromYAML(rulesFile)
	switch {
	case err == nil:
		cfg.RulesFile = rf
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("rules"):
		fmt.Printf("ℹ️  %s not found, using the built-in Northwind relationships\n", rulesFile)
		rf = &loader.RulesFile{Rules: defaultRules(schema.DefaultNamespace)}
		cfg.RulesFile = rf
		cfg.FromCatalog = true
	default:
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	fallback := schema.DefaultNamespace
	if rf.Schema != "" {
		fallback = rf.Schema
	}
	cfg.Namespace = utils.GetSchemaName(schemaName, fallback)

	naming := rf.Naming
	if namingFlag != "" {
		naming = namingFlag
	}
	cfg.Naming, err = generator.ParseNamingPolicy(naming)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultRules are the catalog's relationships without explicit referenced
// columns, so the generated DDL references the primary key implicitly.
func defaultRules(namespace string) []schema.ForeignKeyRule {
	rules := schema.NewNorthwindCatalog(namespace).ForeignKeyRules()
	for i := range rules {
		rules[i].ReferencesColumn = ""
	}
	return rules
}

func commandContext() (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

func connect(ctx context.Context) (*pgx.Conn, error) {
	url, err := utils.GetDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	return database.Connect(ctx, url)
}

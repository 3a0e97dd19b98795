package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fksync/generator"
)

// newConfigCommand binds the rules flag to a fresh command so Changed
// reflects only args.
func newConfigCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	schemaName, namingFlag = "", ""
	c := &cobra.Command{Use: "test"}
	c.Flags().StringVarP(&rulesFile, "rules", "r", defaultRulesFile, "")
	c.Flags().StringVarP(&schemaName, "schema", "s", "", "")
	c.Flags().StringVar(&namingFlag, "naming", "", "")
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}
	return c
}

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const salesRules = `schema: sales
naming: table_column
foreign_keys:
  orders:
    customerid: customers
`

func TestLoadConfigResolution(t *testing.T) {
	path := writeRules(t, salesRules)

	tests := []struct {
		name       string
		args       []string
		env        string
		wantSchema string
		wantNaming generator.NamingPolicy
	}{
		{name: "rules file", args: []string{"-r", path}, wantSchema: "sales", wantNaming: generator.NameByTableColumn},
		{name: "environment beats rules file", args: []string{"-r", path}, env: "staging", wantSchema: "staging", wantNaming: generator.NameByTableColumn},
		{name: "flags beat everything", args: []string{"-r", path, "-s", "adhoc", "--naming", "column"}, env: "staging", wantSchema: "adhoc", wantNaming: generator.NameByColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FKSYNC_SCHEMA", tt.env)
			cfg, err := loadConfig(newConfigCommand(t, tt.args...))
			if err != nil {
				t.Fatalf("loadConfig() error: %v", err)
			}
			if cfg.Namespace != tt.wantSchema {
				t.Errorf("Namespace = %q, want %q", cfg.Namespace, tt.wantSchema)
			}
			if cfg.Naming != tt.wantNaming {
				t.Errorf("Naming = %q, want %q", cfg.Naming, tt.wantNaming)
			}
			if len(cfg.Rules()) != 1 || cfg.FromCatalog {
				t.Errorf("unexpected rules %+v", cfg.Rules())
			}
		})
	}
}

func TestLoadConfigFallsBackToCatalog(t *testing.T) {
	t.Setenv("FKSYNC_SCHEMA", "")
	c := newConfigCommand(t)
	rulesFile = filepath.Join(t.TempDir(), defaultRulesFile)

	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if !cfg.FromCatalog {
		t.Error("Expected the built-in relationships to be used")
	}
	if cfg.Namespace != "northwind" || cfg.Naming != generator.NameByColumn {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Rules()) != 6 {
		t.Fatalf("Expected 6 rules, got %d", len(cfg.Rules()))
	}
	for _, r := range cfg.Rules() {
		if r.ReferencesColumn != "" {
			t.Errorf("rule %s.%s names a referenced column", r.TableName, r.ColumnName)
		}
	}
}

func TestLoadConfigErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := loadConfig(newConfigCommand(t, "-r", missing)); err == nil {
		t.Error("Expected error for an explicitly named missing rules file")
	}

	path := writeRules(t, salesRules)
	if _, err := loadConfig(newConfigCommand(t, "-r", path, "--naming", "short")); err == nil {
		t.Error("Expected error for an unknown naming policy")
	}

	broken := writeRules(t, "foreign_keys: [not, a, map]\n")
	if _, err := loadConfig(newConfigCommand(t, "-r", broken)); err == nil {
		t.Error("Expected error for a malformed rules file")
	}
}

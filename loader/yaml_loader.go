package loader

import (
	"fmt"
	"os"
	"sort"

	"github.com/ridoystarlord/fksync/schema"
	"gopkg.in/yaml.v3"
)

// RulesFile is the decoded rules configuration.
type RulesFile struct {
	Schema string
	Naming string
	Rules  []schema.ForeignKeyRule
}

type yamlFile struct {
	Schema      string                           `yaml:"schema,omitempty"`
	Naming      string                           `yaml:"naming,omitempty"`
	ForeignKeys map[string]map[string]yamlTarget `yaml:"foreign_keys"`
}

// yamlTarget accepts either a bare table name or {table, column}.
type yamlTarget struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column,omitempty"`
}

func (t *yamlTarget) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		t.Table = value.Value
		return nil
	case yaml.MappingNode:
		type plain yamlTarget
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*t = yamlTarget(p)
		return nil
	default:
		return fmt.Errorf("line %d: expected a table name or a mapping with 'table'", value.Line)
	}
}

func (t yamlTarget) MarshalYAML() (interface{}, error) {
	if t.Column == "" {
		return t.Table, nil
	}
	type plain yamlTarget
	return plain(t), nil
}

// LoadRulesFromYAML reads the expected foreign-key relationships from
// filename. Rules are returned sorted by table and column.
func LoadRulesFromYAML(filename string) (*RulesFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*RulesFile, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	rf := &RulesFile{
		Schema: yf.Schema,
		Naming: yf.Naming,
	}
	for table, columns := range yf.ForeignKeys {
		for column, target := range columns {
			if target.Table == "" {
				return nil, fmt.Errorf("foreign key %s.%s: referenced table is empty", table, column)
			}
			rf.Rules = append(rf.Rules, schema.NewForeignKeyRule(table, column, target.Table, target.Column))
		}
	}
	schema.SortRules(rf.Rules)

	return rf, nil
}

// WriteRulesFile saves rf to filename in the format LoadRulesFromYAML reads.
func WriteRulesFile(filename string, rf *RulesFile) error {
	yf := yamlFile{
		Schema:      rf.Schema,
		Naming:      rf.Naming,
		ForeignKeys: map[string]map[string]yamlTarget{},
	}
	for _, r := range rf.Rules {
		if yf.ForeignKeys[r.TableName] == nil {
			yf.ForeignKeys[r.TableName] = map[string]yamlTarget{}
		}
		yf.ForeignKeys[r.TableName][r.ColumnName] = yamlTarget{Table: r.ReferencesTable, Column: r.ReferencesColumn}
	}

	data, err := yaml.Marshal(&yf)
	if err != nil {
		return fmt.Errorf("marshalling YAML: %w", err)
	}

	content := "# Foreign keys fksync keeps in place: table -> column -> referenced table\n" + string(data)
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing rules file: %w", err)
	}
	return nil
}

// Tables returns the distinct table names that have rules, sorted.
func (rf *RulesFile) Tables() []string {
	seen := map[string]bool{}
	var tables []string
	for _, r := range rf.Rules {
		if !seen[r.TableName] {
			seen[r.TableName] = true
			tables = append(tables, r.TableName)
		}
	}
	sort.Strings(tables)
	return tables
}

package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/schema"
)

// Suite is a named set of query cases sharing one request context and one
// database.
type Suite struct {
	// Name uniquely identifies this suite. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this suite validates.
	Description string `yaml:"description"`

	// Dialect is the SQL dialect to render for. Default: sqlite.
	Dialect string `yaml:"dialect,omitempty"`

	// Today pins the request date, YYYY-MM-DD. Default: 2024-01-10.
	Today string `yaml:"today,omitempty"`

	// User and Tenant populate the request context.
	User   string `yaml:"user,omitempty"`
	Tenant string `yaml:"tenant,omitempty"`

	// Schema declares column kinds. Without it columns are inferred from
	// the query.
	Schema *SchemaSpec `yaml:"schema,omitempty"`

	// Setup is SQL run once against a fresh in-memory SQLite database
	// before the cases.
	Setup string `yaml:"setup,omitempty"`

	// Key is the column listed by rows expectations. Default: id.
	Key string `yaml:"key,omitempty"`

	// Cases run in order.
	Cases []Case `yaml:"cases"`
}

// SchemaSpec is an inline schema.
type SchemaSpec struct {
	Table   string             `yaml:"table"`
	Columns map[string]ir.Kind `yaml:"columns"`
}

// Case is a single query and what it must compile to.
type Case struct {
	// Name identifies the case within the suite.
	Name string `yaml:"name"`

	// Query is the raw JSON query, before placeholder substitution.
	Query string `yaml:"query"`

	// Expect is checked against the compiled output. A case with no
	// expectations is still compiled and snapshotted.
	Expect Expect `yaml:"expect,omitempty"`
}

// Expect lists the properties a case's output must have.
type Expect struct {
	SQL   string `yaml:"sql,omitempty"`
	Args  []any  `yaml:"args,omitempty"`
	Error string `yaml:"error,omitempty"`
	Rows  []int  `yaml:"rows,omitempty"`
}

// Known error kinds accepted by expect.error.
var errorKinds = map[qerr.Kind]bool{
	qerr.MalformedInput:        true,
	qerr.InvalidQuery:          true,
	qerr.OperatorNotFound:      true,
	qerr.PlaceholderResolution: true,
	qerr.QueryDeserialization:  true,
}

// LoadSuite reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return ParseSuite(data)
}

// ParseSuite parses suite YAML.
func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.Dialect != "" {
		if _, err := predicate.DialectByName(s.Dialect); err != nil {
			return err
		}
	}
	if s.Today != "" {
		if _, err := ir.ParseDate(s.Today); err != nil {
			return fmt.Errorf("today: %w", err)
		}
	}
	if s.Key != "" && !schema.ValidIdentifier(s.Key) {
		return fmt.Errorf("key %q is not a valid identifier", s.Key)
	}
	if s.Schema != nil {
		if !schema.ValidIdentifier(s.Schema.Table) {
			return fmt.Errorf("schema: table %q is not a valid identifier", s.Schema.Table)
		}
		if len(s.Schema.Columns) == 0 {
			return fmt.Errorf("schema: columns are required")
		}
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true

		if c.Query == "" {
			return fmt.Errorf("cases[%d] (%s): query is required", i, c.Name)
		}
		if !json.Valid([]byte(c.Query)) && c.Expect.Error != string(qerr.MalformedInput) {
			return fmt.Errorf("cases[%d] (%s): query is not valid JSON", i, c.Name)
		}
		if c.Expect.Error != "" {
			if !errorKinds[qerr.Kind(c.Expect.Error)] {
				return fmt.Errorf("cases[%d] (%s): unknown error kind %q", i, c.Name, c.Expect.Error)
			}
			if c.Expect.SQL != "" || c.Expect.Args != nil || c.Expect.Rows != nil {
				return fmt.Errorf("cases[%d] (%s): error cases cannot expect output", i, c.Name)
			}
		}
		if c.Expect.Rows != nil && (s.Setup == "" || s.Schema == nil) {
			return fmt.Errorf("cases[%d] (%s): rows require a setup script and a schema table", i, c.Name)
		}
	}
	return nil
}

func (s *Suite) dialect() predicate.Dialect {
	if s.Dialect == "" {
		return predicate.SQLite{}
	}
	d, _ := predicate.DialectByName(s.Dialect)
	return d
}

func (s *Suite) today() ir.Date {
	if s.Today == "" {
		return ir.MustDate("2024-01-10")
	}
	return ir.MustDate(s.Today)
}

func (s *Suite) key() string {
	if s.Key == "" {
		return "id"
	}
	return s.Key
}

func (s *Suite) table() string {
	if s.Schema != nil {
		return s.Schema.Table
	}
	return ""
}

package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qengine/internal/ir"
)

// cueDefinition constrains CUE schema files.
const cueDefinition = `
#Kind: "STRING" | "NUMERIC" | "BOOLEAN" | "DATE"

#Schema: {
	table?: string
	columns: [=~"^[A-Za-z_][A-Za-z0-9_]*(\\.[A-Za-z_][A-Za-z0-9_]*)?$"]: #Kind
}
`

// document is the on-disk layout shared by YAML and CUE files:
//
//	table: employees
//	columns:
//	  salary: NUMERIC
//	  last_name: STRING
type document struct {
	Table   string            `yaml:"table" json:"table"`
	Columns map[string]string `yaml:"columns" json:"columns"`
}

// FileError reports a schema file that cannot be loaded.
type FileError struct {
	Path    string
	Line    int // 0 when unknown
	Message string
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadFile reads a schema from a .yaml, .yml or .cue file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var doc document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		doc, err = parseYAML(path, data)
	case ".cue":
		doc, err = parseCUE(path, data)
	default:
		return nil, &FileError{Path: path, Message: fmt.Sprintf("unsupported schema format %q (want .yaml, .yml or .cue)", ext)}
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(path, doc)
}

func parseYAML(path string, data []byte) (document, error) {
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return document{}, &FileError{Path: path, Message: err.Error()}
	}
	return doc, nil
}

func parseCUE(path string, data []byte) (document, error) {
	ctx := cuecontext.New()
	def := ctx.CompileString(cueDefinition, cue.Filename("schema.cue"))
	if err := def.Err(); err != nil {
		return document{}, fmt.Errorf("schema definition: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	v = def.LookupPath(cue.ParsePath("#Schema")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return document{}, cueFileError(path, err)
	}

	var doc document
	if err := v.Decode(&doc); err != nil {
		return document{}, cueFileError(path, err)
	}
	return doc, nil
}

// cueFileError keeps the first CUE error and its line.
func cueFileError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &FileError{Path: path, Message: err.Error()}
	}
	first := errs[0]
	fe := &FileError{Path: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		fe.Line = positions[0].Line()
	}
	return fe
}

func fromDocument(path string, doc document) (*Static, error) {
	if len(doc.Columns) == 0 {
		return nil, &FileError{Path: path, Message: "schema declares no columns"}
	}
	columns := make(map[string]ir.Kind, len(doc.Columns))
	for name, kindName := range doc.Columns {
		kind, err := ir.ParseKind(kindName)
		if err != nil {
			return nil, &FileError{Path: path, Message: fmt.Sprintf("column %s: %v", name, err)}
		}
		columns[name] = kind
	}
	s, err := NewStatic(doc.Table, columns)
	if err != nil {
		return nil, &FileError{Path: path, Message: err.Error()}
	}
	return s, nil
}

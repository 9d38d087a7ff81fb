package index

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/analysis"
)

// SchemaFileName is the schema file expected at the root of an index directory.
const SchemaFileName = "schema.toml"

// FieldDef declares one field and the analyzer its terms went through.
type FieldDef struct {
	Name     string `toml:"name"`
	Analyzer string `toml:"analyzer,omitempty"`
}

type schemaFile struct {
	Fields []FieldDef `toml:"field"`
}

// FieldSchema is a Schema built from field definitions.
type FieldSchema struct {
	names     []string
	analyzers map[string]analysis.Analyzer
}

// NewSchema resolves each definition's analyzer. An empty analyzer name keeps raw words.
func NewSchema(defs ...FieldDef) (*FieldSchema, error) {
	s := &FieldSchema{analyzers: make(map[string]analysis.Analyzer, len(defs))}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("%w: field without a name", ErrBadSchema)
		}
		if _, dup := s.analyzers[def.Name]; dup {
			return nil, fmt.Errorf("%w: field %q declared twice", ErrBadSchema, def.Name)
		}
		var a analysis.Analyzer
		if def.Analyzer != "" {
			var err error
			if a, err = analysis.Get(def.Analyzer); err != nil {
				return nil, fmt.Errorf("%w: field %q: %w", ErrBadSchema, def.Name, err)
			}
		}
		s.names = append(s.names, def.Name)
		s.analyzers[def.Name] = a
	}
	return s, nil
}

func (s *FieldSchema) FieldNames() []string {
	return s.names
}

func (s *FieldSchema) Analyzer(field string) analysis.Analyzer {
	return s.analyzers[field]
}

// LoadSchema reads dir/schema.toml. Unknown keys are rejected.
func LoadSchema(dir string) (*FieldSchema, error) {
	path := filepath.Join(dir, SchemaFileName)
	var file schemaFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadSchema, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown keys %v", ErrBadSchema, path, undecoded)
	}
	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("%w: %s declares no fields", ErrBadSchema, path)
	}
	return NewSchema(file.Fields...)
}

// WriteSchema saves field definitions as dir/schema.toml.
func WriteSchema(dir string, defs ...FieldDef) error {
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	return utils.SaveTOMLFile(schemaFile{Fields: defs}, filepath.Join(dir, SchemaFileName))
}

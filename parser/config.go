package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/rubiojr/rbfront/source"
)

// Configuration holds the parse-time options. It is a value: the With*
// methods return modified copies and never touch the receiver.
type Configuration struct {
	lineNumber int
	encoding   source.Encoding
	eval       bool
	blockScope *Scope
	saveData   bool
}

// NewConfiguration returns the configuration for a top-level file parse
// starting at line 0 in UTF-8.
func NewConfiguration() Configuration {
	return Configuration{encoding: source.UTF8}
}

// LineNumber is the zero-based line the parse starts counting from.
func (c Configuration) LineNumber() int { return c.lineNumber }

// DefaultEncoding governs how raw bytes are interpreted.
func (c Configuration) DefaultEncoding() source.Encoding {
	if c.encoding == "" {
		return source.UTF8
	}
	return c.encoding
}

// IsEvalParse reports whether this is a dynamic eval-style parse.
func (c Configuration) IsEvalParse() bool { return c.eval }

// BlockScope is the enclosing scope for eval-as-block parses, or nil.
func (c Configuration) BlockScope() *Scope { return c.blockScope }

// IsSaveData reports whether trailing data after __END__ is preserved.
func (c Configuration) IsSaveData() bool { return c.saveData }

func (c Configuration) WithLineNumber(line int) Configuration {
	c.lineNumber = line
	return c
}

func (c Configuration) WithEncoding(enc source.Encoding) Configuration {
	c.encoding = enc
	return c
}

// AsEval marks the parse as an eval parse.
func (c Configuration) AsEval(eval bool) Configuration {
	c.eval = eval
	return c
}

// ParseAsBlock resolves identifiers against scope instead of a fresh
// top-level scope.
func (c Configuration) ParseAsBlock(scope *Scope) Configuration {
	c.blockScope = scope
	return c
}

func (c Configuration) WithSaveData(save bool) Configuration {
	c.saveData = save
	return c
}

// configFile is the on-disk shape of a configuration.
type configFile struct {
	LineNumber int    `toml:"line_number" yaml:"line_number"`
	Encoding   string `toml:"encoding" yaml:"encoding"`
	Eval       bool   `toml:"eval" yaml:"eval"`
	SaveData   bool   `toml:"save_data" yaml:"save_data"`
}

// LoadConfiguration reads a configuration from a TOML (.toml) or YAML
// (.yaml, .yml) file. Block scopes cannot be expressed in a file.
func LoadConfiguration(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var cf configFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cf)
	case ".toml":
		err = toml.Unmarshal(data, &cf)
	default:
		return Configuration{}, fmt.Errorf("%s: unsupported configuration format", path)
	}
	if err != nil {
		return Configuration{}, fmt.Errorf("%s: %w", path, err)
	}
	enc, err := source.LookupEncoding(cf.Encoding)
	if err != nil {
		return Configuration{}, fmt.Errorf("%s: %w", path, err)
	}
	return NewConfiguration().
		WithLineNumber(cf.LineNumber).
		WithEncoding(enc).
		AsEval(cf.Eval).
		WithSaveData(cf.SaveData), nil
}

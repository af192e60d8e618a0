// Package config loads the settings of the lalrgen command from a TOML file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nihei9/lalrgen/grammar"
	"github.com/pingcap/errors"
)

// DefaultFileName is the name of the file looked up in the working directory when no file is
// given.
const DefaultFileName = "lalrgen.toml"

// Config holds the defaults of the command-line flags. A flag given on the command line
// overrides the value in the file.
type Config struct {
	BasisOnly     bool     `toml:"basis_only" json:"basis_only"`
	NoCompress    bool     `toml:"no_compress" json:"no_compress"`
	NoResort      bool     `toml:"no_resort" json:"no_resort"`
	ShowConflicts bool     `toml:"show_conflicts" json:"show_conflicts"`
	Statistics    bool     `toml:"statistics" json:"statistics"`
	Defines       []string `toml:"defines" json:"defines"`
	TraceLevel    string   `toml:"trace_level" json:"trace_level"`
}

var defaultConf = Config{
	TraceLevel: "Error",
}

// NewConfig creates a new config instance with default value.
func NewConfig() *Config {
	conf := defaultConf
	return &conf
}

func (c *Config) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return "<nil>"
	}
	return string(b)
}

// Load loads config options from a toml file. Keys the config does not know are an error.
func (c *Config) Load(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Annotatef(err, "cannot load the config file %s", path)
	}
	if len(meta.Undecoded()) > 0 {
		return errors.Errorf("unknown keys in config file %s: %v", path, meta.Undecoded())
	}
	return nil
}

// LoadDefault loads DefaultFileName in a directory. It returns the defaults when the file does
// not exist.
func LoadDefault(dir string) (*Config, error) {
	c := NewConfig()
	path := filepath.Join(dir, DefaultFileName)
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := c.Load(path); err != nil {
		return nil, err
	}
	return c, nil
}

// CompileOptions returns the options of grammar.Compile that the config turns on. Reporting is
// always enabled.
func (c *Config) CompileOptions() []grammar.CompileOption {
	opts := []grammar.CompileOption{
		grammar.EnableReporting(),
	}
	if c.BasisOnly {
		opts = append(opts, grammar.BasisOnly())
	}
	if c.NoCompress {
		opts = append(opts, grammar.DisableCompression())
	}
	if c.NoResort {
		opts = append(opts, grammar.DisableResort())
	}
	if c.ShowConflicts {
		opts = append(opts, grammar.ShowResolvedConflicts())
	}
	return opts
}

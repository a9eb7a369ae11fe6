package format

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mstoykov/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ConfigFileName is the name FindConfig looks for.
const ConfigFileName = ".luafmt.toml"

// Placement controls whether short constructs may stay on one line.
type Placement string

const (
	// PlacementOwnLine puts every body and table field on its own line.
	PlacementOwnLine Placement = "own-line"
	// PlacementSameLine leaves single-line constructs with at most one body
	// item as written.
	PlacementSameLine Placement = "same-line"
)

// BodyIndent controls the indentation of bodies relative to their header.
type BodyIndent string

const (
	BodyIndentNested BodyIndent = "nested"
	BodyIndentFlush  BodyIndent = "flush"
)

// CloserAlign controls where "end", "}" and friends are indented.
type CloserAlign string

const (
	CloserAlignHeader CloserAlign = "header"
	CloserAlignBody   CloserAlign = "body"
)

// Config holds the formatter options. The zero value is not valid; start
// from DefaultConfig.
type Config struct {
	// IndentUnit is the text written once per nesting level.
	IndentUnit string `toml:"indent_unit"`

	Placement   Placement   `toml:"placement"`
	BodyIndent  BodyIndent  `toml:"body_indent"`
	CloserAlign CloserAlign `toml:"closer_align"`

	// TrailingSeparator adds a "," after the last field of tables the
	// formatter lays out one field per line.
	TrailingSeparator bool `toml:"trailing_separator"`
}

// DefaultConfig returns four-space indentation with every construct
// expanded onto its own lines.
func DefaultConfig() Config {
	return Config{
		IndentUnit:        "    ",
		Placement:         PlacementOwnLine,
		BodyIndent:        BodyIndentNested,
		CloserAlign:       CloserAlignHeader,
		TrailingSeparator: true,
	}
}

// ConfigError reports an invalid option.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every option.
func (c Config) Validate() error {
	if c.IndentUnit == "" || strings.Trim(c.IndentUnit, " \t") != "" {
		return &ConfigError{Field: "indent_unit", Value: c.IndentUnit, Reason: "must be non-empty and contain only spaces and tabs"}
	}
	switch c.Placement {
	case PlacementOwnLine, PlacementSameLine:
	default:
		return &ConfigError{Field: "placement", Value: string(c.Placement), Reason: "must be own-line or same-line"}
	}
	switch c.BodyIndent {
	case BodyIndentNested, BodyIndentFlush:
	default:
		return &ConfigError{Field: "body_indent", Value: string(c.BodyIndent), Reason: "must be nested or flush"}
	}
	switch c.CloserAlign {
	case CloserAlignHeader, CloserAlignBody:
	default:
		return &ConfigError{Field: "closer_align", Value: string(c.CloserAlign), Reason: "must be header or body"}
	}
	return nil
}

// ParseIndent turns a user-facing indent setting into an indent unit:
// "tab", a number of spaces, or the literal whitespace itself.
func ParseIndent(s string) (string, error) {
	if s == "tab" || s == `\t` {
		return "\t", nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 16 {
			return "", &ConfigError{Field: "indent", Value: s, Reason: "must be between 1 and 16 spaces"}
		}
		return strings.Repeat(" ", n), nil
	}
	if s != "" && strings.Trim(s, " \t") == "" {
		return s, nil
	}
	return "", &ConfigError{Field: "indent", Value: s, Reason: `must be "tab", a number of spaces, or whitespace`}
}

// LoadConfig reads a config file over the defaults. Keys the file sets
// replace the defaults; unknown keys are an error.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading %s", path)
	}
	md, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up to
// parent directories, stopping at a .git boundary. It returns the path and
// the loaded config, or ("", nil, nil) if there is none.
func FindConfig(fs afero.Fs, dir string) (string, *Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if ok, _ := afero.Exists(fs, path); ok {
			cfg, err := LoadConfig(fs, path)
			if err != nil {
				return "", nil, err
			}
			return path, &cfg, nil
		}

		// Stop at .git boundary
		if ok, _ := afero.Exists(fs, filepath.Join(dir, ".git")); ok {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// envConfig lists the environment overrides. Empty values leave the
// config alone.
type envConfig struct {
	Indent            string `envconfig:"LUAFMT_INDENT"`
	Placement         string `envconfig:"LUAFMT_PLACEMENT"`
	BodyIndent        string `envconfig:"LUAFMT_BODY_INDENT"`
	CloserAlign       string `envconfig:"LUAFMT_CLOSER_ALIGN"`
	TrailingSeparator string `envconfig:"LUAFMT_TRAILING_SEPARATOR"`
}

// ApplyEnv overrides cfg with LUAFMT_* variables from lookup, which has
// the signature of os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var env envConfig
	if err := envconfig.Process("", &env, lookup); err != nil {
		return errors.Wrap(err, "reading environment")
	}
	if env.Indent != "" {
		unit, err := ParseIndent(env.Indent)
		if err != nil {
			return errors.Wrap(err, "LUAFMT_INDENT")
		}
		cfg.IndentUnit = unit
	}
	if env.Placement != "" {
		cfg.Placement = Placement(env.Placement)
	}
	if env.BodyIndent != "" {
		cfg.BodyIndent = BodyIndent(env.BodyIndent)
	}
	if env.CloserAlign != "" {
		cfg.CloserAlign = CloserAlign(env.CloserAlign)
	}
	if env.TrailingSeparator != "" {
		v, err := strconv.ParseBool(env.TrailingSeparator)
		if err != nil {
			return errors.Wrap(err, "LUAFMT_TRAILING_SEPARATOR")
		}
		cfg.TrailingSeparator = v
	}
	return cfg.Validate()
}

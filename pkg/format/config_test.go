package format

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/.luafmt.toml", []byte(`
indent_unit = "  "
placement = "same-line"
trailing_separator = false
`), 0o644))

	cfg, err := LoadConfig(fs, "/proj/.luafmt.toml")
	require.NoError(t, err)
	require.Equal(t, Config{
		IndentUnit:        "  ",
		Placement:         PlacementSameLine,
		BodyIndent:        BodyIndentNested,
		CloserAlign:       CloserAlignHeader,
		TrailingSeparator: false,
	}, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown key",
			content: `indent = 2`,
			errMsg:  "unknown keys: indent",
		},
		{
			name:    "bad placement",
			content: `placement = "inline"`,
			errMsg:  `invalid placement "inline"`,
		},
		{
			name:    "non-whitespace indent",
			content: `indent_unit = "xx"`,
			errMsg:  `invalid indent_unit "xx"`,
		},
		{
			name:    "malformed toml",
			content: `placement = `,
			errMsg:  "parsing /c.toml",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/c.toml", []byte(tt.content), 0o644))
			_, err := LoadConfig(fs, "/c.toml")
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestFindConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o755))
	require.NoError(t, fs.MkdirAll("/repo/src/deep", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/.luafmt.toml", []byte(`body_indent = "flush"`), 0o644))

	path, cfg, err := FindConfig(fs, "/repo/src/deep")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/repo", ConfigFileName), path)
	require.NotNil(t, cfg)
	require.Equal(t, BodyIndentFlush, cfg.BodyIndent)
	require.Equal(t, "    ", cfg.IndentUnit)
}

func TestFindConfigStopsAtRepoRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/"+ConfigFileName, []byte(`placement = "same-line"`), 0o644))
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o755))
	require.NoError(t, fs.MkdirAll("/repo/src", 0o755))

	path, cfg, err := FindConfig(fs, "/repo/src")
	require.NoError(t, err)
	require.Empty(t, path)
	require.Nil(t, cfg)
}

func TestParseIndent(t *testing.T) {
	for in, want := range map[string]string{
		"tab": "\t",
		`\t`:  "\t",
		"2":   "  ",
		"8":   "        ",
		"   ": "   ",
	} {
		got, err := ParseIndent(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0", "17", "x", "-1"} {
		_, err := ParseIndent(in)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr, in)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LUAFMT_INDENT":             "tab",
		"LUAFMT_CLOSER_ALIGN":       "body",
		"LUAFMT_TRAILING_SEPARATOR": "false",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg, lookup))
	require.Equal(t, "\t", cfg.IndentUnit)
	require.Equal(t, CloserAlignBody, cfg.CloserAlign)
	require.False(t, cfg.TrailingSeparator)
	require.Equal(t, PlacementOwnLine, cfg.Placement)
}

func TestApplyEnvInvalid(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "LUAFMT_BODY_INDENT" {
			return "sideways", true
		}
		return "", false
	}
	cfg := DefaultConfig()
	err := ApplyEnv(&cfg, lookup)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "body_indent", cfgErr.Field)
}

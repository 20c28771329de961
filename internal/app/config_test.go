package app

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func loader(t *testing.T, files map[string]string, environ ...string) ConfigLoader {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
	}
	return ConfigLoader{FS: fs, Environ: func() []string { return environ }}
}

func TestConfigLoader_Defaults(t *testing.T) {
	cfg, err := loader(t, nil).Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigLoader_Precedence(t *testing.T) {
	l := loader(t, map[string]string{
		"/etc/fpv.yaml": "headroom: 1.5\noutput:\n  format: json\n  merge: true\nlog:\n  level: debug\n",
	},
		"FPVCOMPAT_HEADROOM=1.4",
		"FPVCOMPAT_OUTPUT_PASS_ONLY=true",
		"FPVCOMPAT_METRICS_FILE=/tmp/fpv.prom",
		"OTHER_HEADROOM=9",
	)

	cfg, err := l.Load("/etc/fpv.yaml", map[string]any{"headroom": 1.3})
	require.NoError(t, err)

	assert.Equal(t, 1.3, cfg.Headroom, "flags beat env and file")
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Merge)
	assert.True(t, cfg.Output.PassOnly)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "keys absent from the file keep defaults")
	assert.Equal(t, "/tmp/fpv.prom", cfg.Metrics.File)

	cfg, err = l.Load("/etc/fpv.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.4, cfg.Headroom, "env beats file")
}

func TestConfigLoader_NestedOverrides(t *testing.T) {
	cfg, err := loader(t, nil).Load("", map[string]any{
		"output.pass_only": "true",
		"output.merge":     "true",
		"output.format":    "json",
		"metrics.file":     "/tmp/m.prom",
		"log.level":        "debug",
		"log.format":       "json",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Output.PassOnly)
	assert.True(t, cfg.Output.Merge)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "/tmp/m.prom", cfg.Metrics.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 1.2, cfg.Headroom, "untouched keys keep defaults")
}

func TestConfigLoader_Validation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		want      string
	}{
		{"zero headroom", map[string]any{"headroom": 0}, "Headroom"},
		{"negative headroom", map[string]any{"headroom": -1.2}, "Headroom"},
		{"format", map[string]any{"output.format": "xlsx"}, "Format"},
		{"log level", map[string]any{"log.level": "loud"}, "Level"},
		{"log format", map[string]any{"log.format": "xml"}, "Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader(t, nil).Load("", tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigLoader_FileErrors(t *testing.T) {
	l := loader(t, map[string]string{"/bad.yaml": "headroom: [1"})

	_, err := l.Load("/missing.yaml", nil)
	assert.ErrorContains(t, err, "read config")

	_, err = l.Load("/bad.yaml", nil)
	assert.ErrorContains(t, err, "parse config")
}

func TestConfigLoader_WeakTypes(t *testing.T) {
	cfg, err := loader(t, nil, "FPVCOMPAT_OUTPUT_MERGE=1").Load("", map[string]any{"headroom": "1.25"})
	require.NoError(t, err)
	assert.Equal(t, 1.25, cfg.Headroom)
	assert.True(t, cfg.Output.Merge)
}

func TestTransformEnvKey(t *testing.T) {
	tests := map[string]string{
		"FPVCOMPAT_HEADROOM":         "headroom",
		"FPVCOMPAT_OUTPUT_PASS_ONLY": "output.pass_only",
		"FPVCOMPAT_LOG_OUTPUT_PATH":  "log.output_path",
	}
	for in, want := range tests {
		got, v := transformEnvKey(in, "x")
		assert.Equal(t, want, got, in)
		assert.Equal(t, "x", v)
	}
}

func TestConfig_ToYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Format = "bolt"
	data, err := cfg.ToYAML()
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, 1.2, back["headroom"])
	assert.Equal(t, "bolt", back["output"].(map[string]any)["format"])
}

package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/corey/fpvcompat/internal/adapters/logging"
	"github.com/corey/fpvcompat/internal/domain/compat"
)

// EnvPrefix prefixes every environment variable the config reads, e.g.
// FPVCOMPAT_OUTPUT_PASS_ONLY=true sets output.pass_only.
const EnvPrefix = "FPVCOMPAT_"

// Config is the resolved run configuration.
type Config struct {
	Headroom float64        `koanf:"headroom" validate:"gt=0"`
	Output   OutputConfig   `koanf:"output"`
	Log      logging.Config `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	Format   string `koanf:"format" validate:"omitempty,oneof=csv json bolt"` // empty infers from the path
	Merge    bool   `koanf:"merge"`
	PassOnly bool   `koanf:"pass_only"`
}

// MetricsConfig controls the Prometheus textfile dump.
type MetricsConfig struct {
	File string `koanf:"file"` // empty disables the dump
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Headroom: compat.DefaultHeadroom,
		Log: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigLoader layers defaults, an optional YAML file, the environment and
// explicit overrides, in increasing precedence.
type ConfigLoader struct {
	FS      afero.Fs
	Environ func() []string // nil reads the process environment
}

// Load resolves the configuration. file may be empty; overrides holds
// dotted keys set explicitly on the command line.
func (l ConfigLoader) Load(file string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if file != "" {
		if err := l.loadFile(k, file); err != nil {
			return nil, err
		}
	}

	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
		EnvironFunc:   environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply flag %s: %w", key, err)
		}
	}

	return unmarshalAndValidate(k)
}

// loadFile merges only the keys present in the YAML file, preserving
// defaults for the rest.
func (l ConfigLoader) loadFile(k *koanf.Koanf, file string) error {
	fs := l.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse config %s: %w", file, err)
	}
	for key, value := range flattenMap("", m) {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from %s: %w", key, file, err)
		}
	}
	return nil
}

// transformEnvKey maps FPVCOMPAT_OUTPUT_PASS_ONLY to output.pass_only: the
// first segment is the section, the rest is the field name.
func transformEnvKey(key, value string) (string, any) {
	s := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], value
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}

// flattenMap flattens a nested map into dot-notation keys.
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}

func unmarshalAndValidate(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("invalid configuration: %s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

// ToYAML renders the configuration the way a config file would hold it.
func (c *Config) ToYAML() ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return nil, err
	}
	return yaml.Marshal(k.Raw())
}

package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/corey/fpvcompat/internal/adapters/logging"
	"github.com/corey/fpvcompat/internal/app"
	"github.com/corey/fpvcompat/internal/version"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	colorMode  string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "fpvcompat",
	Short: "FPV drone parts compatibility engine",
	Long: "Normalizes typed part catalogs (CSV, JSON, YAML) and evaluates pairwise " +
		"compatibility rules between frames, props, motors, ESCs, FCs, batteries, " +
		"VTXs, cameras, antennas, receivers, pigtails and capacitors.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"headroom":     "headroom",
	"format":       "output.format",
	"merge":        "output.merge",
	"pass-only":    "output.pass_only",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-file": "metrics.file",
}

// loadConfig resolves the configuration for cmd: defaults, the --config
// file, FPVCOMPAT_* variables, then the flags set on this invocation.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	overrides := make(map[string]any)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	cfg, err := app.ConfigLoader{FS: afero.NewOsFs()}.Load(configPath, overrides)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}

// newApp loads the configuration and wires an App with its logger.
// The caller syncs the logger.
func newApp(cmd *cobra.Command) (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, usageError("%v", err)
	}
	return app.New(cfg, app.Options{Logger: log}), log, nil
}

func useColor() bool {
	return resolveColor(colorMode, noColor)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console or json")
	pf.StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&noColor, "no-color", false, "Disable color output")

	rootCmd.Flags().BoolP("version", "V", false, "Print version")
	rootCmd.Version = version.String()
	rootCmd.SetVersionTemplate("fpvcompat {{.Version}}\n")

	rootCmd.AddCommand(compatCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/config"
)

// app carries the resolved settings shared by every subcommand.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "formfill",
		Short: "Fill HTML forms from free-form text with an LLM",
		Long: "formfill extracts field values from natural-language text with a local or remote\n" +
			"LLM provider and writes them into HTML forms, OpenAPI payloads or live pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.Version = version

	f := root.PersistentFlags()
	registerGlobalFlags(f)

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(f)

	root.AddCommand(
		newFillCmd(a),
		newFieldCmd(a),
		newExtractCmd(a),
		newProvidersCmd(a),
		newModelsCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// registerGlobalFlags defines the flags every subcommand inherits. Each one
// can also be set as FORMFILL_<FLAG>, dashes replaced by underscores.
func registerGlobalFlags(f *pflag.FlagSet) {
	f.String("config", "", "Config file (YAML or JSON)")
	f.String("provider", "", "Provider name (openai, ollama, lmstudio)")
	f.String("model", "", "Model to request, overriding the provider default")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.Bool("debug-providers", false, "Log provider HTTP traffic")
	f.Bool("debug-fill", false, "Log fill pipeline decisions")
	f.SortFlags = false
}

// setup initialises logging and resolves configuration: defaults, then the
// config file, then FORMFILL_* variables, then flags.
func (a *app) setup(cmd *cobra.Command) error {
	debugProviders := a.v.GetBool("debug-providers")
	debugFill := a.v.GetBool("debug-fill")

	level := logging.ParseLevel(a.v.GetString("log-level"))
	if debugProviders || debugFill {
		level = slog.LevelDebug
	}
	logging.Init(level, a.v.GetString("log-format"), cmd.ErrOrStderr())
	a.log = logging.New("cli")

	cfg := config.Default()
	if path := strings.TrimSpace(a.v.GetString("config")); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg = config.FromEnv(cfg)
	if name := strings.TrimSpace(a.v.GetString("provider")); name != "" {
		cfg.ActiveProvider = strings.ToLower(name)
	}
	cfg.Debug.Providers = cfg.Debug.Providers || debugProviders
	cfg.Debug.Fill = cfg.Debug.Fill || debugFill

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.log.Debug("cli.config", "provider", cfg.ActiveProvider, "debug_providers", cfg.Debug.Providers, "debug_fill", cfg.Debug.Fill)
	return nil
}

// Package cmdutil holds the setup shared by genai commands: config loading,
// logger construction and provider selection.
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/llm/provider"
	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/sse"
)

// Persistent flags registered on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
	FlagLogFile   = "log-file"
)

// ConfigDir returns the --config-dir override, or "" when unset.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString(FlagConfigDir)
	return dir
}

// LoadConfig resolves the configuration for cmd. The registry flags named by
// flagKeys take precedence over the environment and config.toml.
func LoadConfig(cmd *cobra.Command, flagKeys ...string) (*config.Config, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
	return config.FromViper(v), nil
}

// NewLogger builds the command logger: pretty (or JSON) records on stderr,
// plus JSON records appended to the log file when one is configured. The
// returned func closes the log file.
func NewLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func() error, error) {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	debug = debug || cfg.Log.Debug

	stderr := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(!cfg.Log.JSON),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithWriter(cmd.ErrOrStderr()),
	)

	path, _ := cmd.Flags().GetString(FlagLogFile)
	if path == "" {
		path = cfg.Log.File
	}
	if path == "" {
		return stderr, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(true),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)
	return logger.Multi(stderr, file), f.Close, nil
}

// ProviderName picks the provider for cfg. An explicit provider always
// wins; otherwise the provider is detected from the model, falling back to
// the configured default for models no provider recognizes.
func ProviderName(cfg *config.Config, explicit bool) (string, error) {
	if explicit || cfg.Chat.Model == "" {
		if cfg.Chat.Provider == "" {
			return provider.OpenAI, nil
		}
		return cfg.Chat.Provider, nil
	}

	name, err := provider.NewDetector().Detect(cfg.Chat.Model)
	if err == nil {
		return name, nil
	}
	if cfg.Chat.Provider != "" {
		return cfg.Chat.Provider, nil
	}
	return "", err
}

// ProviderOptions returns the client options configured for name.
func ProviderOptions(cfg *config.Config, name string, log *slog.Logger, streamOpts ...sse.Option) (provider.Options, error) {
	var pc config.ProviderConfig
	switch name {
	case provider.OpenAI:
		pc = cfg.OpenAI
	case provider.Gemini:
		pc = cfg.Gemini
	default:
		return provider.Options{}, fmt.Errorf("unknown provider type: %q (supported: %v)", name, provider.SupportedProviders())
	}

	timeout, err := pc.TimeoutDuration()
	if err != nil {
		return provider.Options{}, fmt.Errorf("%s: %w", name, err)
	}

	return provider.Options{
		APIKey:        pc.APIKey,
		BaseURL:       pc.BaseURL,
		Timeout:       timeout,
		Logger:        log,
		API:           cfg.Chat.API,
		StreamOptions: streamOpts,
	}, nil
}

// NewProvider builds the llm.Provider named name from cfg.
func NewProvider(cfg *config.Config, name string, log *slog.Logger, streamOpts ...sse.Option) (llm.Provider, error) {
	opts, err := ProviderOptions(cfg, name, log, streamOpts...)
	if err != nil {
		return nil, err
	}
	return provider.New(name, opts)
}

// Println writes a line to the command's output.
func Println(cmd *cobra.Command, a ...any) {
	fmt.Fprintln(out(cmd), a...)
}

// Printf writes formatted output to the command's output.
func Printf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(out(cmd), format, a...)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

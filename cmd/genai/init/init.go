// Package initcmder provides the init command for initializing a local .genai
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
)

const (
	dirName    = ".genai"
	configFile = "config.toml"

	// fetchTimeout bounds downloading a remote preset.
	fetchTimeout = 30 * time.Second

	// maxPresetSize bounds the size of a remote preset.
	maxPresetSize = 1 << 20
)

const initLongDesc string = `Initialize a new .genai/ directory in the current working directory.

Creates a local .genai/ directory that takes precedence over the default
~/.genai/ directory for configuration, the resumable chat session and
recorded streams. A config.toml with default values is written unless one
already exists.

Use --preset to write a provider preset, overwriting any existing
config.toml. The preset is either a built-in name (openai, openai-responses,
gemini) or an http(s) URL serving a config.toml.

Examples:
  genai init
  genai init --preset gemini
  genai init --preset https://example.com/genai/config.toml`

const initShortDesc string = "Initialize a local .genai/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Provider preset (%s) or URL of a config.toml", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	existed := err == nil && info.IsDir()

	if !existed {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .genai directory: %w", err)
		}
	}

	cfg, err := c.presetConfig(cmd)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, configFile)
	if cfg == nil {
		if _, err := os.Stat(path); err == nil {
			cmdutil.Printf(cmd, "Already initialized: %s\n", dir)
			return nil
		}
		cfg = config.NewDefaultConfig()
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if existed {
		cmdutil.Printf(cmd, "  %s Wrote %s\n", cliui.SuccessMark, cliui.DimStyle.Render(path))
		return nil
	}

	cmdutil.Printf(cmd, "  %s Initialized .genai directory: %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	return nil
}

// presetConfig returns the config selected by --preset, or nil when no
// preset was given.
func (c *initCommander) presetConfig(cmd *cobra.Command) (*config.Config, error) {
	switch {
	case c.preset == "":
		return nil, nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		var cfg *config.Config
		err := cliui.Step(cmd.OutOrStdout(), "Fetching "+c.preset, func() error {
			var err error
			cfg, err = fetchRemoteConfig(cmd.Context(), c.preset)
			return err
		})
		return cfg, err
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPresetSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	if len(data) > maxPresetSize {
		return nil, errors.New("fetching remote config: response too large")
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing remote config: %w", err)
	}
	return cfg, nil
}

package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their current values from the
config.toml file stored in the .genai/ directory. Secret values are masked.

Examples:
  genai config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, cmdutil.ConfigDir(cmd))
		},
	}

	return cmd
}

func runList(cmd *cobra.Command, configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		cmdutil.Printf(cmd, "Using config file: %s\n\n", target)
	} else {
		cmdutil.Printf(cmd, "No config file found. Using default config.\n\n")
	}

	keys := config.ValidConfigKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		maxLen = max(maxLen, len(k))
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			cmdutil.Printf(cmd, "%-*s = <not set>\n", maxLen, key)
		} else {
			cmdutil.Printf(cmd, "%-*s = %q\n", maxLen, key, displayValue(key, value))
		}
	}

	return nil
}

package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file
stored in the .genai/ directory. Keys use dotted notation matching
the TOML section structure. Secret values are masked.

Examples:
  genai config get chat.model
  genai config get openai.api_key`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], cmdutil.ConfigDir(cmd))
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, key, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printTarget(cmd, cfger.GetTarget())

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		cmdutil.Printf(cmd, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		cmdutil.Printf(cmd, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(displayValue(key, value)))
	}

	return nil
}

func printTarget(cmd *cobra.Command, target string) {
	if target != "" {
		cmdutil.Printf(cmd, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		cmdutil.Printf(cmd, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

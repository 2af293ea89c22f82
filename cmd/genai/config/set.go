package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .genai/ directory. Keys use dotted notation matching
the TOML section structure. Run "genai config --help" for the list
of valid keys.

Examples:
  genai config set chat.provider gemini
  genai config set chat.max_tokens 1024
  genai config set storage.driver postgres
  genai config set eventstream.brokers localhost:9092`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], args[1], cmdutil.ConfigDir(cmd))
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

func runSet(cmd *cobra.Command, key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printTarget(cmd, cfger.GetTarget())

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	cmdutil.Printf(cmd, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(displayValue(key, value)),
	)
	return nil
}

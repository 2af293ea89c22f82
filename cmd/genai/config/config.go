// Package configcmder provides the config command for managing persistent
// genai configuration stored in the .genai/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/pkg/config"
)

const configLongDesc string = `Manage persistent genai configuration.

Configuration is stored as config.toml in the .genai/ directory and provides
default values for command flags. CLI flags and environment variables always
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  openai.api_key, openai.base_url, openai.timeout,
  gemini.api_key, gemini.base_url, gemini.timeout,
  chat.provider, chat.model, chat.api, chat.system, chat.max_tokens,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  eventstream.publisher, eventstream.brokers, eventstream.topic,
  eventstream.client_id, log.debug, log.json, log.file

API keys and connection strings are masked when displayed.

Use subcommands to get, set, or list configuration values:
  genai config set <key> <value>    Set a configuration value
  genai config get <key>            Get a configuration value
  genai config list                 List all configuration values

Examples:
  genai config set chat.model gemini-2.5-flash
  genai config set openai.api_key sk-...
  genai config get chat.model
  genai config list`

const configShortDesc string = "Manage persistent genai configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// displayValue masks secret values.
func displayValue(key, value string) string {
	if value != "" && config.IsSecretConfigKey(key) {
		return config.MaskSecret(value)
	}
	return value
}

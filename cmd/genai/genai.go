// Package genaicmder
package genaicmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/genai/cmd/genai/chat"
	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	configcmder "github.com/papercomputeco/genai/cmd/genai/config"
	initcmder "github.com/papercomputeco/genai/cmd/genai/init"
	modelscmder "github.com/papercomputeco/genai/cmd/genai/models"
	sessionscmder "github.com/papercomputeco/genai/cmd/genai/sessions"
	tokenscmder "github.com/papercomputeco/genai/cmd/genai/tokens"
	versioncmder "github.com/papercomputeco/genai/cmd/version"
)

const genaiLongDesc string = `genai is a streaming client for the OpenAI and Gemini APIs.

Get started:
  genai init                 Create a .genai/ directory with a default config
  genai config set openai.api_key sk-...
  genai chat                 Chat with the configured model

Other commands:
  genai models list          List the models a provider serves
  genai tokens "some text"   Count the tokens of a prompt with Gemini
  genai sessions list        Show recorded stream sessions`

const genaiShortDesc string = "genai - Streaming OpenAI and Gemini client"

func NewGenaiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "genai",
		Short:        genaiShortDesc,
		Long:         genaiLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(cmdutil.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(cmdutil.FlagConfigDir, "", "Override the .genai/ directory")
	cmd.PersistentFlags().String(cmdutil.FlagLogFile, "", "Also write JSON debug logs to this file")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(modelscmder.NewModelsCmd())
	cmd.AddCommand(tokenscmder.NewTokensCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

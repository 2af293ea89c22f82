// Package tokenscmder provides the tokens command, which counts the tokens
// of a prompt with the Gemini countTokens API.
package tokenscmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/llm/provider"
	"github.com/papercomputeco/genai/pkg/llm/provider/gemini"
)

const tokensLongDesc string = `Count the tokens of a prompt without generating a response.

The prompt is taken from the arguments, or read from stdin when no
arguments are given. Only Gemini models can count tokens. The system
prompt, when set, is counted too.

Examples:
  genai tokens "How many tokens is this?"
  cat prompt.txt | genai tokens --model gemini-2.5-pro`

const tokensShortDesc string = "Count the tokens of a prompt (Gemini)"

type tokensCommander struct {
	model  string
	system string
}

func NewTokensCmd() *cobra.Command {
	cmder := &tokensCommander{}

	cmd := &cobra.Command{
		Use:   "tokens [prompt...]",
		Short: tokensShortDesc,
		Long:  tokensLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagSystem, &cmder.system)

	return cmd
}

func (c *tokensCommander) run(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig(cmd, config.FlagModel, config.FlagSystem)
	if err != nil {
		return err
	}

	log, closeLog, err := cmdutil.NewLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	model := cfg.Chat.Model
	if model == "" || !gemini.NewProvider(nil).CanHandle(model) {
		if cmd.Flags().Changed(config.FlagModel) {
			return fmt.Errorf("counting tokens requires a gemini model, got %q", model)
		}
		model = string(gemini.DefaultModel)
	}

	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}

	p, err := cmdutil.NewProvider(cfg, provider.Gemini, log)
	if err != nil {
		return err
	}
	client := p.(*gemini.Provider).Client()

	req := gemini.CountTokensRequest{
		Contents: []gemini.Content{gemini.TextContent(gemini.RoleUser, prompt)},
	}
	if cfg.Chat.System != "" {
		sys := gemini.TextContent("", cfg.Chat.System)
		req = gemini.CountTokensRequest{
			GenerateContentRequest: &gemini.CountTokensGenerateContentRequest{
				GenerateContentRequest: gemini.GenerateContentRequest{
					Contents:          req.Contents,
					SystemInstruction: &sys,
				},
			},
		}
	}

	resp, err := client.CountTokens(cmd.Context(), gemini.Model(model), req)
	if err != nil {
		return fmt.Errorf("counting tokens: %w", err)
	}

	log.Debug("counted tokens", "model", model, "total", resp.TotalTokens)

	cmdutil.Printf(cmd, "  %s %s\n",
		cliui.KeyStyle.Render("Tokens:"),
		cliui.ValueStyle.Render(fmt.Sprint(resp.TotalTokens)),
	)
	if resp.CachedContentTokenCount > 0 {
		cmdutil.Printf(cmd, "  %s %s\n",
			cliui.KeyStyle.Render("Cached:"),
			cliui.ValueStyle.Render(fmt.Sprint(resp.CachedContentTokenCount)),
		)
	}
	cmdutil.Printf(cmd, "  %s\n", cliui.DimStyle.Render(model))
	return nil
}

func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt given")
	}
	return prompt, nil
}

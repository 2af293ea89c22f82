// Package modelscmder provides the models command for listing and describing
// the models a provider serves.
package modelscmder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/llm/provider/gemini"
	"github.com/papercomputeco/genai/pkg/llm/provider/openai"
)

const modelsLongDesc string = `List and describe the models available to your API key.

The provider comes from --provider, then GENAI_CHAT_PROVIDER, then
chat.provider in config.toml. "models get" detects the provider from
the model name unless --provider is given.

Examples:
  genai models list
  genai models list --provider gemini
  genai models get gpt-4o-mini
  genai models get gemini-2.5-flash`

const modelsShortDesc string = "List and describe provider models"

type modelsCommander struct {
	provider string
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

func NewModelsCmd() *cobra.Command {
	cmder := &modelsCommander{}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&cmder.provider, config.Flags[config.FlagProvider].Name,
		config.Flags[config.FlagProvider].Shorthand, "", config.Flags[config.FlagProvider].Description)

	cmd.AddCommand(cmder.newListCmd())
	cmd.AddCommand(cmder.newGetCmd())

	return cmd
}

func (c *modelsCommander) setup(cmd *cobra.Command) error {
	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.logger, c.closeLog, err = cmdutil.NewLogger(cmd, cfg)
	return err
}

func (c *modelsCommander) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the models available to your API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer c.closeLog()

			name := c.provider
			if name == "" {
				name = c.cfg.Chat.Provider
			}
			return c.runList(cmd, name)
		},
	}
}

func (c *modelsCommander) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <model>",
		Short: "Describe one model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer c.closeLog()

			cfg := *c.cfg
			cfg.Chat.Model = args[0]
			if c.provider != "" {
				cfg.Chat.Provider = c.provider
			}
			name, err := cmdutil.ProviderName(&cfg, c.provider != "")
			if err != nil {
				return err
			}
			return c.runGet(cmd, name, args[0])
		},
	}
}

// newClient returns the typed client behind the named provider.
func (c *modelsCommander) newClient(name string) (any, error) {
	p, err := cmdutil.NewProvider(c.cfg, name, c.logger)
	if err != nil {
		return nil, err
	}

	switch p := p.(type) {
	case *openai.Provider:
		return p.Client(), nil
	case *gemini.Provider:
		return p.Client(), nil
	default:
		return nil, fmt.Errorf("provider %q cannot list models", name)
	}
}

func (c *modelsCommander) runList(cmd *cobra.Command, name string) error {
	client, err := c.newClient(name)
	if err != nil {
		return err
	}

	var (
		headers []string
		rows    [][]string
	)

	switch client := client.(type) {
	case *openai.Client:
		headers = []string{"ID", "OWNED BY"}
		rows, err = listOpenAI(cmd.Context(), client)
	case *gemini.Client:
		headers = []string{"NAME", "DISPLAY NAME", "INPUT", "OUTPUT"}
		rows, err = listGemini(cmd.Context(), client)
	}
	if err != nil {
		return fmt.Errorf("listing %s models: %w", name, err)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)

	cmdutil.Println(cmd, t.String())
	cmdutil.Printf(cmd, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d %s models", len(rows), name)))
	return nil
}

func listOpenAI(ctx context.Context, client *openai.Client) ([][]string, error) {
	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(list.Data))
	for _, m := range list.Data {
		rows = append(rows, []string{m.ID, m.OwnedBy})
	}
	return rows, nil
}

func listGemini(ctx context.Context, client *gemini.Client) ([][]string, error) {
	var (
		rows [][]string
		req  gemini.ListModelsRequest
	)
	for {
		page, err := client.ListModels(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, m := range page.Models {
			rows = append(rows, []string{
				strings.TrimPrefix(m.Name, "models/"),
				m.DisplayName,
				strconv.Itoa(m.InputTokenLimit),
				strconv.Itoa(m.OutputTokenLimit),
			})
		}
		if page.NextPageToken == "" {
			return rows, nil
		}
		req.PageToken = page.NextPageToken
	}
}

func (c *modelsCommander) runGet(cmd *cobra.Command, name, model string) error {
	client, err := c.newClient(name)
	if err != nil {
		return err
	}

	var fields [][2]string
	switch client := client.(type) {
	case *openai.Client:
		info, err := client.GetModel(cmd.Context(), model)
		if err != nil {
			return fmt.Errorf("getting model %q: %w", model, err)
		}
		fields = [][2]string{
			{"ID", info.ID},
			{"Owned by", info.OwnedBy},
			{"Created", strconv.FormatInt(info.Created, 10)},
		}

	case *gemini.Client:
		info, err := client.GetModel(cmd.Context(), gemini.Model(model))
		if err != nil {
			return fmt.Errorf("getting model %q: %w", model, err)
		}
		methods := make([]string, 0, len(info.SupportedGenerationMethods))
		for _, m := range info.SupportedGenerationMethods {
			methods = append(methods, string(m))
		}
		fields = [][2]string{
			{"Name", info.Name},
			{"Display name", info.DisplayName},
			{"Version", info.Version},
			{"Input tokens", strconv.Itoa(info.InputTokenLimit)},
			{"Output tokens", strconv.Itoa(info.OutputTokenLimit)},
			{"Methods", strings.Join(methods, ", ")},
		}
	}

	cmdutil.Println(cmd)
	for _, f := range fields {
		cmdutil.Printf(cmd, "  %s %s\n", cliui.KeyStyle.Render(f[0]+":"), cliui.ValueStyle.Render(f[1]))
	}
	cmdutil.Println(cmd)
	return nil
}

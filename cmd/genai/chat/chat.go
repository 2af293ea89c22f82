// Package chatcmder provides the chat command for streaming chat with
// OpenAI and Gemini models.
package chatcmder

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/cmd/genai/sqlitepath"
	"github.com/papercomputeco/genai/pkg/cliui"
	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/dotdir"
	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/sse"
	"github.com/papercomputeco/genai/recorder"
)

// chatFlags are the registry flags chat binds into its config.
var chatFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagAPI,
	config.FlagSystem,
	config.FlagMaxTokens,
	config.FlagOpenAIBaseURL,
	config.FlagGeminiBaseURL,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagPublisher,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

type chatCommander struct {
	provider  string
	model     string
	api       string
	system    string
	maxTokens uint

	openaiBaseURL string
	geminiBaseURL string
	storage       string
	sqlite        string
	postgres      string
	publisher     string
	kafkaBrokers  string
	kafkaTopic    string

	temperature float64
	effort      string
	record      bool
	rawOut      string
	markdown    bool
	resume      bool
	noStream    bool
	imageDir    string

	cfg       *config.Config
	configDir string
	logger    *slog.Logger
	out       io.Writer

	llm      llm.Provider
	provName string
	session  *recorder.Session
	state    *dotdir.SessionState
	images   int
}

const chatLongDesc string = `Start a streaming chat session with an OpenAI or Gemini model.

The provider is detected from --model unless --provider is given. OpenAI
models use the Chat Completions API by default; pass --api responses for
the Responses API. Responses are printed as they stream in, or rendered
as markdown once complete with --markdown.

With a prompt argument the command answers once and exits. Otherwise it
reads messages from stdin until /exit or EOF. /clear starts a new
conversation.

The conversation is saved to the .genai/ directory after every reply.
Pass --resume to continue it.

Pass --record to store every stream event in the configured storage
(sqlite by default) and publish it to the configured event stream. Use
--raw-out to copy the raw SSE bytes of every response to a file.

Examples:
  genai chat --model gpt-4o-mini
  genai chat --model gemini-2.5-flash "Explain server-sent events"
  genai chat --api responses --model gpt-5-mini --markdown
  genai chat --resume
  genai chat --record --publisher kafka --kafka-brokers localhost:9092`

const chatShortDesc string = "Streaming chat with OpenAI and Gemini models"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig(cmd, chatFlags...)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			cmder.configDir = cmdutil.ConfigDir(cmd)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPI, &cmder.api)
	config.AddStringFlag(cmd, config.Flags, config.FlagSystem, &cmder.system)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddStringFlag(cmd, config.Flags, config.FlagOpenAIBaseURL, &cmder.openaiBaseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.geminiBaseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlite)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgres)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublisher, &cmder.publisher)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)

	cmd.Flags().Float64Var(&cmder.temperature, "temperature", 0, "Sampling temperature (dropped for models that do not support it)")
	cmd.Flags().StringVar(&cmder.effort, "effort", "", "Reasoning effort (none, minimal, low, medium, high, xhigh)")
	cmd.Flags().BoolVar(&cmder.record, "record", false, "Record every stream event to storage and the event stream")
	cmd.Flags().StringVar(&cmder.rawOut, "raw-out", "", "Append the raw SSE bytes of every response to this file")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render each complete reply as markdown")
	cmd.Flags().BoolVar(&cmder.resume, "resume", false, "Continue the last saved conversation")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the complete reply instead of streaming it")
	cmd.Flags().StringVar(&cmder.imageDir, "image-dir", "", "Directory generated images are saved to (default: current directory)")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, args []string) error {
	var err error
	var closeLog func() error
	c.logger, closeLog, err = cmdutil.NewLogger(cmd, c.cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	c.out = cmd.OutOrStdout()
	ctx := cmd.Context()

	savedProvider, err := c.loadState(cmd)
	if err != nil {
		return err
	}

	explicit := savedProvider || cmd.Flags().Changed(config.FlagProvider)
	c.provName, err = cmdutil.ProviderName(c.cfg, explicit)
	if err != nil {
		return err
	}

	streamOpts := []sse.Option{sse.WithLogger(c.logger)}

	if c.rawOut != "" {
		f, err := os.OpenFile(c.rawOut, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening raw output: %w", err)
		}
		defer f.Close()
		streamOpts = append(streamOpts, sse.WithTee(f))
	}

	if c.record {
		pipeline, err := c.openRecorder(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := pipeline.Close(); err != nil {
				c.logger.Error("closing recorder", "error", err)
			}
			if n := pipeline.Dropped(); n > 0 {
				c.logger.Warn("stream records dropped", "count", n)
			}
		}()

		c.session = pipeline.NewSession(c.provName, c.cfg.Chat.Model)
		c.state.ID = c.session.ID
		streamOpts = append(streamOpts, c.session.StreamOption())
	}

	c.llm, err = cmdutil.NewProvider(c.cfg, c.provName, c.logger, streamOpts...)
	if err != nil {
		return err
	}

	c.state.Provider = c.provName
	c.state.Model = c.cfg.Chat.Model

	if len(args) > 0 {
		return c.turn(ctx, cmd, strings.Join(args, " "))
	}
	return c.interactive(ctx, cmd)
}

// loadState restores the saved conversation for --resume. The saved model,
// and the provider that served it, apply unless --model is given. It
// reports whether the saved provider was applied.
func (c *chatCommander) loadState(cmd *cobra.Command) (bool, error) {
	c.state = &dotdir.SessionState{}
	if !c.resume {
		return false, nil
	}

	state, err := dotdir.NewManager().LoadSession(c.configDir)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	if state == nil {
		return false, nil
	}

	c.state = state
	if cmd.Flags().Changed(config.FlagModel) || state.Model == "" {
		return false, nil
	}

	c.cfg.Chat.Model = state.Model
	if cmd.Flags().Changed(config.FlagProvider) || state.Provider == "" {
		return false, nil
	}
	c.cfg.Chat.Provider = state.Provider
	return true, nil
}

func (c *chatCommander) openRecorder(ctx context.Context) (*recorder.Pipeline, error) {
	defaultPath, err := sqlitepath.DefaultSQLitePath(c.configDir)
	if err != nil {
		return nil, err
	}

	host, _ := os.Hostname()

	return recorder.Open(ctx, recorder.Config{
		Storage:           c.cfg.Storage,
		EventStream:       c.cfg.EventStream,
		DefaultSQLitePath: defaultPath,
		Host:              host,
		Logger:            c.logger,
	})
}

func (c *chatCommander) interactive(ctx context.Context, cmd *cobra.Command) error {
	fmt.Fprintln(c.out)
	if n := len(c.state.Messages); n > 0 {
		fmt.Fprintf(c.out, "  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", n)),
		)
	} else {
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	model := c.cfg.Chat.Model
	if model == "" {
		model = "default"
	}
	fmt.Fprintf(c.out, "  %s %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(model),
		cliui.DimStyle.Render("("+c.provName+")"),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /clear starts over, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(c.out, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}
		if input == "/clear" {
			if err := c.clearConversation(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "  %s %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render("Conversation cleared"))
			continue
		}

		if err := c.turn(ctx, cmd, input); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s %v\n", cliui.FailMark, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		fmt.Fprintln(c.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// clearConversation drops the conversation so far, in memory and on disk.
func (c *chatCommander) clearConversation() error {
	c.state.Messages = nil
	if err := dotdir.NewManager().ClearSession(c.configDir); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// turn sends input with the conversation so far, prints the reply and
// saves the conversation. The history is left untouched on failure so the
// message can be retried.
func (c *chatCommander) turn(ctx context.Context, cmd *cobra.Command, input string) error {
	messages := append(slices.Clone(c.state.Messages), llm.NewTextMessage(llm.RoleUser, input))
	req := c.request(cmd, messages)

	c.logger.Debug("sending chat request",
		"provider", c.provName,
		"model", req.Model,
		"message_count", len(messages),
	)

	startedAt := time.Now()

	var (
		resp *llm.ChatResponse
		err  error
	)
	if c.noStream {
		resp, err = c.llm.Chat(ctx, req)
		if err == nil {
			c.printReply(resp.Message.GetText(), true)
		}
	} else {
		resp, err = c.stream(ctx, req)
	}
	if err != nil {
		return err
	}

	if c.session != nil {
		c.session.CompleteTurn(llm.ConversationTurn{
			Provider: c.provName,
			Request:  req,
			Response: resp,
		}, startedAt)
	}

	if err := c.saveImages(resp.Message.Images()); err != nil {
		return err
	}

	c.logUsage(resp, time.Since(startedAt))

	c.state.Messages = append(messages, resp.Message)
	c.state.UpdatedAt = time.Now().UTC()
	if err := dotdir.NewManager().SaveSession(c.state, c.configDir); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (c *chatCommander) request(cmd *cobra.Command, messages []llm.Message) *llm.ChatRequest {
	req := &llm.ChatRequest{
		Model:           c.cfg.Chat.Model,
		Messages:        messages,
		System:          c.cfg.Chat.System,
		ReasoningEffort: c.effort,
	}
	if c.cfg.Chat.MaxTokens > 0 {
		n := int(c.cfg.Chat.MaxTokens)
		req.MaxTokens = &n
	}
	if cmd.Flags().Changed("temperature") {
		t := c.temperature
		req.Temperature = &t
	}
	return req
}

// stream prints text deltas as they arrive and returns the accumulated
// reply. Undecodable events are logged and skipped.
func (c *chatCommander) stream(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	chunks, err := c.llm.ChatStream(ctx, req)
	if errors.Is(err, llm.ErrStreamingNotSupported) {
		c.logger.Debug("streaming not supported, waiting for the complete reply", "model", req.Model)
		resp, err := c.llm.Chat(ctx, req)
		if err != nil {
			return nil, err
		}
		c.printReply(resp.Message.GetText(), true)
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	if !c.markdown {
		fmt.Fprint(c.out, cliui.ModelPrompt)
	}

	var acc llm.Accumulator
	for chunk, err := range llm.Chunks(chunks) {
		if err != nil {
			var de *sse.DecodeError
			if errors.As(err, &de) {
				c.logger.Warn("skipping undecodable event", "error", err)
				continue
			}
			if !c.markdown {
				fmt.Fprintln(c.out)
			}
			return nil, err
		}

		acc.Add(chunk)
		if !c.markdown {
			for _, block := range chunk.Message.Content {
				if block.Type == llm.BlockText {
					fmt.Fprint(c.out, block.Text)
				}
			}
		}
	}

	resp := acc.Response()
	c.printReply(resp.Message.GetText(), c.markdown)
	return resp, nil
}

// printReply prints a complete reply. When the reply was already streamed
// only the trailing newline is written.
func (c *chatCommander) printReply(text string, complete bool) {
	if !complete {
		fmt.Fprintln(c.out)
		return
	}

	if c.markdown {
		rendered, err := cliui.RenderMarkdown(text, cliui.Width(os.Stdout))
		if err != nil {
			c.logger.Debug("rendering markdown", "error", err)
		} else {
			fmt.Fprint(c.out, rendered)
			return
		}
	}

	fmt.Fprint(c.out, cliui.ModelPrompt)
	fmt.Fprintln(c.out, text)
}

func (c *chatCommander) saveImages(images []llm.ContentBlock) error {
	if len(images) == 0 {
		return nil
	}

	dir := c.imageDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}

	for _, img := range images {
		if img.ImageBase64 == "" {
			fmt.Fprintf(c.out, "  %s %s\n", cliui.DimStyle.Render("image:"), img.ImageURL)
			continue
		}

		data, err := base64.StdEncoding.DecodeString(img.ImageBase64)
		if err != nil {
			return fmt.Errorf("decoding image: %w", err)
		}

		c.images++
		path := filepath.Join(dir, fmt.Sprintf("genai-%s-%d%s",
			time.Now().Format("20060102-150405"), c.images, imageExt(img.MediaType)))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("saving image: %w", err)
		}
		fmt.Fprintf(c.out, "  %s Saved image %s\n", cliui.SuccessMark, cliui.DimStyle.Render(path))
	}
	return nil
}

func imageExt(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func (c *chatCommander) logUsage(resp *llm.ChatResponse, took time.Duration) {
	attrs := []any{"model", resp.Model, "stop_reason", resp.StopReason, "took", cliui.FormatDuration(took)}
	if u := resp.Usage; u != nil {
		attrs = append(attrs,
			"prompt_tokens", u.PromptTokens,
			"completion_tokens", u.CompletionTokens,
			"total_tokens", u.TotalTokens,
		)
	}
	c.logger.Debug("chat turn complete", attrs...)
}

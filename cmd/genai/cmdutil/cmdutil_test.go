package cmdutil_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/genai/cmd/genai/cmdutil"
	"github.com/papercomputeco/genai/pkg/config"
	"github.com/papercomputeco/genai/pkg/llm/provider/gemini"
	"github.com/papercomputeco/genai/pkg/llm/provider/openai"
)

func newCmd(configDir string) *cobra.Command {
	var model string
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().Bool(cmdutil.FlagDebug, false, "")
	cmd.Flags().String(cmdutil.FlagConfigDir, configDir, "")
	cmd.Flags().String(cmdutil.FlagLogFile, "", "")
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &model)
	return cmd
}

var _ = Describe("LoadConfig", func() {
	It("reads config.toml from the config dir", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"),
			[]byte("[chat]\nmodel = \"gemini-2.5-flash\"\n"), 0o600)).To(Succeed())

		cfg, err := cmdutil.LoadConfig(newCmd(dir), config.FlagModel)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Chat.Model).To(Equal("gemini-2.5-flash"))
	})

	It("prefers a set flag over the file", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"),
			[]byte("[chat]\nmodel = \"gemini-2.5-flash\"\n"), 0o600)).To(Succeed())

		cmd := newCmd(dir)
		Expect(cmd.Flags().Set("model", "gpt-4o")).To(Succeed())

		cfg, err := cmdutil.LoadConfig(cmd, config.FlagModel)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Chat.Model).To(Equal("gpt-4o"))
	})
})

var _ = Describe("NewLogger", func() {
	It("writes to stderr", func() {
		cmd := newCmd("")
		var stderr bytes.Buffer
		cmd.SetErr(&stderr)

		log, closeFn, err := cmdutil.NewLogger(cmd, config.NewDefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		log.Info("hello")
		Expect(closeFn()).To(Succeed())
		Expect(stderr.String()).To(ContainSubstring("hello"))
	})

	It("hides debug records unless debug is enabled", func() {
		cmd := newCmd("")
		var stderr bytes.Buffer
		cmd.SetErr(&stderr)

		log, _, err := cmdutil.NewLogger(cmd, config.NewDefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		log.Debug("hidden")
		Expect(stderr.String()).NotTo(ContainSubstring("hidden"))

		Expect(cmd.Flags().Set(cmdutil.FlagDebug, "true")).To(Succeed())
		log, _, err = cmdutil.NewLogger(cmd, config.NewDefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		log.Debug("shown")
		Expect(stderr.String()).To(ContainSubstring("shown"))
	})

	It("also appends JSON records to the log file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "genai.log")
		cmd := newCmd("")
		cmd.SetErr(&bytes.Buffer{})
		Expect(cmd.Flags().Set(cmdutil.FlagLogFile, path)).To(Succeed())

		log, closeFn, err := cmdutil.NewLogger(cmd, config.NewDefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		log.Debug("to file", "n", 1)
		Expect(closeFn()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"to file"`))
		Expect(string(data)).To(ContainSubstring(`"n":1`))
	})

	It("fails when the log file cannot be opened", func() {
		cmd := newCmd("")
		Expect(cmd.Flags().Set(cmdutil.FlagLogFile, "/nonexistent/dir/genai.log")).To(Succeed())
		_, _, err := cmdutil.NewLogger(cmd, config.NewDefaultConfig())
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})

var _ = Describe("ProviderName", func() {
	DescribeTable("selection",
		func(provider, model string, explicit bool, want string) {
			cfg := config.NewDefaultConfig()
			cfg.Chat.Provider = provider
			cfg.Chat.Model = model
			name, err := cmdutil.ProviderName(cfg, explicit)
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal(want))
		},
		Entry("detected from a gemini model", "openai", "gemini-2.5-flash", false, "gemini"),
		Entry("detected from an openai model", "gemini", "gpt-4o", false, "openai"),
		Entry("explicit provider wins", "openai", "gemini-2.5-flash", true, "openai"),
		Entry("configured provider without a model", "gemini", "", false, "gemini"),
		Entry("configured provider for unknown models", "gemini", "my-finetune", false, "gemini"),
		Entry("openai when nothing is configured", "", "", false, "openai"),
	)

	It("fails for unknown models without a provider", func() {
		cfg := config.NewDefaultConfig()
		cfg.Chat.Provider = ""
		cfg.Chat.Model = "my-finetune"
		_, err := cmdutil.ProviderName(cfg, false)
		Expect(err).To(MatchError(ContainSubstring("no provider handles model")))
	})
})

var _ = Describe("NewProvider", func() {
	It("builds an openai provider with the configured api", func() {
		cfg := config.NewDefaultConfig()
		cfg.OpenAI.APIKey = "sk-test"
		cfg.Chat.API = "responses"

		p, err := cmdutil.NewProvider(cfg, "openai", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&openai.Provider{}))
	})

	It("builds a gemini provider", func() {
		cfg := config.NewDefaultConfig()
		cfg.Gemini.APIKey = "key"

		p, err := cmdutil.NewProvider(cfg, "gemini", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&gemini.Provider{}))
	})

	It("rejects invalid timeouts", func() {
		cfg := config.NewDefaultConfig()
		cfg.OpenAI.APIKey = "sk-test"
		cfg.OpenAI.Timeout = "soon"

		_, err := cmdutil.NewProvider(cfg, "openai", nil)
		Expect(err).To(MatchError(ContainSubstring("invalid timeout")))
	})

	It("rejects unknown providers", func() {
		_, err := cmdutil.NewProvider(config.NewDefaultConfig(), "anthropic", nil)
		Expect(err).To(MatchError(ContainSubstring("unknown provider type")))
	})

	It("fails without an api key", func() {
		_, err := cmdutil.NewProvider(config.NewDefaultConfig(), "openai", nil)
		Expect(err).To(HaveOccurred())
	})
})

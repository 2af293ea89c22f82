package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/genai/cmd/genai/config"
	"github.com/papercomputeco/genai/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "genai-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .genai dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".genai"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(run("set", "chat.provider", "gemini")).To(Succeed())

			cfger, err := config.NewConfiger(filepath.Join(tmpDir, ".genai"))
			Expect(err).NotTo(HaveOccurred())
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Chat.Provider).To(Equal("gemini"))
		})

		It("masks secrets in its output", func() {
			Expect(run("set", "openai.api_key", "sk-abcdefghijkl")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("****ijkl"))
			Expect(out.String()).NotTo(ContainSubstring("sk-abcdefghijkl"))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "chat.provider")).NotTo(Succeed())
		})

		It("rejects zero arguments", func() {
			Expect(run("set")).NotTo(Succeed())
		})

		It("rejects invalid uint values", func() {
			Expect(run("set", "chat.max_tokens", "not-a-number")).NotTo(Succeed())
		})

		It("rejects invalid durations", func() {
			Expect(run("set", "openai.timeout", "soon")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(run("set", "chat.model", "gpt-4o")).To(Succeed())

			out.Reset()
			Expect(run("get", "chat.model")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("gpt-4o"))
		})

		It("masks secret values", func() {
			Expect(run("set", "gemini.api_key", "AIzaSyExample1234")).To(Succeed())

			out.Reset()
			Expect(run("get", "gemini.api_key")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("****1234"))
			Expect(out.String()).NotTo(ContainSubstring("AIzaSyExample1234"))
		})

		It("reports unset keys", func() {
			Expect(run("get", "chat.system")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(run("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error when no config exists", func() {
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("chat.model"))
		})

		It("lists every key with masked secrets", func() {
			Expect(run("set", "openai.api_key", "sk-abcdefghijkl")).To(Succeed())
			Expect(run("set", "chat.model", "gpt-4o")).To(Succeed())

			out.Reset()
			Expect(run("list")).To(Succeed())
			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
			Expect(out.String()).To(ContainSubstring(`"gpt-4o"`))
			Expect(out.String()).To(ContainSubstring(`"****ijkl"`))
			Expect(out.String()).NotTo(ContainSubstring("sk-abcdefghijkl"))
		})

		It("rejects arguments", func() {
			Expect(run("list", "extra")).NotTo(Succeed())
		})
	})
})

package tokenscmder_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tokenscmder "github.com/papercomputeco/genai/cmd/genai/tokens"
)

var _ = Describe("Tokens command", func() {
	var (
		tmpDir   string
		origDir  string
		server   *httptest.Server
		out      *bytes.Buffer
		lastPath string
		lastBody map[string]any
	)

	execute := func(stdin string, args ...string) error {
		cmd := tokenscmder.NewTokensCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "genai-tokens-test-*")
		Expect(err).NotTo(HaveOccurred())
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".genai"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		out = &bytes.Buffer{}
		lastPath, lastBody = "", nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastPath = r.URL.Path
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &lastBody)
			fmt.Fprint(w, `{"totalTokens":42}`)
		}))

		config := fmt.Sprintf("[gemini]\napi_key = \"gm-test\"\nbase_url = %q\n", server.URL)
		Expect(os.WriteFile(filepath.Join(tmpDir, ".genai", "config.toml"), []byte(config), 0o600)).To(Succeed())
	})

	AfterEach(func() {
		server.Close()
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("counts the tokens of the arguments", func() {
		Expect(execute("", "--model", "gemini-2.5-flash", "hello", "world")).To(Succeed())
		Expect(lastPath).To(Equal("/models/gemini-2.5-flash:countTokens"))
		Expect(out.String()).To(ContainSubstring("42"))

		contents := lastBody["contents"].([]any)
		parts := contents[0].(map[string]any)["parts"].([]any)
		Expect(parts[0].(map[string]any)["text"]).To(Equal("hello world"))
	})

	It("reads the prompt from stdin", func() {
		Expect(execute("from stdin\n", "--model", "gemini-2.5-flash")).To(Succeed())
		contents := lastBody["contents"].([]any)
		parts := contents[0].(map[string]any)["parts"].([]any)
		Expect(parts[0].(map[string]any)["text"]).To(Equal("from stdin"))
	})

	It("counts the system prompt through a generate content request", func() {
		Expect(execute("", "--model", "gemini-2.5-flash", "--system", "be brief", "hi")).To(Succeed())
		Expect(lastBody).To(HaveKey("generateContentRequest"))
		gcr := lastBody["generateContentRequest"].(map[string]any)
		Expect(gcr["model"]).To(Equal("models/gemini-2.5-flash"))
		Expect(gcr).To(HaveKey("systemInstruction"))
	})

	It("falls back to the default gemini model", func() {
		Expect(execute("", "hi")).To(Succeed())
		Expect(lastPath).To(HaveSuffix(":countTokens"))
		Expect(lastPath).To(HavePrefix("/models/gemini-"))
	})

	It("rejects non-gemini models", func() {
		err := execute("", "--model", "gpt-4o", "hi")
		Expect(err).To(MatchError(ContainSubstring("requires a gemini model")))
	})

	It("rejects an empty prompt", func() {
		err := execute("  \n", "--model", "gemini-2.5-flash")
		Expect(err).To(MatchError(ContainSubstring("no prompt given")))
	})
})

package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/llm/provider/openai"
)

var _ = Describe("Provider", func() {
	var (
		server   *httptest.Server
		body     string
		lastBody map[string]any
		client   *openai.Client
	)

	BeforeEach(func() {
		body = ""
		lastBody = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &lastBody)
			_, _ = io.WriteString(w, body)
		}))

		var err error
		client, err = openai.NewClient(openai.Config{APIKey: "sk-test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	request := func() *llm.ChatRequest {
		return &llm.ChatRequest{
			Model:           "gpt-4-1",
			System:          "be brief",
			Messages:        []llm.Message{llm.NewTextMessage(llm.RoleUser, "Hi")},
			ReasoningEffort: "xhigh",
		}
	}

	Describe("Name", func() {
		It("returns 'openai'", func() {
			Expect(openai.NewProvider(client).Name()).To(Equal("openai"))
		})
	})

	DescribeTable("CanHandle",
		func(model string, want bool) {
			Expect(openai.NewProvider(client).CanHandle(model)).To(Equal(want))
		},
		Entry("known model", "gpt-4o-mini", true),
		Entry("alias", "gpt-4-1-mini", true),
		Entry("unknown gpt model", "gpt-3.5-turbo", true),
		Entry("o-series model", "o3-mini", true),
		Entry("gemini model", "gemini-2.5-flash", false),
	)

	Context("with the chat completions api", func() {
		It("translates the request and the response", func() {
			body = `{"id":"c1","object":"chat.completion","created":1700000000,"model":"gpt-4.1","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello"}}],"usage":{"prompt_tokens":5,"completion_tokens":1,"total_tokens":6}}`

			resp, err := openai.NewProvider(client).Chat(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.GetText()).To(Equal("Hello"))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage.TotalTokens).To(Equal(6))

			Expect(lastBody).To(HaveKeyWithValue("model", "gpt-4.1"))
			Expect(lastBody).To(HaveKeyWithValue("reasoning_effort", "high"))
			Expect(lastBody["messages"]).To(HaveLen(2))
		})

		It("streams chunks that accumulate into the full response", func() {
			body = chatStreamBody

			stream, err := openai.NewProvider(client).ChatStream(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())

			var acc llm.Accumulator
			for chunk, err := range llm.Chunks(stream) {
				Expect(err).NotTo(HaveOccurred())
				acc.Add(chunk)
			}

			resp := acc.Response()
			Expect(resp.Message.GetText()).To(Equal("Hello"))
			Expect(resp.Done).To(BeTrue())
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.Usage.TotalTokens).To(Equal(5))
			Expect(lastBody).To(HaveKeyWithValue("stream_options", HaveKeyWithValue("include_usage", true)))
		})

		It("rejects unknown reasoning efforts", func() {
			req := request()
			req.ReasoningEffort = "maximum"
			_, err := openai.NewProvider(client).Chat(context.Background(), req)
			Expect(err).To(MatchError(ContainSubstring("unknown reasoning effort")))
		})
	})

	Context("with the responses api", func() {
		It("sends instructions and items", func() {
			body = `{"id":"resp_1","object":"response","created_at":1,"status":"completed","model":"gpt-4.1","output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"Hello"}]}],"usage":{"input_tokens":4,"output_tokens":1,"total_tokens":5,"input_tokens_details":{"cached_tokens":2}}}`

			p := openai.NewProvider(client, openai.WithAPI(openai.APIResponses))
			resp, err := p.Chat(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.GetText()).To(Equal("Hello"))
			Expect(resp.Done).To(BeTrue())
			Expect(resp.Usage.CachedTokens).To(Equal(2))

			Expect(lastBody).To(HaveKeyWithValue("instructions", "be brief"))
			Expect(lastBody).To(HaveKeyWithValue("reasoning", HaveKeyWithValue("effort", "high")))
			Expect(lastBody["input"]).To(HaveLen(1))
		})

		It("turns stream error events into errors", func() {
			body = "data: {\"type\":\"response.output_text.delta\",\"item_id\":\"m\",\"output_index\":0,\"content_index\":0,\"delta\":\"Hi\"}\n\n" +
				"data: {\"type\":\"error\",\"code\":\"server_error\",\"message\":\"boom\"}\n\n"

			p := openai.NewProvider(client, openai.WithAPI(openai.APIResponses))
			stream, err := p.ChatStream(context.Background(), request())
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			chunk, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk.Message.GetText()).To(Equal("Hi"))

			_, err = stream.Next()
			Expect(openai.IsStreamError(err)).To(BeTrue())
			Expect(err).To(MatchError("openai: stream error: server_error: boom"))

			_, err = stream.Next()
			Expect(errors.Is(err, io.EOF)).To(BeTrue())
		})
	})

	It("parses api names", func() {
		api, err := openai.ParseAPI("")
		Expect(err).NotTo(HaveOccurred())
		Expect(api).To(Equal(openai.APIChatCompletions))

		api, err = openai.ParseAPI("Responses")
		Expect(err).NotTo(HaveOccurred())
		Expect(api).To(Equal(openai.APIResponses))

		_, err = openai.ParseAPI("assistants")
		Expect(err).To(HaveOccurred())
	})
})

package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/llm/provider"
)

var _ = Describe("Detector", func() {
	var detector *provider.Detector

	BeforeEach(func() {
		detector = provider.NewDetector()
	})

	DescribeTable("Detect",
		func(model, want string) {
			name, err := detector.Detect(model)
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal(want))
		},
		Entry("GPT model names", "gpt-4o-mini", provider.OpenAI),
		Entry("dashed GPT aliases", "gpt-4-1-nano", provider.OpenAI),
		Entry("o-series model names", "o3-mini", provider.OpenAI),
		Entry("Gemini model names", "gemini-2.5-flash", provider.Gemini),
		Entry("Gemini resource names", "models/gemini-1.5-pro", provider.Gemini),
		Entry("Imagen model names", "imagen-4.0-generate-001", provider.Gemini),
	)

	It("fails for models no provider serves", func() {
		_, err := detector.Detect("claude-3-sonnet")
		Expect(err).To(MatchError(ContainSubstring(`no provider handles model "claude-3-sonnet"`)))
	})
})

var _ = Describe("New", func() {
	It("builds every supported provider", func() {
		for _, name := range provider.SupportedProviders() {
			p, err := provider.New(name, provider.Options{APIKey: "key"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal(name))
		}
	})

	It("rejects unknown providers", func() {
		_, err := provider.New("anthropic", provider.Options{APIKey: "key"})
		Expect(err).To(MatchError(ContainSubstring(`unknown provider type: "anthropic"`)))
	})

	It("rejects unknown openai apis", func() {
		_, err := provider.New(provider.OpenAI, provider.Options{APIKey: "key", API: "assistants"})
		Expect(err).To(HaveOccurred())
	})

	It("requires an api key", func() {
		_, err := provider.New(provider.Gemini, provider.Options{})
		Expect(err).To(MatchError(ContainSubstring("missing api key")))
	})
})

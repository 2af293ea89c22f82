package gemini_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/llm/provider/gemini"
)

var _ = Describe("Part", func() {
	It("marshals text and inline data", func() {
		out, err := json.Marshal(gemini.Content{
			Role:  gemini.RoleUser,
			Parts: []gemini.Part{gemini.TextPart("look"), gemini.InlineDataPart("image/png", "AAAA")},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"role":"user","parts":[{"text":"look"},{"inlineData":{"mimeType":"image/png","data":"AAAA"}}]}`))
	})

	It("keeps empty text parts as text", func() {
		var p gemini.Part
		Expect(json.Unmarshal([]byte(`{"text":""}`), &p)).To(Succeed())
		Expect(p.IsText()).To(BeTrue())
		Expect(p.IsUnknown()).To(BeFalse())
	})

	It("preserves parts it does not model", func() {
		var p gemini.Part
		Expect(json.Unmarshal([]byte(`{"functionCall":{"name":"f","args":{}}}`), &p)).To(Succeed())
		Expect(p.IsUnknown()).To(BeTrue())

		out, err := json.Marshal(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"functionCall":{"name":"f","args":{}}}`))
	})

	It("decodes inline data", func() {
		blob := gemini.Blob{MIMEType: "image/png", Data: "aGk="}
		data, err := blob.Decode()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("hi"))
	})
})

var _ = Describe("GenerateContentResponse", func() {
	It("skips thoughts in the text", func() {
		var resp gemini.GenerateContentResponse
		Expect(json.Unmarshal([]byte(`{"candidates":[{"index":0,"finishReason":"STOP","content":{"role":"model","parts":[
			{"text":"hmm","thought":true},
			{"text":"Hello"},
			{"inlineData":{"mimeType":"image/png","data":"AAAA"}}
		]}}]}`), &resp)).To(Succeed())

		Expect(resp.Text()).To(Equal("Hello"))
		Expect(resp.Images()).To(HaveLen(1))
		Expect(resp.FinishReason()).To(Equal("STOP"))
	})

	It("tolerates responses without candidates", func() {
		resp := gemini.GenerateContentResponse{PromptFeedback: &gemini.PromptFeedback{BlockReason: "SAFETY"}}
		Expect(resp.Text()).To(BeEmpty())
		Expect(resp.Images()).To(BeNil())
		Expect(resp.FinishReason()).To(BeEmpty())
	})
})

var _ = Describe("DedupeSafetySettings", func() {
	It("keeps one setting per category, the last one winning", func() {
		out := gemini.DedupeSafetySettings([]gemini.SafetySetting{
			{Category: gemini.HarmCategoryHarassment, Threshold: gemini.BlockNone},
			{Category: gemini.HarmCategoryHateSpeech, Threshold: gemini.BlockOnlyHigh},
			{Category: gemini.HarmCategoryHarassment, Threshold: gemini.BlockLowAndAbove},
		})
		Expect(out).To(Equal([]gemini.SafetySetting{
			{Category: gemini.HarmCategoryHarassment, Threshold: gemini.BlockLowAndAbove},
			{Category: gemini.HarmCategoryHateSpeech, Threshold: gemini.BlockOnlyHigh},
		}))
	})

	It("leaves nil alone", func() {
		Expect(gemini.DedupeSafetySettings(nil)).To(BeNil())
	})
})

var _ = Describe("ListModelsRequest", func() {
	It("only encodes set fields", func() {
		Expect(gemini.ListModelsRequest{}.Query()).To(BeEmpty())
		q := gemini.ListModelsRequest{PageToken: "abc", PageSize: 10}.Query()
		Expect(q.Get("pageToken")).To(Equal("abc"))
		Expect(q.Get("pageSize")).To(Equal("10"))
	})
})

var _ = Describe("CountTokensRequest", func() {
	It("flattens the generate content request next to the model", func() {
		out, err := json.Marshal(gemini.CountTokensRequest{
			GenerateContentRequest: &gemini.CountTokensGenerateContentRequest{
				Model: "models/gemini-2.5-flash",
				GenerateContentRequest: gemini.GenerateContentRequest{
					Contents: []gemini.Content{gemini.TextContent(gemini.RoleUser, "hi")},
				},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"generateContentRequest":{"model":"models/gemini-2.5-flash","contents":[{"role":"user","parts":[{"text":"hi"}]}]}}`))
	})
})

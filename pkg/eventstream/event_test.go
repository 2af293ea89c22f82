package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/eventstream"
	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/storage"
)

var _ = Describe("Event", func() {
	It("wraps a record with source metadata", func() {
		record := storage.Record{
			SessionID: "sess-1",
			Sequence:  3,
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Kind:      storage.KindEvent,
			Payload:   `{"id":"1"}`,
		}

		ev := eventstream.NewStreamRecordEvent(record, "laptop")
		Expect(ev.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(ev.EventType).To(Equal(eventstream.EventTypeStreamRecord))
		Expect(ev.EventID).NotTo(BeEmpty())
		Expect(ev.Source).To(Equal(eventstream.EventSource{Host: "laptop", Provider: "openai", Model: "gpt-4o-mini"}))
		Expect(ev.Record).To(Equal(record))
	})

	It("gives every event a distinct id", func() {
		a := eventstream.NewStreamRecordEvent(storage.Record{}, "")
		b := eventstream.NewStreamRecordEvent(storage.Record{}, "")
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("marshals StreamRecordEvent with expected top-level keys", func() {
		payload, err := json.Marshal(eventstream.NewStreamRecordEvent(storage.Record{SessionID: "s"}, ""))
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())
		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("record"))
	})

	It("computes the duration of a completed turn", func() {
		now := time.Unix(1735689600, 0).UTC()
		turn := llm.ConversationTurn{
			Provider: "gemini",
			Request: &llm.ChatRequest{
				Model:    "gemini-2.5-flash",
				Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hello")},
			},
			Response: &llm.ChatResponse{
				Model:   "gemini-2.5-flash",
				Message: llm.NewTextMessage(llm.RoleAssistant, "hi"),
				Done:    true,
			},
		}

		ev := eventstream.NewTurnCompletedEvent("sess-1", turn, now.Add(-2*time.Second), now)
		Expect(ev.EventType).To(Equal(eventstream.EventTypeTurnCompleted))
		Expect(ev.DurationMs).To(Equal(int64(2000)))
		Expect(ev.Source.Provider).To(Equal("gemini"))
		Expect(ev.Source.Model).To(Equal("gemini-2.5-flash"))

		payload, err := json.Marshal(ev)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(ContainSubstring(`"session_id":"sess-1"`))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeStreamRecord).To(Equal("genai.stream.record"))
		Expect(eventstream.EventTypeTurnCompleted).To(Equal("genai.turn.completed"))
	})

	It("provides errors for nil payload validation", func() {
		Expect(eventstream.ErrNilRecordEvent).To(MatchError("nil record event"))
		Expect(eventstream.ErrNilTurnEvent).To(MatchError("nil turn event"))
	})
})

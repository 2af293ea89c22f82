package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/eventstream"
	"github.com/papercomputeco/genai/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("creates a non-nil publisher", func() {
		p := nop.NewPublisher()
		Expect(p).NotTo(BeNil())
	})

	It("returns ErrNilRecordEvent for nil record events", func() {
		p := nop.NewPublisher()
		err := p.PublishRecord(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilRecordEvent))
	})

	It("returns ErrNilTurnEvent for nil turn events", func() {
		p := nop.NewPublisher()
		err := p.PublishTurn(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("succeeds for non-nil events", func() {
		p := nop.NewPublisher()
		Expect(p.PublishRecord(context.Background(), &eventstream.StreamRecordEvent{})).To(Succeed())
		Expect(p.PublishTurn(context.Background(), &eventstream.TurnCompletedEvent{})).To(Succeed())
	})

	It("closes successfully", func() {
		p := nop.NewPublisher()
		Expect(p.Close()).To(Succeed())
	})
})

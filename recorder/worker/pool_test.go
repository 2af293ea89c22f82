package worker

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/eventstream"
	"github.com/papercomputeco/genai/pkg/llm"
	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/storage"
	"github.com/papercomputeco/genai/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/genai/pkg/utils/test"
)

// blockingDriver holds every PutRecord until release is closed.
type blockingDriver struct {
	*inmemory.Driver
	release chan struct{}
}

func (d *blockingDriver) PutRecord(ctx context.Context, r *storage.Record) (bool, error) {
	<-d.release
	return d.Driver.PutRecord(ctx, r)
}

// failingDriver fails every PutRecord.
type failingDriver struct {
	*inmemory.Driver
}

func (d *failingDriver) PutRecord(context.Context, *storage.Record) (bool, error) {
	return false, errors.New("disk full")
}

// newTestPool creates a worker pool backed by an in-memory driver.
// Callers should "wp.Close()" to drain enqueued jobs before asserting storage state.
func newTestPool() (*Pool, *inmemory.Driver, *testutils.MockPublisher) {
	driver := inmemory.NewDriver()
	pub := testutils.NewMockPublisher()

	wp, err := NewPool(&Config{
		Driver:    driver,
		Publisher: pub,
		Host:      "test-host",
		Logger:    logger.New(logger.WithWriter(GinkgoWriter), logger.WithDebug(true)),
	})
	Expect(err).NotTo(HaveOccurred())

	return wp, driver, pub
}

var _ = Describe("Worker Pool", func() {
	var (
		wp     *Pool
		driver *inmemory.Driver
		pub    *testutils.MockPublisher
		ctx    context.Context
	)

	BeforeEach(func() {
		wp, driver, pub = newTestPool()
		ctx = context.Background()
	})

	Describe("NewPool", func() {
		It("requires a driver", func() {
			_, err := NewPool(&Config{})
			Expect(err).To(MatchError(ContainSubstring("storage driver")))
			wp.Close()
		})

		It("applies defaults", func() {
			Expect(wp.config.NumWorkers).To(Equal(defaultNumWorkers))
			Expect(wp.config.QueueSize).To(Equal(defaultJobQueueSize))
			Expect(cap(wp.queue)).To(Equal(int(defaultJobQueueSize)))
			wp.Close()
		})
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{Record: testutils.NewTestRecord("s1", 0, "{}")})).To(BeTrue())
			wp.Close()
		})

		It("drops jobs when the queue is full", func() {
			blocked := &blockingDriver{Driver: inmemory.NewDriver(), release: make(chan struct{})}
			small, err := NewPool(&Config{Driver: blocked, NumWorkers: 1, QueueSize: 1})
			Expect(err).NotTo(HaveOccurred())

			// The first job occupies the worker, the second fills the queue.
			Expect(small.Enqueue(Job{Record: testutils.NewTestRecord("s1", 0, "")})).To(BeTrue())
			Eventually(func() int { return len(small.queue) }).Should(Equal(0))
			Expect(small.Enqueue(Job{Record: testutils.NewTestRecord("s1", 1, "")})).To(BeTrue())
			Expect(small.Enqueue(Job{Record: testutils.NewTestRecord("s1", 2, "")})).To(BeFalse())

			close(blocked.release)
			small.Close()

			records, err := blocked.Records(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			wp.Close()
		})
	})

	Describe("record jobs", func() {
		It("stores records and publishes each new one", func() {
			for seq := range 5 {
				Expect(wp.Enqueue(Job{Record: testutils.NewTestRecord("s1", seq, "{}")})).To(BeTrue())
			}
			wp.Close()

			records, err := driver.Records(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(5))

			events := pub.Records()
			Expect(events).To(HaveLen(5))
			for _, ev := range events {
				Expect(ev.EventType).To(Equal(eventstream.EventTypeStreamRecord))
				Expect(ev.Source.Host).To(Equal("test-host"))
				Expect(ev.Record.SessionID).To(Equal("s1"))
			}
		})

		It("does not republish duplicate records", func() {
			Expect(wp.Enqueue(Job{Record: testutils.NewTestRecord("s1", 0, "{}")})).To(BeTrue())
			Expect(wp.Enqueue(Job{Record: testutils.NewTestRecord("s1", 0, "{}")})).To(BeTrue())
			wp.Close()

			Expect(pub.Records()).To(HaveLen(1))
		})

		It("keeps storing when publishing fails", func() {
			pub.FailPublish = true
			Expect(wp.Enqueue(Job{Record: testutils.NewTestRecord("s1", 0, "{}")})).To(BeTrue())
			wp.Close()

			records, err := driver.Records(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})

		It("skips publishing when storage fails", func() {
			failing, err := NewPool(&Config{Driver: &failingDriver{inmemory.NewDriver()}, Publisher: pub})
			Expect(err).NotTo(HaveOccurred())

			Expect(failing.Enqueue(Job{Record: testutils.NewTestRecord("s1", 0, "{}")})).To(BeTrue())
			failing.Close()

			Expect(pub.Records()).To(BeEmpty())
			wp.Close()
		})
	})

	Describe("turn jobs", func() {
		It("publishes completed turns", func() {
			turn := eventstream.NewTurnCompletedEvent("s1", llm.ConversationTurn{Provider: "openai"}, time.Now(), time.Now())
			Expect(wp.Enqueue(Job{Turn: turn})).To(BeTrue())
			wp.Close()

			Expect(pub.Turns()).To(ConsistOf(turn))
		})
	})

	Describe("Close", func() {
		It("is safe to call twice", func() {
			wp.Close()
			Expect(wp.Close).NotTo(Panic())
		})
	})
})

package testutils

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/storage"
)

// DescribeDriver registers the behaviour every storage.Driver shares.
// newDriver is called before each spec and must return an empty store.
func DescribeDriver(newDriver func() storage.Driver) {
	Describe("storage.Driver", func() {
		var (
			driver storage.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = nil
			driver = newDriver()
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Close()).To(Succeed())
			}
		})

		Describe("PutRecord", func() {
			It("inserts a new record", func() {
				inserted, err := driver.PutRecord(ctx, NewTestRecord("s1", 0, `{"n":0}`))
				Expect(err).NotTo(HaveOccurred())
				Expect(inserted).To(BeTrue())
			})

			It("is a no-op for an existing session and sequence", func() {
				_, err := driver.PutRecord(ctx, NewTestRecord("s1", 0, `{"n":0}`))
				Expect(err).NotTo(HaveOccurred())

				inserted, err := driver.PutRecord(ctx, NewTestRecord("s1", 0, `{"n":"changed"}`))
				Expect(err).NotTo(HaveOccurred())
				Expect(inserted).To(BeFalse())

				records, err := driver.Records(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))
				Expect(records[0].Payload).To(Equal(`{"n":0}`))
			})

			It("rejects invalid records", func() {
				_, err := driver.PutRecord(ctx, nil)
				Expect(err).To(HaveOccurred())

				_, err = driver.PutRecord(ctx, NewTestRecord("", 0, ""))
				Expect(err).To(HaveOccurred())
			})
		})

		Describe("Records", func() {
			It("returns records ordered by sequence", func() {
				for _, seq := range []int{2, 0, 1} {
					_, err := driver.PutRecord(ctx, NewTestRecord("s1", seq, ""))
					Expect(err).NotTo(HaveOccurred())
				}

				records, err := driver.Records(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(3))
				for i, r := range records {
					Expect(r.Sequence).To(Equal(i))
				}
			})

			It("round-trips every field", func() {
				want := NewTestRecord("s1", 4, "")
				want.Kind = storage.KindDecodeError
				want.Payload = `{"broken"`
				want.Error = "unexpected end of JSON input"

				_, err := driver.PutRecord(ctx, want)
				Expect(err).NotTo(HaveOccurred())

				records, err := driver.Records(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))

				got := records[0]
				Expect(got.SessionID).To(Equal(want.SessionID))
				Expect(got.Sequence).To(Equal(want.Sequence))
				Expect(got.Provider).To(Equal(want.Provider))
				Expect(got.Model).To(Equal(want.Model))
				Expect(got.Kind).To(Equal(want.Kind))
				Expect(got.Payload).To(Equal(want.Payload))
				Expect(got.Error).To(Equal(want.Error))
				Expect(got.RecordedAt.Equal(want.RecordedAt)).To(BeTrue())
			})

			It("keeps sessions apart", func() {
				_, err := driver.PutRecord(ctx, NewTestRecord("s1", 0, "a"))
				Expect(err).NotTo(HaveOccurred())
				_, err = driver.PutRecord(ctx, NewTestRecord("s2", 0, "b"))
				Expect(err).NotTo(HaveOccurred())

				records, err := driver.Records(ctx, "s2")
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))
				Expect(records[0].Payload).To(Equal("b"))
			})

			It("returns NotFoundError for an unknown session", func() {
				_, err := driver.Records(ctx, "missing")
				var notFound storage.NotFoundError
				Expect(errors.As(err, &notFound)).To(BeTrue())
				Expect(notFound.SessionID).To(Equal("missing"))
			})
		})

		Describe("Sessions", func() {
			It("returns an empty list for an empty store", func() {
				sessions, err := driver.Sessions(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(sessions).To(BeEmpty())
			})

			It("summarizes each session oldest first", func() {
				later := NewTestRecord("later", 0, "")
				later.RecordedAt = later.RecordedAt.Add(100 * time.Second)
				_, err := driver.PutRecord(ctx, later)
				Expect(err).NotTo(HaveOccurred())

				for seq := range 3 {
					_, err := driver.PutRecord(ctx, NewTestRecord("first", seq, ""))
					Expect(err).NotTo(HaveOccurred())
				}

				sessions, err := driver.Sessions(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(sessions).To(HaveLen(2))

				first := sessions[0]
				Expect(first.ID).To(Equal("first"))
				Expect(first.Provider).To(Equal("test-provider"))
				Expect(first.Model).To(Equal("test-model"))
				Expect(first.Records).To(Equal(3))
				Expect(first.LastAt.Sub(first.StartedAt).Seconds()).To(BeNumerically("==", 2))

				Expect(sessions[1].ID).To(Equal("later"))
				Expect(sessions[1].Records).To(Equal(1))
			})
		})
	})
}

package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/storage"
	"github.com/papercomputeco/genai/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/genai/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DescribeDriver(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("stores copies of records", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()

		record := testutils.NewTestRecord("s1", 0, "original")
		_, err := d.PutRecord(ctx, record)
		Expect(err).NotTo(HaveOccurred())
		record.Payload = "mutated"

		records, err := d.Records(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].Payload).To(Equal("original"))

		records[0].Payload = "mutated again"
		again, err := d.Records(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].Payload).To(Equal("original"))
	})
})

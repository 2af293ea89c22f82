package sse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/sse"
)

// drain returns every complete block currently buffered in f.
func drain(f *sse.Framer) []string {
	var blocks []string
	for {
		block, ok := f.Next()
		if !ok {
			return blocks
		}
		blocks = append(blocks, block)
	}
}

var _ = Describe("Framer", func() {
	var f *sse.Framer

	BeforeEach(func() {
		f = sse.NewFramer()
	})

	Describe("Next", func() {
		It("needs more input when empty", func() {
			_, ok := f.Next()
			Expect(ok).To(BeFalse())
		})

		It("returns one block per delimiter", func() {
			Expect(f.Write([]byte("data: one\n\ndata: two\n\n"))).To(Succeed())

			block, ok := f.Next()
			Expect(ok).To(BeTrue())
			Expect(block).To(Equal("data: one"))

			block, ok = f.Next()
			Expect(ok).To(BeTrue())
			Expect(block).To(Equal("data: two"))

			_, ok = f.Next()
			Expect(ok).To(BeFalse())
			Expect(f.Buffered()).To(BeZero())
		})

		It("keeps undelimited text for the next write", func() {
			Expect(f.Write([]byte("data: par"))).To(Succeed())
			Expect(drain(f)).To(BeEmpty())

			Expect(f.Write([]byte("tial\n"))).To(Succeed())
			Expect(drain(f)).To(BeEmpty())

			Expect(f.Write([]byte("\n"))).To(Succeed())
			Expect(drain(f)).To(Equal([]string{"data: partial"}))
		})

		It("returns empty blocks for consecutive delimiters", func() {
			Expect(f.Write([]byte("\n\n\n\ndata: x\n\n"))).To(Succeed())
			Expect(drain(f)).To(Equal([]string{"", "", "data: x"}))
		})
	})

	Describe("Write", func() {
		It("folds CRLF line endings", func() {
			Expect(f.Write([]byte("data: a\r\n\r\ndata: b\r\n\r\n"))).To(Succeed())
			Expect(drain(f)).To(Equal([]string{"data: a", "data: b"}))
		})

		It("folds CRLF split across writes", func() {
			Expect(f.Write([]byte("data: a\r"))).To(Succeed())
			Expect(f.Write([]byte("\n\r"))).To(Succeed())
			Expect(f.Write([]byte("\n"))).To(Succeed())
			Expect(drain(f)).To(Equal([]string{"data: a"}))
		})

		It("holds back a rune split across writes", func() {
			euro := []byte("€")
			Expect(f.Write(append([]byte("data: "), euro[:1]...))).To(Succeed())
			Expect(f.Write(euro[1:2])).To(Succeed())
			Expect(f.Write(append(euro[2:], []byte("\n\n")...))).To(Succeed())

			Expect(drain(f)).To(Equal([]string{"data: €"}))
		})

		It("reports invalid utf-8 with its offset", func() {
			err := f.Write([]byte("data: ok\n\nxx\xffyy"))
			Expect(err).To(HaveOccurred())

			var encErr *sse.EncodingError
			Expect(err).To(BeAssignableToTypeOf(encErr))
			Expect(err.(*sse.EncodingError).Offset).To(Equal(int64(12)))

			// text before the bad byte is still framed
			Expect(drain(f)).To(Equal([]string{"data: ok"}))
		})

		It("counts offsets across writes", func() {
			Expect(f.Write([]byte("abc"))).To(Succeed())
			err := f.Write([]byte("d\xfe"))
			Expect(err).To(MatchError(ContainSubstring("offset 4")))
		})
	})

	Describe("Finish", func() {
		It("returns the discarded tail", func() {
			Expect(f.Write([]byte("data: done\n\ndata: {\"dangling\""))).To(Succeed())
			Expect(drain(f)).To(HaveLen(1))

			tail, err := f.Finish()
			Expect(err).NotTo(HaveOccurred())
			Expect(tail).To(Equal(`data: {"dangling"`))
			Expect(f.Buffered()).To(BeZero())
		})

		It("reports a rune truncated by the end of the stream", func() {
			Expect(f.Write([]byte{'a', 0xe2, 0x82})).To(Succeed())

			_, err := f.Finish()
			Expect(err).To(MatchError(ContainSubstring("offset 1")))
		})

		It("ignores a trailing carriage return", func() {
			Expect(f.Write([]byte("x\r"))).To(Succeed())

			_, err := f.Finish()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

package sse_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/genai/pkg/logger"
	"github.com/papercomputeco/genai/pkg/sse"
)

type event struct {
	A int `json:"a"`
}

// body is an io.ReadCloser that records how often it was read and closed.
type body struct {
	r      io.Reader
	reads  int
	closes int
}

func newBody(r io.Reader) *body {
	return &body{r: r}
}

func (b *body) Read(p []byte) (int, error) {
	b.reads++
	return b.r.Read(p)
}

func (b *body) Close() error {
	b.closes++
	return nil
}

// chunks returns a reader that yields each part in its own Read.
func chunks(parts ...string) io.Reader {
	readers := make([]io.Reader, len(parts))
	for i, p := range parts {
		readers[i] = &wholeReader{s: p}
	}
	return io.MultiReader(readers...)
}

// wholeReader returns its string in a single Read.
type wholeReader struct {
	s    string
	done bool
}

func (w *wholeReader) Read(p []byte) (int, error) {
	if w.done {
		return 0, io.EOF
	}
	w.done = true
	return copy(p, w.s), nil
}

// failingReader returns data together with err on its first Read.
type failingReader struct {
	data string
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	n := copy(p, f.data)
	return n, f.err
}

type item struct {
	event event
	err   error
}

func collect(s *sse.Stream[event]) []item {
	var items []item
	for v, err := range s.All() {
		items = append(items, item{event: v, err: err})
	}
	return items
}

var _ = Describe("Stream", func() {
	Describe("Next", func() {
		It("decodes events and filters the done sentinel", func() {
			b := newBody(strings.NewReader("data: {\"a\":1}\n\ndata: [DONE]\n\n"))
			s := sse.NewStream[event](b)

			v, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(v.A).To(Equal(1))

			_, err = s.Next()
			Expect(err).To(Equal(io.EOF))
			Expect(b.closes).To(Equal(1))

			_, err = s.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("decodes an event split across reads", func() {
			b := newBody(chunks(`data: {"a"`, ":1}\n\n"))
			items := collect(sse.NewStream[event](b))

			Expect(items).To(HaveLen(1))
			Expect(items[0].err).NotTo(HaveOccurred())
			Expect(items[0].event.A).To(Equal(1))
		})

		It("produces the same items regardless of chunking", func() {
			input := ": ping\n\n" +
				"data: {\"a\":1}\r\n\r\n" +
				"data: {\"a\":\"€\"}\n\n" +
				"event: x\n\n" +
				"data: {\"a\":3}\n\n" +
				"data:  [DONE] \n\n" +
				"data: {\"a\":"

			whole := collect(sse.NewStream[event](newBody(strings.NewReader(input))))
			single := collect(sse.NewStream[event](newBody(iotest.OneByteReader(strings.NewReader(input)))))
			tiny := collect(sse.NewStream[event](newBody(strings.NewReader(input)), sse.WithReadSize(3)))

			Expect(whole).To(HaveLen(3))
			Expect(whole[0].event.A).To(Equal(1))
			Expect(whole[1].err).To(BeAssignableToTypeOf(&sse.DecodeError{}))
			Expect(whole[2].event.A).To(Equal(3))

			for _, other := range [][]item{single, tiny} {
				Expect(other).To(HaveLen(len(whole)))
				for i := range whole {
					Expect(other[i].event).To(Equal(whole[i].event))
					if whole[i].err == nil {
						Expect(other[i].err).NotTo(HaveOccurred())
					} else {
						Expect(other[i].err).To(MatchError(whole[i].err.Error()))
					}
				}
			}
		})

		It("skips blocks without a data line", func() {
			b := newBody(strings.NewReader(": keep-alive\n\nid: 1\n\n\n\ndata: {\"a\":7}\n\n"))
			items := collect(sse.NewStream[event](b))

			Expect(items).To(HaveLen(1))
			Expect(items[0].event.A).To(Equal(7))
		})

		It("continues after invalid json", func() {
			b := newBody(strings.NewReader("data: {not json\n\ndata: {\"a\":2}\n\n"))
			s := sse.NewStream[event](b)

			_, err := s.Next()
			var decodeErr *sse.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Payload).To(Equal("{not json"))
			Expect(sse.IsTerminal(err)).To(BeFalse())

			v, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(v.A).To(Equal(2))

			_, err = s.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("reports schema mismatches as decode errors", func() {
			b := newBody(strings.NewReader("data: {\"a\":\"nope\"}\n\n"))
			items := collect(sse.NewStream[event](b))

			Expect(items).To(HaveLen(1))
			Expect(items[0].err).To(BeAssignableToTypeOf(&sse.DecodeError{}))
		})

		It("discards a dangling partial event", func() {
			b := newBody(strings.NewReader("data: {\"a\":1}\n\ndata: {\"a\":2}"))
			items := collect(sse.NewStream[event](b))

			Expect(items).To(HaveLen(1))
			Expect(items[0].event.A).To(Equal(1))
			Expect(b.closes).To(Equal(1))
		})

		It("yields nothing for an empty body", func() {
			b := newBody(strings.NewReader(""))
			s := sse.NewStream[event](b)

			_, err := s.Next()
			Expect(err).To(Equal(io.EOF))
			Expect(b.closes).To(Equal(1))
		})
	})

	Describe("terminal errors", func() {
		It("surfaces a transport error once and closes", func() {
			boom := errors.New("connection reset")
			b := newBody(io.MultiReader(
				strings.NewReader("data: {\"a\":1}\n\n"),
				iotest.ErrReader(boom),
			))
			s := sse.NewStream[event](b)

			v, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(v.A).To(Equal(1))

			_, err = s.Next()
			var transportErr *sse.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(err).To(MatchError(boom))
			Expect(sse.IsTerminal(err)).To(BeTrue())
			Expect(b.closes).To(Equal(1))

			_, err = s.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("emits events read together with a transport error first", func() {
			boom := errors.New("unexpected eof")
			b := newBody(&failingReader{data: "data: {\"a\":5}\n\n", err: boom})
			items := collect(sse.NewStream[event](b))

			Expect(items).To(HaveLen(2))
			Expect(items[0].event.A).To(Equal(5))
			Expect(items[1].err).To(MatchError(boom))
		})

		It("surfaces invalid utf-8 once and closes", func() {
			b := newBody(strings.NewReader("data: {\"a\":1}\n\ndata: \xff\n\ndata: {\"a\":2}\n\n"))
			items := collect(sse.NewStream[event](b))

			Expect(items).To(HaveLen(2))
			Expect(items[0].event.A).To(Equal(1))

			var encErr *sse.EncodingError
			Expect(errors.As(items[1].err, &encErr)).To(BeTrue())
			Expect(encErr.Offset).To(Equal(int64(21)))
			Expect(b.closes).To(Equal(1))
		})

		It("fails when an event grows past the size limit", func() {
			b := newBody(strings.NewReader("data: " + strings.Repeat("x", 64)))
			s := sse.NewStream[event](b, sse.WithReadSize(16), sse.WithMaxEventSize(32))

			_, err := s.Next()
			Expect(err).To(MatchError(sse.ErrEventTooLarge))
			Expect(b.closes).To(Equal(1))
		})
	})

	Describe("laziness", func() {
		It("does not read the body before it is asked to", func() {
			b := newBody(strings.NewReader("data: {\"a\":1}\n\n"))
			_ = sse.NewStream[event](b)
			Expect(b.reads).To(BeZero())
		})

		It("serves buffered events without reading again", func() {
			b := newBody(chunks("data: {\"a\":1}\n\ndata: {\"a\":2}\n\n", "data: {\"a\":3}\n\n"))
			s := sse.NewStream[event](b)

			_, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(b.reads).To(Equal(1))

			_, err = s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(b.reads).To(Equal(1))
		})
	})

	Describe("Close", func() {
		It("closes the body exactly once", func() {
			b := newBody(strings.NewReader("data: {\"a\":1}\n\n"))
			s := sse.NewStream[event](b)

			Expect(s.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(b.closes).To(Equal(1))

			_, err := s.Next()
			Expect(err).To(Equal(io.EOF))
			Expect(b.reads).To(BeZero())
		})

		It("closes the body when iteration stops early", func() {
			b := newBody(strings.NewReader("data: {\"a\":1}\n\ndata: {\"a\":2}\n\n"))
			s := sse.NewStream[event](b)

			for range s.All() {
				break
			}
			Expect(b.closes).To(Equal(1))
		})
	})

	Describe("options", func() {
		It("tees raw bytes verbatim", func() {
			input := "data: {\"a\":1}\r\n\r\n: ping\n\ndata: [DONE]\n\n"
			var raw bytes.Buffer
			collect(sse.NewStream[event](newBody(strings.NewReader(input)), sse.WithTee(&raw)))

			Expect(raw.String()).To(Equal(input))
		})

		It("notifies the observer of every item", func() {
			type seen struct {
				payload string
				err     error
			}
			var observed []seen
			boom := errors.New("gone")

			b := newBody(io.MultiReader(
				strings.NewReader("data: {\"a\":1}\n\ndata: nope\n\n"),
				iotest.ErrReader(boom),
			))
			collect(sse.NewStream[event](b, sse.WithObserver(func(payload string, err error) {
				observed = append(observed, seen{payload, err})
			})))

			Expect(observed).To(HaveLen(3))
			Expect(observed[0].payload).To(Equal(`{"a":1}`))
			Expect(observed[0].err).NotTo(HaveOccurred())
			Expect(observed[1].payload).To(Equal("nope"))
			Expect(observed[1].err).To(HaveOccurred())
			Expect(observed[2].payload).To(BeEmpty())
			Expect(observed[2].err).To(MatchError(boom))
		})

		It("joins multi-line data when asked to", func() {
			type text struct {
				Lines []string `json:"lines"`
			}
			b := newBody(strings.NewReader("data: {\"lines\":\ndata: [\"a\",\"b\"]}\n\n"))
			s := sse.NewStream[text](b, sse.WithJoinedData())

			v, err := s.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Lines).To(Equal([]string{"a", "b"}))
		})

		It("logs undecodable payloads", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))

			b := newBody(strings.NewReader("data: garbage\n\n"))
			collect(sse.NewStream[event](b, sse.WithLogger(l)))

			Expect(buf.String()).To(ContainSubstring("undecodable event"))
			Expect(buf.String()).To(ContainSubstring("garbage"))
			Expect(buf.String()).To(ContainSubstring(slog.LevelWarn.String()))
		})
	})
})

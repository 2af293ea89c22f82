// Package sse provides an incremental, pull-driven Server-Sent Events decoder
// used by the genai provider clients to turn a long-lived HTTP response body
// into a lazy sequence of typed events.
//
// The pipeline is split into small pieces that can be used independently:
//
//	┌──────────────────┐
//	│ body io.Reader   │  raw byte chunks
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│ Framer           │  utf-8 text, split on "\n\n"
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│ ExtractData      │  "data: " payload, "[DONE]" filtered
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│ Decode[T]        │  JSON into T or *DecodeError
//	└──────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│ Stream[T]        │  Next / All
//	└──────────────────┘
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

const (
	// Delimiter separates two events in the stream.
	Delimiter = "\n\n"

	// DataPrefix marks a data line. Only the exact prefix, including the
	// single space, is recognised.
	DataPrefix = "data: "

	// DoneSentinel is the OpenAI end-of-stream marker. It is filtered and
	// never surfaces as an item or an error.
	DoneSentinel = "[DONE]"
)

package sse

import "strings"

// Extractor pulls the data payload out of an event block. It reports false
// when the block carries nothing to decode.
type Extractor func(block string) (string, bool)

// ExtractData returns the first "data: " line of block whose trimmed value is
// not the [DONE] sentinel. Blocks made only of comments, other fields or
// sentinels report false. Any further data lines in the block are ignored.
func ExtractData(block string) (string, bool) {
	for line := range strings.Lines(block) {
		line = strings.TrimRight(line, "\r\n")

		payload, ok := strings.CutPrefix(line, DataPrefix)
		if !ok {
			continue
		}
		if isDone(payload) {
			continue
		}
		return payload, true
	}
	return "", false
}

// ExtractJoinedData follows the SSE standard: every "data:" line of the
// block contributes, with one optional leading space stripped, and the
// values are joined with "\n". A block whose joined value is the [DONE]
// sentinel reports false.
func ExtractJoinedData(block string) (string, bool) {
	var (
		parts []string
		found bool
	)

	for line := range strings.Lines(block) {
		line = strings.TrimRight(line, "\r\n")

		value, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		found = true
		parts = append(parts, strings.TrimPrefix(value, " "))
	}

	if !found {
		return "", false
	}

	payload := strings.Join(parts, "\n")
	if isDone(payload) {
		return "", false
	}
	return payload, true
}

func isDone(payload string) bool {
	return strings.TrimSpace(payload) == DoneSentinel
}

package sse

import "encoding/json"

// Decode parses a data payload as JSON into a T. On failure it returns the
// zero T and a *DecodeError carrying the payload.
func Decode[T any](payload string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		var zero T
		return zero, &DecodeError{Payload: payload, Err: err}
	}
	return v, nil
}

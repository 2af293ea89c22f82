// Package testutils holds helpers shared by genai tests.
package testutils

import (
	"time"

	"github.com/papercomputeco/genai/pkg/storage"
)

// testEpoch is the RecordedAt of sequence 0 in NewTestRecord.
var testEpoch = time.Unix(1735689600, 0).UTC()

// NewTestRecord creates a decoded-event record for testing. RecordedAt
// advances one second per sequence.
func NewTestRecord(sessionID string, seq int, payload string) *storage.Record {
	return &storage.Record{
		SessionID:  sessionID,
		Sequence:   seq,
		Provider:   "test-provider",
		Model:      "test-model",
		Kind:       storage.KindEvent,
		Payload:    payload,
		RecordedAt: testEpoch.Add(time.Duration(seq) * time.Second),
	}
}

package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papercomputeco/genai/pkg/llm"
)

const (
	sessionFile = "session.json"
)

// SessionState is the persisted state of the last chat session.
type SessionState struct {
	// ID identifies the session in recorded streams.
	ID string `json:"id"`

	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Messages is the conversation history in chronological order
	// (oldest first).
	Messages []llm.Message `json:"messages"`

	UpdatedAt time.Time `json:"updated_at"`
}

// LoadSession loads the session state from a target .genai/session.json.
// Returns nil, nil if no session has been saved.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadSession(overrideDir string) (*SessionState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, sessionFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	state := &SessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing session state: %w", err)
	}

	return state, nil
}

// SaveSession persists the session state to a target .genai/session.json.
func (m *Manager) SaveSession(state *SessionState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil session state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}

	path := filepath.Join(dir, sessionFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}

	return nil
}

// ClearSession removes the session state file so the next chat starts a new
// conversation. Returns nil if the file doesn't exist.
func (m *Manager) ClearSession(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, sessionFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing session state: %w", err)
	}

	return nil
}

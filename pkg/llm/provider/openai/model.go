package openai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidModel is returned by ParseModel for names that are not known
// OpenAI models.
var ErrInvalidModel = errors.New("invalid model")

// Model is an OpenAI model identifier. Any string may be sent to the API;
// the constants below are the models genai knows the capabilities of.
type Model string

const (
	// Gpt4oMini is the default model.
	// https://platform.openai.com/docs/models/gpt-4o-mini
	Gpt4oMini  Model = "gpt-4o-mini"
	Gpt4o      Model = "gpt-4o"
	Gpt4_1     Model = "gpt-4.1"
	Gpt4_1Mini Model = "gpt-4.1-mini"
	Gpt4_1Nano Model = "gpt-4.1-nano"
	Gpt5_1     Model = "gpt-5.1"
	Gpt5       Model = "gpt-5"
	Gpt5Mini   Model = "gpt-5-mini"
	Gpt5Nano   Model = "gpt-5-nano"
)

// DefaultModel is used when no model is configured.
const DefaultModel = Gpt4oMini

// modelAliases maps alternative spellings to canonical models.
var modelAliases = map[string]Model{
	"gpt-4-1":      Gpt4_1,
	"gpt-4-1-mini": Gpt4_1Mini,
	"gpt-4-1-nano": Gpt4_1Nano,
	"gpt-5-1":      Gpt5_1,
}

// Models returns every known model in a stable order.
func Models() []Model {
	return []Model{
		Gpt4oMini,
		Gpt4o,
		Gpt4_1,
		Gpt4_1Mini,
		Gpt4_1Nano,
		Gpt5_1,
		Gpt5,
		Gpt5Mini,
		Gpt5Nano,
	}
}

// ParseModel resolves a model name, with or without the "models/" prefix,
// to a known Model.
func ParseModel(name string) (Model, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "models/")

	if m, ok := modelAliases[name]; ok {
		return m, nil
	}
	if _, ok := capabilities[Model(name)]; ok {
		return Model(name), nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidModel, name)
}

// String returns the model identifier sent on the wire.
func (m Model) String() string {
	return string(m)
}

// Known reports whether the capabilities of m are known.
func (m Model) Known() bool {
	_, ok := capabilities[m]
	return ok
}

// Role is the author of a chat message.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
)

// ReasoningEffort constrains how much reasoning a model does before
// answering.
type ReasoningEffort string

const (
	EffortNone    ReasoningEffort = "none"
	EffortMinimal ReasoningEffort = "minimal"
	EffortLow     ReasoningEffort = "low"
	EffortMedium  ReasoningEffort = "medium"
	EffortHigh    ReasoningEffort = "high"
	EffortXHigh   ReasoningEffort = "xhigh"
)

// ParseReasoningEffort parses a lowercase effort name.
func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	switch e := ReasoningEffort(strings.ToLower(strings.TrimSpace(s))); e {
	case EffortNone, EffortMinimal, EffortLow, EffortMedium, EffortHigh, EffortXHigh:
		return e, nil
	default:
		return "", fmt.Errorf("unknown reasoning effort %q", s)
	}
}

package openai

// Capabilities records which request parameters a model accepts.
type Capabilities struct {
	// Temperature is false for models that reject a sampling temperature.
	Temperature bool

	// Reasoning is true for models that accept a reasoning effort.
	Reasoning bool

	// Caching is true for models that accept prompt cache keys.
	Caching bool

	// EffortRewrites maps efforts the model does not accept to the value
	// sent instead. Only consulted when Reasoning is true.
	EffortRewrites map[ReasoningEffort]ReasoningEffort
}

var (
	gpt4Efforts = map[ReasoningEffort]ReasoningEffort{
		EffortXHigh: EffortHigh,
	}
	gpt5Efforts = map[ReasoningEffort]ReasoningEffort{
		EffortXHigh:   EffortHigh,
		EffortMinimal: EffortNone,
	}
)

var capabilities = map[Model]Capabilities{
	Gpt4oMini:  {Temperature: true, EffortRewrites: gpt4Efforts},
	Gpt4o:      {Temperature: true, EffortRewrites: gpt4Efforts},
	Gpt4_1:     {Temperature: true, Reasoning: true, Caching: true, EffortRewrites: gpt4Efforts},
	Gpt4_1Mini: {Temperature: true, EffortRewrites: gpt4Efforts},
	Gpt4_1Nano: {Temperature: true, EffortRewrites: gpt4Efforts},
	Gpt5_1:     {Reasoning: true, Caching: true, EffortRewrites: gpt5Efforts},
	Gpt5:       {Reasoning: true, Caching: true, EffortRewrites: gpt5Efforts},
	Gpt5Mini:   {EffortRewrites: gpt5Efforts},
	Gpt5Nano:   {EffortRewrites: gpt5Efforts},
}

// CapabilitiesOf returns the capabilities of m. The second result is false
// for unknown models.
func CapabilitiesOf(m Model) (Capabilities, bool) {
	c, ok := capabilities[m]
	return c, ok
}

// SanitizeParams holds the request fields that depend on model
// capabilities. Nil and empty values are fields the request does not set.
type SanitizeParams struct {
	Temperature    *float64
	Effort         *ReasoningEffort
	CacheKey       string
	CacheRetention string
}

// Sanitize returns p with the fields model does not support dropped or
// rewritten: temperature is removed where forbidden, reasoning effort is
// removed for non-reasoning models and otherwise rewritten to a supported
// value, and prompt cache fields are cleared for models without caching.
// Parameters for unknown models are returned untouched.
func Sanitize(model Model, p SanitizeParams) SanitizeParams {
	caps, ok := capabilities[model]
	if !ok {
		return p
	}

	if !caps.Temperature {
		p.Temperature = nil
	}

	if p.Effort != nil {
		if !caps.Reasoning {
			p.Effort = nil
		} else if to, ok := caps.EffortRewrites[*p.Effort]; ok {
			p.Effort = &to
		}
	}

	if !caps.Caching {
		p.CacheKey = ""
		p.CacheRetention = ""
	}

	return p
}

package budget

import "strings"

// Profile describes one model's token capacities.
type Profile struct {
	Provider        string
	Model           string
	ContextTokens   int
	MaxOutputTokens int
	ReservedTokens  int
}

// Usable returns the input budget left after reserving room for system
// overhead and the model's output.
func (p Profile) Usable() int {
	u := p.ContextTokens - p.ReservedTokens - p.MaxOutputTokens
	if u < 0 {
		return 0
	}
	return u
}

// Valid reports whether the profile leaves any usable input budget.
func (p Profile) Valid() bool {
	return p.ContextTokens > 0 && p.ReservedTokens+p.MaxOutputTokens < p.ContextTokens
}

// charsPerToken is a conservative estimate; real tokenizers average closer to
// 4 chars per token for English but drop below 3 for CJK text and diffs.
const charsPerToken = 3

// Estimate approximates the token count of text. It is deterministic and
// monotonically increasing in input length, which is all the budgeting
// pipeline needs.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// DefaultProfile is the fallback used when a model has no configured or
// built-in profile. Sized for the common case of a privately hosted
// 32k-context model so budgeting degrades gracefully instead of failing.
func DefaultProfile(provider, model string) Profile {
	return Profile{
		Provider:        provider,
		Model:           model,
		ContextTokens:   32768,
		MaxOutputTokens: 4096,
		ReservedTokens:  1000,
	}
}

// builtins holds profiles for models we know about. Config-file profiles
// take precedence over these.
var builtins = map[string]Profile{
	"gpt-4o":           {ContextTokens: 128000, MaxOutputTokens: 8192, ReservedTokens: 2000},
	"gpt-4o-mini":      {ContextTokens: 128000, MaxOutputTokens: 8192, ReservedTokens: 2000},
	"gpt-4-turbo":      {ContextTokens: 128000, MaxOutputTokens: 4096, ReservedTokens: 2000},
	"gemini-2.0-flash": {ContextTokens: 1048576, MaxOutputTokens: 8192, ReservedTokens: 2000},
	"gemini-1.5-pro":   {ContextTokens: 1048576, MaxOutputTokens: 8192, ReservedTokens: 2000},
}

// Lookup resolves a profile for provider/model, preferring overrides, then
// built-ins (exact match, then prefix match so dated snapshots like
// gpt-4o-2024-08-06 resolve), then the conservative default. It never fails:
// an unknown model must not block the pipeline.
func Lookup(provider, model string, overrides map[string]Profile) Profile {
	if p, ok := overrides[model]; ok && p.Valid() {
		p.Provider = provider
		p.Model = model
		return p
	}
	if p, ok := overrides["default"]; ok && p.Valid() {
		p.Provider = provider
		p.Model = model
		return p
	}
	if p, ok := builtins[model]; ok {
		p.Provider = provider
		p.Model = model
		return p
	}
	for name, p := range builtins {
		if strings.HasPrefix(model, name) {
			p.Provider = provider
			p.Model = model
			return p
		}
	}
	return DefaultProfile(provider, model)
}

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dshills/gitmate/internal/budget"
)

// Request is one completion call: a system prompt, a user prompt, and the
// model profile that bounds the call.
type Request struct {
	System      string
	User        string
	Profile     budget.Profile
	Temperature float64
}

// Response is the normalized result of a completion call, whichever backend
// produced it.
type Response struct {
	Text         string
	FinishReason string
	TokensUsed   int
}

// Invoker is the provider abstraction. Adapters are interchangeable once
// constructed; callers never branch on provider identity after dispatch.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Settings carries the per-adapter connection configuration. It is built by
// the configuration layer; this package never reads config files itself.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	ProxyURL string
	Timeout  time.Duration
}

// New creates the adapter for the configured provider. The provider set is
// closed: OpenAI-compatible, Gemini-compatible, and locally hosted
// OpenAI-compatible endpoints.
func New(s Settings) (Invoker, error) {
	switch s.Provider {
	case "openai":
		return NewOpenAI(s)
	case "gemini", "google":
		return NewGemini(s)
	case "local", "ollama", "lmstudio":
		return NewLocal(s)
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}
}

// newHTTPClient builds the adapter's HTTP client, honoring an optional
// outbound proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}
	return client, nil
}

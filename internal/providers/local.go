package providers

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const defaultLocalURL = "http://localhost:11434"

// Local implements Invoker for locally hosted OpenAI-compatible servers
// (Ollama, LM Studio, vLLM). No API key is required by default.
type Local struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewLocal creates a local-endpoint adapter from settings.
func NewLocal(s Settings) (*Local, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultLocalURL
	}

	// Accept any of host, host/v1, or the full completions path.
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	timeout := s.Timeout
	if timeout == 0 {
		// Local models are slow; give them more room than hosted APIs.
		timeout = 300 * time.Second
	}
	client, err := newHTTPClient(s.ProxyURL, timeout)
	if err != nil {
		return nil, err
	}

	return &Local{
		apiKey:  s.APIKey,
		model:   s.Model,
		baseURL: baseURL + "/v1/chat/completions",
		client:  client,
	}, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) Invoke(ctx context.Context, req Request) (Response, error) {
	return openaiInvoke(ctx, l.client, l.baseURL, l.apiKey, l.Name(), l.model, req)
}

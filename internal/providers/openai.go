package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements Invoker for OpenAI and OpenAI-compatible hosted APIs.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI adapter from settings.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("openai: no API key configured (set GITMATE_OPENAI_API_KEY or llm.openai.api_key)")
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	client, err := newHTTPClient(s.ProxyURL, s.Timeout)
	if err != nil {
		return nil, err
	}
	return &OpenAI{
		apiKey:  s.APIKey,
		model:   s.Model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Invoke(ctx context.Context, req Request) (Response, error) {
	return openaiInvoke(ctx, o.client, o.baseURL, o.apiKey, o.Name(), o.model, req)
}

// openaiInvoke performs one chat-completion call against an OpenAI-shaped
// endpoint. Shared by the hosted OpenAI adapter and the local adapter, which
// speak the same wire format.
func openaiInvoke(ctx context.Context, client *http.Client, baseURL, apiKey, provider, model string, req Request) (Response, error) {
	maxTokens := req.Profile.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	fail := func(kind Kind, status int, detail string, cause error) *Error {
		return &Error{Kind: kind, Provider: provider, Model: model, Status: status, Body: detail, Cause: cause}
	}

	var resp Response
	err = retryWithBackoff(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+apiKey)
		}

		httpResp, err := client.Do(httpReq)
		if err != nil {
			return fail(classifyTransport(err), 0, "", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fail(Unreachable, httpResp.StatusCode, "", err)
		}

		switch {
		case httpResp.StatusCode == 429:
			return fail(RateLimited, 429, "", nil)
		case httpResp.StatusCode == 401 || httpResp.StatusCode == 403:
			return fail(Unauthorized, httpResp.StatusCode, string(respBody), nil)
		case httpResp.StatusCode >= 500:
			return fail(Unreachable, httpResp.StatusCode, string(respBody), nil)
		case httpResp.StatusCode != 200:
			return fail(MalformedResponse, httpResp.StatusCode, string(respBody), nil)
		}

		var result openaiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fail(MalformedResponse, 200, "", err)
		}
		if len(result.Choices) == 0 {
			return fail(MalformedResponse, 200, "no choices in response", nil)
		}
		if result.Choices[0].Message.Content == "" {
			return fail(MalformedResponse, 200, "empty completion text", nil)
		}

		resp = Response{
			Text:         result.Choices[0].Message.Content,
			FinishReason: result.Choices[0].FinishReason,
			TokensUsed:   result.Usage.TotalTokens,
		}
		return nil
	})

	return resp, err
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini implements Invoker for Google's Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a Gemini adapter from settings.
func NewGemini(s Settings) (*Gemini, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("gemini: no API key configured (set GITMATE_GEMINI_API_KEY or llm.gemini.api_key)")
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	client, err := newHTTPClient(s.ProxyURL, s.Timeout)
	if err != nil {
		return nil, err
	}
	return &Gemini{
		apiKey:  s.APIKey,
		model:   s.Model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Invoke(ctx context.Context, req Request) (Response, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	maxTokens := req.Profile.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.User}}},
		},
		GenerationConfig: &geminiGenConfig{MaxOutputTokens: maxTokens},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.Temperature > 0 {
		body.GenerationConfig.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	fail := func(kind Kind, status int, detail string, cause error) *Error {
		return &Error{Kind: kind, Provider: g.Name(), Model: g.model, Status: status, Body: detail, Cause: cause}
	}

	var resp Response
	err = retryWithBackoff(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := g.client.Do(httpReq)
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

		var result geminiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fail(MalformedResponse, 200, "", err)
		}
		if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
			return fail(MalformedResponse, 200, "no content in response", nil)
		}

		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			text += part.Text
		}
		if text == "" {
			return fail(MalformedResponse, 200, "empty completion text", nil)
		}

		resp = Response{
			Text:         text,
			FinishReason: result.Candidates[0].FinishReason,
			TokensUsed:   result.UsageMetadata.TotalTokenCount,
		}
		return nil
	})

	return resp, err
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}

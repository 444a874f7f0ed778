// Package providers implements the Invoker interface for each supported
// completion backend.
//
// The provider set is closed: OpenAI-compatible hosted APIs, Google's Gemini
// API, and locally hosted OpenAI-compatible servers (Ollama, LM Studio,
// vLLM). Adapters are interchangeable once constructed; callers never branch
// on provider identity after [New] dispatches.
//
// Every failure is a typed [*Error] whose [Kind] drives retry policy:
// RateLimited, Timeout, and Unreachable are retried twice with exponential
// backoff, Unauthorized and MalformedResponse propagate immediately. Each
// adapter owns its authentication, base URL, and outbound proxy; tests point
// baseURL at local httptest servers instead of making live calls.
package providers

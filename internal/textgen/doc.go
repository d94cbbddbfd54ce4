// Package textgen talks to an OpenAI-style chat completion endpoint and
// exposes it to the pipeline as a one-method Generator interface.
//
// The HTTP client truncates oversized prompts, authenticates with a bearer
// token, and retries transient failures (408, 429, 5xx, network timeouts)
// with exponential backoff, honouring Retry-After when the server sends one.
package textgen

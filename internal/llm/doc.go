// Package llm is the outbound boundary to external text-generation services.
//
// Callers depend only on the Generator interface. Providers for Gemini,
// Anthropic and OpenAI are selected by configuration and wrapped in a Service
// that bounds every call with a timeout and an outbound rate limit. Calls are
// made once; there is no retry. When no credential is configured New returns
// ErrServiceUnavailable so callers can degrade to their fallbacks.
package llm

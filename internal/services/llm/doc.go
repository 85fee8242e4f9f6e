// Package llm talks to an OpenRouter-compatible chat-completions API to turn
// extracted context objects into qualitative insights. Requests are JSON-only
// with bounded retry: 429s and 5xx responses back off exponentially, honoring
// Retry-After when the server sends one.
package llm

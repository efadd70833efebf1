// Package providers implements the client for the reviewing endpoint.
//
// The endpoint speaks the OpenAI chat-completions protocol, which covers
// OpenAI itself as well as local servers such as LM Studio, Ollama, and
// OpenWebUI behind a configurable base URL.
//
// Requests share a common retry helper with exponential back-off and
// rate-limit handling; authentication failures are surfaced immediately and
// never retried.
package providers

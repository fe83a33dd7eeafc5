// Package llm provides a chat client for OpenAI-compatible completion APIs.
//
// The segmentation package uses it to turn transcript text into subtitle
// fragments, one fragment per reply line.
//
// # Configuration
//
// Requires api_key; base_url, model, temperature and timeout are optional.
// ResolveEndpoint documents how base_url maps to the request URL.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteText: send system/user prompts, receive the reply text.
// Client.CompleteJSON: same, with a JSON response format requested.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty replies and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). A Retry-After header replaces the next delay. Context
// cancellation aborts retries immediately.
package llm

// Package streetapi provides an HTTP client for the street exploration API.
//
// # Overview
//
// The API picks street-level panoramas, writes descriptions of them and keeps
// a per-session exploration preference. Every endpoint answers with the same
// envelope:
//
//	{"success": true, "data": {...}, "error": "..."}
//
// The client unwraps the envelope and turns success=false, or any 4xx/5xx
// status, into an *APIError carrying the server's message.
//
// # Endpoints
//
//   - GET  {prefix}/locations/random
//   - GET  {prefix}/locations/{id}/description?lang=xx
//   - GET  {prefix}/locations/{id}/detailed-description?lang=xx
//   - POST {prefix}/preferences/exploration
//   - POST {prefix}/preferences/exploration/remove
//
// The prefix defaults to /api/v1. Location identifiers are escaped as a single
// path element. When a SessionSource is supplied, each request carries its ID
// in the X-Session-ID header so the server can scope preferences.
//
// # Client Usage
//
//	client, err := streetapi.NewClient("127.0.0.1:8080", "", sessions)
//	if err != nil {
//		return err
//	}
//	loc, err := client.FetchRandomLocation(ctx)
//	desc, err := client.FetchDescription(ctx, loc.PanoID, "en")
//
// The client does not retry and does not bound attempts beyond a 60 second
// backstop. The describe package owns timeouts, retries and cancellation, and
// passes a context per attempt.
//
// # Caching
//
// CachedDescriptions wraps any Describer with an LRU keyed by kind, location
// and language. Only non-empty successful descriptions are cached.
//
// # Error Handling
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "api /api/v1/locations/x/description returned status 502: upstream model unavailable"
//   - "decode response: unexpected end of JSON input"
package streetapi

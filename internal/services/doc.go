// Package services defines the [Service] interface for the remote
// text-to-music generation API and its HTTP implementation.
//
// The concrete client, [SunoService], talks to a suno-api style proxy over
// JSON/HTTP. All calls are throttled to a minimum inter-request gap and fail
// fast with [shared.ErrMissingCredentials] when no API key is configured.
package services

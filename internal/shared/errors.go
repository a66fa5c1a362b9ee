package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and transport errors
	ErrNetwork     = fmt.Errorf("network request failed")
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrEmptyResult = fmt.Errorf("empty response from service")

	// Generation lifecycle errors
	ErrPollTimeout     = fmt.Errorf("generation polling timed out")
	ErrNoGeneration    = fmt.Errorf("no generation in flight")
	ErrTrackNotFound   = fmt.Errorf("track not found")
	ErrTrackIncomplete = fmt.Errorf("track is not complete")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

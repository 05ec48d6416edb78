package video

import "errors"

var (
	// ErrInvalidInput is returned for a missing or malformed identifier, URL or time window
	ErrInvalidInput = errors.New("invalid input")

	// ErrResolution is returned when the upstream metadata or stream lookup fails
	ErrResolution = errors.New("resolution failed")

	// ErrExtraction is returned when reading the remote stream or transcoding fails
	ErrExtraction = errors.New("extraction failed")

	// ErrConfiguration is returned when a required capability (such as credentials) is missing
	ErrConfiguration = errors.New("configuration missing")
)

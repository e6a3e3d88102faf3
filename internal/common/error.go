// Package common defines shared sentinel errors and small helpers used across
// cryptonaut components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrInvalidURL is returned when a target address uses a scheme other
	// than https.
	ErrInvalidURL = errors.New("invalid url")

	// ErrLogSetup is returned when the log file cannot be created or opened.
	ErrLogSetup = errors.New("failed to create log file")
)

package datasource

import (
	"errors"
	"fmt"
)

// ErrLocationNotFound is returned when the provider does not know the city
var ErrLocationNotFound = errors.New("location not found")

// ProviderError covers every other failure: transport errors, unexpected
// statuses and bodies that don't decode. StatusCode is 0 when no response
// was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

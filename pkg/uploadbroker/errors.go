package uploadbroker

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrMissingFilename indicates the upload intent lacked a filename or a
	// positive size
	ErrMissingFilename = errors.New("missing filename or size")

	// ErrFileTooLarge indicates the declared size exceeds the configured ceiling
	ErrFileTooLarge = errors.New("file too large")

	// ErrMissingObjectKey indicates a completion request without an object key
	ErrMissingObjectKey = errors.New("missing objectKey")

	// ErrObjectNotFound indicates the referenced object was never written
	ErrObjectNotFound = errors.New("object not found")
)

// ConfigError reports operator misconfiguration: a credential or identifier
// that must be present for the operation is absent. Distinct from bad client
// input, which never produces a ConfigError.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Key)
}

// UpstreamError reports a rejection from a remote dependency (the token
// endpoint or the ledger append endpoint). The request that needed it fails
// as a whole; there is no automatic retry.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.StatusCode, e.Body)
}

package sigv4

import "errors"

var (
	// ErrMissingCredentials indicates the access key, secret or account
	// identifier is absent. This is operator misconfiguration, not a
	// malformed client request.
	ErrMissingCredentials = errors.New("missing storage credentials")
)

package sigv4

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultExpiry bounds presigned URL validity when no duration is given.
	DefaultExpiry = 15 * time.Minute

	// region and service form the R2 credential scope. R2 accepts exactly
	// this pair for bucket operations.
	region  = "auto"
	service = "s3"

	amzDateFormat = "20060102T150405Z"
	endpointBase  = ".r2.cloudflarestorage.com"
)

// PresignedURL is an ephemeral authorization for a single PUT on a single
// object path. It is never stored.
type PresignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// Presigner mints presigned PUT URLs for one bucket under one credential.
type Presigner struct {
	accessKeyID     string
	secretAccessKey string
	accountID       string
	bucket          string
	now             func() time.Time
}

// Option configures a Presigner.
type Option func(*Presigner)

// WithClock replaces the time source, pinning signatures in tests.
func WithClock(now func() time.Time) Option {
	return func(p *Presigner) { p.now = now }
}

// NewPresigner creates a Presigner. All credential parts are required; a
// missing one is reported immediately as ErrMissingCredentials so the
// operator hears about it at startup, not on first upload.
func NewPresigner(accessKeyID, secretAccessKey, accountID, bucket string, opts ...Option) (*Presigner, error) {
	if accessKeyID == "" || secretAccessKey == "" || accountID == "" {
		return nil, ErrMissingCredentials
	}
	p := &Presigner{
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		accountID:       accountID,
		bucket:          bucket,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PresignPutObject returns a URL authorizing exactly one HTTP PUT on the
// given object key for the stated window. The signature parameter is
// appended last and is not part of the canonical query.
func (p *Presigner) PresignPutObject(objectKey string, expires time.Duration) (*PresignedURL, error) {
	if p.accessKeyID == "" || p.secretAccessKey == "" || p.accountID == "" {
		return nil, ErrMissingCredentials
	}
	if expires <= 0 {
		expires = DefaultExpiry
	}

	now := p.now().UTC()
	amzDate := now.Format(amzDateFormat)
	dateStamp := amzDate[:8]
	scope := strings.Join([]string{dateStamp, region, service, terminator}, "/")

	host := p.accountID + endpointBase
	uri := "/" + p.bucket + "/" + EncodePath(objectKey)

	query := map[string]string{
		"X-Amz-Algorithm":     Algorithm,
		"X-Amz-Credential":    p.accessKeyID + "/" + scope,
		"X-Amz-Date":          amzDate,
		"X-Amz-Expires":       strconv.FormatInt(int64(expires/time.Second), 10),
		"X-Amz-SignedHeaders": "host",
	}

	canonical := CanonicalRequest(http.MethodPut, uri, query, map[string]string{"host": host}, UnsignedPayload)
	stringToSign := strings.Join([]string{
		Algorithm,
		amzDate,
		scope,
		SHA256Hex([]byte(canonical)),
	}, "\n")

	signingKey := DeriveSigningKey(p.secretAccessKey, dateStamp, region, service)
	signature := HMACSHA256Hex(signingKey, []byte(stringToSign))

	return &PresignedURL{
		URL:       "https://" + host + uri + "?" + CanonicalQuery(query) + "&X-Amz-Signature=" + signature,
		ExpiresAt: now.Add(expires),
	}, nil
}

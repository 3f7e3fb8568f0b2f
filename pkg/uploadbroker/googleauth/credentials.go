// Package googleauth mints short-lived Google service-account access tokens
// by exchanging a self-signed RS256 assertion at the OAuth2 token endpoint,
// and caches the resulting token process-wide until near expiry.
package googleauth

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
)

const (
	// TokenURL is the endpoint the signed assertion is exchanged at. It is
	// also the assertion's audience.
	TokenURL = "https://oauth2.googleapis.com/token"

	// SpreadsheetsScope authorizes spreadsheet writes, the only scope the
	// broker ever requests.
	SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

	assertionLifetime = time.Hour
)

// Credentials holds the service-account identity and its signing key. The
// key material is process-wide configuration: loaded once, never logged,
// never returned to a client.
type Credentials struct {
	Email      string
	PrivateKey *rsa.PrivateKey
}

// ParseCredentials loads service-account credentials from the issuer email
// and PEM-armored private key material. Environment-delivered keys often
// carry literal "\n" escapes in place of newlines; those are normalized
// before parsing. Missing or malformed material is a fatal configuration
// error.
func ParseCredentials(email, privateKeyPEM string) (*Credentials, error) {
	if email == "" || privateKeyPEM == "" {
		return nil, &uploadbroker.ConfigError{Key: "Google service account credentials"}
	}

	normalized := strings.ReplaceAll(privateKeyPEM, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(normalized))
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}

	return &Credentials{
		Email:      email,
		PrivateKey: key,
	}, nil
}

// SignAssertion builds and signs the three-part assertion presented to the
// token endpoint: RS256 header, claims (issuer, scope, audience, issued-at,
// one hour expiry), and the RSASSA-PKCS1-v1_5/SHA-256 signature, all
// base64url-encoded without padding.
func (c *Credentials) SignAssertion(now time.Time, scope, audience string) (string, error) {
	claims := jwt.MapClaims{
		"iss":   c.Email,
		"scope": scope,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// Package sigv4 implements the subset of AWS Signature Version 4 needed to
// presign direct PUT requests against an R2 bucket. The canonical string
// assembly and the derived key chain must be byte-exact; a single wrong byte
// surfaces as a rejection at the storage provider, not locally.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const (
	// Algorithm identifies the signing scheme in the presigned query string.
	Algorithm = "AWS4-HMAC-SHA256"

	// UnsignedPayload is the payload-hash sentinel used when the body is not
	// available at signing time. The broker never buffers upload bytes, so
	// every presigned PUT uses it.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// keyPrefix and terminator are literal constants from the signing
	// specification, not configuration.
	keyPrefix  = "AWS4"
	terminator = "aws4_request"
)

// SHA256Hex returns the SHA-256 digest of data as lowercase hex.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HMACSHA256 returns the raw HMAC-SHA256 of data under key.
func HMACSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// HMACSHA256Hex returns the HMAC-SHA256 of data under key as lowercase hex.
func HMACSHA256Hex(key, data []byte) string {
	return hex.EncodeToString(HMACSHA256(key, data))
}

// DeriveSigningKey chains four keyed hashes over the credential scope to
// produce the signing key used instead of the raw secret.
func DeriveSigningKey(secret, dateStamp, region, service string) []byte {
	kDate := HMACSHA256([]byte(keyPrefix+secret), []byte(dateStamp))
	kRegion := HMACSHA256(kDate, []byte(region))
	kService := HMACSHA256(kRegion, []byte(service))
	return HMACSHA256(kService, []byte(terminator))
}

package sigv4

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func newTestPresigner(t *testing.T) *Presigner {
	t.Helper()
	p, err := NewPresigner("AKIDEXAMPLE", "secret-key", "acct123", "gallery-uploads", WithClock(fixedClock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestNewPresignerRequiresCredentials(t *testing.T) {
	tests := []struct {
		name                    string
		accessKey, secret, acct string
	}{
		{"no access key", "", "s", "a"},
		{"no secret", "k", "", "a"},
		{"no account", "k", "s", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPresigner(tt.accessKey, tt.secret, tt.acct, "bucket")
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestPresignPutObjectDeterministic(t *testing.T) {
	p := newTestPresigner(t)

	first, err := p.PresignPutObject("2024/03/15/abc-photo.png", 900*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.PresignPutObject("2024/03/15/abc-photo.png", 900*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.URL != second.URL {
		t.Errorf("same inputs and clock should reproduce the URL byte-for-byte:\n%s\n%s", first.URL, second.URL)
	}
}

func TestPresignPutObjectShape(t *testing.T) {
	p := newTestPresigner(t)

	signed, err := p.PresignPutObject("2024/03/15/abc-a b.png", 900*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPrefix := "https://acct123.r2.cloudflarestorage.com/gallery-uploads/2024/03/15/abc-a%20b.png?"
	if !strings.HasPrefix(signed.URL, wantPrefix) {
		t.Fatalf("expected prefix %s, got %s", wantPrefix, signed.URL)
	}

	u, err := url.Parse(signed.URL)
	if err != nil {
		t.Fatalf("presigned URL does not parse: %v", err)
	}
	q := u.Query()

	if got := q.Get("X-Amz-Algorithm"); got != Algorithm {
		t.Errorf("algorithm: expected %s, got %s", Algorithm, got)
	}
	if got := q.Get("X-Amz-Credential"); got != "AKIDEXAMPLE/20240315/auto/s3/aws4_request" {
		t.Errorf("unexpected credential %s", got)
	}
	if got := q.Get("X-Amz-Date"); got != "20240315T103000Z" {
		t.Errorf("unexpected date %s", got)
	}
	if got := q.Get("X-Amz-Expires"); got != "900" {
		t.Errorf("unexpected expires %s", got)
	}
	if got := q.Get("X-Amz-SignedHeaders"); got != "host" {
		t.Errorf("unexpected signed headers %s", got)
	}
	if sig := q.Get("X-Amz-Signature"); !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(sig) {
		t.Errorf("signature should be 64 lowercase hex chars, got %q", sig)
	}

	// The signature must come last and stay outside the canonical query.
	if !strings.Contains(signed.URL, "&X-Amz-Signature=") || !strings.HasSuffix(signed.URL, q.Get("X-Amz-Signature")) {
		t.Errorf("signature parameter should be appended last: %s", signed.URL)
	}

	if want := fixedClock().Add(900 * time.Second); !signed.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, signed.ExpiresAt)
	}
}

func TestPresignPutObjectDefaultExpiry(t *testing.T) {
	p := newTestPresigner(t)

	signed, err := p.PresignPutObject("k", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := url.QueryEscape("900"); !strings.Contains(signed.URL, "X-Amz-Expires="+got) {
		t.Errorf("expected default 900s expiry in %s", signed.URL)
	}
}

func TestPresignSignatureVariesWithKey(t *testing.T) {
	p := newTestPresigner(t)

	a, _ := p.PresignPutObject("k1", time.Minute)
	b, _ := p.PresignPutObject("k2", time.Minute)
	sigA := a.URL[strings.LastIndex(a.URL, "=")+1:]
	sigB := b.URL[strings.LastIndex(b.URL, "=")+1:]
	if sigA == sigB {
		t.Error("different object keys must not share a signature")
	}
}

// Package objectkey derives storage object keys for gallery uploads.
//
// Keys have the shape YYYY/MM/DD/<random-token>-<sanitized-filename>: a UTC
// date prefix for browsability and a random token that makes collisions
// vanishingly unlikely, so a presigned write can only ever hit a fresh key.
package objectkey

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLength = 120
	fallbackName  = "upload.bin"
)

var disallowed = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client-supplied filename to a safe name
// component: the last path segment only, runs of disallowed characters
// collapsed to a single underscore, truncated to 120 characters, never empty.
func SanitizeFilename(name string) string {
	base := name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		base = name[i+1:]
	}
	if base == "" {
		return fallbackName
	}
	base = disallowed.ReplaceAllString(base, "_")
	if len(base) > maxNameLength {
		base = base[:maxNameLength]
	}
	if base == "" {
		return fallbackName
	}
	return base
}

// Generator builds object keys. The zero-value defaults use the wall clock
// and random UUIDs; tests pin both.
type Generator struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the time source for the date prefix.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc replaces the random token source.
func WithIDFunc(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateKey derives a fresh object key for the given filename.
func (g *Generator) GenerateKey(filename string) string {
	now := g.now().UTC()
	return fmt.Sprintf("%04d/%02d/%02d/%s-%s",
		now.Year(), int(now.Month()), now.Day(), g.newID(), SanitizeFilename(filename))
}

// EncodeKeyPath escapes each key segment for use in a URL, preserving the
// '/' separators.
func EncodeKeyPath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

package sigv4

import (
	"sort"
	"strings"
)

// CanonicalRequest assembles the deterministic signable string from the
// request parts: METHOD, URI, QUERY, HEADERS, SIGNED-HEADER NAMES and the
// payload hash, newline-joined. Identical inputs always yield identical
// output. Header names are lower-cased and sorted; the same sorted list is
// the signed-header list.
func CanonicalRequest(method, uri string, query map[string]string, headers map[string]string, payloadHash string) string {
	names := make([]string, 0, len(headers))
	lowered := make(map[string]string, len(headers))
	for name, value := range headers {
		lower := strings.ToLower(name)
		names = append(names, lower)
		lowered[lower] = strings.TrimSpace(value)
	}
	sort.Strings(names)

	var canonicalHeaders strings.Builder
	for _, name := range names {
		canonicalHeaders.WriteString(name)
		canonicalHeaders.WriteByte(':')
		canonicalHeaders.WriteString(lowered[name])
		canonicalHeaders.WriteByte('\n')
	}

	return strings.Join([]string{
		method,
		uri,
		CanonicalQuery(query),
		canonicalHeaders.String(),
		strings.Join(names, ";"),
		payloadHash,
	}, "\n")
}

// CanonicalQuery sorts parameters lexicographically by key and
// percent-encodes both keys and values with the strict unreserved set.
// For any permutation of the same mapping the output is byte-identical.
func CanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = URIEncode(k) + "=" + URIEncode(params[k])
	}
	return strings.Join(pairs, "&")
}

// URIEncode percent-encodes every byte outside the unreserved set
// (A-Z, a-z, 0-9, '-', '.', '_', '~') using uppercase hex. This is stricter
// than net/url escaping: space becomes %20, '+' becomes %2B and '/' is
// always encoded.
func URIEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

// EncodePath encodes a key for use as a canonical URI, escaping each segment
// while preserving the '/' separators.
func EncodePath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = URIEncode(segment)
	}
	return strings.Join(segments, "/")
}

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

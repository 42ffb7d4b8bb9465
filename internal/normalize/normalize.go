// Package normalize derives stable deduplication keys from item titles and
// URLs. The hashes are weak by design: they cluster near-duplicate stories,
// they are not a security boundary.
package normalize

import (
	"net/url"
	"strconv"
	"strings"
)

// trackingParams are stripped from URLs before hashing so that the same story
// shared through different campaigns collapses onto one hash.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "ref", "source"}

// URL canonicalizes a raw URL for hashing: tracking parameters removed,
// lower-cased, trailing slash stripped. It never fails; unparseable input
// degrades to the lower-cased raw string.
func URL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	query := parsed.Query()
	for _, param := range trackingParams {
		query.Del(param)
	}
	parsed.RawQuery = query.Encode()

	return strings.TrimSuffix(strings.ToLower(parsed.String()), "/")
}

// ContentHash reduces a (title, url) pair to a short hex digest. The title is
// lower-cased and stripped to alphanumerics, joined with the normalized URL,
// and folded through a djb2-style rolling hash (seed 5381, multiplier 33,
// XOR-combined per character) with 32-bit wraparound. Deterministic across
// runs for identical input.
func ContentHash(title, rawURL string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	b.WriteByte('|')
	b.WriteString(URL(rawURL))

	return HashString(b.String())
}

// HashString applies the raw djb2-style hash to an arbitrary string and
// renders the absolute value in base 16.
func HashString(input string) string {
	h := int32(5381)
	for _, r := range input {
		h = (h * 33) ^ int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 16)
}

// FeedExternalID derives a deterministic external identifier for feed entries
// that carry no source-native ID. A 31x shift-add hash of the entry URL with
// 32-bit wraparound, absolute value, rendered in base 36.
func FeedExternalID(rawURL string) string {
	h := int32(0)
	for _, r := range rawURL {
		h = (h << 5) - h + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

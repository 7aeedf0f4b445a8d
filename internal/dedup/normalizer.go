package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	urlPattern    = regexp.MustCompile(`https?://\S+`)
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
	queryPattern  = regexp.MustCompile(`\?.*$`)
)

// Normalize canonicalizes posting text for near-duplicate comparison.
// Reposts that differ only in casing, whitespace, numeric figures, URLs
// or contact emails normalize to the same string. When the residual text
// is shorter than 20 characters and the posting carried at least one URL,
// the normalized URLs themselves become the signature so URL-only reposts
// still collide.
func Normalize(text string) string {
	text = strings.ToLower(text)

	urls := urlPattern.FindAllString(text, -1)

	stripped := urlPattern.ReplaceAllString(text, "")
	stripped = emailPattern.ReplaceAllString(stripped, "")
	// Numbers vary between reposts (salary figures, headcounts)
	stripped = numberPattern.ReplaceAllString(stripped, "")
	stripped = strings.Join(strings.Fields(stripped), " ")

	if len(stripped) < 20 && len(urls) > 0 {
		normalized := make([]string, 0, len(urls))
		for _, url := range urls {
			url = queryPattern.ReplaceAllString(url, "")
			url = strings.TrimRight(url, "/")
			normalized = append(normalized, url)
		}
		return strings.Join(normalized, " ")
	}

	return stripped
}

// Hash returns the sha256 hex digest of the normalized text
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

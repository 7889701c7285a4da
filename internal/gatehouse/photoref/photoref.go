// Package photoref normalizes opaque photo references to a canonical display
// URL.  References arrive from the mobile client in several shapes — a full
// URL, a URL with a doubled host prefix (a known client bug), a URL missing
// its scheme, or a bare public id — and every read path wants exactly one
// canonical form.  The core never fetches image bytes.
package photoref

import "strings"

const hostPrefix = "https://res.cloudinary.com/"

// Resolver expands bare public ids against BaseURL.
type Resolver struct {
	// BaseURL is the delivery prefix for bare public ids,
	// e.g. "https://res.cloudinary.com/demo/image/upload".
	BaseURL string
}

// Normalize returns the canonical display URL for input, or "" for an empty
// reference.
func (r *Resolver) Normalize(input string) string {
	if input == "" {
		return ""
	}

	// Repair the doubled host prefix some client versions produce.
	cleaned := strings.Replace(input, hostPrefix+hostPrefix, hostPrefix, 1)

	// Already a full valid URL.
	if strings.HasPrefix(cleaned, hostPrefix) {
		return cleaned
	}

	// Missing scheme only.
	if strings.HasPrefix(cleaned, "res.cloudinary.com/") {
		return "https://" + cleaned
	}

	// Bare public id.
	return strings.TrimSuffix(r.BaseURL, "/") + "/" + strings.TrimPrefix(cleaned, "/")
}

// PublicID extracts the path-only public id from a delivery URL: the part
// after "/upload/", minus any version segment and file extension.  Returns
// the input unchanged if it does not look like a delivery URL — callers may
// already hold a bare id.
func PublicID(url string) string {
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok {
		return url
	}

	// Strip a leading version segment ("v1234567890/").
	if len(rest) > 1 && rest[0] == 'v' {
		if seg, remainder, found := strings.Cut(rest[1:], "/"); found && isDigits(seg) {
			rest = remainder
		}
	}

	// Strip the file extension from the last segment.
	if dot := strings.LastIndexByte(rest, '.'); dot > strings.LastIndexByte(rest, '/') {
		rest = rest[:dot]
	}
	return rest
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

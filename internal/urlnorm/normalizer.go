// internal/urlnorm/normalizer.go
package urlnorm

import (
	"net/url"
	"strings"
)

// Tracking parameters stripped during normalization. Prefix entries match any
// parameter beginning with the prefix; exact entries match the whole name.
var (
	trackingPrefixes = []string{"utm_", "ga_", "mc_"}

	trackingParams = map[string]bool{
		"fbclid":     true,
		"gclid":      true,
		"dclid":      true,
		"msclkid":    true,
		"igshid":     true,
		"ref_src":    true,
		"ref_url":    true,
		"_hsenc":     true,
		"_hsmi":      true,
		"oly_enc_id": true,
	}
)

// Normalizer canonicalizes URLs so identical logical URLs share a single
// cache and rule-matching identity.
type Normalizer struct {
	stripFragment bool
	stripTracking bool
}

// NewNormalizer creates a normalizer with the default canonicalization rules.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		stripFragment: true,
		stripTracking: true,
	}
}

// Normalize canonicalizes a raw URL string. Parsing never fails the caller:
// malformed input degrades to a trimmed, lower-cased copy so detection can
// proceed with reduced confidence downstream.
func (n *Normalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if n.stripFragment {
		u.Fragment = ""
		u.RawFragment = ""
	}

	if n.stripTracking && u.RawQuery != "" {
		u.RawQuery = stripTrackingParams(u.RawQuery)
	}

	return u.String()
}

// stripTrackingParams removes known tracking parameters from a raw query
// string. Remaining parameters keep their original order, which url.Values
// would not preserve.
func stripTrackingParams(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(pairs))

	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		name := pair
		if idx := strings.Index(pair, "="); idx >= 0 {
			name = pair[:idx]
		}
		if isTrackingParam(name) {
			continue
		}
		kept = append(kept, pair)
	}

	return strings.Join(kept, "&")
}

// isTrackingParam reports whether a query parameter name is on the tracking
// blacklist.
func isTrackingParam(name string) bool {
	decoded, err := url.QueryUnescape(name)
	if err != nil {
		decoded = name
	}
	lower := strings.ToLower(decoded)

	if trackingParams[lower] {
		return true
	}
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

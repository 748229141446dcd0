package text

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer keeps safe formatting tags of extracted article HTML.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a UGC policy with nofollow, target=_blank links.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return &Sanitizer{policy: p}
}

// Sanitize returns the cleaned HTML, trimmed.
func (s *Sanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// Package sanitize strips unsafe markup from user-supplied rich text.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// HTML keeps the formatting tags allowed in user content and drops scripts,
// event handlers and unsafe URLs.
func HTML(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// Optional is HTML for optional fields.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := HTML(*s)
	return &clean
}

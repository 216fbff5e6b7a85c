package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from user supplied text before it is stored.
type Sanitizer struct {
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		strict: bluemonday.StrictPolicy(),
		ugc:    bluemonday.UGCPolicy(),
	}
}

// textPasses bounds how many decode and strip rounds Text runs before it
// gives up and keeps the policy's escaped output.
const textPasses = 4

// Text removes every tag, including tags hidden behind HTML entities, and
// returns plain text. The result is stable: Text(Text(x)) == Text(x), so it
// never decodes into markup.
func (s *Sanitizer) Text(in string) string {
	out := strings.TrimSpace(in)
	for i := 0; i < textPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(html.UnescapeString(out))))
		if next == out {
			return out
		}
		out = next
	}
	return strings.TrimSpace(s.strict.Sanitize(out))
}

// RichText keeps the formatting tags a note or description may carry.
func (s *Sanitizer) RichText(in string) string {
	return strings.TrimSpace(s.ugc.Sanitize(in))
}

// Package anchor derives GitHub-compatible link anchors from heading text.
package anchor

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugger assigns anchors to headings in document order. Repeated headings
// get "-1", "-2" suffixes, as GitHub renders them. The zero value is ready
// to use; a Slugger is not safe for concurrent use.
type Slugger struct {
	seen map[string]int
}

// Next returns the anchor for the next heading with the given text.
func (s *Slugger) Next(text string) string {
	if s.seen == nil {
		s.seen = make(map[string]int)
	}

	base := Slug(text)
	count := s.seen[base]
	s.seen[base] = count + 1

	if count == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(count)
}

// Slug converts heading text to an anchor without duplicate handling:
// lowercase, letters, digits, '-' and '_' kept, spaces become hyphens,
// everything else dropped.
func Slug(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == ' ':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

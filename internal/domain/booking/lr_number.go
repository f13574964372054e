package booking

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLRSequenceWidth is the zero-padding of the LR sequence part
const DefaultLRSequenceWidth = 3

// FallbackOrigin is used when the origin has no ASCII letters
const FallbackOrigin = "LR"

// LRNumberFormat builds `{ORIGIN}-{YY}-{SEQ}` numbers. The sequence is
// allocated per (organization, prefix) by the repository.
type LRNumberFormat struct {
	Width int
}

// NewLRNumberFormat creates a format, falling back to the default width
func NewLRNumberFormat(width int) LRNumberFormat {
	if width <= 0 {
		width = DefaultLRSequenceWidth
	}
	return LRNumberFormat{Width: width}
}

// Prefix returns the `{ORIGIN}-{YY}` part for a booking created at the given time
func (f LRNumberFormat) Prefix(fromLocation string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%02d", OriginCode(fromLocation), createdAt.UTC().Year()%100)
}

// Format joins a prefix and a sequence value; the sequence grows past the
// width instead of wrapping
func (f LRNumberFormat) Format(prefix string, seq int64) string {
	width := f.Width
	if width <= 0 {
		width = DefaultLRSequenceWidth
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, seq)
}

var upper = cases.Upper(language.Und)

// OriginCode returns the first three ASCII letters of the location with
// diacritics stripped, upper-cased
func OriginCode(location string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, location)
	if err != nil {
		folded = location
	}
	folded = upper.String(folded)

	var b strings.Builder
	for _, r := range folded {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return FallbackOrigin
	}
	return b.String()
}

// Package numerator parses, formats and advances human-readable document codes.
// Pattern: PREFIX-YY-NNNN (e.g., INV-24-0007).
package numerator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWidth is the minimum zero-padded width of the sequence part.
const DefaultWidth = 4

// Code is an immutable document code value.
type Code struct {
	Prefix   string `json:"prefix"`
	Year     string `json:"year"`
	Sequence int64  `json:"sequence"`
	Width    int    `json:"width"`
}

// String implements fmt.Stringer.
func (c Code) String() string {
	return Format(c)
}

// Format renders the code, zero-padding the sequence to Width.
// Year is used verbatim.
func Format(c Code) string {
	width := c.Width
	if width < DefaultWidth {
		width = DefaultWidth
	}
	return fmt.Sprintf("%s-%s-%0*d", c.Prefix, c.Year, width, c.Sequence)
}

// Successor returns the next code in the same prefix and year.
// The year segment is never rolled over here; only the server starts a new year.
func Successor(c Code) Code {
	return Code{
		Prefix:   c.Prefix,
		Year:     c.Year,
		Sequence: c.Sequence + 1,
		Width:    c.Width,
	}
}

// Before reports whether c precedes other within the same prefix and year.
// Codes of different prefix or year are not comparable and report false.
func (c Code) Before(other Code) bool {
	if !strings.EqualFold(c.Prefix, other.Prefix) || c.Year != other.Year {
		return false
	}
	return c.Sequence < other.Sequence
}

var (
	exactPattern    = regexp.MustCompile(`^(.+?)-(\d{2}|\d{4})-(\d+)$`)
	bareDigits      = regexp.MustCompile(`^\d+$`)
	trailingDigitRe = regexp.MustCompile(`(\d+)\D*$`)
)

// Codec parses codes for one document prefix.
// Defaults (prefix, current year) fill in whatever a tolerant parse cannot recover.
type Codec struct {
	Prefix string
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// NewCodec creates a codec for the given prefix.
func NewCodec(prefix string) Codec {
	return Codec{Prefix: prefix, Now: time.Now}
}

// CurrentYear returns the two-digit current year.
func (k Codec) CurrentYear() string {
	now := time.Now
	if k.Now != nil {
		now = k.Now
	}
	return now().Format("06")
}

// Seed returns the first code of the current year (PREFIX-YY-0001).
func (k Codec) Seed() Code {
	return Code{
		Prefix:   k.Prefix,
		Year:     k.CurrentYear(),
		Sequence: 1,
		Width:    DefaultWidth,
	}
}

// Parse decodes raw into a Code.
//
// Accepted forms, in order:
//   - PREFIX-YY-N… (a four-digit year is reduced to its last two digits)
//   - bare digits (codec prefix, current year)
//   - any string ending in a digit run (that run is the sequence)
//
// Returns false when raw contains no digits or the digit run overflows.
func (k Codec) Parse(raw string) (Code, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Code{}, false
	}

	if m := exactPattern.FindStringSubmatch(raw); m != nil {
		seq, ok := parseSequence(m[3])
		if !ok {
			return Code{}, false
		}
		year := m[2]
		if len(year) == 4 {
			year = year[2:]
		}
		return Code{Prefix: m[1], Year: year, Sequence: seq, Width: widthOf(m[3])}, true
	}

	digits := ""
	switch {
	case bareDigits.MatchString(raw):
		digits = raw
	default:
		m := trailingDigitRe.FindStringSubmatch(raw)
		if m == nil {
			return Code{}, false
		}
		digits = m[1]
	}

	seq, ok := parseSequence(digits)
	if !ok {
		return Code{}, false
	}
	return Code{
		Prefix:   k.Prefix,
		Year:     k.CurrentYear(),
		Sequence: seq,
		Width:    widthOf(digits),
	}, true
}

// ParseStrict accepts only the full PREFIX-YY-N form carrying the codec's
// prefix (case-insensitive). The returned code uses the codec's spelling of
// the prefix.
func (k Codec) ParseStrict(raw string) (Code, bool) {
	m := exactPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil || !strings.EqualFold(m[1], k.Prefix) {
		return Code{}, false
	}
	c, ok := k.Parse(m[0])
	if !ok {
		return Code{}, false
	}
	c.Prefix = k.Prefix
	return c, true
}

// MustParse parses raw and panics on failure. Use only for constants and tests.
func (k Codec) MustParse(raw string) Code {
	c, ok := k.Parse(raw)
	if !ok {
		panic(fmt.Sprintf("numerator: cannot parse %q", raw))
	}
	return c
}

func parseSequence(digits string) (int64, bool) {
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// widthOf keeps every digit of the run: leading zeros included, never below DefaultWidth.
func widthOf(digits string) int {
	if len(digits) > DefaultWidth {
		return len(digits)
	}
	return DefaultWidth
}

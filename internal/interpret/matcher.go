package interpret

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Category is the kind of stamp line a matcher recognizes.
type Category int

const (
	CategoryNone Category = iota
	CategoryCode
	CategoryName
	CategoryArea
	CategoryHeight
)

func (c Category) String() string {
	switch c {
	case CategoryCode:
		return "code"
	case CategoryName:
		return "name"
	case CategoryArea:
		return "area"
	case CategoryHeight:
		return "height"
	}
	return "none"
}

// Match is the typed capture of one classified line.
type Match struct {
	Category Category
	Text     string  // code, name
	Value    float64 // area, height
	Unit     string  // area, height
}

// Matcher classifies a normalized line.
type Matcher interface {
	Match(line string) (Match, bool)
}

type textMatcher struct {
	cat     Category
	re      *regexp.Regexp
	exclude *regexp.Regexp
}

func (m textMatcher) Match(line string) (Match, bool) {
	if !m.re.MatchString(line) || (m.exclude != nil && m.exclude.MatchString(line)) {
		return Match{}, false
	}
	return Match{Category: m.cat, Text: line}, true
}

// measureMatcher captures a number and a unit; re must have them as the
// first and last submatch.
type measureMatcher struct {
	cat Category
	re  *regexp.Regexp
}

func (m measureMatcher) Match(line string) (Match, bool) {
	sm := m.re.FindStringSubmatch(line)
	if sm == nil {
		return Match{}, false
	}
	v, err := strconv.ParseFloat(sm[1], 64)
	if err != nil {
		return Match{}, false
	}
	return Match{Category: m.cat, Value: v, Unit: sm[len(sm)-1]}, true
}

var (
	// 1-2 digits, then ".A01"-style suffix, a "-3" or "-3.A01" floor/unit
	// part, or more digits with one lowercase letter.
	codePattern   = regexp.MustCompile(`^[0-9]{1,2}(\.[A-Z]?[A-Z0-9]{2,3}|-[0-9]{1,2}(\.[A-Z]?[A-Z0-9]{2,3})?|[0-9]{1,2}[a-z])$`)
	namePattern   = regexp.MustCompile(`^[\p{L}\p{N}_\s?!:-]+$`)
	digitsPattern = regexp.MustCompile(`^\p{Nd}+$`)
	areaPattern   = regexp.MustCompile(`^([0-9]+(\.[0-9]+)?)\s?([\p{L}\p{N}_]+)$`)
	heightPattern = regexp.MustCompile(`^RH\.?:\s?([0-9]+(\.[0-9]+)?)\s?([a-zA-Z]+)$`)
)

// DefaultMatchers returns the stamp line matchers in priority order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		textMatcher{cat: CategoryCode, re: codePattern},
		textMatcher{cat: CategoryName, re: namePattern, exclude: digitsPattern},
		measureMatcher{cat: CategoryArea, re: areaPattern},
		measureMatcher{cat: CategoryHeight, re: heightPattern},
	}
}

// NormalizeLine trims a recognized line and brings it into NFC form so a
// decomposed "u + combining diaeresis" reads as "ü". Unicode spaces such as
// U+00A0 become plain spaces; the patterns' \s is ASCII only.
func NormalizeLine(line string) string {
	line = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, line)
	return norm.NFC.String(strings.TrimSpace(line))
}

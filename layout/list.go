package layout

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// listIndentStep is the indentation increase, in points, read as one
// extra nesting level.
const listIndentStep = 15.0

// minListItems is the number of consecutive marked paragraphs required
// before they count as a list at all. A lone "1." is usually a heading
// number or a stray, not a list.
const minListItems = 2

// ListMarker is a recognized list item prefix with the text that follows.
type ListMarker struct {
	Ordered bool
	Number  int    // parsed value for ordered markers, 0 otherwise
	Prefix  string // the marker as it appeared
	Rest    string // item text after the marker
}

var (
	numberedPattern = regexp.MustCompile(`^(\d+)[.)]\s+`)
	letteredPattern = regexp.MustCompile(`^([a-zA-Z])[.)]\s+`)
	romanPattern    = regexp.MustCompile(`^([ivxlcdmIVXLCDM]+)[.)]\s+`)
)

// listBullets are the leading characters read as bullet markers.
var listBullets = map[rune]bool{
	'•': true, '●': true, '○': true, '◦': true, '◉': true,
	'■': true, '□': true, '▪': true, '▫': true,
	'-': true, '–': true, '—': true,
	'*': true, '✱': true,
	'→': true, '▶': true, '►': true, '▸': true, '➤': true, '➜': true,
	'‣': true, '⁃': true,
	'☐': true, '☑': true, '✓': true, '✔': true,
}

// ParseListMarker reports whether s opens with a list marker and, if so,
// describes it. Bullets win over numbers; single letters win over roman
// numerals, so "i." reads as the ninth letter, "ii." as roman two.
func ParseListMarker(s string) (ListMarker, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ListMarker{}, false
	}

	first, size := utf8.DecodeRuneInString(s)
	if listBullets[first] {
		rest := strings.TrimSpace(s[size:])
		if rest == "" {
			return ListMarker{}, false
		}
		return ListMarker{Prefix: string(first), Rest: rest}, true
	}

	if m := numberedPattern.FindStringSubmatch(s); m != nil {
		rest := s[len(m[0]):]
		if rest == "" {
			return ListMarker{}, false
		}
		n, _ := strconv.Atoi(m[1])
		return ListMarker{Ordered: true, Number: n, Prefix: strings.TrimSpace(m[0]), Rest: rest}, true
	}

	if m := letteredPattern.FindStringSubmatch(s); m != nil {
		rest := s[len(m[0]):]
		if rest == "" {
			return ListMarker{}, false
		}
		return ListMarker{Ordered: true, Number: letterValue(m[1]), Prefix: strings.TrimSpace(m[0]), Rest: rest}, true
	}

	if m := romanPattern.FindStringSubmatch(s); m != nil {
		rest := s[len(m[0]):]
		if rest == "" {
			return ListMarker{}, false
		}
		return ListMarker{Ordered: true, Number: romanValue(m[1]), Prefix: strings.TrimSpace(m[0]), Rest: rest}, true
	}

	return ListMarker{}, false
}

// letterValue maps a, b, c to 1, 2, 3, case-insensitively.
func letterValue(s string) int {
	r, _ := utf8.DecodeRuneInString(strings.ToLower(s))
	if r < 'a' || r > 'z' {
		return 0
	}
	return int(r-'a') + 1
}

var romanDigits = map[rune]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

// romanValue evaluates a roman numeral right to left, subtracting digits
// that precede a larger one.
func romanValue(s string) int {
	s = strings.ToUpper(s)
	total, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		val := romanDigits[rune(s[i])]
		if val < prev {
			total -= val
		} else {
			total += val
		}
		prev = val
	}
	return total
}

// isBulletMarkerText reports whether a standalone span's text is nothing
// but a bullet character. The table detector uses this to tell bulleted
// lists apart from two-column tables.
func isBulletMarkerText(s string) bool {
	switch strings.TrimSpace(s) {
	case "-", "–", "—", "•", "·", "*", "○", "▪", "◦", "▸", "▹", "►",
		"■", "●", "※", "□", "◆", "◇", "▶", "▷", "☞", "➤", "➜":
		return true
	}
	return false
}

// isNumberMarkerText reports whether a standalone span's text looks like
// a numbering marker: "1.", "12)", a bare number, or "a." style letters.
func isNumberMarkerText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}

	// Collapse internal whitespace so "1 ." still reads as a marker.
	var b strings.Builder
	for _, r := range trimmed {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if i := strings.IndexFunc(cleaned, func(r rune) bool { return r < '0' || r > '9' }); i > 0 {
		suffix := cleaned[i:]
		if suffix == "." || suffix == ")" {
			return true
		}
	}

	if _, err := strconv.ParseUint(cleaned, 10, 32); err == nil {
		return true
	}

	if len(cleaned) == 2 {
		if unicode.IsLetter(rune(cleaned[0])) && (cleaned[1] == '.' || cleaned[1] == ')') {
			return true
		}
	}

	return false
}

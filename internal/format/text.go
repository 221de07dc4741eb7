package format

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

// Duration renders a play time in minutes, e.g. "45m", "1h 5m" or "2d 3h"
func Duration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	const day = 24 * 60

	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < day:
		h, m := minutes/60, minutes%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		d, h := minutes/day, (minutes%day)/60
		if h == 0 {
			return fmt.Sprintf("%dd", d)
		}
		return fmt.Sprintf("%dd %dh", d, h)
	}
}

// Ordered longest first so that "YYYY" wins over "YY"
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
}

// segment is one piece of a display pattern: a Go layout for a date token
// or literal text copied as is
type segment struct {
	layout  string
	literal string
}

// parsePattern splits a display pattern such as "DD-MM-YYYY [at] HH:mm".
// Text in square brackets is literal. A run of letters is a token sequence
// only when tokens cover all of it, so words like "at" stay literal.
func parsePattern(pattern string) []segment {
	var segs []segment
	literal := func(s string) {
		if n := len(segs); n > 0 && segs[n-1].layout == "" {
			segs[n-1].literal += s
			return
		}
		segs = append(segs, segment{literal: s})
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		switch r := runes[i]; {
		case r == '[':
			end := i + 1
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			literal(string(runes[i+1 : end]))
			i = min(end+1, len(runes))
		case unicode.IsLetter(r):
			end := i
			for end < len(runes) && unicode.IsLetter(runes[end]) {
				end++
			}
			run := string(runes[i:end])
			if layouts, ok := tokenize(run); ok {
				for _, l := range layouts {
					segs = append(segs, segment{layout: l})
				}
			} else {
				literal(run)
			}
			i = end
		default:
			literal(string(r))
			i++
		}
	}
	return segs
}

// tokenize matches run as a sequence of date tokens, longest first
func tokenize(run string) ([]string, bool) {
	var layouts []string
	for run != "" {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(run, t.token) {
				layouts = append(layouts, t.layout)
				run = run[len(t.token):]
				matched = true
				break
			}
		}
		if !matched {
			return nil, false
		}
	}
	return layouts, true
}

// Date formats t with a display pattern; the zero time renders empty
func Date(t time.Time, pattern string) string {
	if t.IsZero() {
		return ""
	}
	var b strings.Builder
	for _, seg := range parsePattern(pattern) {
		if seg.layout != "" {
			b.WriteString(t.Format(seg.layout))
		} else {
			b.WriteString(seg.literal)
		}
	}
	return b.String()
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"AUD": "A$",
	"CAD": "C$",
	"CHF": "CHF ",
}

// Currency renders amount with the symbol for an ISO currency code
func Currency(amount float64, code string) string {
	symbol, ok := currencySymbols[strings.ToUpper(code)]
	if !ok {
		symbol = strings.ToUpper(code) + " "
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	return fmt.Sprintf("%s%s%.2f", sign, symbol, amount)
}

// Initials returns up to two uppercase initials for an avatar placeholder
func Initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	switch len(words) {
	case 0:
		return "?"
	case 1:
		return strings.ToUpper(string([]rune(words[0])[:1]))
	default:
		first := []rune(words[0])[:1]
		last := []rune(words[len(words)-1])[:1]
		return strings.ToUpper(string(first) + string(last))
	}
}

package compiler

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// CellKind classifies a scalar cell value. Rules are evaluated in a fixed
// order: DOI and URL take priority over the date-like check, so a DOI that
// happens to contain digits or a month-like substring is never reformatted
// as a date.
type CellKind int

const (
	CellPlain CellKind = iota
	CellDoi
	CellUrl
	CellDateLike
)

var (
	doiPattern       = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
	doiPrefixPattern = regexp.MustCompile(`^https?://(dx\.)?doi\.org/`)
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	commaPattern     = regexp.MustCompile(`\s*,\s*`)
)

// Classify returns the cell's kind under the ordered rules.
func Classify(raw string) CellKind {
	switch {
	case extractDOI(raw) != "":
		return CellDoi
	case urlPattern.MatchString(raw):
		return CellUrl
	case isDateLike(raw):
		return CellDateLike
	default:
		return CellPlain
	}
}

// extractDOI normalizes and validates a DOI candidate: a leading doi.org
// URL prefix, surrounding angle brackets and trailing punctuation are
// stripped before matching.
func extractDOI(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "<>")
	s = doiPrefixPattern.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".,;:")
	if doiPattern.MatchString(s) {
		return s
	}
	return ""
}

// isDateLike reports whether every whitespace/comma-separated token is a
// month name, a bare integer, "current", or a literal "-".
func isDateLike(raw string) bool {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if lower == "-" || lower == currentToken {
			continue
		}
		if _, ok := monthNumbers[lower]; ok {
			continue
		}
		if _, err := strconv.Atoi(token); err == nil {
			continue
		}
		return false
	}
	return true
}

// Style rewrites a raw cell value into its display form. The result is
// HTML-safe: all user text is escaped, with markup added only by the
// styler itself.
func Style(raw string) string {
	switch Classify(raw) {
	case CellDoi:
		doi := html.EscapeString(extractDOI(raw))
		return `<a href="https://doi.org/` + doi + `" target="_blank">` + doi + `</a>`
	case CellUrl:
		loc := urlPattern.FindStringIndex(raw)
		before := html.EscapeString(raw[:loc[0]])
		url := html.EscapeString(raw[loc[0]:loc[1]])
		after := html.EscapeString(raw[loc[1]:])
		return `<span class="cv-link">` + before +
			`<a href="` + url + `" target="_blank">` + url + `</a>` + after + `</span>`
	case CellDateLike:
		return styleDateLike(raw)
	default:
		return commaPattern.ReplaceAllString(html.EscapeString(raw), ", ")
	}
}

func styleDateLike(raw string) string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lower := strings.ToLower(token)
		switch {
		case lower == "-":
			out = append(out, "<br>")
		case monthNumbers[lower] != 0:
			out = append(out, abbreviateMonth(lower))
		default:
			out = append(out, html.EscapeString(token))
		}
	}
	return strings.Join(out, " ")
}

func abbreviateMonth(lower string) string {
	abbrev := lower
	if len(abbrev) > 3 {
		abbrev = abbrev[:3]
	}
	return strings.ToUpper(abbrev[:1]) + abbrev[1:]
}

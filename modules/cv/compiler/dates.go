package compiler

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
)

// Date values are free text: optionally a single "-" separates a start and
// an end token, and each side is independently parsed for a 4-digit year
// and/or a month name. The literal token "current" resolves to the
// compilation's as-of year.

const currentToken = "current"

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// datePriority is the fixed priority order for picking a section's one
// date-bearing attribute.
var datePriority = []string{"dates", "end_date", "year"}

// ResolveDateAttribute picks the section's date-bearing logical attribute,
// or "" when the section has none (filtering and sorting become no-ops).
func ResolveDateAttribute(sec section.Section) string {
	for _, name := range datePriority {
		if _, ok := sec.Attributes[name]; ok {
			return name
		}
	}
	return ""
}

type dateSide struct {
	year  int
	month int
	ok    bool
}

type dateRange struct {
	start dateSide
	end   dateSide
}

func (r dateRange) parsed() bool {
	return r.start.ok || r.end.ok
}

func parseDateSide(text string, asOfYear int) dateSide {
	side := dateSide{}
	lower := strings.ToLower(text)

	if m := yearPattern.FindString(text); m != "" {
		side.year, _ = strconv.Atoi(m)
		side.ok = true
	} else if strings.Contains(lower, currentToken) {
		side.year = asOfYear
		side.ok = true
	}

	for _, token := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if n, ok := monthNumbers[token]; ok {
			side.month = n
			break
		}
	}
	return side
}

func parseDateRange(text string, asOfYear int) dateRange {
	parts := strings.SplitN(text, "-", 2)
	r := dateRange{start: parseDateSide(parts[0], asOfYear)}
	if len(parts) == 2 {
		r.end = parseDateSide(parts[1], asOfYear)
	}

	// A single parsed side means a point in time.
	if r.start.ok && !r.end.ok {
		r.end = r.start
	} else if !r.start.ok && r.end.ok {
		r.start = r.end
	}
	return r
}

// sortYear is the chronological key for a record: unparseable dates sink to
// the far past unless they mention "current".
func (r dateRange) sortYear() int {
	if !r.parsed() {
		return math.MinInt32
	}
	return r.start.year
}

// FilterByRange keeps records whose date range overlaps the template's
// [startYear, endYear] window. Records whose date text cannot be parsed are
// kept (fail-open). A zero start or end year disables filtering entirely.
func FilterByRange(records []section.Record, storageKey string, startYear, endYear, asOfYear int) []section.Record {
	if storageKey == "" || startYear == 0 || endYear == 0 {
		return records
	}
	kept := make([]section.Record, 0, len(records))
	for _, rec := range records {
		r := parseDateRange(rec.Value(storageKey), asOfYear)
		if !r.parsed() {
			kept = append(kept, rec)
			continue
		}
		if r.start.year <= endYear && r.end.year >= startYear {
			kept = append(kept, rec)
		}
	}
	return kept
}

// SortByDate orders records chronologically by resolved start year, then by
// month when both records parsed one. The sort is stable so records with
// equal keys keep their input order.
func SortByDate(records []section.Record, storageKey string, ascending bool, asOfYear int) {
	if storageKey == "" {
		return
	}
	type keyed struct {
		rec section.Record
		r   dateRange
	}
	items := make([]keyed, len(records))
	for i, rec := range records {
		items[i] = keyed{rec: rec, r: parseDateRange(rec.Value(storageKey), asOfYear)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		less, equal := compareDates(items[i].r, items[j].r)
		if equal {
			return false
		}
		if ascending {
			return less
		}
		return !less
	})
	for i := range items {
		records[i] = items[i].rec
	}
}

func compareDates(a, b dateRange) (less, equal bool) {
	if a.sortYear() != b.sortYear() {
		return a.sortYear() < b.sortYear(), false
	}
	if a.start.month > 0 && b.start.month > 0 && a.start.month != b.start.month {
		return a.start.month < b.start.month, false
	}
	return false, true
}

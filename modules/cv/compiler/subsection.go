package compiler

import (
	"strconv"
	"strings"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

// compileSubSections splits one logical section into independent sub-tables
// keyed by the discrete values of the chosen attribute. Every record with a
// non-null attribute value lands in exactly one bucket; the reserved
// "Other" bucket collects empty and unmatched values.
func (c *Context) compileSubSections(node *template.TableNode, sec section.Section, records []section.Record) []CompiledNode {
	declared := make(map[string]struct{})
	for _, ss := range node.SubSections.SubSections {
		if ss.OriginalValue != template.OtherSubSection {
			declared[ss.OriginalValue] = struct{}{}
		}
	}

	var tables []CompiledNode
	for _, ss := range node.SubSections.SubSections {
		if ss.Hidden {
			continue
		}
		derived := deriveSubNode(node, ss)
		tables = append(tables, c.compileSingle(derived, sec, records, declared))
	}

	if node.SubSections.DisplaySectionTitle {
		title := node.RenamedTitle
		if title == "" {
			title = sec.Title
		}
		return []CompiledNode{&CompiledGroup{Title: title, Children: tables}}
	}
	return tables
}

// matchesSubSection decides bucket membership. Non-Other buckets match by
// exact string equality on the raw attribute value. The Other bucket takes
// empty values and anything no declared bucket claims, which also covers
// free-text variants containing "other".
func matchesSubSection(value, filter string, declared map[string]struct{}) bool {
	if filter == template.OtherSubSection {
		if value == "" {
			return true
		}
		if _, ok := declared[value]; ok {
			return false
		}
		return true
	}
	return value == filter
}

// deriveSubNode builds the per-sub-section table node: same section and
// groups, narrowed by the sub-section's filter value, hidden attributes and
// renames, with titles falling back to originals.
func deriveSubNode(node *template.TableNode, ss template.SubSection) *template.TableNode {
	derived := *node
	derived.SubSections = nil
	derived.AttributeFilterValue = ss.OriginalValue
	derived.Instructions = ss.Instructions
	derived.UnderlinedTitle = ss.UnderlinedTitle

	if node.SubSections.DisplayTitles {
		derived.RenamedTitle = ss.Title()
	} else {
		derived.RenamedTitle = ""
		derived.HideSectionTitle = true
	}

	if len(ss.AttributeRenames) > 0 {
		renames := make(map[string]string, len(node.AttributeRenames)+len(ss.AttributeRenames))
		for k, v := range node.AttributeRenames {
			renames[k] = v
		}
		for k, v := range ss.AttributeRenames {
			renames[k] = v
		}
		derived.AttributeRenames = renames
	}

	if len(ss.HiddenAttributes) > 0 {
		hidden := make(map[string]bool, len(ss.HiddenAttributes))
		for _, attr := range ss.HiddenAttributes {
			hidden[attr] = true
		}
		groups := make([]template.AttributeGroup, 0, len(node.AttributeGroups))
		for _, g := range node.AttributeGroups {
			if g.ID != template.GroupShown {
				groups = append(groups, g)
				continue
			}
			trimmed := g
			trimmed.Attributes = nil
			for _, attr := range g.Attributes {
				if !hidden[attr] {
					trimmed.Attributes = append(trimmed.Attributes, attr)
				}
			}
			groups = append(groups, trimmed)
		}
		derived.AttributeGroups = groups
	}
	return &derived
}

// Two report sections carry bespoke aggregation before sub-sectioning is
// meaningful: clinical-teaching hours and trainee-supervision counts.
const (
	clinicalTeachingSectionTitle   = "Clinical Teaching"
	traineeSupervisionSectionTitle = "Research Trainee Supervision"
)

func isClinicalTeaching(sec section.Section) bool {
	return strings.EqualFold(sec.Title, clinicalTeachingSectionTitle)
}

func isTraineeSupervision(sec section.Section) bool {
	return strings.EqualFold(sec.Title, traineeSupervisionSectionTitle)
}

// Logical attribute names the bespoke aggregations rely on.
const (
	attrDates            = "dates"
	attrCourseTitle      = "course_title"
	attrBriefDescription = "brief_description"
	attrStudentNames     = "student_names"
	attrStudentCount     = "number_of_students"
	attrHours            = "hours"
	attrDuration         = "duration"
	attrDegreeProgram    = "degree_program"
)

// aggregateClinicalTeaching deaggregates records into one entry per named
// student, then re-aggregates by (year, course title, brief description),
// summing student counts and hours and unioning durations.
func aggregateClinicalTeaching(sec section.Section, records []section.Record) []section.Record {
	type bucket struct {
		rec       section.Record
		students  int
		hours     float64
		durations []string
		seen      map[string]bool
	}

	var order []string
	buckets := make(map[string]*bucket)

	for _, rec := range records {
		dates := rec.Value(sec.StorageKey(attrDates))
		year := yearPattern.FindString(dates)
		if year == "" {
			year = dates
		}
		course := rec.Value(sec.StorageKey(attrCourseTitle))
		description := rec.Value(sec.StorageKey(attrBriefDescription))
		key := year + "\x00" + course + "\x00" + description

		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				rec: section.Record{
					ID:        rec.ID,
					SectionID: rec.SectionID,
					Fields: map[string]any{
						sec.StorageKey(attrDates):            dates,
						sec.StorageKey(attrCourseTitle):      course,
						sec.StorageKey(attrBriefDescription): description,
					},
				},
				seen: make(map[string]bool),
			}
			buckets[key] = b
			order = append(order, key)
		}

		students := splitNames(rec.Value(sec.StorageKey(attrStudentNames)))
		if len(students) > 0 {
			b.students += len(students)
		} else if n, err := strconv.Atoi(rec.Value(sec.StorageKey(attrStudentCount))); err == nil && n > 0 {
			b.students += n
		} else {
			b.students++
		}

		if h, err := strconv.ParseFloat(rec.Value(sec.StorageKey(attrHours)), 64); err == nil {
			b.hours += h
		}

		if d := strings.TrimSpace(rec.Value(sec.StorageKey(attrDuration))); d != "" && !b.seen[d] {
			b.seen[d] = true
			b.durations = append(b.durations, d)
		}
	}

	out := make([]section.Record, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		b.rec.Fields[sec.StorageKey(attrStudentCount)] = strconv.Itoa(b.students)
		b.rec.Fields[sec.StorageKey(attrHours)] = strconv.FormatFloat(b.hours, 'f', -1, 64)
		b.rec.Fields[sec.StorageKey(attrDuration)] = strings.Join(b.durations, ", ")
		out = append(out, b.rec)
	}
	return out
}

func splitNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// degreePrograms is the fixed program-code map driving the supervision
// summary, in display order.
var degreePrograms = []struct {
	code  string
	label string
}{
	{"bsc", "B.Sc."},
	{"msc", "M.Sc."},
	{"phd", "Ph.D."},
	{"pdf", "Postdoctoral Fellow"},
	{"resident", "Resident"},
}

var degreeProgramAliases = map[string]string{
	"bsc":                "bsc",
	"msc":                "msc",
	"phd":                "phd",
	"pdf":                "pdf",
	"postdoc":            "pdf",
	"postdoctoralfellow": "pdf",
	"resident":           "resident",
}

func normalizeProgramCode(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if 'a' <= r && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return degreeProgramAliases[b.String()]
}

// supervisionSummary produces the degree-program summary table: per
// program, total, current and completed trainee counts. A record counts as
// current when its date range has no end token or the end token is
// "current".
func (c *Context) supervisionSummary(sec section.Section, records []section.Record) *CompiledTable {
	type counts struct{ total, current int }
	byProgram := make(map[string]*counts)

	dateKey := sec.StorageKey(attrDates)
	programKey := sec.StorageKey(attrDegreeProgram)
	for _, rec := range records {
		code := normalizeProgramCode(rec.Value(programKey))
		if code == "" {
			continue
		}
		cnt, ok := byProgram[code]
		if !ok {
			cnt = &counts{}
			byProgram[code] = cnt
		}
		cnt.total++
		if isInProgress(rec.Value(dateKey)) {
			cnt.current++
		}
	}
	if len(byProgram) == 0 {
		return nil
	}

	table := &CompiledTable{
		Title: "Supervision Summary",
		Columns: []*ColumnTree{
			{Header: "Degree Program", Field: "program"},
			{Header: "Total", Field: "total"},
			{Header: "Current", Field: "current"},
			{Header: "Completed", Field: "completed"},
		},
	}
	for _, program := range degreePrograms {
		cnt, ok := byProgram[program.code]
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, Row{
			"program":   program.label,
			"total":     strconv.Itoa(cnt.total),
			"current":   strconv.Itoa(cnt.current),
			"completed": strconv.Itoa(cnt.total - cnt.current),
		})
	}
	return table
}

func isInProgress(dates string) bool {
	parts := strings.SplitN(dates, "-", 2)
	if len(parts) < 2 {
		return true
	}
	end := strings.TrimSpace(parts[1])
	if end == "" {
		return true
	}
	return strings.Contains(strings.ToLower(end), currentToken)
}

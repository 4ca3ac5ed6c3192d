package compiler

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

type queryFunc func(query string, rows []Row) (Result, error)

func (f queryFunc) Execute(query string, rows []Row) (Result, error) {
	return f(query, rows)
}

var noQueries = queryFunc(func(string, []Row) (Result, error) {
	return Result{}, errors.New("no queries expected")
})

func publicationsSection() section.Section {
	return section.Section{
		ID:    "pubs",
		Title: "Journal Publications",
		Attributes: map[string]string{
			"title": "f_title",
			"dates": "f_dates",
			"doi":   "f_doi",
		},
	}
}

func publicationRecord(id string, fields map[string]any) section.Record {
	return section.Record{ID: id, SectionID: "pubs", Fields: fields}
}

func newTestContext(t *testing.T, tpl *template.Template, sections []section.Section, queries QueryExecutor, records []section.Record) *Context {
	t.Helper()
	if queries == nil {
		queries = noQueries
	}
	c := NewContext(tpl, sections, queries, WithAsOfYear(2024))
	c.SetUser("u1", records)
	return c
}

func singleTable(t *testing.T, nodes []CompiledNode) *CompiledTable {
	t.Helper()
	require.Len(t, nodes, 1)
	table, ok := nodes[0].(*CompiledTable)
	require.True(t, ok)
	return table
}

func TestCompileTableNode_MissingSection(t *testing.T) {
	tpl := &template.Template{Title: "CV"}
	c := newTestContext(t, tpl, nil, nil, nil)

	node := &template.TableNode{SectionID: "nope"}
	table := singleTable(t, c.compileTableNode(node))
	assert.True(t, table.Empty())
	assert.Equal(t, "nope", table.Title)
}

func TestCompileTableNode_Pipeline(t *testing.T) {
	tpl := &template.Template{Title: "CV", StartYear: 2020, EndYear: 2024}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "Older", "f_dates": "2021"}),
		publicationRecord("r2", map[string]any{"f_title": "Newer", "f_dates": "2023"}),
		publicationRecord("r3", map[string]any{"f_title": "Out of range", "f_dates": "2015"}),
	}
	c := newTestContext(t, tpl, []section.Section{publicationsSection()}, nil, records)

	node := &template.TableNode{
		SectionID: "pubs",
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupShown, Attributes: []string{"title", "dates"}},
		},
	}
	table := singleTable(t, c.compileTableNode(node))

	require.Len(t, table.Rows, 2)
	// descending by default
	assert.Equal(t, "Newer", table.Rows[0]["title"])
	assert.Equal(t, "Older", table.Rows[1]["title"])
	assert.Equal(t, "Journal Publications", table.Title)
}

func TestCompileTableNode_SkipDateFilter(t *testing.T) {
	tpl := &template.Template{StartYear: 2020, EndYear: 2024}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "Ancient", "f_dates": "1999"}),
	}
	c := newTestContext(t, tpl, []section.Section{publicationsSection()}, nil, records)

	node := &template.TableNode{SectionID: "pubs", SkipDateFilter: true}
	table := singleTable(t, c.compileTableNode(node))
	assert.Len(t, table.Rows, 1)
}

func TestCompileTableNode_QueryRewritesRows(t *testing.T) {
	tpl := &template.Template{}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "Keep", "f_dates": "2021"}),
		publicationRecord("r2", map[string]any{"f_title": "Drop", "f_dates": "2022"}),
	}
	queries := queryFunc(func(query string, rows []Row) (Result, error) {
		assert.Equal(t, `filter(rows, #.title == "Keep")`, query)
		require.Len(t, rows, 2)
		kept := make([]Row, 0, 1)
		for _, row := range rows {
			if row["title"] == "Keep" {
				kept = append(kept, row)
			}
		}
		return Result{Success: true, Rows: kept}, nil
	})
	c := newTestContext(t, tpl, []section.Section{publicationsSection()}, queries, records)

	node := &template.TableNode{SectionID: "pubs", Query: `filter(rows, #.title == "Keep")`}
	table := singleTable(t, c.compileTableNode(node))
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Keep", table.Rows[0]["title"])
}

func TestCompileTableNode_QueryFailureYieldsNoRows(t *testing.T) {
	tpl := &template.Template{}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "A", "f_dates": "2021"}),
	}
	queries := queryFunc(func(string, []Row) (Result, error) {
		return Result{}, errors.New("bad query")
	})
	c := newTestContext(t, tpl, []section.Section{publicationsSection()}, queries, records)

	node := &template.TableNode{SectionID: "pubs", Query: "boom("}
	table := singleTable(t, c.compileTableNode(node))
	assert.True(t, table.Empty())
}

func TestCompileTableNode_RowNumbers(t *testing.T) {
	tpl := &template.Template{}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "A", "f_dates": "2021"}),
		publicationRecord("r2", map[string]any{"f_title": "B", "f_dates": "2020"}),
	}
	c := newTestContext(t, tpl, []section.Section{publicationsSection()}, nil, records)

	node := &template.TableNode{
		SectionID:        "pubs",
		IncludeRowNumber: true,
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupShown, Attributes: []string{"title"}},
		},
	}
	table := singleTable(t, c.compileTableNode(node))

	require.Len(t, table.Columns, 2)
	assert.Equal(t, template.RowNumberField, table.Columns[0].Field)
	assert.Equal(t, "#", table.Columns[0].Header)
	assert.Equal(t, "1", table.Rows[0][template.RowNumberField])
	assert.Equal(t, "2", table.Rows[1][template.RowNumberField])
}

func TestCompileTableNode_Footnotes(t *testing.T) {
	tpl := &template.Template{}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "With note", "f_doi": "equal contribution", "f_dates": "2022"}),
		publicationRecord("r2", map[string]any{"f_title": "Plain", "f_dates": "2021"}),
	}
	sec := publicationsSection()
	sec.Attributes["note"] = "f_doi"
	delete(sec.Attributes, "doi")
	c := newTestContext(t, tpl, []section.Section{sec}, nil, records)

	node := &template.TableNode{
		SectionID: "pubs",
		Footnotes: []template.FootnoteRule{{Source: "note", Target: "title"}},
	}
	table := singleTable(t, c.compileTableNode(node))

	require.Len(t, table.Footnotes, 1)
	assert.Equal(t, "1. equal contribution", table.Footnotes[0])
	assert.Equal(t, "<sup>1</sup>With note", table.Rows[0]["title"])
	assert.Equal(t, "Plain", table.Rows[1]["title"])
}

func TestCompileTableNode_MergeGroups(t *testing.T) {
	tpl := &template.Template{}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "", "f_doi": "X", "f_dates": "Y"}),
	}
	sec := section.Section{
		ID:    "pubs",
		Title: "Journal Publications",
		Attributes: map[string]string{
			"title": "f_title",
			"a":     "f_doi",
			"b":     "f_dates",
		},
	}
	c := newTestContext(t, tpl, []section.Section{sec}, nil, records)

	node := &template.TableNode{
		SectionID: "pubs",
		AttributeGroups: []template.AttributeGroup{
			{ID: "pair", Attributes: []string{"title", "a", "b"}, Merge: true},
		},
	}
	table := singleTable(t, c.compileTableNode(node))
	assert.Equal(t, "X, Y", table.Rows[0]["merged_pair"])
}

func TestCompileTableNode_MergeVisibleHidesHeader(t *testing.T) {
	tpl := &template.Template{}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "A", "f_dates": "2021"}),
	}
	c := newTestContext(t, tpl, []section.Section{publicationsSection()}, nil, records)

	node := &template.TableNode{
		SectionID:              "pubs",
		MergeVisibleAttributes: true,
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupShown, Attributes: []string{"title", "dates"}},
		},
	}
	table := singleTable(t, c.compileTableNode(node))
	assert.True(t, table.HideColumnHeader)
	assert.Equal(t, "A, 2021", table.Rows[0]["merged_shown"])
}

func TestTableTitle(t *testing.T) {
	sec := publicationsSection()
	assert.Equal(t, "Journal Publications", tableTitle(&template.TableNode{}, sec))
	assert.Equal(t, "Selected Papers", tableTitle(&template.TableNode{RenamedTitle: "Selected Papers"}, sec))
	assert.Equal(t, "", tableTitle(&template.TableNode{HideSectionTitle: true}, sec))
}

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

func TestContext_CompileFullTemplate(t *testing.T) {
	tpl := &template.Template{
		Title:     "Annual Review CV",
		StartYear: 2020,
		EndYear:   2024,
		Root: &template.GroupNode{
			Children: []template.Node{
				&template.GroupNode{
					Title: "Research",
					Children: []template.Node{
						&template.TableNode{
							SectionID: "pubs",
							AttributeGroups: []template.AttributeGroup{
								{ID: template.GroupShown, Attributes: []string{"title", "dates"}},
							},
						},
					},
				},
				&template.TableNode{SectionID: "talks"},
			},
		},
	}
	sections := []section.Section{
		publicationsSection(),
		{ID: "talks", Title: "Invited Talks", Attributes: map[string]string{"title": "f_title"}},
	}
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "Recent", "f_dates": "2023"}),
		publicationRecord("r2", map[string]any{"f_title": "Too old", "f_dates": "2010"}),
	}

	c := NewContext(tpl, sections, noQueries, WithAsOfYear(2024))
	c.SetUser("u1", records)
	doc := c.Compile()

	assert.Equal(t, "Annual Review CV", doc.Title)
	assert.Equal(t, "u1", doc.UserID)

	// the empty talks table still compiles; the research group holds one row
	require.Len(t, doc.Nodes, 2)
	research, ok := doc.Nodes[0].(*CompiledGroup)
	require.True(t, ok)
	table := research.Children[0].(*CompiledTable)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Recent", table.Rows[0]["title"])

	talks, ok := doc.Nodes[1].(*CompiledTable)
	require.True(t, ok)
	assert.True(t, talks.Empty())
}

func TestContext_SetUserResetsRecords(t *testing.T) {
	tpl := &template.Template{
		Root: &template.GroupNode{
			Children: []template.Node{&template.TableNode{SectionID: "pubs"}},
		},
	}
	c := NewContext(tpl, []section.Section{publicationsSection()}, noQueries, WithAsOfYear(2024))

	c.SetUser("u1", []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "A", "f_dates": "2021"}),
	})
	first := c.Compile()
	require.Len(t, first.Nodes, 1)

	c.SetUser("u2", nil)
	second := c.Compile()
	assert.Equal(t, "u2", second.UserID)
	table := second.Nodes[0].(*CompiledTable)
	assert.True(t, table.Empty())
}

func TestContext_NilRoot(t *testing.T) {
	c := NewContext(&template.Template{Title: "Empty"}, nil, noQueries)
	c.SetUser("u1", nil)
	doc := c.Compile()
	assert.Empty(t, doc.Nodes)
}

func TestWithAsOfYear_IgnoresZero(t *testing.T) {
	c := NewContext(&template.Template{}, nil, noQueries, WithAsOfYear(0))
	assert.NotZero(t, c.AsOfYear())

	c = NewContext(&template.Template{}, nil, noQueries, WithAsOfYear(2030))
	assert.Equal(t, 2030, c.AsOfYear())
}

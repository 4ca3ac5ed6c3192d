package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

func TestCompileGroup_SuppressedWhenEmpty(t *testing.T) {
	c := newTestContext(t, &template.Template{}, []section.Section{publicationsSection()}, nil, nil)

	node := &template.GroupNode{
		Title:    "Research",
		Children: []template.Node{&template.TableNode{SectionID: "pubs"}},
	}
	assert.Nil(t, c.compileGroup(node))

	node.NoData.Display = true
	group := c.compileGroup(node)
	require.NotNil(t, group)
	assert.True(t, group.Empty())
}

func TestCompileGroup_Nested(t *testing.T) {
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "A", "f_dates": "2021"}),
	}
	c := newTestContext(t, &template.Template{}, []section.Section{publicationsSection()}, nil, records)

	node := &template.GroupNode{
		Title: "Research",
		Children: []template.Node{
			&template.GroupNode{
				Title:    "Publications",
				Children: []template.Node{&template.TableNode{SectionID: "pubs"}},
			},
		},
	}
	group := c.compileGroup(node)
	require.NotNil(t, group)
	assert.False(t, group.Empty())
	require.Len(t, group.Children, 1)
	inner, ok := group.Children[0].(*CompiledGroup)
	require.True(t, ok)
	assert.Equal(t, "Publications", inner.Title)
}

func TestCollectEmptyTables(t *testing.T) {
	group := &CompiledGroup{
		Children: []CompiledNode{
			&CompiledTable{Title: "First", Rows: []Row{{"a": "1"}}},
			&CompiledTable{Title: "Second"},
			&CompiledGroup{
				Children: []CompiledNode{
					&CompiledTable{Title: "Nested empty"},
					&CompiledTable{Title: ""},
				},
			},
			&CompiledTable{Title: "Third"},
		},
	}
	// breadth-first: same-level tables come before nested ones
	assert.Equal(t, []string{"Second", "Third", "Nested empty"}, collectEmptyTables(group))
}

func TestCompileGroup_ListEmptyTables(t *testing.T) {
	records := []section.Record{
		publicationRecord("r1", map[string]any{"f_title": "A", "f_dates": "2021"}),
	}
	sections := []section.Section{
		publicationsSection(),
		{ID: "talks", Title: "Invited Talks", Attributes: map[string]string{"title": "f_title"}},
	}
	c := newTestContext(t, &template.Template{}, sections, nil, records)

	node := &template.GroupNode{
		Title:           "Research",
		ListEmptyTables: true,
		Children: []template.Node{
			&template.TableNode{SectionID: "pubs"},
			&template.TableNode{SectionID: "talks"},
		},
	}
	group := c.compileGroup(node)
	require.NotNil(t, group)
	assert.Equal(t, []string{"Invited Talks"}, group.EmptyTables)
}

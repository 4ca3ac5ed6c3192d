package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

func TestBuildColumns_FlatShown(t *testing.T) {
	node := &template.TableNode{
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupShown, Attributes: []string{"title", "journal_name"}},
		},
		AttributeRenames: map[string]string{"title": "Article"},
	}

	columns := buildColumns(node)
	require.Len(t, columns, 2)
	assert.Equal(t, "Article", columns[0].Header)
	assert.Equal(t, "title", columns[0].Field)
	assert.Equal(t, "Journal Name", columns[1].Header)
}

func TestBuildColumns_HiddenAndBranch(t *testing.T) {
	node := &template.TableNode{
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupHidden, Attributes: []string{"internal_id"}},
			{ID: template.GroupShown, Attributes: []string{"title", "internal_id"}},
			{ID: "impact", Title: "Impact", Attributes: []string{"citations", "altmetric"}},
		},
	}

	columns := buildColumns(node)
	require.Len(t, columns, 2)
	assert.Equal(t, "title", columns[0].Field)

	branch := columns[1]
	assert.Equal(t, "Impact", branch.Header)
	require.Len(t, branch.Children, 2)
	assert.Equal(t, 2, branch.LeafCount())
	assert.Equal(t, 2, branch.Depth())
}

func TestBuildColumns_MergeGroup(t *testing.T) {
	node := &template.TableNode{
		AttributeGroups: []template.AttributeGroup{
			{ID: "venue", Title: "Venue", Attributes: []string{"city", "country"}, Merge: true},
			{ID: template.GroupShown, Attributes: []string{"city", "title"}},
		},
	}

	columns := buildColumns(node)
	require.Len(t, columns, 2)
	assert.Equal(t, "merged_venue", columns[0].Field)
	assert.Equal(t, "Venue", columns[0].Header)
	// city was already claimed by the merge group
	assert.Equal(t, "title", columns[1].Field)
}

func TestBuildColumns_MergeVisibleAttributes(t *testing.T) {
	node := &template.TableNode{
		MergeVisibleAttributes: true,
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupShown, Attributes: []string{"title", "journal_name"}},
		},
	}

	columns := buildColumns(node)
	require.Len(t, columns, 1)
	assert.Equal(t, "merged_shown", columns[0].Field)
}

func TestVisibleAttributes(t *testing.T) {
	node := &template.TableNode{
		AttributeGroups: []template.AttributeGroup{
			{ID: template.GroupHidden, Attributes: []string{"secret"}},
			{ID: template.GroupShown, Attributes: []string{"title", "secret", "year"}},
			{ID: "extra", Attributes: []string{"year", "venue"}},
		},
	}
	assert.Equal(t, []string{"title", "year", "venue"}, visibleAttributes(node))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Journal Name", humanize("journal_name"))
	assert.Equal(t, "Title", humanize("title"))
}

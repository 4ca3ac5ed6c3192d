package compiler

import (
	"strings"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

const mergedFieldPrefix = "merged_"

func mergedField(groupID string) string {
	return mergedFieldPrefix + groupID
}

// buildColumns maps a table node's attribute groups into the resolved
// column-header tree. Hidden-group members are excluded entirely; Shown
// members become flat leaf columns; any other group becomes a sub-header
// branch, or a single merged leaf when flagged merge. An attribute claimed
// by an earlier non-hidden group is not repeated in a later one.
func buildColumns(node *template.TableNode) []*ColumnTree {
	hidden := make(map[string]bool)
	for _, g := range node.AttributeGroups {
		if g.ID == template.GroupHidden {
			for _, attr := range g.Attributes {
				hidden[attr] = true
			}
		}
	}

	if node.MergeVisibleAttributes {
		return []*ColumnTree{{
			Header: headerFor(node, template.GroupShown),
			Field:  mergedField(template.GroupShown),
		}}
	}

	seen := make(map[string]bool)
	var columns []*ColumnTree
	for _, g := range node.AttributeGroups {
		switch {
		case g.ID == template.GroupHidden:
			continue
		case g.ID == template.GroupShown:
			for _, attr := range g.Attributes {
				if hidden[attr] || seen[attr] {
					continue
				}
				seen[attr] = true
				columns = append(columns, &ColumnTree{
					Header: headerFor(node, attr),
					Field:  attr,
				})
			}
		case g.Merge:
			columns = append(columns, &ColumnTree{
				Header: groupTitle(g),
				Field:  mergedField(g.ID),
			})
			for _, attr := range g.Attributes {
				seen[attr] = true
			}
		default:
			branch := &ColumnTree{Header: groupTitle(g)}
			for _, attr := range g.Attributes {
				if hidden[attr] || seen[attr] {
					continue
				}
				seen[attr] = true
				branch.Children = append(branch.Children, &ColumnTree{
					Header: headerFor(node, attr),
					Field:  attr,
				})
			}
			if len(branch.Children) > 0 {
				columns = append(columns, branch)
			}
		}
	}
	return columns
}

// visibleAttributes lists the node's non-hidden attributes in declared
// group order; this is the member order of a whole-table merge.
func visibleAttributes(node *template.TableNode) []string {
	hidden := make(map[string]bool)
	for _, g := range node.AttributeGroups {
		if g.ID == template.GroupHidden {
			for _, attr := range g.Attributes {
				hidden[attr] = true
			}
		}
	}
	seen := make(map[string]bool)
	var attrs []string
	for _, g := range node.AttributeGroups {
		if g.ID == template.GroupHidden {
			continue
		}
		for _, attr := range g.Attributes {
			if hidden[attr] || seen[attr] {
				continue
			}
			seen[attr] = true
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func headerFor(node *template.TableNode, attr string) string {
	if name, ok := node.AttributeRenames[attr]; ok && name != "" {
		return name
	}
	return humanize(attr)
}

func groupTitle(g template.AttributeGroup) string {
	if g.Title != "" {
		return g.Title
	}
	return humanize(g.ID)
}

// humanize turns a logical attribute name into a readable header.
func humanize(attr string) string {
	words := strings.Split(attr, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

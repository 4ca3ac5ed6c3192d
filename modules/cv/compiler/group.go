package compiler

import (
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

// compileGroup recursively composes children into a compiled group. A group
// whose whole subtree holds no data is suppressed (nil) unless its no-data
// display flag asks for it to surface.
func (c *Context) compileGroup(node *template.GroupNode) *CompiledGroup {
	group := &CompiledGroup{
		Title:  node.Title,
		Header: node.Header,
	}
	for _, child := range node.Children {
		group.Children = append(group.Children, c.compileNode(child)...)
	}

	if group.Empty() && !node.NoData.Display {
		return nil
	}
	if node.ListEmptyTables {
		group.EmptyTables = collectEmptyTables(group)
	}
	return group
}

// collectEmptyTables gathers the titles of zero-row tables breadth-first
// across the group's subtree.
func collectEmptyTables(group *CompiledGroup) []string {
	var titles []string
	queue := append([]CompiledNode(nil), group.Children...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		switch n := node.(type) {
		case *CompiledTable:
			if n.Empty() && n.Title != "" {
				titles = append(titles, n.Title)
			}
		case *CompiledGroup:
			queue = append(queue, n.Children...)
		}
	}
	return titles
}

package compiler

import (
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/profile"
)

// Row is one fully resolved output row, keyed by logical attribute name
// (plus synthetic fields such as row_number and merged_<groupID>).
type Row map[string]string

// Result is the ad-hoc query capability's answer. Success=false means the
// query could not be evaluated; the compiler degrades to zero rows.
type Result struct {
	Success bool
	Rows    []Row
}

// QueryExecutor runs an ad-hoc query string against a table's row set.
// The query language itself is an external capability; the compiler only
// depends on this contract.
type QueryExecutor interface {
	Execute(query string, rows []Row) (Result, error)
}

// ColumnTree is the resolved column-header tree. A node carries either a
// Field (leaf) or Children (sub-header branch), never both.
type ColumnTree struct {
	Header   string
	Field    string
	Children []*ColumnTree
}

// Depth returns the height of the tree rooted at c.
func (c *ColumnTree) Depth() int {
	if len(c.Children) == 0 {
		return 1
	}
	max := 0
	for _, child := range c.Children {
		if d := child.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// LeafCount returns the number of leaf descendants; this is the branch's
// rendered colspan.
func (c *ColumnTree) LeafCount() int {
	if len(c.Children) == 0 {
		return 1
	}
	n := 0
	for _, child := range c.Children {
		n += child.LeafCount()
	}
	return n
}

// Leaves returns the leaf columns in declared order; this is the field
// order of rendered body rows.
func (c *ColumnTree) Leaves() []*ColumnTree {
	if len(c.Children) == 0 {
		return []*ColumnTree{c}
	}
	var leaves []*ColumnTree
	for _, child := range c.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// CompiledNode is the render-ready intermediate tree: tables and groups.
type CompiledNode interface {
	Empty() bool
}

type CompiledTable struct {
	Title            string
	UnderlinedTitle  bool
	Instructions     string
	Columns          []*ColumnTree
	Rows             []Row
	Footnotes        []string
	HideColumnHeader bool
	ShowEmptyTable   bool
}

func (t *CompiledTable) Empty() bool {
	return len(t.Rows) == 0
}

// Leaves returns the table's flattened leaf columns.
func (t *CompiledTable) Leaves() []*ColumnTree {
	var leaves []*ColumnTree
	for _, c := range t.Columns {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// headerDepth is the number of header rows the column tree needs.
func (t *CompiledTable) headerDepth() int {
	max := 0
	for _, c := range t.Columns {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max
}

type CompiledGroup struct {
	Title       string
	Header      string
	Children    []CompiledNode
	EmptyTables []string
}

func (g *CompiledGroup) Empty() bool {
	for _, child := range g.Children {
		if !child.Empty() {
			return false
		}
	}
	return true
}

// CompiledDocument is one user's fully compiled CV, ready for rendering.
type CompiledDocument struct {
	Title             string
	UserID            string
	ShowDeclaration   bool
	ShowVisualNesting bool
	Affiliations      []profile.Affiliation
	Declarations      []profile.Declaration
	Nodes             []CompiledNode
}

package template

import (
	"context"

	"github.com/google/uuid"
)

// Template is the user-authored, declarative report definition: which
// sections appear, in what order, filtered to which year window, and how
// each table is shaped. Immutable once a compilation starts.
type Template struct {
	ID                uuid.UUID
	Title             string
	StartYear         int
	EndYear           int
	SortAscending     bool
	ShowDeclaration   bool
	ShowVisualNesting bool
	Root              *GroupNode
}

// Node is the document-tree union: either a TableNode or a GroupNode.
type Node interface {
	isNode()
}

// Reserved attribute-group ids. Hidden members are excluded from output
// entirely; Shown members render as flat leaf columns. Any other id is a
// user-defined sub-header grouping.
const (
	GroupHidden = "hidden"
	GroupShown  = "shown"
)

// RowNumberField is the synthetic field carrying per-table row numbering.
const RowNumberField = "row_number"

type AttributeGroup struct {
	ID         string
	Title      string
	Attributes []string
	// Merge collapses the group's member attributes into a single joined
	// text column at render time.
	Merge bool
}

// FootnoteRule pairs a source and target attribute: wherever both are
// non-empty on a row, a numbered marker is attached to the target cell and
// the source value is recorded as a footnote.
type FootnoteRule struct {
	Source string
	Target string
}

// NoDataDisplay controls whether an empty branch still renders.
type NoDataDisplay struct {
	// Display surfaces the group/table even when its subtree holds no data.
	Display bool
	// ShowEmptyTable renders an explicit "No data!" placeholder row.
	ShowEmptyTable bool
}

type TableNode struct {
	SectionID              string
	AttributeGroups        []AttributeGroup
	AttributeRenames       map[string]string
	MergeVisibleAttributes bool
	SectionByAttribute     string
	SubSections            *SubSectionSettings
	IncludeRowNumber       bool
	RenamedTitle           string
	Footnotes              []FootnoteRule
	Query                  string
	SkipDateFilter         bool
	NoData                 NoDataDisplay

	// Derived-node fields set by the sub-sectioner; never authored directly.
	AttributeFilterValue string
	Instructions         string
	UnderlinedTitle      bool
	HideSectionTitle     bool
}

func (*TableNode) isNode() {}

type GroupNode struct {
	Title           string
	Header          string
	Children        []Node
	NoData          NoDataDisplay
	ListEmptyTables bool
}

func (*GroupNode) isNode() {}

type SubSectionSettings struct {
	SubSections         []SubSection
	DisplayTitles       bool
	DisplaySectionTitle bool
}

// OtherSubSection is the reserved sub-section value collecting rows whose
// attribute value is empty, unmatched, or textually contains "other".
const OtherSubSection = "Other"

type SubSection struct {
	ID               string
	OriginalValue    string
	RenamedTitle     string
	Hidden           bool
	AttributeRenames map[string]string
	HiddenAttributes []string
	Instructions     string
	UnderlinedTitle  bool
}

// Title returns the sub-section's display title, falling back to the
// original attribute value when no rename is given.
func (s SubSection) Title() string {
	if s.RenamedTitle != "" {
		return s.RenamedTitle
	}
	return s.OriginalValue
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	Save(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

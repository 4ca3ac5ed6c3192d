package template

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Stored document trees tag each node with a "type" discriminator. The
// tagged union is decoded once here at the persistence boundary so the
// compiler and renderer can switch exhaustively on concrete node types.

const (
	nodeTypeTable = "table"
	nodeTypeGroup = "group"
)

type nodeJSON struct {
	Type string `json:"type"`

	// Table fields
	SectionID              string               `json:"sectionId,omitempty"`
	AttributeGroups        []attributeGroupJSON `json:"attributeGroups,omitempty"`
	AttributeRenames       map[string]string    `json:"attributeRenameMap,omitempty"`
	MergeVisibleAttributes bool                 `json:"mergeVisibleAttributes,omitempty"`
	SectionByAttribute     string               `json:"sectionByAttribute,omitempty"`
	SubSections            *subSectionsJSON     `json:"subSectionSettings,omitempty"`
	IncludeRowNumber       bool                 `json:"includeRowNumberColumn,omitempty"`
	RenamedTitle           string               `json:"renamedTitle,omitempty"`
	Footnotes              []footnoteJSON       `json:"noteSettings,omitempty"`
	Query                  string               `json:"querySpec,omitempty"`
	SkipDateFilter         bool                 `json:"skipDateFilter,omitempty"`

	// Group fields
	Title           string      `json:"title,omitempty"`
	Header          string      `json:"header,omitempty"`
	Children        []*nodeJSON `json:"children,omitempty"`
	ListEmptyTables bool        `json:"listEmptyTables,omitempty"`

	NoData *noDataJSON `json:"noDataDisplaySettings,omitempty"`
}

type attributeGroupJSON struct {
	ID         string   `json:"id"`
	Title      string   `json:"title,omitempty"`
	Attributes []string `json:"attributes"`
	Merge      bool     `json:"merge,omitempty"`
}

type footnoteJSON struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type noDataJSON struct {
	Display        bool `json:"display"`
	ShowEmptyTable bool `json:"showEmptyTable"`
}

type subSectionsJSON struct {
	SubSections         []subSectionJSON `json:"subSections"`
	DisplayTitles       bool             `json:"displayTitles"`
	DisplaySectionTitle bool             `json:"displaySectionTitle"`
}

type subSectionJSON struct {
	ID               string            `json:"id"`
	OriginalValue    string            `json:"originalValue"`
	RenamedTitle     string            `json:"renamedTitle,omitempty"`
	Hidden           bool              `json:"hidden,omitempty"`
	AttributeRenames map[string]string `json:"attributesRenameDict,omitempty"`
	HiddenAttributes []string          `json:"hiddenAttributesList,omitempty"`
	Instructions     string            `json:"instructions,omitempty"`
	UnderlinedTitle  bool              `json:"underlinedTitle,omitempty"`
}

// DecodeTree decodes a stored document tree. The root is always a group.
func DecodeTree(raw []byte) (*GroupNode, error) {
	if len(raw) == 0 {
		return &GroupNode{}, nil
	}
	var root nodeJSON
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, errors.Wrap(err, "decode document tree")
	}
	node, err := root.toNode()
	if err != nil {
		return nil, err
	}
	group, ok := node.(*GroupNode)
	if !ok {
		// A bare table at the root is tolerated by wrapping it.
		return &GroupNode{Children: []Node{node}}, nil
	}
	return group, nil
}

// EncodeTree serializes a document tree in the stored tagged form.
func EncodeTree(root *GroupNode) ([]byte, error) {
	return json.Marshal(fromNode(root))
}

func (n *nodeJSON) toNode() (Node, error) {
	switch n.Type {
	case nodeTypeTable:
		t := &TableNode{
			SectionID:              n.SectionID,
			AttributeRenames:       n.AttributeRenames,
			MergeVisibleAttributes: n.MergeVisibleAttributes,
			SectionByAttribute:     n.SectionByAttribute,
			IncludeRowNumber:       n.IncludeRowNumber,
			RenamedTitle:           n.RenamedTitle,
			Query:                  n.Query,
			SkipDateFilter:         n.SkipDateFilter,
		}
		for _, g := range n.AttributeGroups {
			t.AttributeGroups = append(t.AttributeGroups, AttributeGroup(g))
		}
		for _, f := range n.Footnotes {
			t.Footnotes = append(t.Footnotes, FootnoteRule(f))
		}
		if n.SubSections != nil {
			s := &SubSectionSettings{
				DisplayTitles:       n.SubSections.DisplayTitles,
				DisplaySectionTitle: n.SubSections.DisplaySectionTitle,
			}
			for _, ss := range n.SubSections.SubSections {
				s.SubSections = append(s.SubSections, SubSection(ss))
			}
			t.SubSections = s
		}
		if n.NoData != nil {
			t.NoData = NoDataDisplay(*n.NoData)
		}
		return t, nil
	case nodeTypeGroup, "":
		g := &GroupNode{
			Title:           n.Title,
			Header:          n.Header,
			ListEmptyTables: n.ListEmptyTables,
		}
		if n.NoData != nil {
			g.NoData = NoDataDisplay(*n.NoData)
		}
		for _, child := range n.Children {
			c, err := child.toNode()
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, c)
		}
		return g, nil
	default:
		return nil, errors.Errorf("unknown node type %q", n.Type)
	}
}

func fromNode(node Node) *nodeJSON {
	switch n := node.(type) {
	case *TableNode:
		j := &nodeJSON{
			Type:                   nodeTypeTable,
			SectionID:              n.SectionID,
			AttributeRenames:       n.AttributeRenames,
			MergeVisibleAttributes: n.MergeVisibleAttributes,
			SectionByAttribute:     n.SectionByAttribute,
			IncludeRowNumber:       n.IncludeRowNumber,
			RenamedTitle:           n.RenamedTitle,
			Query:                  n.Query,
			SkipDateFilter:         n.SkipDateFilter,
		}
		for _, g := range n.AttributeGroups {
			j.AttributeGroups = append(j.AttributeGroups, attributeGroupJSON(g))
		}
		for _, f := range n.Footnotes {
			j.Footnotes = append(j.Footnotes, footnoteJSON(f))
		}
		if n.SubSections != nil {
			s := &subSectionsJSON{
				DisplayTitles:       n.SubSections.DisplayTitles,
				DisplaySectionTitle: n.SubSections.DisplaySectionTitle,
			}
			for _, ss := range n.SubSections.SubSections {
				s.SubSections = append(s.SubSections, subSectionJSON(ss))
			}
			j.SubSections = s
		}
		if n.NoData != (NoDataDisplay{}) {
			nd := noDataJSON(n.NoData)
			j.NoData = &nd
		}
		return j
	case *GroupNode:
		j := &nodeJSON{
			Type:            nodeTypeGroup,
			Title:           n.Title,
			Header:          n.Header,
			ListEmptyTables: n.ListEmptyTables,
		}
		if n.NoData != (NoDataDisplay{}) {
			nd := noDataJSON(n.NoData)
			j.NoData = &nd
		}
		for _, child := range n.Children {
			j.Children = append(j.Children, fromNode(child))
		}
		return j
	default:
		return nil
	}
}

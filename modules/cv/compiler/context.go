package compiler

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

// Context is the per-batch compilation store: the immutable template and
// section schemas are set once, then the mutable per-user record set is
// re-pointed via SetUser before each user's compilation.
//
// A Context is NOT safe for concurrent use: the current-user record map is
// a single mutable field. Batches must compile users strictly one after
// another, and a fresh Context must be used for an unrelated batch.
type Context struct {
	tpl      *template.Template
	sections map[string]section.Section
	queries  QueryExecutor
	logger   *logrus.Entry
	asOfYear int

	userID      string
	userRecords map[string][]section.Record
}

type Option func(*Context)

// WithAsOfYear pins the resolution of the literal date token "current" so
// filter results are deterministic across compilation dates.
func WithAsOfYear(year int) Option {
	return func(c *Context) {
		if year > 0 {
			c.asOfYear = year
		}
	}
}

func WithLogger(logger *logrus.Entry) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewContext(tpl *template.Template, sections []section.Section, queries QueryExecutor, opts ...Option) *Context {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Context{
		tpl:      tpl,
		sections: make(map[string]section.Section, len(sections)),
		queries:  queries,
		logger:   logrus.NewEntry(discard),
		asOfYear: time.Now().Year(),
	}
	for _, s := range sections {
		c.sections[s.ID] = s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUser re-points the context at a new user's record set. All per-user
// state is rebuilt from scratch so a failed previous compilation cannot
// leak into this one.
func (c *Context) SetUser(userID string, records []section.Record) {
	c.userID = userID
	c.userRecords = make(map[string][]section.Record)
	for _, r := range records {
		c.userRecords[r.SectionID] = append(c.userRecords[r.SectionID], r)
	}
}

// AsOfYear is the year the token "current" resolves to.
func (c *Context) AsOfYear() int {
	return c.asOfYear
}

// Compile resolves the template's document tree against the current user's
// records. Every failure inside the tree degrades to "render less"; Compile
// itself never fails.
func (c *Context) Compile() *CompiledDocument {
	doc := &CompiledDocument{
		Title:             c.tpl.Title,
		UserID:            c.userID,
		ShowDeclaration:   c.tpl.ShowDeclaration,
		ShowVisualNesting: c.tpl.ShowVisualNesting,
	}
	if c.tpl.Root == nil {
		return doc
	}
	for _, child := range c.tpl.Root.Children {
		doc.Nodes = append(doc.Nodes, c.compileNode(child)...)
	}
	return doc
}

func (c *Context) compileNode(node template.Node) []CompiledNode {
	switch n := node.(type) {
	case *template.TableNode:
		return c.compileTableNode(n)
	case *template.GroupNode:
		if g := c.compileGroup(n); g != nil {
			return []CompiledNode{g}
		}
		return nil
	default:
		return nil
	}
}

package compiler

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// goldenAngle spreads root-group hues around the color wheel so adjacent
// indent guides stay visually distinct at any group count.
const goldenAngle = 137.508

const documentStyles = `body { font-family: "Times New Roman", Georgia, serif; margin: 24px; color: #111111; }
h1 { margin-bottom: 0.25rem; }
h2, h3, h4, h5, h6 { margin: 1rem 0 0.25rem; }
.cv-affiliations { color: #333333; margin: 0.25rem 0 1rem; }
table.cv-table { border-collapse: collapse; width: 100%; margin: 0.25rem 0 1rem; }
.cv-table th, .cv-table td { border: 1px solid #555555; padding: 4px 8px; text-align: left; vertical-align: top; }
.cv-table thead { display: table-row-group; }
.cv-table tr { page-break-inside: avoid; }
.cv-link { white-space: nowrap; }
.cv-underline { text-decoration: underline; }
.cv-instructions { font-style: italic; margin: 0.1rem 0 0.4rem; }
.cv-footnotes { font-size: 0.9em; margin: 0.25rem 0 0.75rem; }
.cv-empty-tables { font-style: italic; margin: 0.25rem 0 0.75rem; }
.cv-nest { border-left: 2px solid; padding-left: 14px; }
.cv-no-data { text-align: center; font-style: italic; }
.cv-page-break { page-break-after: always; }
`

// RenderDocument emits one user's compiled CV as a standalone HTML page.
func RenderDocument(doc *CompiledDocument) string {
	var b strings.Builder
	writeHead(&b, doc.Title)
	renderDocumentBody(&b, doc)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// RenderBatch concatenates multiple compiled documents into one page with
// print page breaks between users.
func RenderBatch(docs []*CompiledDocument) string {
	var b strings.Builder
	title := "CV Batch"
	if len(docs) > 0 {
		title = docs[0].Title
	}
	writeHead(&b, title)
	for i, doc := range docs {
		if i > 0 {
			b.WriteString(`<div class="cv-page-break"></div>` + "\n")
		}
		renderDocumentBody(&b, doc)
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeHead(b *strings.Builder, title string) {
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	fmt.Fprintf(b, "  <title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(b, "  <style>%s</style>\n", documentStyles)
	b.WriteString("</head>\n<body>\n")
}

func renderDocumentBody(b *strings.Builder, doc *CompiledDocument) {
	fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(doc.Title))

	if len(doc.Affiliations) > 0 {
		b.WriteString(`<p class="cv-affiliations">`)
		for i, a := range doc.Affiliations {
			if i > 0 {
				b.WriteString("<br>")
			}
			line := a.Role
			if a.Department != "" {
				line += ", " + a.Department
			}
			b.WriteString(html.EscapeString(line))
		}
		b.WriteString("</p>\n")
	}

	if doc.ShowDeclaration {
		for _, d := range doc.Declarations {
			fmt.Fprintf(b, "<h2>%s</h2>\n<p>%s</p>\n",
				html.EscapeString(d.Title), html.EscapeString(d.Body))
		}
	}

	for i, node := range doc.Nodes {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		renderNode(b, node, 0, hue, doc.ShowVisualNesting)
	}
}

func renderNode(b *strings.Builder, node CompiledNode, depth int, hue float64, nesting bool) {
	switch n := node.(type) {
	case *CompiledTable:
		renderTable(b, n)
	case *CompiledGroup:
		renderGroup(b, n, depth, hue, nesting)
	}
}

func renderGroup(b *strings.Builder, group *CompiledGroup, depth int, hue float64, nesting bool) {
	heading := group.Header
	if heading == "" {
		heading = group.Title
	}
	if heading != "" {
		tag := headingTag(depth)
		fmt.Fprintf(b, "<%s>%s</%s>\n", tag, html.EscapeString(heading), tag)
	}

	indent := nesting && depth > 0
	if indent {
		fmt.Fprintf(b, `<div class="cv-nest" style="border-left-color: hsl(%.1f, 65%%, 55%%);">`+"\n", hue)
	}
	for _, child := range group.Children {
		renderNode(b, child, depth+1, hue, nesting)
	}
	if indent {
		b.WriteString("</div>\n")
	}

	if len(group.EmptyTables) > 0 {
		fmt.Fprintf(b, `<p class="cv-empty-tables">Tables with no data: %s</p>`+"\n",
			html.EscapeString(strings.Join(group.EmptyTables, ", ")))
	}
}

func headingTag(depth int) string {
	level := depth + 2
	if level > 6 {
		level = 6
	}
	return fmt.Sprintf("h%d", level)
}

func renderTable(b *strings.Builder, t *CompiledTable) {
	if t.Empty() && !t.ShowEmptyTable {
		return
	}

	if t.Title != "" {
		class := ""
		if t.UnderlinedTitle {
			class = ` class="cv-underline"`
		}
		fmt.Fprintf(b, "<h3%s>%s</h3>\n", class, html.EscapeString(t.Title))
	}
	if t.Instructions != "" {
		fmt.Fprintf(b, `<p class="cv-instructions">%s</p>`+"\n", html.EscapeString(t.Instructions))
	}

	leaves := t.Leaves()
	b.WriteString(`<table class="cv-table">` + "\n")
	if !t.HideColumnHeader {
		b.WriteString("<thead>\n")
		renderHeaderRows(b, t)
		b.WriteString("</thead>\n")
	}
	b.WriteString("<tbody>\n")
	if t.Empty() {
		fmt.Fprintf(b, `<tr><td class="cv-no-data" colspan="%d">No data!</td></tr>`+"\n", len(leaves))
	}
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, leaf := range leaves {
			// Cell values were escaped and rewritten by the cell styler.
			b.WriteString("<td>" + row[leaf.Field] + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")

	for _, footnote := range t.Footnotes {
		fmt.Fprintf(b, `<div class="cv-footnotes">%s</div>`+"\n", footnote)
	}
}

// renderHeaderRows walks the column tree level by level: a leaf spans the
// remaining header rows (rowspan = maxDepth - level + 1); a branch spans
// its leaf descendants (colspan = leaf count).
func renderHeaderRows(b *strings.Builder, t *CompiledTable) {
	depth := t.headerDepth()
	level := t.Columns
	for lvl := 1; len(level) > 0; lvl++ {
		b.WriteString("<tr>")
		var next []*ColumnTree
		for _, col := range level {
			if len(col.Children) == 0 {
				span := depth - lvl + 1
				if span > 1 {
					fmt.Fprintf(b, `<th rowspan="%d">%s</th>`, span, html.EscapeString(col.Header))
				} else {
					fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(col.Header))
				}
				continue
			}
			fmt.Fprintf(b, `<th colspan="%d">%s</th>`, col.LeafCount(), html.EscapeString(col.Header))
			next = append(next, col.Children...)
		}
		b.WriteString("</tr>\n")
		level = next
	}
}

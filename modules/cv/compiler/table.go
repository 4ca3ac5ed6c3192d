package compiler

import (
	"strconv"
	"strings"

	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/section"
	"github.com/vitaworks/vitaworks/modules/cv/domain/entities/template"
)

// compileTableNode resolves one authored table node into its render-ready
// tables. The result is a list: sub-sectioning and the trainee-supervision
// summary can yield more than one table per node.
func (c *Context) compileTableNode(node *template.TableNode) []CompiledNode {
	sec, ok := c.sections[node.SectionID]
	if !ok {
		c.logger.WithField("section_id", node.SectionID).
			Warn("section not found, rendering empty table")
		missing := section.Section{ID: node.SectionID, Title: node.SectionID}
		return []CompiledNode{c.newEmptyTable(node, missing)}
	}

	records := c.userRecords[sec.ID]
	if isClinicalTeaching(sec) {
		records = aggregateClinicalTeaching(sec, records)
	}

	var nodes []CompiledNode
	if node.SectionByAttribute != "" && node.SubSections != nil && len(node.SubSections.SubSections) > 0 {
		nodes = c.compileSubSections(node, sec, records)
	} else {
		nodes = []CompiledNode{c.compileSingle(node, sec, records, nil)}
	}

	if isTraineeSupervision(sec) {
		if summary := c.supervisionSummary(sec, records); summary != nil {
			nodes = append(nodes, summary)
		}
	}
	return nodes
}

func (c *Context) newEmptyTable(node *template.TableNode, sec section.Section) *CompiledTable {
	return &CompiledTable{
		Title:           tableTitle(node, sec),
		UnderlinedTitle: node.UnderlinedTitle,
		Instructions:    node.Instructions,
		Columns:         buildColumns(node),
		ShowEmptyTable:  node.NoData.ShowEmptyTable,
	}
}

// compileSingle runs the full per-table pipeline: filter by sub-section
// value, filter and sort by date, run the optional ad-hoc query, number
// rows, style cells, resolve footnotes, and concatenate merge groups.
func (c *Context) compileSingle(node *template.TableNode, sec section.Section, records []section.Record, declared map[string]struct{}) *CompiledTable {
	if node.AttributeFilterValue != "" && node.SectionByAttribute != "" {
		key := sec.StorageKey(node.SectionByAttribute)
		filtered := make([]section.Record, 0, len(records))
		for _, rec := range records {
			if matchesSubSection(rec.Value(key), node.AttributeFilterValue, declared) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	dateAttr := ResolveDateAttribute(sec)
	dateKey := ""
	if dateAttr != "" {
		dateKey = sec.StorageKey(dateAttr)
	}
	if !node.SkipDateFilter {
		records = FilterByRange(records, dateKey, c.tpl.StartYear, c.tpl.EndYear, c.asOfYear)
	}
	sorted := make([]section.Record, len(records))
	copy(sorted, records)
	SortByDate(sorted, dateKey, c.tpl.SortAscending, c.asOfYear)

	rows := make([]Row, 0, len(sorted))
	for _, rec := range sorted {
		rows = append(rows, logicalRow(sec, rec))
	}

	if node.Query != "" {
		res, err := c.queries.Execute(node.Query, rows)
		if err != nil || !res.Success {
			c.logger.WithField("section_id", sec.ID).
				WithField("query", node.Query).
				WithError(err).
				Error("ad-hoc query failed, table will have no rows")
			rows = nil
		} else {
			rows = res.Rows
		}
	}

	table := c.newEmptyTable(node, sec)
	table.HideColumnHeader = node.MergeVisibleAttributes
	table.Rows = rows

	numberRows(table, node)
	styleRows(rows)
	table.Footnotes = resolveFootnotes(rows, node.Footnotes)
	applyMergeGroups(rows, node)
	return table
}

func tableTitle(node *template.TableNode, sec section.Section) string {
	if node.RenamedTitle != "" {
		return node.RenamedTitle
	}
	if node.HideSectionTitle {
		return ""
	}
	return sec.Title
}

// logicalRow re-keys a record's raw fields from storage keys to logical
// attribute names.
func logicalRow(sec section.Section, rec section.Record) Row {
	row := make(Row, len(sec.Attributes))
	for logical, storage := range sec.Attributes {
		row[logical] = rec.Value(storage)
	}
	return row
}

// numberRows fills the synthetic row_number field. The column is added
// when the node asks for it and no authored leaf already references it.
func numberRows(table *CompiledTable, node *template.TableNode) {
	referenced := false
	for _, leaf := range table.Leaves() {
		if leaf.Field == template.RowNumberField {
			referenced = true
			break
		}
	}
	if node.IncludeRowNumber && !referenced {
		table.Columns = append([]*ColumnTree{{Header: "#", Field: template.RowNumberField}}, table.Columns...)
		referenced = true
	}
	if !referenced {
		return
	}
	for i, row := range table.Rows {
		row[template.RowNumberField] = strconv.Itoa(i + 1)
	}
}

func styleRows(rows []Row) {
	for _, row := range rows {
		for field, value := range row {
			if field == template.RowNumberField || value == "" {
				continue
			}
			row[field] = Style(value)
		}
	}
}

// resolveFootnotes applies the node's footnote rules: wherever a row has
// both the source and target fields non-empty, a numbered superscript
// marker is prepended to the target cell and the source value is recorded.
// Numbering increases monotonically across rows in iteration order.
func resolveFootnotes(rows []Row, rules []template.FootnoteRule) []string {
	if len(rules) == 0 {
		return nil
	}
	var footnotes []string
	n := 0
	for _, row := range rows {
		for _, rule := range rules {
			source := strings.TrimSpace(row[rule.Source])
			target := strings.TrimSpace(row[rule.Target])
			if source == "" || target == "" {
				continue
			}
			n++
			marker := strconv.Itoa(n)
			row[rule.Target] = "<sup>" + marker + "</sup>" + row[rule.Target]
			footnotes = append(footnotes, marker+". "+source)
		}
	}
	return footnotes
}

// applyMergeGroups produces the merged_<groupID> fields: the non-empty,
// trimmed member values in declared attribute order, joined by ", ".
func applyMergeGroups(rows []Row, node *template.TableNode) {
	merge := func(field string, attrs []string) {
		for _, row := range rows {
			parts := make([]string, 0, len(attrs))
			for _, attr := range attrs {
				if v := strings.TrimSpace(row[attr]); v != "" {
					parts = append(parts, v)
				}
			}
			row[field] = strings.Join(parts, ", ")
		}
	}

	if node.MergeVisibleAttributes {
		merge(mergedField(template.GroupShown), visibleAttributes(node))
	}
	for _, g := range node.AttributeGroups {
		if g.Merge && g.ID != template.GroupHidden {
			merge(mergedField(g.ID), g.Attributes)
		}
	}
}

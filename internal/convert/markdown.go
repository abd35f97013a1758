// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert renders an ExtractedDocument as Markdown. Rendering is
// pure and deterministic: no remote calls, fixed block order, and the same
// input always produces the same output.
package convert

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pdftomd/pkg/types"
)

// tocThreshold is the section count above which a table of contents is
// emitted.
const tocThreshold = 5

// Render produces the full Markdown document: frontmatter, summary, key
// points, optional table of contents, sections, then one block per element
// type. Empty blocks are omitted.
func Render(doc *types.ExtractedDocument) string {
	parts := []string{
		renderFrontmatter(doc.Metadata),
		renderSummary(doc.Summary),
	}

	if len(doc.KeyPoints) > 0 {
		parts = append(parts, renderKeyPoints(doc.KeyPoints))
	}
	if len(doc.Sections) > tocThreshold {
		parts = append(parts, renderTOC(doc.Sections))
	}
	for _, sec := range doc.Sections {
		parts = append(parts, renderSection(sec))
	}
	if len(doc.Tables) > 0 {
		parts = append(parts, renderTables(doc.Tables))
	}
	if len(doc.Images) > 0 {
		parts = append(parts, renderImages(doc.Images))
	}
	if len(doc.Equations) > 0 {
		parts = append(parts, renderEquations(doc.Equations))
	}
	if len(doc.CodeBlocks) > 0 {
		parts = append(parts, renderCode(doc.CodeBlocks))
	}
	if len(doc.References) > 0 {
		parts = append(parts, renderReferences(doc.References))
	}
	if len(doc.Glossary) > 0 {
		parts = append(parts, renderGlossary(doc.Glossary))
	}

	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func renderFrontmatter(meta types.DocumentMetadata) string {
	lines := []string{"---"}
	lines = append(lines, fmt.Sprintf("title: %q", meta.Title))
	if meta.Subtitle != "" {
		lines = append(lines, fmt.Sprintf("subtitle: %q", meta.Subtitle))
	}
	switch len(meta.Authors) {
	case 0:
	case 1:
		lines = append(lines, fmt.Sprintf("author: %q", meta.Authors[0]))
	default:
		lines = append(lines, "authors:")
		for _, a := range meta.Authors {
			lines = append(lines, fmt.Sprintf("  - %q", a))
		}
	}
	if meta.Date != "" {
		lines = append(lines, fmt.Sprintf("date: %q", meta.Date))
	}
	if meta.DocumentType != "" {
		lines = append(lines, fmt.Sprintf("type: %q", meta.DocumentType))
	}
	if meta.Language != "" {
		lines = append(lines, fmt.Sprintf("language: %q", meta.Language))
	}
	if meta.TotalPages > 0 {
		lines = append(lines, fmt.Sprintf("pages: %d", meta.TotalPages))
	}
	lines = append(lines, "---")
	return strings.Join(lines, "\n")
}

func renderSummary(summary string) string {
	return "## Summary\n\n" + summary
}

func renderKeyPoints(points []string) string {
	lines := []string{"## Key Points", ""}
	for _, p := range points {
		lines = append(lines, "- "+p)
	}
	return strings.Join(lines, "\n")
}

func renderTOC(sections []types.Section) string {
	lines := []string{"## Table of Contents", ""}
	for _, sec := range sections {
		indent := strings.Repeat("  ", sec.Level-1)
		lines = append(lines, fmt.Sprintf("%s- [%s](#%s)", indent, sec.Title, Anchor(sec.Title)))
	}
	return strings.Join(lines, "\n")
}

// Anchor derives the heading anchor for a section title: lowercase, spaces
// to hyphens, and every character outside [a-z0-9-] stripped. TOC links
// only resolve if this transform matches the one renderers apply to
// headings, so it must stay pure and stable.
func Anchor(title string) string {
	lowered := strings.ReplaceAll(strings.ToLower(title), " ", "-")
	var b strings.Builder
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func renderSection(sec types.Section) string {
	return fmt.Sprintf("%s %s\n\n%s", strings.Repeat("#", sec.Level), sec.Title, sec.Content)
}

func renderTables(tables []types.Table) string {
	lines := []string{"## Tables", ""}
	for i, table := range tables {
		if table.Caption != "" {
			lines = append(lines, "### "+table.Caption)
		} else {
			lines = append(lines, fmt.Sprintf("### Table %d", i+1))
		}
		if table.Context != "" {
			lines = append(lines, "", "*"+table.Context+"*")
		}
		lines = append(lines, "", renderTable(table), "")
	}
	return strings.Join(lines, "\n")
}

// renderTable emits one Markdown table. Rows shorter than the header count
// are padded with empty cells and longer rows are truncated, so every
// emitted row has exactly the header width.
func renderTable(table types.Table) string {
	if len(table.Headers) == 0 && len(table.Rows) == 0 {
		return ""
	}

	var lines []string
	if len(table.Headers) > 0 {
		lines = append(lines, "| "+strings.Join(table.Headers, " | ")+" |")
		seps := make([]string, len(table.Headers))
		for i := range seps {
			seps[i] = "---"
		}
		lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
	}

	for _, row := range table.Rows {
		cells := normalizeRow(row, len(table.Headers))
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// normalizeRow pads or truncates a row to width cells. With no headers the
// row passes through unchanged.
func normalizeRow(row []string, width int) []string {
	if width == 0 {
		return row
	}
	cells := make([]string, width)
	copy(cells, row)
	return cells
}

func renderImages(images []types.Image) string {
	lines := []string{"## Figures and Images", ""}
	for _, img := range images {
		if img.FigureNumber != "" {
			lines = append(lines, "### "+img.FigureNumber)
		}
		if img.Caption != "" {
			lines = append(lines, "**"+img.Caption+"**")
		}
		lines = append(lines,
			"",
			"*Description:* "+img.Description,
			"",
			"*Context:* "+img.Context,
			"",
			"*Alt-text:* "+img.AltText,
			"")
	}
	return strings.Join(lines, "\n")
}

func renderEquations(equations []types.Equation) string {
	lines := []string{"## Equations", ""}
	for _, eq := range equations {
		if eq.EquationNumber != "" {
			lines = append(lines, "### Equation "+eq.EquationNumber)
		}
		lines = append(lines, "", fmt.Sprintf("$$\n%s\n$$", eq.LaTeX))
		if eq.Description != "" {
			lines = append(lines, "", "*"+eq.Description+"*")
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func renderCode(blocks []types.CodeBlock) string {
	lines := []string{"## Code and Algorithms", ""}
	for i, block := range blocks {
		if block.Context != "" {
			lines = append(lines, "### "+block.Context)
		} else {
			lines = append(lines, fmt.Sprintf("### Code Block %d", i+1))
		}
		lines = append(lines, "", "```"+block.Language, block.Code, "```", "")
	}
	return strings.Join(lines, "\n")
}

func renderReferences(refs []types.Reference) string {
	lines := []string{"## References", ""}
	for _, ref := range refs {
		if ref.Number != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s", ref.Number, ref.Citation))
		} else {
			lines = append(lines, "- "+ref.Citation)
		}
	}
	return strings.Join(lines, "\n")
}

func renderGlossary(terms []string) string {
	lines := []string{"## Glossary", ""}
	for _, term := range terms {
		lines = append(lines, "- "+term)
	}
	return strings.Join(lines, "\n")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/pdftomd/pkg/types"
)

// directPrompt is the instruction for single-exchange extraction. The
// response schema is enforced server-side, so the prompt concentrates on
// completeness rules rather than output shape.
const directPrompt = `You are an expert document analyzer with deep expertise in technical content extraction. Extract ALL information from this PDF document with maximum completeness and accuracy.

Your task is to create a comprehensive structured extraction that captures:

## METADATA
- Title, subtitle, authors, date, document type, language
- Identify the type: academic paper, textbook chapter, technical manual, report, etc.

## SUMMARY
- Write a thorough executive summary (2-3 detailed paragraphs)
- Cover the main topic, methodology, findings, and conclusions

## KEY POINTS
- List 5-10 main takeaways and important points

## SECTIONS
- Extract ALL text content, preserving the exact document structure
- Use appropriate heading levels (1-6) matching the original hierarchy
- Include ALL paragraphs - do NOT summarize or skip any content

## TABLES
- Extract every table with complete headers and all data rows
- Include table captions and numbers

## IMAGES/FIGURES
- Describe EVERY image, diagram, chart, or figure in detail
- Include figure numbers and captions exactly as they appear

## CODE & ALGORITHMS
- Extract all code blocks, pseudocode, or algorithms
- Identify the programming language when possible

## EQUATIONS
- Capture all mathematical equations in LaTeX format

## REFERENCES
- List all bibliographic references completely

## GLOSSARY
- Extract key terms and their definitions if present

CRITICAL RULES:
- Be EXHAUSTIVE - capture every piece of information, no matter how small
- Preserve the EXACT original structure and hierarchy
- Use proper Markdown formatting in section content
- NEVER skip, summarize, or paraphrase content - include it verbatim
- Technical accuracy is paramount - preserve all formulas, numbers, and terminology exactly

Now extract everything from this document:`

// analysisPrompt is the phase-1 instruction: infer metadata, the section
// outline, a global-context paragraph, and a 2-5 chunk partition of the
// page range.
const analysisPrompt = `Analyze the overall structure of this PDF document. Do not extract content yet.

Respond with a single JSON object, no surrounding text, with exactly these fields:
- "title": the document's main title
- "document_type": academic paper, textbook chapter, technical manual, report, etc.
- "total_pages": the total page count as an integer
- "language": the primary language
- "outline": an ordered array of every section title in the document
- "global_context": one paragraph summarizing the whole document's topic, structure, and narrative, to be used as shared context when sections are processed independently
- "chunks": a partition of the full page range into 2 to 5 contiguous chunks. Each chunk is an object with:
  - "id": a short identifier like "chunk-1"
  - "start_page" and "end_page": inclusive page bounds; chunks must not overlap and together must cover every page
  - "content_type": the dominant content of the range (prose, tables, figures, appendix, references)
  - "section_titles": the subset of the outline covered by this chunk
  - "has_tables", "has_figures", "has_equations", "has_code": booleans

Split at section boundaries where possible and keep chunks of similar size.`

// chunkPromptTmpl is the phase-2 instruction for one chunk. It carries the
// phase-1 global context and full outline so the model keeps the document's
// narrative even though it only extracts from one page range.
var chunkPromptTmpl = template.Must(template.New("chunk").Parse(`You are extracting structured content from one part of a larger PDF document.

Document context (for orientation only, do not extract from it):
{{.GlobalContext}}

Full document outline:
{{.Outline}}

Extract ALL content from pages {{.StartPage}} to {{.EndPage}} only. This range covers the following sections:
{{.SectionTitles}}

Respond with a single JSON object, no surrounding text, with exactly these fields, each an array (empty if nothing of that kind appears in the page range):
- "sections": objects with "title", "level" (integer 1-6), "content" (full Markdown text, verbatim, no summarizing)
- "tables": objects with "caption", "headers", "rows", "context"
- "images": objects with "figure_number", "caption", "description", "context", "alt_text"
- "code_blocks": objects with "language", "code", "context"
- "equations": objects with "equation_number", "latex", "description"
- "references": objects with "number", "citation"

Extract content exhaustively and verbatim. Do not repeat content from other page ranges.`))

// renderChunkPrompt executes the chunk prompt template for one chunk of
// the analysis.
func renderChunkPrompt(analysis *types.DocumentAnalysis, chunk types.ChunkSpec) (string, error) {
	titles := chunk.SectionTitles
	if len(titles) == 0 {
		titles = []string{"(untitled content)"}
	}

	var buf bytes.Buffer
	err := chunkPromptTmpl.Execute(&buf, struct {
		GlobalContext string
		Outline       string
		StartPage     int
		EndPage       int
		SectionTitles string
	}{
		GlobalContext: analysis.GlobalContext,
		Outline:       "- " + strings.Join(analysis.Outline, "\n- "),
		StartPage:     chunk.StartPage,
		EndPage:       chunk.EndPage,
		SectionTitles: "- " + strings.Join(titles, "\n- "),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

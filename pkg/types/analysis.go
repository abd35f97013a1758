// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChunkSpec is one entry of the chunk partition proposed by the structural
// analysis phase. It drives one context-aware extraction exchange and is
// discarded after assembly.
type ChunkSpec struct {
	// ID identifies the chunk within one analysis (e.g. "chunk-1").
	ID string `json:"id" yaml:"id"`

	// StartPage and EndPage bound the chunk, inclusive. StartPage <= EndPage.
	StartPage int `json:"start_page" yaml:"start_page"`
	EndPage   int `json:"end_page" yaml:"end_page"`

	// ContentType tags the dominant content of the range (e.g. "prose",
	// "tables", "appendix").
	ContentType string `json:"content_type" yaml:"content_type"`

	// SectionTitles are the outline titles this chunk covers.
	SectionTitles []string `json:"section_titles" yaml:"section_titles"`

	// Content-feature flags from the analysis.
	HasTables    bool `json:"has_tables" yaml:"has_tables"`
	HasFigures   bool `json:"has_figures" yaml:"has_figures"`
	HasEquations bool `json:"has_equations" yaml:"has_equations"`
	HasCode      bool `json:"has_code" yaml:"has_code"`
}

// Pages returns the number of pages the chunk spans.
func (c ChunkSpec) Pages() int {
	return c.EndPage - c.StartPage + 1
}

// DocumentAnalysis is the phase-1 response: inferred metadata, the section
// outline, a global-context summary, and the proposed chunk partition.
type DocumentAnalysis struct {
	Title        string `json:"title" yaml:"title"`
	DocumentType string `json:"document_type" yaml:"document_type"`
	TotalPages   int    `json:"total_pages" yaml:"total_pages"`
	Language     string `json:"language" yaml:"language"`

	// Outline is the ordered list of section titles for the whole document.
	Outline []string `json:"outline" yaml:"outline"`

	// GlobalContext is a one-paragraph summary carried into every chunk
	// prompt so independently processed chunks keep the document's
	// narrative. It also becomes the assembled document's summary.
	GlobalContext string `json:"global_context" yaml:"global_context"`

	// Chunks is the proposed partition of the page range.
	Chunks []ChunkSpec `json:"chunks" yaml:"chunks"`
}

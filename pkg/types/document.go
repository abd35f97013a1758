// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value records shared across the extraction
// pipeline: the document data model produced by the remote model, token
// accounting, and per-stage configuration.
package types

import "fmt"

// DocumentMetadata holds document-level fields inferred by the model.
type DocumentMetadata struct {
	// Title is the main title of the document. Required.
	Title string `json:"title" yaml:"title"`

	// Subtitle is the subtitle if present.
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`

	// Authors lists the document authors if identified.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Date is the publication or creation date as written in the document.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// TotalPages is the page count, 0 if unknown.
	TotalPages int `json:"total_pages,omitempty" yaml:"total_pages,omitempty"`

	// Language is the primary language of the document.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// DocumentType labels the kind of document (academic paper, report,
	// manual, book chapter).
	DocumentType string `json:"document_type,omitempty" yaml:"document_type,omitempty"`
}

// Section is one section or subsection of the document. Ordering within
// the owning document is significant and preserved exactly as produced.
type Section struct {
	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Level is the heading level, 1-6 inclusive.
	Level int `json:"level" yaml:"level"`

	// Content is the full section body in Markdown.
	Content string `json:"content" yaml:"content"`
}

// NewSection validates and constructs a Section. The heading level must be
// in [1,6].
func NewSection(title string, level int, content string) (Section, error) {
	if level < 1 || level > 6 {
		return Section{}, fmt.Errorf("section %q: heading level %d out of range [1,6]", title, level)
	}
	return Section{Title: title, Level: level, Content: content}, nil
}

// Validate reports whether the section satisfies its construction
// invariants. Used when sections arrive pre-built from a decoded payload.
func (s Section) Validate() error {
	if s.Level < 1 || s.Level > 6 {
		return fmt.Errorf("section %q: heading level %d out of range [1,6]", s.Title, s.Level)
	}
	return nil
}

// Table is a table extracted from the document. Rows shorter than the
// header count are padded at render time, not rejected here.
type Table struct {
	// Caption is the table caption or title if present.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Headers are the ordered column labels.
	Headers []string `json:"headers" yaml:"headers"`

	// Rows are the ordered data rows, each an ordered list of cells.
	Rows [][]string `json:"rows" yaml:"rows"`

	// Context is a brief note on what the table represents.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Image is the textual description of a figure. No binary data is kept.
type Image struct {
	// FigureNumber is the label as printed (e.g. "Figure 3.1").
	FigureNumber string `json:"figure_number,omitempty" yaml:"figure_number,omitempty"`

	// Caption is the figure caption if present.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Description explains what the image shows. Required.
	Description string `json:"description" yaml:"description"`

	// Context relates the image to the surrounding text. Required.
	Context string `json:"context" yaml:"context"`

	// AltText is a concise accessibility description. Required.
	AltText string `json:"alt_text" yaml:"alt_text"`
}

// CodeBlock is a code listing or algorithm.
type CodeBlock struct {
	// Language is the programming language if identifiable.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Code is the listing text. Required.
	Code string `json:"code" yaml:"code"`

	// Context describes what the code demonstrates.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Equation is a mathematical equation captured as LaTeX source.
type Equation struct {
	// EquationNumber is the printed label if any.
	EquationNumber string `json:"equation_number,omitempty" yaml:"equation_number,omitempty"`

	// LaTeX is the equation source. Required.
	LaTeX string `json:"latex" yaml:"latex"`

	// Description states what the equation represents.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Reference is one bibliographic entry.
type Reference struct {
	// Number is the reference number or key if labeled.
	Number string `json:"number,omitempty" yaml:"number,omitempty"`

	// Citation is the full citation text. Required.
	Citation string `json:"citation" yaml:"citation"`
}

// ExtractedDocument is the root aggregate: everything the model extracted
// from one PDF. All child slices use insertion order = document order.
type ExtractedDocument struct {
	Metadata   DocumentMetadata `json:"metadata" yaml:"metadata"`
	Summary    string           `json:"summary" yaml:"summary"`
	KeyPoints  []string         `json:"key_points" yaml:"key_points"`
	Sections   []Section        `json:"sections" yaml:"sections"`
	Tables     []Table          `json:"tables" yaml:"tables"`
	Images     []Image          `json:"images" yaml:"images"`
	CodeBlocks []CodeBlock      `json:"code_blocks" yaml:"code_blocks"`
	Equations  []Equation       `json:"equations" yaml:"equations"`
	References []Reference      `json:"references" yaml:"references"`
	Glossary   []string         `json:"glossary,omitempty" yaml:"glossary,omitempty"`
}

// Validate checks the construction invariants of the aggregate: a title
// must be present and every section level must be in range.
func (d *ExtractedDocument) Validate() error {
	if d.Metadata.Title == "" {
		return fmt.Errorf("document metadata missing title")
	}
	for i, s := range d.Sections {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sections[%d]: %w", i, err)
		}
	}
	return nil
}

// TokenUsage accounts prompt and completion tokens for one or more remote
// calls. Total always equals Prompt+Completion for values the pipeline
// constructs; externally supplied totals are recomputed.
type TokenUsage struct {
	Prompt     int `json:"prompt_tokens" yaml:"prompt_tokens"`
	Completion int `json:"completion_tokens" yaml:"completion_tokens"`
	Total      int `json:"total_tokens" yaml:"total_tokens"`
}

// NewTokenUsage builds a TokenUsage whose total is prompt+completion by
// construction.
func NewTokenUsage(prompt, completion int) TokenUsage {
	return TokenUsage{Prompt: prompt, Completion: completion, Total: prompt + completion}
}

// Add accrues another usage into u, keeping the total invariant.
func (u *TokenUsage) Add(other TokenUsage) {
	u.Prompt += other.Prompt
	u.Completion += other.Completion
	u.Total = u.Prompt + u.Completion
}

// FinishReason classifies why the remote model stopped generating.
type FinishReason string

const (
	// FinishStop is a normal completion.
	FinishStop FinishReason = "stop"
	// FinishMaxTokens means the output hit the token ceiling. Not retried;
	// the result is flagged as truncated instead.
	FinishMaxTokens FinishReason = "max_tokens"
	// FinishSafety is a content-safety block. Retryable.
	FinishSafety FinishReason = "safety"
	// FinishRecitation is a recitation/policy block. Retryable.
	FinishRecitation FinishReason = "recitation"
	// FinishEmpty means the model returned no candidates or blank text.
	FinishEmpty FinishReason = "empty"
	// FinishOther covers everything else.
	FinishOther FinishReason = "other"
)

// ExtractionResult is the top-level return value of any extraction
// operation: the document plus call metadata.
type ExtractionResult struct {
	Document ExtractedDocument `json:"document" yaml:"document"`

	// Usage is the token cost summed across every remote call the
	// operation made, retried attempts included.
	Usage TokenUsage `json:"token_usage" yaml:"token_usage"`

	// FinishReason is the completion classification of the operation.
	FinishReason FinishReason `json:"finish_reason" yaml:"finish_reason"`

	// Truncated reports that output hit the max-token ceiling. Truncated
	// output is still partially usable, so this is a flag, not an error.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/pdftomd/pkg/types"
)

// Pipeline is the chunked large-document flow: one structural-analysis
// exchange, one context-aware extraction exchange per proposed chunk, then
// local assembly. Phases run strictly in order; chunk exchanges are
// sequential so at most one call is outstanding against the remote API.
type Pipeline struct {
	backend Generator
	cfg     types.ExtractionConfig
	w       io.Writer
}

// NewPipeline builds a pipeline over a cached-content backend. Progress
// lines are written to w.
func NewPipeline(backend Generator, cfg types.ExtractionConfig, w io.Writer) *Pipeline {
	return &Pipeline{backend: backend, cfg: cfg.WithDefaults(), w: w}
}

// Run executes the three phases and returns the assembled result. A
// phase-1 parse failure is fatal; a single chunk failing in phase 2 only
// reduces completeness.
func (p *Pipeline) Run(ctx context.Context) (*types.ExtractionResult, error) {
	var usage types.TokenUsage

	analysis, err := p.analyze(ctx, &usage)
	if err != nil {
		return nil, fmt.Errorf("phase 1 structural analysis: %w", err)
	}

	chunks, err := validateChunks(analysis.Chunks, analysis.TotalPages)
	if err != nil {
		return nil, fmt.Errorf("phase 1 structural analysis: %w", err)
	}

	fmt.Fprintf(p.w, "analysis: %q, %d pages, %d chunks\n",
		analysis.Title, analysis.TotalPages, len(chunks))

	var acc accumulator
	for i, chunk := range chunks {
		if err := p.extractChunk(ctx, analysis, chunk, &acc, &usage); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			fmt.Fprintf(p.w, "skipped chunk %d/%d (pages %d-%d): %v\n",
				i+1, len(chunks), chunk.StartPage, chunk.EndPage, err)
			continue
		}
		fmt.Fprintf(p.w, "chunk %d/%d (pages %d-%d): %d sections, %d tables\n",
			i+1, len(chunks), chunk.StartPage, chunk.EndPage,
			len(acc.sections), len(acc.tables))
	}

	doc := acc.document(analysis)

	return &types.ExtractionResult{
		Document:     doc,
		Usage:        usage,
		FinishReason: types.FinishStop,
	}, nil
}

// analyze runs the phase-1 exchange and decodes the structural analysis.
func (p *Pipeline) analyze(ctx context.Context, usage *types.TokenUsage) (*types.DocumentAnalysis, error) {
	att, err := callWithRetry(ctx, func(ctx context.Context) (Attempt, error) {
		return p.backend.Generate(ctx, analysisPrompt)
	}, p.cfg.MaxRetries, usage)
	if err != nil {
		return nil, err
	}

	var analysis types.DocumentAnalysis
	if err := json.Unmarshal([]byte(stripFences(att.Text)), &analysis); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	if analysis.Title == "" {
		return nil, fmt.Errorf("analysis missing document title")
	}
	return &analysis, nil
}

// extractChunk runs one phase-2 exchange and absorbs the parsed payload
// into the accumulator. An empty response after exhausting retries is
// downgraded to a skip: the chunk contributes nothing but the document
// still assembles.
func (p *Pipeline) extractChunk(ctx context.Context, analysis *types.DocumentAnalysis, chunk types.ChunkSpec, acc *accumulator, usage *types.TokenUsage) error {
	prompt, err := renderChunkPrompt(analysis, chunk)
	if err != nil {
		return fmt.Errorf("building chunk prompt: %w", err)
	}

	att, err := callWithRetry(ctx, func(ctx context.Context) (Attempt, error) {
		return p.backend.Generate(ctx, prompt)
	}, p.cfg.MaxRetries, usage)
	if err != nil {
		return err
	}

	if att.Finish == types.FinishMaxTokens {
		fmt.Fprintf(p.w, "warning: chunk %s output truncated at the token ceiling\n", chunk.ID)
	}

	payload, err := parseChunkPayload(att.Text)
	if err != nil {
		return err
	}

	acc.absorb(payload)
	return nil
}

// accumulator gathers per-chunk payloads in chunk order. Lists are
// append-only until assembly.
type accumulator struct {
	sections   []types.Section
	tables     []types.Table
	images     []types.Image
	codeBlocks []types.CodeBlock
	equations  []types.Equation
	references []types.Reference
}

func (a *accumulator) absorb(p chunkPayload) {
	a.sections = append(a.sections, p.Sections...)
	a.tables = append(a.tables, p.Tables...)
	a.images = append(a.images, p.Images...)
	a.codeBlocks = append(a.codeBlocks, p.CodeBlocks...)
	a.equations = append(a.equations, p.Equations...)
	a.references = append(a.references, p.References...)
}

// document closes assembly: metadata comes from the analysis, the summary
// is the phase-1 global context, and key points stay empty — the chunked
// path does not synthesize them from chunk data.
func (a *accumulator) document(analysis *types.DocumentAnalysis) types.ExtractedDocument {
	return types.ExtractedDocument{
		Metadata: types.DocumentMetadata{
			Title:        analysis.Title,
			DocumentType: analysis.DocumentType,
			TotalPages:   analysis.TotalPages,
			Language:     analysis.Language,
		},
		Summary:    analysis.GlobalContext,
		KeyPoints:  []string{},
		Sections:   a.sections,
		Tables:     a.tables,
		Images:     a.images,
		CodeBlocks: a.codeBlocks,
		Equations:  a.equations,
		References: a.references,
	}
}

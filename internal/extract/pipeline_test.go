// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/pdiddy/pdftomd/pkg/types"
)

const analysisJSON = `{
	"title": "Deep Learning Survey",
	"document_type": "academic paper",
	"total_pages": 30,
	"language": "English",
	"outline": ["Introduction", "Architectures", "Applications", "References"],
	"global_context": "A survey of deep learning architectures and their applications.",
	"chunks": [
		{"id": "chunk-1", "start_page": 1, "end_page": 10, "content_type": "prose", "section_titles": ["Introduction"]},
		{"id": "chunk-2", "start_page": 11, "end_page": 20, "content_type": "prose", "section_titles": ["Architectures"], "has_tables": true},
		{"id": "chunk-3", "start_page": 21, "end_page": 30, "content_type": "references", "section_titles": ["Applications", "References"]}
	]
}`

// routingGenerator answers by prompt content: the analysis instruction gets
// the analysis script, each chunk instruction is matched by its page range.
type routingGenerator struct {
	analysis Attempt
	chunks   map[string]Attempt // "pages X to Y" fragment → response
	calls    []string
}

func (r *routingGenerator) Generate(_ context.Context, prompt string) (Attempt, error) {
	if strings.Contains(prompt, "Analyze the overall structure") {
		r.calls = append(r.calls, "analysis")
		return r.analysis, nil
	}
	for frag, att := range r.chunks {
		if strings.Contains(prompt, frag) {
			r.calls = append(r.calls, frag)
			return att, nil
		}
	}
	r.calls = append(r.calls, "unmatched")
	return Attempt{Finish: types.FinishEmpty}, nil
}

func chunkAttempt(sectionTitle string, level int, usage types.TokenUsage) Attempt {
	payload := `{
		"sections": [{"title": "` + sectionTitle + `", "level": ` + strconv.Itoa(level) + `, "content": "Body of ` + sectionTitle + `."}],
		"tables": [], "images": [], "code_blocks": [], "equations": [], "references": []
	}`
	return Attempt{Text: payload, Finish: types.FinishStop, Usage: usage}
}

func TestPipelineRun(t *testing.T) {
	gen := &routingGenerator{
		analysis: Attempt{Text: analysisJSON, Finish: types.FinishStop, Usage: types.NewTokenUsage(2000, 300)},
		chunks: map[string]Attempt{
			"pages 1 to 10":  chunkAttempt("Introduction", 1, types.NewTokenUsage(50, 400)),
			"pages 11 to 20": chunkAttempt("Architectures", 1, types.NewTokenUsage(50, 500)),
			"pages 21 to 30": chunkAttempt("Applications", 1, types.NewTokenUsage(50, 600)),
		},
	}

	var buf bytes.Buffer
	result, err := NewPipeline(gen, types.ExtractionConfig{}, &buf).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc := result.Document
	if doc.Metadata.Title != "Deep Learning Survey" {
		t.Errorf("title = %q", doc.Metadata.Title)
	}
	if doc.Metadata.TotalPages != 30 || doc.Metadata.Language != "English" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}

	// Sections arrive in chunk order.
	wantSections := []string{"Introduction", "Architectures", "Applications"}
	if len(doc.Sections) != len(wantSections) {
		t.Fatalf("got %d sections, want %d", len(doc.Sections), len(wantSections))
	}
	for i, want := range wantSections {
		if doc.Sections[i].Title != want {
			t.Errorf("sections[%d] = %q, want %q", i, doc.Sections[i].Title, want)
		}
	}

	// The summary is the phase-1 global context; key points are not
	// synthesized in chunked mode.
	if doc.Summary != "A survey of deep learning architectures and their applications." {
		t.Errorf("summary = %q", doc.Summary)
	}
	if doc.KeyPoints == nil || len(doc.KeyPoints) != 0 {
		t.Errorf("key points = %#v, want empty non-nil", doc.KeyPoints)
	}

	// Usage sums the analysis call and every chunk call.
	want := types.NewTokenUsage(2000+50*3, 300+400+500+600)
	if result.Usage != want {
		t.Errorf("usage = %+v, want %+v", result.Usage, want)
	}
}

func TestPipelineSkipsMalformedChunk(t *testing.T) {
	gen := &routingGenerator{
		analysis: Attempt{Text: analysisJSON, Finish: types.FinishStop},
		chunks: map[string]Attempt{
			"pages 1 to 10":  chunkAttempt("Introduction", 1, types.TokenUsage{}),
			"pages 11 to 20": {Text: "I could not process this section.", Finish: types.FinishStop},
			"pages 21 to 30": chunkAttempt("Applications", 1, types.TokenUsage{}),
		},
	}

	var buf bytes.Buffer
	result, err := NewPipeline(gen, types.ExtractionConfig{}, &buf).Run(context.Background())
	if err != nil {
		t.Fatalf("one bad chunk failed the whole run: %v", err)
	}

	got := make([]string, 0, len(result.Document.Sections))
	for _, s := range result.Document.Sections {
		got = append(got, s.Title)
	}
	if len(got) != 2 || got[0] != "Introduction" || got[1] != "Applications" {
		t.Errorf("sections = %v, want the two good chunks in order", got)
	}
	if !strings.Contains(buf.String(), "skipped chunk 2/3") {
		t.Errorf("progress output missing skip notice: %q", buf.String())
	}
}

func TestPipelineSkipsEmptyExhaustedChunk(t *testing.T) {
	// chunk-2 returns empty every attempt. The retries exhaust, but in
	// cached mode that only costs the chunk, not the document.
	gen := &routingGenerator{
		analysis: Attempt{Text: analysisJSON, Finish: types.FinishStop},
		chunks: map[string]Attempt{
			"pages 1 to 10":  chunkAttempt("Introduction", 1, types.TokenUsage{}),
			"pages 11 to 20": {Finish: types.FinishEmpty},
			"pages 21 to 30": chunkAttempt("Applications", 1, types.TokenUsage{}),
		},
	}

	result, err := NewPipeline(gen, types.ExtractionConfig{MaxRetries: 2}, &bytes.Buffer{}).Run(context.Background())
	if err != nil {
		t.Fatalf("empty chunk exhaustion failed the whole run: %v", err)
	}
	if len(result.Document.Sections) != 2 {
		t.Errorf("got %d sections, want 2", len(result.Document.Sections))
	}
}

func TestPipelineAnalysisFailureIsFatal(t *testing.T) {
	gen := &routingGenerator{
		analysis: Attempt{Text: "not a json object", Finish: types.FinishStop},
	}

	_, err := NewPipeline(gen, types.ExtractionConfig{}, &bytes.Buffer{}).Run(context.Background())
	if err == nil {
		t.Fatal("unparseable analysis did not fail the run")
	}
	if !strings.Contains(err.Error(), "phase 1 structural analysis") {
		t.Errorf("err = %v, want phase-1 attribution", err)
	}
}

func TestPipelineAnalysisRequiresTitle(t *testing.T) {
	gen := &routingGenerator{
		analysis: Attempt{Text: `{"title": "", "total_pages": 5, "chunks": [{"id": "c", "start_page": 1, "end_page": 5}]}`, Finish: types.FinishStop},
	}

	_, err := NewPipeline(gen, types.ExtractionConfig{}, &bytes.Buffer{}).Run(context.Background())
	if err == nil {
		t.Fatal("analysis without a title accepted")
	}
}

func TestPipelineCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	gen := &funcGenerator{fn: func(fnCtx context.Context, prompt string) (Attempt, error) {
		calls++
		if strings.Contains(prompt, "Analyze the overall structure") {
			return Attempt{Text: analysisJSON, Finish: types.FinishStop}, nil
		}
		cancel()
		return Attempt{}, fnCtx.Err()
	}}

	_, err := NewPipeline(gen, types.ExtractionConfig{}, &bytes.Buffer{}).Run(ctx)
	if err == nil {
		t.Fatal("cancellation did not abort the run")
	}
	// Analysis plus the first chunk call; later chunks never start.
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

type funcGenerator struct {
	fn func(ctx context.Context, prompt string) (Attempt, error)
}

func (f *funcGenerator) Generate(ctx context.Context, prompt string) (Attempt, error) {
	return f.fn(ctx, prompt)
}

func TestRenderChunkPrompt(t *testing.T) {
	analysis := &types.DocumentAnalysis{
		GlobalContext: "One paragraph of shared context.",
		Outline:       []string{"Introduction", "Methods"},
	}
	chunk := types.ChunkSpec{ID: "chunk-1", StartPage: 4, EndPage: 9, SectionTitles: []string{"Methods"}}

	prompt, err := renderChunkPrompt(analysis, chunk)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"One paragraph of shared context.",
		"pages 4 to 9",
		"- Introduction\n- Methods",
		"- Methods",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// No section titles still yields a usable prompt.
	chunk.SectionTitles = nil
	prompt, err = renderChunkPrompt(analysis, chunk)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "(untitled content)") {
		t.Errorf("untitled placeholder missing from prompt")
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewSectionLevelRange(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		wantErr bool
	}{
		{"level 1", 1, false},
		{"level 6", 6, false},
		{"level 0", 0, true},
		{"level 7", 7, true},
		{"negative level", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSection("Introduction", tt.level, "body")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSection level %d: err = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if !tt.wantErr && s.Level != tt.level {
				t.Errorf("Level = %d, want %d", s.Level, tt.level)
			}
		})
	}
}

func TestSectionValidateMatchesConstructor(t *testing.T) {
	// A decoded section must pass Validate exactly when NewSection would
	// have accepted the same values.
	for level := -1; level <= 8; level++ {
		_, ctorErr := NewSection("t", level, "c")
		valErr := Section{Title: "t", Level: level, Content: "c"}.Validate()
		if (ctorErr == nil) != (valErr == nil) {
			t.Errorf("level %d: NewSection err=%v, Validate err=%v", level, ctorErr, valErr)
		}
	}
}

func TestExtractedDocumentValidate(t *testing.T) {
	doc := ExtractedDocument{
		Metadata: DocumentMetadata{Title: "A Paper"},
		Sections: []Section{{Title: "Intro", Level: 1, Content: "x"}},
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	doc.Metadata.Title = ""
	if err := doc.Validate(); err == nil {
		t.Error("document without title passed validation")
	}

	doc.Metadata.Title = "A Paper"
	doc.Sections = append(doc.Sections, Section{Title: "Bad", Level: 9})
	if err := doc.Validate(); err == nil {
		t.Error("document with out-of-range section level passed validation")
	}
}

func TestTokenUsageInvariant(t *testing.T) {
	u := NewTokenUsage(100, 40)
	if u.Total != 140 {
		t.Errorf("Total = %d, want 140", u.Total)
	}

	u.Add(NewTokenUsage(10, 5))
	if u.Prompt != 110 || u.Completion != 45 || u.Total != 155 {
		t.Errorf("after Add: %+v, want {110 45 155}", u)
	}

	// Add recomputes the total even when the other usage carries a bogus one.
	u.Add(TokenUsage{Prompt: 1, Completion: 1, Total: 999})
	if u.Total != u.Prompt+u.Completion {
		t.Errorf("Total = %d, want %d", u.Total, u.Prompt+u.Completion)
	}
}

func TestChunkSpecPages(t *testing.T) {
	c := ChunkSpec{StartPage: 3, EndPage: 7}
	if got := c.Pages(); got != 5 {
		t.Errorf("Pages() = %d, want 5", got)
	}
	single := ChunkSpec{StartPage: 4, EndPage: 4}
	if got := single.Pages(); got != 1 {
		t.Errorf("single-page Pages() = %d, want 1", got)
	}
}

func TestExtractionConfigWithDefaults(t *testing.T) {
	cfg := ExtractionConfig{}.WithDefaults()
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", cfg.Temperature, DefaultTemperature)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if cfg.ChunkThresholdBytes != DefaultChunkThreshold {
		t.Errorf("ChunkThresholdBytes = %d, want %d", cfg.ChunkThresholdBytes, int64(DefaultChunkThreshold))
	}

	// Explicit values survive.
	cfg = ExtractionConfig{
		GenerationConfig: GenerationConfig{Model: "gemini-1.5-pro", Temperature: 0.7},
		MaxRetries:       2,
		CacheTTL:         time.Hour,
	}.WithDefaults()
	if cfg.Model != "gemini-1.5-pro" || cfg.Temperature != 0.7 || cfg.MaxRetries != 2 || cfg.CacheTTL != time.Hour {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestExtractedDocumentJSONTags(t *testing.T) {
	// The remote API is asked for these exact field names; a tag drift
	// silently drops data.
	doc := ExtractedDocument{
		Metadata:   DocumentMetadata{Title: "T", TotalPages: 3, DocumentType: "report"},
		Summary:    "s",
		KeyPoints:  []string{"k"},
		Sections:   []Section{{Title: "A", Level: 2, Content: "c"}},
		Images:     []Image{{FigureNumber: "Figure 1", AltText: "alt", Description: "d", Context: "c"}},
		Equations:  []Equation{{LaTeX: `E = mc^2`}},
		CodeBlocks: []CodeBlock{{Code: "x := 1"}},
	}
	data, err := json.Marshal(&doc)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"total_pages":3`, `"document_type":"report"`, `"key_points":["k"]`,
		`"figure_number":"Figure 1"`, `"alt_text":"alt"`, `"latex":"E = mc^2"`,
		`"code_blocks":`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("marshaled document missing %s\nin: %s", want, data)
		}
	}
}

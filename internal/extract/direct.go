// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/pdftomd/pkg/types"
)

// ExtractDirect performs single-exchange extraction: the backend carries
// the whole document and enforces the full document schema server-side, so
// the response deserializes straight into an ExtractedDocument. An empty
// response after exhausting retries is a hard failure in this mode.
func ExtractDirect(ctx context.Context, backend Generator, cfg types.ExtractionConfig, w io.Writer) (*types.ExtractionResult, error) {
	cfg = cfg.WithDefaults()

	var usage types.TokenUsage
	att, err := callWithRetry(ctx, func(ctx context.Context) (Attempt, error) {
		return backend.Generate(ctx, directPrompt)
	}, cfg.MaxRetries, &usage)
	if err != nil {
		return nil, fmt.Errorf("direct extraction: %w", err)
	}

	var doc types.ExtractedDocument
	if err := json.Unmarshal([]byte(stripFences(att.Text)), &doc); err != nil {
		return nil, fmt.Errorf("direct extraction: decoding document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("direct extraction: %w", err)
	}

	fmt.Fprintf(w, "extracted %d sections, %d tables, %d images, %d equations\n",
		len(doc.Sections), len(doc.Tables), len(doc.Images), len(doc.Equations))

	return &types.ExtractionResult{
		Document:     doc,
		Usage:        usage,
		FinishReason: att.Finish,
		Truncated:    att.Finish == types.FinishMaxTokens,
	}, nil
}

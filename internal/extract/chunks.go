// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pdiddy/pdftomd/pkg/types"
)

// chunkPayload is the loose per-chunk response shape: independent arrays
// per element type, scoped to the chunk's page range. Element types absent
// from the range come back as empty arrays.
type chunkPayload struct {
	Sections   []types.Section   `json:"sections"`
	Tables     []types.Table     `json:"tables"`
	Images     []types.Image     `json:"images"`
	CodeBlocks []types.CodeBlock `json:"code_blocks"`
	Equations  []types.Equation  `json:"equations"`
	References []types.Reference `json:"references"`
}

// parseChunkPayload decodes and validates one phase-2 response. A section
// with an out-of-range heading level fails the whole chunk, which the
// pipeline then skips.
func parseChunkPayload(text string) (chunkPayload, error) {
	var payload chunkPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &payload); err != nil {
		return chunkPayload{}, fmt.Errorf("decoding chunk payload: %w", err)
	}
	for i, s := range payload.Sections {
		if err := s.Validate(); err != nil {
			return chunkPayload{}, fmt.Errorf("sections[%d]: %w", i, err)
		}
	}
	return payload, nil
}

// validateChunks normalizes the chunk partition proposed by the analysis:
// chunks are sorted by start page, clamped to [1, totalPages], overlaps
// are trimmed, and gaps between neighbors are closed by extending the
// later chunk backward. The model proposes the ranges; this only repairs
// them, it never invents new chunks.
func validateChunks(chunks []types.ChunkSpec, totalPages int) ([]types.ChunkSpec, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("analysis proposed no chunks")
	}
	if totalPages < 1 {
		return nil, fmt.Errorf("analysis reported %d total pages", totalPages)
	}

	sorted := make([]types.ChunkSpec, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartPage < sorted[j].StartPage
	})

	var out []types.ChunkSpec
	for _, c := range sorted {
		if c.StartPage < 1 {
			c.StartPage = 1
		}
		if c.EndPage > totalPages {
			c.EndPage = totalPages
		}
		if len(out) > 0 {
			prevEnd := out[len(out)-1].EndPage
			if c.StartPage <= prevEnd {
				c.StartPage = prevEnd + 1
			} else if c.StartPage > prevEnd+1 {
				c.StartPage = prevEnd + 1
			}
		} else if c.StartPage > 1 {
			c.StartPage = 1
		}
		if c.StartPage > c.EndPage {
			continue
		}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no usable chunks after clamping to %d pages", totalPages)
	}

	// The last chunk carries the tail of the document.
	if out[len(out)-1].EndPage < totalPages {
		out[len(out)-1].EndPage = totalPages
	}

	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini wraps the Google Generative AI API as the document
// understanding backend: direct whole-document exchanges with a
// server-enforced response schema, and cached-content sessions for the
// chunked pipeline.
package gemini

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/pdftomd/internal/extract"
	"github.com/pdiddy/pdftomd/pkg/types"
)

const pdfMIMEType = "application/pdf"

// filePollInterval is the wait between upload-state polls. Tests override it.
var filePollInterval = 2 * time.Second

// Client owns the API connection and the generation settings shared by
// every exchange.
type Client struct {
	genai *genai.Client
	cfg   types.ExtractionConfig
}

// New connects to the API. A missing key is a construction-time failure,
// never retried.
func New(ctx context.Context, cfg types.ExtractionConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key required: set GEMINI_API_KEY or .secrets/gemini-api-key")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{genai: gc, cfg: cfg.WithDefaults()}, nil
}

// Close releases the API connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// model builds a GenerativeModel with the configured settings applied.
func (c *Client) model() *genai.GenerativeModel {
	m := c.genai.GenerativeModel(c.cfg.Model)
	m.SetTemperature(c.cfg.Temperature)
	if c.cfg.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(int32(c.cfg.MaxOutputTokens))
	}
	if c.cfg.UseSearch {
		m.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}
	}
	return m
}

// DirectSession sends the whole document with every exchange and asks the
// server to enforce the full document schema.
type DirectSession struct {
	model *genai.GenerativeModel
	pdf   []byte
}

// Direct binds the document bytes for single-exchange extraction.
func (c *Client) Direct(pdf []byte) *DirectSession {
	m := c.model()
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = documentSchema()
	return &DirectSession{model: m, pdf: pdf}
}

// Generate implements extract.Generator for direct mode.
func (s *DirectSession) Generate(ctx context.Context, prompt string) (extract.Attempt, error) {
	resp, err := s.model.GenerateContent(ctx,
		genai.Blob{MIMEType: pdfMIMEType, Data: s.pdf},
		genai.Text(prompt))
	if err != nil {
		return extract.Attempt{}, fmt.Errorf("generate: %w", err)
	}
	return attemptFromResponse(resp), nil
}

// Session is one document registered as a server-side content cache.
// Upload and cache creation happen exactly once, in OpenSession; every
// Generate call thereafter references the cache and carries only the
// instruction text.
type Session struct {
	client *Client
	model  *genai.GenerativeModel
	file   *genai.File
	cache  *genai.CachedContent
}

// OpenSession uploads the document, waits for the file to become active,
// and registers it as cached content with the configured TTL.
func (c *Client) OpenSession(ctx context.Context, pdf []byte, name string) (*Session, error) {
	file, err := c.genai.UploadFile(ctx, "", bytes.NewReader(pdf), &genai.UploadFileOptions{
		DisplayName: name,
		MIMEType:    pdfMIMEType,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading document: %w", err)
	}

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(filePollInterval):
		}
		file, err = c.genai.GetFile(ctx, file.Name)
		if err != nil {
			return nil, fmt.Errorf("polling uploaded file: %w", err)
		}
	}
	if file.State != genai.FileStateActive {
		return nil, fmt.Errorf("uploaded file %s in state %v", file.Name, file.State)
	}

	cache, err := c.genai.CreateCachedContent(ctx, &genai.CachedContent{
		Model: qualifiedModel(c.cfg.Model),
		Contents: []*genai.Content{{
			Role:  "user",
			Parts: []genai.Part{genai.FileData{MIMEType: file.MIMEType, URI: file.URI}},
		}},
		Expiration: genai.ExpireTimeOrTTL{TTL: c.cfg.CacheTTL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating content cache: %w", err)
	}

	m := c.genai.GenerativeModelFromCachedContent(cache)
	m.SetTemperature(c.cfg.Temperature)
	if c.cfg.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(int32(c.cfg.MaxOutputTokens))
	}
	// Chunk payloads use the loose per-chunk shape, not the full document
	// schema, so only the MIME type is constrained here.
	m.ResponseMIMEType = "application/json"

	return &Session{client: c, model: m, file: file, cache: cache}, nil
}

// Generate implements extract.Generator for cached mode.
func (s *Session) Generate(ctx context.Context, prompt string) (extract.Attempt, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return extract.Attempt{}, fmt.Errorf("generate: %w", err)
	}
	return attemptFromResponse(resp), nil
}

// Close deletes the content cache and the uploaded file. Best effort: the
// cache expires on its own TTL if deletion fails.
func (s *Session) Close(ctx context.Context) error {
	var firstErr error
	if err := s.client.genai.DeleteCachedContent(ctx, s.cache.Name); err != nil {
		firstErr = fmt.Errorf("deleting content cache: %w", err)
	}
	if err := s.client.genai.DeleteFile(ctx, s.file.Name); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("deleting uploaded file: %w", err)
	}
	return firstErr
}

// attemptFromResponse flattens an API response into an Attempt. The total
// token count is recomputed from prompt+completion rather than trusted.
func attemptFromResponse(resp *genai.GenerateContentResponse) extract.Attempt {
	var att extract.Attempt
	if resp.UsageMetadata != nil {
		att.Usage = types.NewTokenUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		att.Finish = types.FinishEmpty
		return att
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	att.Text = sb.String()
	att.Finish = mapFinishReason(cand.FinishReason)
	if att.Text == "" && att.Finish == types.FinishStop {
		att.Finish = types.FinishEmpty
	}
	return att
}

// mapFinishReason translates the API's completion classification.
func mapFinishReason(r genai.FinishReason) types.FinishReason {
	switch r {
	case genai.FinishReasonStop:
		return types.FinishStop
	case genai.FinishReasonMaxTokens:
		return types.FinishMaxTokens
	case genai.FinishReasonSafety:
		return types.FinishSafety
	case genai.FinishReasonRecitation:
		return types.FinishRecitation
	default:
		return types.FinishOther
	}
}

// qualifiedModel prepends the "models/" resource prefix the cache API
// requires.
func qualifiedModel(name string) string {
	if strings.HasPrefix(name, "models/") {
		return name
	}
	return "models/" + name
}

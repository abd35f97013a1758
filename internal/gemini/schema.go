// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gemini

import "github.com/google/generative-ai-go/genai"

// documentSchema mirrors types.ExtractedDocument for server-side
// enforcement in direct mode. Field names and shapes must match the JSON
// tags exactly; the response is unmarshaled without a translation layer.
func documentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"metadata": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":         {Type: genai.TypeString, Description: "Main title of the document"},
					"subtitle":      {Type: genai.TypeString, Description: "Subtitle if present"},
					"authors":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"date":          {Type: genai.TypeString, Description: "Publication or creation date"},
					"total_pages":   {Type: genai.TypeInteger},
					"language":      {Type: genai.TypeString},
					"document_type": {Type: genai.TypeString, Description: "Academic paper, report, manual, book chapter"},
				},
				Required: []string{"title"},
			},
			"summary":    {Type: genai.TypeString, Description: "Executive summary, 2-3 paragraphs"},
			"key_points": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"sections": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":   {Type: genai.TypeString},
						"level":   {Type: genai.TypeInteger, Description: "Heading level, 1-6"},
						"content": {Type: genai.TypeString, Description: "Full section content in Markdown"},
					},
					Required: []string{"title", "level", "content"},
				},
			},
			"tables": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"caption": {Type: genai.TypeString},
						"headers": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"rows": {Type: genai.TypeArray, Items: &genai.Schema{
							Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString},
						}},
						"context": {Type: genai.TypeString},
					},
					Required: []string{"headers", "rows"},
				},
			},
			"images": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"figure_number": {Type: genai.TypeString},
						"caption":       {Type: genai.TypeString},
						"description":   {Type: genai.TypeString},
						"context":       {Type: genai.TypeString},
						"alt_text":      {Type: genai.TypeString},
					},
					Required: []string{"description", "context", "alt_text"},
				},
			},
			"code_blocks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"language": {Type: genai.TypeString},
						"code":     {Type: genai.TypeString},
						"context":  {Type: genai.TypeString},
					},
					Required: []string{"code"},
				},
			},
			"equations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"equation_number": {Type: genai.TypeString},
						"latex":           {Type: genai.TypeString},
						"description":     {Type: genai.TypeString},
					},
					Required: []string{"latex"},
				},
			},
			"references": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"number":   {Type: genai.TypeString},
						"citation": {Type: genai.TypeString},
					},
					Required: []string{"citation"},
				},
			},
			"glossary": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"metadata", "summary", "key_points", "sections"},
	}
}

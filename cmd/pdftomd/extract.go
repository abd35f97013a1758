package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdftomd/internal/convert"
	"github.com/pdiddy/pdftomd/internal/extract"
	"github.com/pdiddy/pdftomd/internal/gemini"
	"github.com/pdiddy/pdftomd/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract a PDF's structured content and write Markdown",
	Long: `Extract sends the PDF to the Gemini API, parses the structured
response, and writes the result as Markdown (or JSON with --json).
Documents above the chunk threshold, or when --chunked is given, are
processed through the three-phase large-document pipeline against a
server-side content cache.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "output file path (default: input with .md or .json extension)")
	extractCmd.Flags().StringP("model", "m", "", "Gemini model identifier")
	extractCmd.Flags().Float32P("temperature", "t", 0, "generation temperature 0.0-1.0")
	extractCmd.Flags().Int("max-output-tokens", 0, "maximum response tokens (0: server default)")
	extractCmd.Flags().Int("max-retries", 0, "total attempts per remote call")
	extractCmd.Flags().Duration("cache-ttl", 0, "content cache time-to-live for the chunked pipeline")
	extractCmd.Flags().Bool("chunked", false, "force the chunked large-document pipeline")
	extractCmd.Flags().Bool("search", false, "enable search grounding for additional context")
	extractCmd.Flags().Bool("json", false, "write the extraction as JSON instead of Markdown")
	extractCmd.Flags().Bool("stats", false, "write a <output>.stats.yaml run report")

	rootCmd.AddCommand(extractCmd)
}

// runStats is the --stats sidecar payload.
type runStats struct {
	Input     string           `yaml:"input"`
	Output    string           `yaml:"output"`
	Model     string           `yaml:"model"`
	Mode      string           `yaml:"mode"`
	Sections  int              `yaml:"sections"`
	Tables    int              `yaml:"tables"`
	Images    int              `yaml:"images"`
	Equations int              `yaml:"equations"`
	Truncated bool             `yaml:"truncated"`
	Duration  string           `yaml:"duration"`
	Usage     types.TokenUsage `yaml:"token_usage"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("file not found: %s", input)
	}
	if !strings.EqualFold(filepath.Ext(input), ".pdf") {
		return fmt.Errorf("input must be a PDF file: %s", input)
	}

	cfg := extractionConfig(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")
	chunked, _ := cmd.Flags().GetBool("chunked")
	withStats, _ := cmd.Flags().GetBool("stats")

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		ext := ".md"
		if asJSON {
			ext = ".json"
		}
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ext
	}

	pdf, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	ctx := cmd.Context()
	client, err := gemini.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	useChunked := chunked || info.Size() > cfg.ChunkThresholdBytes
	mode := "direct"
	if useChunked {
		mode = "chunked"
	}

	fmt.Printf("[START] Extracting: %s (%.2f MB)\n", filepath.Base(input), float64(info.Size())/(1<<20))
	fmt.Printf("[INFO] Model: %s, mode: %s\n", cfg.Model, mode)

	start := time.Now()
	var result *types.ExtractionResult
	if useChunked {
		session, err := client.OpenSession(ctx, pdf, filepath.Base(input))
		if err != nil {
			return fmt.Errorf("opening document session: %w", err)
		}
		defer session.Close(ctx)

		result, err = extract.NewPipeline(session, cfg, os.Stderr).Run(ctx)
		if err != nil {
			return err
		}
	} else {
		result, err = extract.ExtractDirect(ctx, client.Direct(pdf), cfg, os.Stderr)
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	doc := &result.Document
	fmt.Printf("[OK] Extracted %d sections\n", len(doc.Sections))
	fmt.Printf("[OK] Found %d tables, %d images\n", len(doc.Tables), len(doc.Images))
	if result.Truncated {
		fmt.Printf("[WARN] Response was truncated (finish_reason: %s)\n", result.FinishReason)
	}

	var content []byte
	if asJSON {
		content, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	} else {
		content = []byte(convert.Render(doc))
	}
	if err := os.WriteFile(output, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Printf("[DONE] Saved to: %s\n", output)
	fmt.Printf("[TOKENS] Input: %d | Output: %d | Total: %d\n",
		result.Usage.Prompt, result.Usage.Completion, result.Usage.Total)

	if withStats {
		stats := runStats{
			Input:     input,
			Output:    output,
			Model:     cfg.Model,
			Mode:      mode,
			Sections:  len(doc.Sections),
			Tables:    len(doc.Tables),
			Images:    len(doc.Images),
			Equations: len(doc.Equations),
			Truncated: result.Truncated,
			Duration:  elapsed.Round(time.Millisecond).String(),
			Usage:     result.Usage,
		}
		data, err := yaml.Marshal(stats)
		if err != nil {
			return fmt.Errorf("encoding stats: %w", err)
		}
		statsPath := output + ".stats.yaml"
		if err := os.WriteFile(statsPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", statsPath, err)
		}
		fmt.Printf("[STATS] Saved to: %s\n", statsPath)
	}

	return nil
}

// extractionConfig merges config-file values with command flags. Flags
// win when set.
func extractionConfig(cmd *cobra.Command) types.ExtractionConfig {
	cfg := types.ExtractionConfig{
		GenerationConfig: types.GenerationConfig{
			Model:           viper.GetString("model"),
			Temperature:     float32(viper.GetFloat64("temperature")),
			MaxOutputTokens: viper.GetInt("max_output_tokens"),
		},
		APIKey:              apiKey(),
		MaxRetries:          viper.GetInt("max_retries"),
		CacheTTL:            viper.GetDuration("cache_ttl"),
		ChunkThresholdBytes: viper.GetInt64("chunk_threshold_bytes"),
	}

	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetFloat32("temperature"); v != 0 {
		cfg.Temperature = v
	}
	if v, _ := cmd.Flags().GetInt("max-output-tokens"); v != 0 {
		cfg.MaxOutputTokens = v
	}
	if v, _ := cmd.Flags().GetInt("max-retries"); v != 0 {
		cfg.MaxRetries = v
	}
	if v, _ := cmd.Flags().GetDuration("cache-ttl"); v != 0 {
		cfg.CacheTTL = v
	}
	if v, _ := cmd.Flags().GetBool("search"); v {
		cfg.UseSearch = true
	}

	return cfg.WithDefaults()
}

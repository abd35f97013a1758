package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftomd/internal/convert"
	"github.com/pdiddy/pdftomd/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render <json>",
	Short: "Re-render a saved JSON extraction as Markdown",
	Long: `Render reads an extraction previously saved with --json and writes
the Markdown rendition. No remote calls are made.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		data, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("reading %s: %w", input, err)
		}

		var doc types.ExtractedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decoding %s: %w", input, err)
		}
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("invalid extraction in %s: %w", input, err)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".md"
		}

		if err := os.WriteFile(output, []byte(convert.Render(&doc)), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		fmt.Printf("[DONE] Saved to: %s\n", output)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output Markdown path (default: input with .md extension)")

	rootCmd.AddCommand(renderCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdftomd CLI: structured PDF
// extraction to Markdown through the Gemini document-understanding API.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdftomd/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves the Gemini API key: explicit config value, then the
// environment, then the secrets directory.
func apiKey() string {
	if v := viper.GetString("api_key"); v != "" {
		return v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return loadedSecrets["gemini-api-key"]
}

// rootCmd is the base command for the pdftomd CLI.
var rootCmd = &cobra.Command{
	Use:   "pdftomd",
	Short: "Extract structured PDF content to Markdown using Gemini",
	Long: `pdftomd extracts the full structure of a PDF document — metadata,
sections, tables, figures, code, equations, references — through the
Gemini document-understanding API and renders it as Markdown.

Small documents are extracted in a single schema-constrained exchange.
Large documents go through a chunked pipeline: one structural-analysis
call proposes a page partition, each chunk is extracted with the
document's global context carried along, and the results are assembled
locally.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdftomd.yaml or ~/.config/pdftomd/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdftomd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdftomd"))
		}
	}

	viper.SetEnvPrefix("PDFTOMD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

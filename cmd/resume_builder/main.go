// Package main provides the resume_builder command line: the HTTP server,
// one-shot generation, offline formatting and the MCP tool server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	apiKey     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "resume_builder",
	Short:         "Tailor a resume to a job posting",
	Long:          "Resume Builder rewrites an existing resume for a target position with a language model and exports it as plain text or a Word document.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by flags)")
	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

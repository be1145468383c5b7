package main

import (
	"context"
	"log"

	"github.com/jonathan/resume-builder/internal/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpOut string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the resume tools over MCP on stdio",
	Long:  "Runs an MCP server on standard input and output exposing tailor_resume and format_resume.",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpOut, "out", "o", "", "Directory the tools write exported files to (default: files are not written)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formats, err := cfg.OutputFormats()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	server := mcptools.NewServer(version, svc.Service, mcptools.Options{
		OutDir:  mcpOut,
		Formats: formats,
		Verbose: cfg.Verbose,
	})

	// stdout carries the protocol; logs go to stderr
	log.SetOutput(cmd.ErrOrStderr())
	return server.Run(ctx, &mcp.StdioTransport{})
}

package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-builder/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort           int
	serveAllowedOrigins []string
	serveSecureCookies  bool
	serveMaxUploadMB    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start an HTTP server with the resume form at / and the JSON API under /api.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080, or PORT)")
	serveCmd.Flags().StringSliceVar(&serveAllowedOrigins, "allowed-origins", nil, "Origins allowed by CORS")
	serveCmd.Flags().BoolVar(&serveSecureCookies, "secure-cookies", false, "Mark session cookies Secure (serve behind HTTPS)")
	serveCmd.Flags().IntVar(&serveMaxUploadMB, "max-upload-mb", 10, "Maximum request body size in MiB")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("allowed-origins") {
		cfg.AllowedOrigins = serveAllowedOrigins
	}

	session, err := cfg.Session()
	if err != nil {
		return err
	}

	svc, err := newService(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		Service:        svc.Service,
		Session:        session,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  serveSecureCookies,
		MaxUploadBytes: int64(serveMaxUploadMB) << 20,
		Verbose:        cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/spf13/cobra"
)

// loadConfig resolves the effective configuration: defaults, then the
// config file, then the environment, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Verbose && configPath != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Loaded config from: %s\n", configPath)
	}
	return &cfg, nil
}

// service bundles a pipeline service with the client it must close.
type service struct {
	*pipeline.Service
	client llm.Client
}

func (s *service) Close() error {
	return s.client.Close()
}

// newService connects the completion client and builds the pipeline.
func newService(ctx context.Context, cfg *config.Config) (*service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable, api_key config value or --api-key flag is required", config.EnvAPIKey)
	}

	system, err := llm.SystemInstruction()
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, cfg.LLMConfig().WithSystemInstruction(system), cfg.APIKey)
	if err != nil {
		return nil, err
	}
	tailorer := llm.NewTailorer(client)
	tailorer.Verbose = cfg.Verbose

	ttl, err := cfg.SessionDuration()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	fetchTimeout, err := cfg.FetchTimeoutDuration()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = fetchTimeout

	svc := pipeline.NewService(tailorer, pipeline.Options{
		Store: pipeline.NewStore(ttl),
		FetchJob: pipeline.IngestJobFetcher(ingestion.URLOptions{
			UseBrowser: cfg.UseBrowser,
			Verbose:    cfg.Verbose,
			Fetch:      fetchOpts,
		}),
		Verbose: cfg.Verbose,
	})
	return &service{Service: svc, client: client}, nil
}

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	geektime_client "github.com/oshokin/geektime-grabber/internal/client/geektime"
	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
	geektime_service "github.com/oshokin/geektime-grabber/internal/service/geektime"
)

// dumpConfigEnvVar makes the binary print the effective configuration as JSON
// and exit instead of downloading. E2E tests use it to verify flag binding
// without touching the network.
const dumpConfigEnvVar = "GEEKTIME_GRABBER_DUMP_CONFIG"

// ExecuteRootCommand is the entry point for the application.
// It initializes the GeekTime client, sets up the necessary service components,
// and starts the download process for the provided URLs.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, urls []string) {
	if os.Getenv(dumpConfigEnvVar) == "1" {
		if err := dumpEffectiveConfig(cfg); err != nil {
			logger.Fatalf(ctx, "Failed to dump configuration: %v", err)
		}

		return
	}

	gtClient, err := geektime_client.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize GeekTime client: %v", err)
	}

	urlProcessor := geektime_service.NewURLProcessor()
	templateManager := geektime_service.NewTemplateManager(ctx, cfg)
	tagProcessor := geektime_service.NewTagProcessor()

	s := geektime_service.NewService(cfg, gtClient, urlProcessor, templateManager, tagProcessor)

	// Ensure statistics are ALWAYS printed, even on panic or os.Exit bypass.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	s.DownloadURLs(ctx, urls)
}

// effectiveConfig is the subset of settings exposed through the dump hook.
type effectiveConfig struct {
	OutputPath         string `json:"output_path"`
	DownloadAudio      bool   `json:"download_audio"`
	DownloadComments   bool   `json:"download_comments"`
	ReplaceExisting    bool   `json:"replace_existing"`
	DownloadSpeedLimit string `json:"download_speed_limit"`
}

// dumpEffectiveConfig writes the effective configuration to stdout.
// Logs go to stderr, so stdout carries nothing but the JSON document.
func dumpEffectiveConfig(cfg *config.Config) error {
	dump, err := json.Marshal(&effectiveConfig{
		OutputPath:         cfg.OutputPath,
		DownloadAudio:      cfg.DownloadAudio,
		DownloadComments:   cfg.DownloadComments,
		ReplaceExisting:    cfg.ReplaceExisting,
		DownloadSpeedLimit: cfg.DownloadSpeedLimit,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, string(dump))

	return err
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oshokin/geektime-grabber/internal/app"
	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "geektime-grabber [flags] {urls or course IDs}",
		Short: "Download purchased GeekTime courses, articles, and daily lesson collections.",
		Long: `GeekTime Grabber is a CLI tool for downloading purchased content from time.geekbang.org.
It supports downloading:
- Full courses (column subscriptions) as rendered HTML articles
- Individual articles
- Daily lesson video collections (intro, metadata, and posters)

Articles can optionally include the narration audio and reader comments.
The application provides flexible naming templates and download speed limits.`,
		Version:          version.Full(),
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, urls []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, urls)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded files (the path will be created if it doesn’t exist).")

	rootCmdFlags.BoolP(
		"audio",
		"a",
		false,
		"download the narration audio of each article if available.")

	rootCmdFlags.BoolP(
		"comments",
		"m",
		false,
		"export the reader comments of each article.")

	rootCmdFlags.BoolP(
		"replace",
		"r",
		false,
		"overwrite articles, audio, and comments that already exist.")

	rootCmdFlags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500 kbps, 1 mbps, 1.5 mbps.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	// Validation runs later, so parse the level here to log at the
	// configured verbosity from the very first message.
	if level, ok := logger.ParseLogLevel(appConfig.LogLevel); ok {
		logger.SetLevel(level)
	}

	if appConfig.LogFile != "" {
		logger.EnableFileSink(appConfig.LogFile)
	}
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("audio"); flag != nil && flag.Changed {
		cfg.DownloadAudio, _ = flags.GetBool("audio")
	}

	if flag := flags.Lookup("comments"); flag != nil && flag.Changed {
		cfg.DownloadComments, _ = flags.GetBool("comments")
	}

	if flag := flags.Lookup("replace"); flag != nil && flag.Changed {
		cfg.ReplaceExisting, _ = flags.GetBool("replace")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	return config.ValidateConfig(cfg)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/geektime-grabber/internal/app"
	"github.com/oshokin/geektime-grabber/internal/logger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the courses visible to your account",
	Long: `Lists the courses visible to your GeekTime account, grouped by product type.

Purchased courses are marked and can be passed to the download command by ID.
With --videos, the identifiers of the known daily lesson collections are
printed as well.`,
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		includeVideos, err := cmd.Flags().GetBool("videos")
		if err != nil {
			logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
		}

		app.ExecuteListCommand(cmd.Context(), appConfig, includeVideos)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	listCmd.Flags().BoolP(
		"videos",
		"v",
		false,
		"include the identifiers of the known daily lesson collections.")

	rootCmd.AddCommand(listCmd)
}

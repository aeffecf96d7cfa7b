package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/geektime-grabber/internal/app"
)

var (
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage authentication for GeekTime.

Use 'auth login' to log in via browser and automatically extract your session cookies.`,
	}

	authLoginCmd = &cobra.Command{
		Use:   "login",
		Short: "Login to GeekTime and extract session cookies",
		Long: `Opens a browser window for you to log in to GeekTime.

The login process:
1. Browser opens at https://account.geekbang.org/signin
2. Log in with your phone number and password
   (or switch to the SMS code or WeChat QR scan tab)
3. Complete the slider captcha if one appears
4. Wait for the redirect back to time.geekbang.org

After successful login, the session cookies will be automatically
extracted from the browser and saved to the configuration file.

You can then use the session to download your purchased courses:
geektime-grabber https://time.geekbang.org/column/intro/100002201`,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteAuthLoginCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	// Add login subcommand to auth command.
	authCmd.AddCommand(authLoginCmd)

	// Add auth command to root command.
	rootCmd.AddCommand(authCmd)
}

package app

import (
	"context"

	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/service/auth"
)

// ExecuteAuthLoginCommand executes the auth login command.
// It opens a browser, waits for the user to log in, extracts the session
// cookies, and saves them to the configuration file.
func ExecuteAuthLoginCommand(ctx context.Context, cfg *config.Config) {
	logger.Info(ctx, "Starting authentication process")

	// Base URLs are normally derived during validation, which the login
	// bootstrap skips because credentials may not exist yet.
	cfg.AccountBaseURL = config.AccountBaseURL
	cfg.APIBaseURL = config.APIBaseURL

	// Create browser authentication service.
	authService, err := auth.NewService(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize authentication service: %v", err)
		return
	}

	// Perform login and extract the session cookies.
	cookieHeader, err := authService.LoginAndExtractCookies(ctx)
	if err != nil {
		logger.Fatalf(ctx, "Authentication failed: %v", err)
		return
	}

	// Update configuration with the new session.
	cfg.Cookie = cookieHeader

	// Save configuration to file.
	if err = config.SaveConfig(cfg); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
		return
	}

	// Print success message.
	logger.Info(ctx, "Configuration updated successfully!")
	logger.Info(ctx, "Authentication complete! You can now download your courses.")
	logger.Info(ctx, "")
	logger.Info(ctx, "Try downloading a course:")
	logger.Info(ctx, "geektime-grabber https://time.geekbang.org/column/intro/100002201")
	logger.Info(ctx, "")
	logger.Info(ctx, "Or list everything your account can see:")
	logger.Info(ctx, "geektime-grabber list")
}

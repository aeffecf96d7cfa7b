package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/constants"
)

const testBaseConfigContent = `
cookie: "GCESS=config_cookie"
output_path: "/config/output"
download_audio: false
download_comments: true
replace_existing: false
download_speed_limit: "500KB"
log_level: "info"
course_folder_template: "{{.courseTitle}} - {{.authorName}}"
article_filename_template: "{{.articleNumberPad}} - {{.articleTitle}}"
video_filename_template: "{{.videoNumberPad}} - {{.videoTitle}}"
max_folder_name_length: 100
max_download_pause: "3s"
max_concurrent_downloads: 1
`

// newFlagTestCommand builds a command carrying the same flags as the root command.
func newFlagTestCommand() *cobra.Command {
	testCmd := &cobra.Command{Use: "test"}

	testCmd.Flags().StringP("output", "o", "", "output directory")
	testCmd.Flags().BoolP("audio", "a", false, "download narration audio")
	testCmd.Flags().BoolP("comments", "m", false, "export comments")
	testCmd.Flags().BoolP("replace", "r", false, "overwrite existing files")
	testCmd.Flags().StringP("speed-limit", "s", "", "download speed limit")

	return testCmd
}

// writeTestConfig writes config content to a fresh temp file and loads it.
func writeTestConfig(t *testing.T, content string) *config.Config {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	err := os.WriteFile(
		configPath,
		[]byte(content),
		constants.DefaultFilePermissions,
	) //nolint:gosec // It's a test file.
	require.NoError(t, err)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	return cfg
}

// TestFlagOverrides tests that command-line flags correctly override configuration file values.
//
//nolint:funlen,nolintlint,tparallel // It's a comprehensive integration test. Cannot run in parallel due to Viper global state.
func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]any
		expectedConfig func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]any{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadAudio)
				assert.True(t, cfg.DownloadComments)
				assert.False(t, cfg.ReplaceExisting)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "output flag only - override output path",
			flags: map[string]any{
				"output": "/flag/output",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/flag/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadAudio)
				assert.True(t, cfg.DownloadComments)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "audio flag only - override audio",
			flags: map[string]any{
				"audio": true,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.True(t, cfg.DownloadAudio)
				assert.True(t, cfg.DownloadComments)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "comments false flag - explicit false override",
			flags: map[string]any{
				"comments": false,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				// The config enables comments, so the explicit flag must win.
				assert.False(t, cfg.DownloadComments)
				assert.False(t, cfg.DownloadAudio)
			},
		},
		{
			name: "replace flag only - override replace",
			flags: map[string]any{
				"replace": true,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.ReplaceExisting)
				assert.Equal(t, "/config/output", cfg.OutputPath)
			},
		},
		{
			name: "speed-limit flag only - override speed limit",
			flags: map[string]any{
				"speed-limit": "1MB",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadAudio)
			},
		},
		{
			name: "all flags - override everything",
			flags: map[string]any{
				"output":      "/all/flags/output",
				"audio":       true,
				"comments":    true,
				"replace":     true,
				"speed-limit": "2MB",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/all/flags/output", cfg.OutputPath)
				assert.True(t, cfg.DownloadAudio)
				assert.True(t, cfg.DownloadComments)
				assert.True(t, cfg.ReplaceExisting)
				assert.Equal(t, "2MB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "output and audio flags - partial override",
			flags: map[string]any{
				"output": "/partial/output",
				"audio":  true,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/partial/output", cfg.OutputPath)
				assert.True(t, cfg.DownloadAudio)
				assert.True(t, cfg.DownloadComments)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "replace and speed-limit flags - partial override",
			flags: map[string]any{
				"replace":     true,
				"speed-limit": "750KB",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.ReplaceExisting)
				assert.Equal(t, "750KB", cfg.DownloadSpeedLimit)
				assert.Equal(t, "/config/output", cfg.OutputPath)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeTestConfig(t, testBaseConfigContent)
			testCmd := newFlagTestCommand()

			// Set flag values.
			for flagName, flagValue := range tt.flags {
				var setErr error

				switch v := flagValue.(type) {
				case string:
					setErr = testCmd.Flags().Set(flagName, v)
				case bool:
					if v {
						setErr = testCmd.Flags().Set(flagName, "true")
					} else {
						setErr = testCmd.Flags().Set(flagName, "false")
					}
				}

				require.NoError(t, setErr, "failed to set flag %s", flagName)
			}

			// Bind flags to config.
			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.NoError(t, err)

			// Verify expectations.
			tt.expectedConfig(t, cfg)
		})
	}
}

// TestFlagOverrides_InvalidValues tests that invalid values are caught during validation.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_InvalidValues(t *testing.T) {
	invalidTests := []struct {
		name          string
		configContent string
		flagName      string
		flagValue     string
		expectedError string
	}{
		{
			name:          "invalid speed limit flag",
			configContent: testBaseConfigContent,
			flagName:      "speed-limit",
			flagValue:     "invalid-speed",
			expectedError: "failed to parse download speed limit",
		},
		{
			name: "unknown log level in config",
			configContent: `
cookie: "GCESS=config_cookie"
log_level: "verbose"
max_folder_name_length: 100
max_download_pause: "3s"
max_concurrent_downloads: 1
`,
			expectedError: "unknown log level",
		},
		{
			name: "missing credentials in config",
			configContent: `
output_path: "/config/output"
log_level: "info"
max_folder_name_length: 100
max_download_pause: "3s"
max_concurrent_downloads: 1
`,
			expectedError: "account and password are required",
		},
		{
			name: "invalid max download pause in config",
			configContent: `
cookie: "GCESS=config_cookie"
log_level: "info"
max_folder_name_length: 100
max_download_pause: "fast"
max_concurrent_downloads: 1
`,
			expectedError: "failed to parse max download pause",
		},
	}

	for _, tt := range invalidTests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeTestConfig(t, tt.configContent)
			testCmd := newFlagTestCommand()

			if tt.flagName != "" {
				err := testCmd.Flags().Set(tt.flagName, tt.flagValue)
				require.NoError(t, err)
			}

			// Bind flags to config - this should fail validation.
			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

// TestBindFlagsToConfig_UnchangedFlags tests that unchanged flags don't override config values.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestBindFlagsToConfig_UnchangedFlags(t *testing.T) {
	// Use specific config content for this test.
	configContent := `
cookie: "GCESS=config_cookie"
output_path: "/config/output"
download_audio: true
download_comments: true
replace_existing: true
download_speed_limit: "1MB"
log_level: "info"
course_folder_template: "{{.courseTitle}} - {{.authorName}}"
article_filename_template: "{{.articleNumberPad}} - {{.articleTitle}}"
video_filename_template: "{{.videoNumberPad}} - {{.videoTitle}}"
max_folder_name_length: 100
max_download_pause: "3s"
max_concurrent_downloads: 1
`

	cfg := writeTestConfig(t, configContent)

	// Create a test command with flags but don't set any.
	testCmd := newFlagTestCommand()

	// Bind flags to config without setting any flags.
	err := bindFlagsToConfig(testCmd.Flags(), cfg)
	require.NoError(t, err)

	// Verify config values remain unchanged.
	assert.Equal(t, "/config/output", cfg.OutputPath)
	assert.True(t, cfg.DownloadAudio)
	assert.True(t, cfg.DownloadComments)
	assert.True(t, cfg.ReplaceExisting)
	assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
}

// TestBindFlagsToConfig_EmptyFlagSet tests handling of empty flag set.
func TestBindFlagsToConfig_EmptyFlagSet(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Cookie:                 "GCESS=test_value",
		LogLevel:               "info",
		MaxFolderNameLength:    100,
		MaxDownloadPause:       "3s",
		MaxConcurrentDownloads: 1,
	}

	// Create an empty flag set.
	emptyFlags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	// Calling with empty flag set should just validate the config.
	err := bindFlagsToConfig(emptyFlags, cfg)
	require.NoError(t, err)

	// Validation fills in the derived fields.
	assert.Equal(t, "https://time.geekbang.org", cfg.APIBaseURL)
	assert.Equal(t, "https://account.geekbang.org", cfg.AccountBaseURL)
	assert.Equal(t, 3*time.Second, cfg.ParsedMaxDownloadPause)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/geektime-grabber/internal/constants"
)

// TestConfigStruct tests the Config struct fields.
func TestConfigStruct(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Account:                 "13800138000",
		Password:                "hunter2",
		Area:                    "86",
		Cookie:                  "GCESS=abc; SERVERID=def",
		NoLogin:                 false,
		LazyLogin:               true,
		OutputPath:              "/tmp/downloads",
		CourseFolderTemplate:    "{{.courseTitle}} - {{.authorName}}",
		ArticleFilenameTemplate: "{{.articleNumberPad}} - {{.articleTitle}}",
		VideoFilenameTemplate:   "{{.videoNumberPad}} - {{.videoTitle}}",
		DownloadAudio:           true,
		DownloadComments:        true,
		ReplaceExisting:         false,
		LogLevel:                "info",
		LogFile:                 "/tmp/grabber.log",
		DownloadSpeedLimit:      "1MB",
		MaxFolderNameLength:     100,
		MaxDownloadPause:        "5s",
		MaxConcurrentDownloads:  3,
	}

	assert.Equal(t, "13800138000", cfg.Account)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.Equal(t, "86", cfg.Area)
	assert.Equal(t, "GCESS=abc; SERVERID=def", cfg.Cookie)
	assert.False(t, cfg.NoLogin)
	assert.True(t, cfg.LazyLogin)
	assert.Equal(t, "/tmp/downloads", cfg.OutputPath)
	assert.Equal(t, "{{.courseTitle}} - {{.authorName}}", cfg.CourseFolderTemplate)
	assert.Equal(t, "{{.articleNumberPad}} - {{.articleTitle}}", cfg.ArticleFilenameTemplate)
	assert.Equal(t, "{{.videoNumberPad}} - {{.videoTitle}}", cfg.VideoFilenameTemplate)
	assert.True(t, cfg.DownloadAudio)
	assert.True(t, cfg.DownloadComments)
	assert.False(t, cfg.ReplaceExisting)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/tmp/grabber.log", cfg.LogFile)
	assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
	assert.Equal(t, int64(100), cfg.MaxFolderNameLength)
	assert.Equal(t, "5s", cfg.MaxDownloadPause)
	assert.Equal(t, int64(3), cfg.MaxConcurrentDownloads)
}

// TestConstants tests the constants.
func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1024*1024, DefaultMaxLogLength)
	assert.Equal(t, "https://account.geekbang.org", AccountBaseURL)
	assert.Equal(t, "https://time.geekbang.org", APIBaseURL)
	assert.Equal(t, "86", DefaultArea)
}

// TestLoadConfig tests the LoadConfig function.
//
//nolint:tparallel // It's a test function and it's not parallel to avoid race conditions.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name           string
		configFilename string
		configContent  string
		expectError    bool
		expectedError  string
		check          func(t *testing.T, cfg *Config)
	}{
		{
			name:           "valid config file",
			configFilename: "valid_config.yaml",
			configContent: `
account: "13800138000"
password: "hunter2"
area: "86"
lazy_login: false
output_path: "/tmp/downloads"
course_folder_template: "{{.courseTitle}} - {{.authorName}}"
article_filename_template: "{{.articleNumberPad}} - {{.articleTitle}}"
video_filename_template: "{{.videoNumberPad}} - {{.videoTitle}}"
download_audio: true
download_comments: true
replace_existing: false
log_level: "info"
download_speed_limit: "1MB"
max_folder_name_length: 100
max_download_pause: "5s"
max_concurrent_downloads: 3
`,
			expectError: false,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Equal(t, "13800138000", cfg.Account)
				assert.Equal(t, "hunter2", cfg.Password)
				assert.False(t, cfg.LazyLogin)
				assert.True(t, cfg.DownloadAudio)
			},
		},
		{
			name:           "missing file falls back to defaults",
			configFilename: "non_existent.yaml",
			expectError:    false,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()

				assert.Empty(t, cfg.Account)
				assert.Equal(t, DefaultArea, cfg.Area)
				assert.True(t, cfg.LazyLogin)
				assert.Equal(t, DefaultCourseFolderTemplate, cfg.CourseFolderTemplate)
				assert.Equal(t, int64(defaultMaxConcurrentDownloads), cfg.MaxConcurrentDownloads)
			},
		},
		{
			name:           "invalid yaml",
			configFilename: "invalid.yaml",
			configContent: `
invalid: yaml: content: [unclosed
`,
			expectError:   true,
			expectedError: "failed to read config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Viper is a package-level singleton, so start each case from a clean slate.
			viper.Reset()

			// Create temporary directory for this test.
			var (
				tempDir    = t.TempDir()
				configPath = filepath.Join(tempDir, tt.configFilename)
			)

			if tt.configContent != "" {
				err := os.WriteFile(configPath, []byte(tt.configContent), constants.DefaultFilePermissions)

				require.NoError(t, err)
			}

			cfg, err := LoadConfig(configPath)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// validTestConfig returns a config that passes validation with password credentials.
func validTestConfig() *Config {
	return &Config{
		Account:                "13800138000",
		Password:               "hunter2",
		Area:                   "86",
		LogLevel:               "info",
		DownloadSpeedLimit:     "1MB",
		MaxFolderNameLength:    100,
		MaxDownloadPause:       "5s",
		MaxConcurrentDownloads: 3,
	}
}

// TestValidateConfig tests the ValidateConfig function.
//
//nolint:tparallel // It's a test function and it's not parallel to avoid race conditions.
func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config with password credentials",
			mutate:      func(_ *Config) {},
			expectError: false,
		},
		{
			name: "valid config with cookie only",
			mutate: func(cfg *Config) {
				cfg.Account = ""
				cfg.Password = ""
				cfg.Cookie = "GCESS=abc"
			},
			expectError: false,
		},
		{
			name: "valid config with no_login and no credentials",
			mutate: func(cfg *Config) {
				cfg.Account = ""
				cfg.Password = ""
				cfg.NoLogin = true
			},
			expectError: false,
		},
		{
			name: "missing password",
			mutate: func(cfg *Config) {
				cfg.Password = ""
			},
			expectError: true,
			errorMsg:    "account and password are required",
		},
		{
			name: "whitespace credentials",
			mutate: func(cfg *Config) {
				cfg.Account = "   "
				cfg.Password = "   "
			},
			expectError: true,
			errorMsg:    "account and password are required",
		},
		{
			name: "invalid log level",
			mutate: func(cfg *Config) {
				cfg.LogLevel = "invalid"
			},
			expectError: true,
			errorMsg:    "unknown log level",
		},
		{
			name: "invalid max folder name length",
			mutate: func(cfg *Config) {
				cfg.MaxFolderNameLength = 0
			},
			expectError: true,
			errorMsg:    "max_folder_name_length must be a positive integer",
		},
		{
			name: "invalid max download pause format",
			mutate: func(cfg *Config) {
				cfg.MaxDownloadPause = "invalid"
			},
			expectError: true,
			errorMsg:    "failed to parse max download pause:",
		},
		{
			name: "negative max download pause",
			mutate: func(cfg *Config) {
				cfg.MaxDownloadPause = "-1s"
			},
			expectError: true,
			errorMsg:    "max_download_pause must be positive",
		},
		{
			name: "invalid concurrent downloads",
			mutate: func(cfg *Config) {
				cfg.MaxConcurrentDownloads = 0
			},
			expectError: true,
			errorMsg:    "max concurrent downloads must be a positive integer",
		},
		{
			name: "invalid download speed limit",
			mutate: func(cfg *Config) {
				cfg.DownloadSpeedLimit = "invalid"
			},
			expectError: true,
			errorMsg:    "failed to parse download speed limit:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validTestConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
				// Check that derived values are set correctly.
				assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
				assert.Equal(t, AccountBaseURL, cfg.AccountBaseURL)
				assert.Equal(t, APIBaseURL, cfg.APIBaseURL)
			}
		})
	}
}

// TestValidateConfig_AreaDefault tests that an empty area falls back to the default calling code.
func TestValidateConfig_AreaDefault(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.Area = "  "

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, DefaultArea, cfg.Area)
}

// TestValidateConfig_DownloadSpeedLimit tests download speed limit validation.
//
//nolint:tparallel // It's a test function and it's not parallel to avoid race conditions.
func TestValidateConfig_DownloadSpeedLimit(t *testing.T) {
	tests := []struct {
		name          string
		speedLimit    string
		expectedBytes int64
		expectError   bool
	}{
		{
			name:          "empty limit",
			speedLimit:    "",
			expectedBytes: 0,
			expectError:   false,
		},
		{
			name:          "zero limit",
			speedLimit:    "0",
			expectedBytes: 0,
			expectError:   false,
		},
		{
			name:          "1KB limit",
			speedLimit:    "1KB",
			expectedBytes: 1000,
			expectError:   false,
		},
		{
			name:          "1MB limit",
			speedLimit:    "1MB",
			expectedBytes: 1000000,
			expectError:   false,
		},
		{
			name:          "1GB limit",
			speedLimit:    "1GB",
			expectedBytes: 1000000000,
			expectError:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validTestConfig()
			cfg.DownloadSpeedLimit = tt.speedLimit

			err := ValidateConfig(cfg)

			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedBytes, cfg.ParsedDownloadSpeedLimit)
			}
		})
	}
}

// TestValidateConfig_MaxDownloadPause tests that the parsed pause matches the configured string.
func TestValidateConfig_MaxDownloadPause(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.MaxDownloadPause = "2s"

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, 2*time.Second, cfg.ParsedMaxDownloadPause)
}

// TestSaveConfig tests that SaveConfig rewrites only the cookie while keeping the file layout.
//
//nolint:tparallel // Uses the global viper state, so subtests must run sequentially.
func TestSaveConfig(t *testing.T) {
	t.Run("updates existing cookie in place", func(t *testing.T) {
		var (
			tempDir    = t.TempDir()
			configPath = filepath.Join(tempDir, "config.yaml")
		)

		content := `# My grabber settings.
account: "13800138000"
password: "hunter2"
cookie: "GCESS=old"
output_path: "/tmp/downloads"
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), constants.DefaultFilePermissions))

		viper.SetConfigFile(configPath)

		cfg := &Config{Cookie: "GCESS=new; SERVERID=xyz"}
		require.NoError(t, SaveConfig(cfg))

		updated, err := os.ReadFile(configPath)
		require.NoError(t, err)

		assert.Contains(t, string(updated), `cookie: "GCESS=new; SERVERID=xyz"`)
		assert.NotContains(t, string(updated), "GCESS=old")
		assert.Contains(t, string(updated), "# My grabber settings.")
		assert.Contains(t, string(updated), `account: "13800138000"`)
	})

	t.Run("appends cookie when key is missing", func(t *testing.T) {
		var (
			tempDir    = t.TempDir()
			configPath = filepath.Join(tempDir, "config.yaml")
		)

		content := `account: "13800138000"
password: "hunter2"
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), constants.DefaultFilePermissions))

		viper.SetConfigFile(configPath)

		cfg := &Config{Cookie: "GCESS=fresh"}
		require.NoError(t, SaveConfig(cfg))

		updated, err := os.ReadFile(configPath)
		require.NoError(t, err)

		assert.Contains(t, string(updated), `cookie: "GCESS=fresh"`)
		assert.Contains(t, string(updated), `account: "13800138000"`)
	})
}

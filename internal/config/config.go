package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// Account is the phone number used to sign in.
	Account string `mapstructure:"account"`
	// Password is the account password.
	Password string `mapstructure:"password"`
	// Area is the country calling code of the account, e.g. "86".
	Area string `mapstructure:"area"`
	// Cookie is a pre-supplied session cookie string ("GCESS=...; ...").
	// When set, it is adopted as the session and no password login is performed.
	Cookie string `mapstructure:"cookie"`
	// NoLogin disables authentication entirely; only public data is reachable.
	NoLogin bool `mapstructure:"no_login"`
	// LazyLogin defers the password login until the first call that needs a session.
	LazyLogin bool `mapstructure:"lazy_login"`
	// OutputPath is the directory path where downloaded files will be saved.
	OutputPath string `mapstructure:"output_path"`
	// CourseFolderTemplate is the template for naming course folders.
	CourseFolderTemplate string `mapstructure:"course_folder_template"`
	// ArticleFilenameTemplate is the template for naming article files.
	ArticleFilenameTemplate string `mapstructure:"article_filename_template"`
	// VideoFilenameTemplate is the template for naming files of video collection entries.
	VideoFilenameTemplate string `mapstructure:"video_filename_template"`
	// DownloadAudio indicates whether to download the narration audio of articles.
	DownloadAudio bool `mapstructure:"download_audio"`
	// DownloadComments indicates whether to export article comments.
	DownloadComments bool `mapstructure:"download_comments"`
	// ReplaceExisting indicates whether to overwrite files that already exist.
	ReplaceExisting bool `mapstructure:"replace_existing"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// LogFile is an optional path of a rotated log file; empty disables the file sink.
	LogFile string `mapstructure:"log_file"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// MaxFolderNameLength is the maximum length for folder names.
	MaxFolderNameLength int64 `mapstructure:"max_folder_name_length"`
	// MaxDownloadPause is the maximum pause duration between article downloads.
	MaxDownloadPause string `mapstructure:"max_download_pause"`
	// MaxConcurrentDownloads is the maximum number of articles to download simultaneously.
	MaxConcurrentDownloads int64 `mapstructure:"max_concurrent_downloads"`
	// AccountBaseURL is the base URL of the account service (set automatically).
	AccountBaseURL string
	// APIBaseURL is the base URL of the content API (set automatically).
	APIBaseURL string
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes.
	ParsedDownloadSpeedLimit int64
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedMaxDownloadPause is the parsed maximum download pause duration.
	ParsedMaxDownloadPause time.Duration
}

const (
	// AccountBaseURL is the base URL of the account service used for password login.
	AccountBaseURL = "https://account.geekbang.org"

	// APIBaseURL is the base URL of the content API.
	APIBaseURL = "https://time.geekbang.org"

	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".geektime-grabber.yaml"

	// DefaultArea is the country calling code assumed when none is configured.
	DefaultArea = "86"

	// DefaultCourseFolderTemplate is the default template for naming folders for downloaded courses.
	DefaultCourseFolderTemplate = "{{.courseTitle}} - {{.authorName}}"

	// DefaultArticleFilenameTemplate is the default template for naming downloaded article files.
	DefaultArticleFilenameTemplate = "{{.articleNumberPad}} - {{.articleTitle}}"

	// DefaultVideoFilenameTemplate is the default template for naming downloaded video collection entries.
	DefaultVideoFilenameTemplate = "{{.videoNumberPad}} - {{.videoTitle}}"

	// DefaultMaxLogLength is the default maximum size (in bytes) for logged request/response dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// defaultOutputPath is used when the config does not name a download directory.
	defaultOutputPath = "downloads"

	// defaultMaxFolderNameLength caps sanitized folder names; long CJK course
	// titles otherwise overflow path limits on Windows.
	defaultMaxFolderNameLength = 100

	// defaultMaxDownloadPause spaces out article requests a little.
	defaultMaxDownloadPause = "3s"

	// defaultMaxConcurrentDownloads keeps the per-course worker pool modest.
	defaultMaxConcurrentDownloads = 3
)

// Static error definitions for better error handling.
var (
	// ErrMissingCredentials indicates that neither credentials nor a session cookie were supplied.
	ErrMissingCredentials = errors.New("account and password are required unless no_login or a cookie is set")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidMaxFolderNameLength indicates that the folder name length limit is invalid.
	ErrInvalidMaxFolderNameLength = errors.New("max_folder_name_length must be a positive integer")
	// ErrInvalidMaxDownloadPause indicates that the max download pause duration is invalid.
	ErrInvalidMaxDownloadPause = errors.New("max_download_pause must be positive")
	// ErrInvalidConcurrentDownloads indicates that the concurrent downloads count is invalid.
	ErrInvalidConcurrentDownloads = errors.New("max concurrent downloads must be a positive integer")
)

// LoadConfig loads configuration settings from a YAML file.
// A missing file is not an error: the returned config then carries only
// defaults, which is enough for `auth login` to bootstrap a fresh setup.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for everything a fresh install can run without.
func setDefaults() {
	viper.SetDefault("area", DefaultArea)
	viper.SetDefault("lazy_login", true)
	viper.SetDefault("output_path", defaultOutputPath)
	viper.SetDefault("course_folder_template", DefaultCourseFolderTemplate)
	viper.SetDefault("article_filename_template", DefaultArticleFilenameTemplate)
	viper.SetDefault("video_filename_template", DefaultVideoFilenameTemplate)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("max_folder_name_length", defaultMaxFolderNameLength)
	viper.SetDefault("max_download_pause", defaultMaxDownloadPause)
	viper.SetDefault("max_concurrent_downloads", defaultMaxConcurrentDownloads)
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	cfg.Account = strings.TrimSpace(cfg.Account)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Cookie = strings.TrimSpace(cfg.Cookie)

	// Credentials are needed only when a password login may actually happen.
	if !cfg.NoLogin && cfg.Cookie == "" && (cfg.Account == "" || cfg.Password == "") {
		return ErrMissingCredentials
	}

	if strings.TrimSpace(cfg.Area) == "" {
		cfg.Area = DefaultArea
	}

	cfg.AccountBaseURL = AccountBaseURL
	cfg.APIBaseURL = APIBaseURL

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	if cfg.MaxFolderNameLength <= 0 {
		return ErrInvalidMaxFolderNameLength
	}

	cfg.ParsedMaxDownloadPause, err = time.ParseDuration(cfg.MaxDownloadPause)
	if err != nil {
		return fmt.Errorf("failed to parse max download pause: %w", err)
	}

	if cfg.ParsedMaxDownloadPause <= 0 {
		return ErrInvalidMaxDownloadPause
	}

	if cfg.MaxConcurrentDownloads <= 0 {
		return ErrInvalidConcurrentDownloads
	}

	return nil
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
// Only the session cookie is written back; everything else stays as the user formatted it.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile) //nolint:gosec // Path comes from the user's own flag or default.
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.Cookie, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Update the cookie value in the node tree.
	updateCookieInNode(&node, cfg.Cookie)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, cookie string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// File doesn't exist, create it with viper.
	viper.Set("cookie", cookie)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateCookieInNode updates the cookie value in the YAML node tree.
// A missing key is appended so a hand-written minimal config still picks up the session.
func updateCookieInNode(node *yaml.Node, cookie string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == "cookie" {
			// Update the value while preserving style.
			valueNode.Value = cookie

			// Ensure it's quoted if it contains special characters.
			if valueNode.Style == 0 {
				valueNode.Style = yaml.DoubleQuotedStyle
			}

			return
		}
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "cookie"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: cookie, Style: yaml.DoubleQuotedStyle},
	)
}

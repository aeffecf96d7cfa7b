package geektime

import (
	"context"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

const (
	// File options for overwriting an existing file.
	overwriteFileOptions = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

	// File options for creating a new file (fails if the file already exists).
	createNewFileOptions = os.O_CREATE | os.O_EXCL | os.O_WRONLY
)

// downloadAndSaveFile fetches a URL into a file, reporting whether the file
// already existed and was left untouched.
func (s *ServiceImpl) downloadAndSaveFile(
	ctx context.Context,
	url, destinationPath string,
	overwrite bool,
) (bool, error) {
	// Choose file options based on whether we're allowed to overwrite the file.
	fileOptions := overwriteFileOptions
	if !overwrite {
		fileOptions = createNewFileOptions
	}

	// Open the file with the chosen options.
	file, err := os.OpenFile(filepath.Clean(destinationPath), fileOptions, constants.DefaultFilePermissions)
	if err != nil {
		// If the file already exists and we're not overwriting, log and skip.
		if os.IsExist(err) && !overwrite {
			logger.Infof(ctx, "File '%s' already exists, skipping download", destinationPath)

			return true, nil
		}

		return false, err
	}

	defer file.Close()

	// Download the file content from the URL.
	reader, err := s.gtClient.DownloadFromURL(ctx, url)
	if err != nil {
		return false, err
	}

	defer reader.Close()

	// Copy the downloaded content to the file.
	_, err = io.Copy(file, reader)

	return false, err
}

// writeTextFile saves text content into a file, reporting whether the file
// already existed and was left untouched.
func (s *ServiceImpl) writeTextFile(
	ctx context.Context,
	content, destinationPath string,
	overwrite bool,
) (bool, error) {
	fileOptions := overwriteFileOptions
	if !overwrite {
		fileOptions = createNewFileOptions
	}

	file, err := os.OpenFile(filepath.Clean(destinationPath), fileOptions, constants.DefaultFilePermissions)
	if err != nil {
		if os.IsExist(err) && !overwrite {
			logger.Infof(ctx, "File '%s' already exists, skipping", destinationPath)

			return true, nil
		}

		return false, err
	}

	defer file.Close()

	_, err = file.WriteString(content)

	return false, err
}

func (s *ServiceImpl) truncateFolderName(ctx context.Context, pattern, name string) string {
	// Check if the folder name exceeds the maximum allowed length.
	if s.cfg.MaxFolderNameLength > 0 && int64(len([]rune(name))) > s.cfg.MaxFolderNameLength {
		// Truncate the name to the maximum length.
		truncated := utils.TruncateString(name, s.cfg.MaxFolderNameLength)
		logger.Infof(ctx, "%s folder name was truncated to %d characters", pattern, s.cfg.MaxFolderNameLength)

		return truncated
	}

	return name
}

func (s *ServiceImpl) generateSanitizedFolderPath(ctx context.Context, pattern, rawPath string) string {
	// Split using both separators to handle mixed/foreign path formats.
	components := strings.FieldsFunc(rawPath, func(r rune) bool {
		return r == '/' || r == '\\' // Handle both Unix and Windows paths.
	})

	sanitizedComponents := make([]string, 0, len(components))
	for _, component := range components {
		// Sanitize each component individually to prevent path traversal attacks.
		clean := utils.SanitizeFilename(component)

		sanitizedComponents = append(sanitizedComponents, clean)
	}

	// Join with OS-specific separators and normalize the path.
	joinedPath := filepath.Join(sanitizedComponents...)

	// Truncate to filesystem limits.
	return s.truncateFolderName(ctx, pattern, joinedPath)
}

// renderHTMLDocument wraps article markup in a minimal standalone HTML shell
// so saved files open correctly in a browser.
// The body is raw markup returned by the API, so only the title is escaped.
func renderHTMLDocument(title, body string) string {
	var builder strings.Builder

	builder.WriteString("<!DOCTYPE html>\n")
	builder.WriteString("<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	builder.WriteString(html.EscapeString(title))
	builder.WriteString("</title>\n</head>\n<body>\n")
	builder.WriteString(body)
	builder.WriteString("\n</body>\n</html>\n")

	return builder.String()
}

package geektime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

//nolint:cyclop,funlen // Function orchestrates complex download workflow with multiple sequential steps.
func (s *ServiceImpl) downloadAndSaveAudio(
	ctx context.Context,
	audioURL string,
	audioPath string,
) (*DownloadAudioResult, error) {
	// Check if final file already exists.
	if !s.cfg.ReplaceExisting {
		if exists, err := utils.IsFileExist(audioPath); err == nil && exists {
			logger.Infof(ctx, "Audio '%s' already exists, skipping download", audioPath)

			return &DownloadAudioResult{
				IsExist:         true,
				TempPath:        "",
				BytesDownloaded: 0,
			}, nil
		}
	}

	// Fetch the audio.
	fetchResult, fetchErr := s.gtClient.FetchAsset(ctx, audioURL)
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", fetchErr)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	// Download to a temporary .part file first for atomic operation.
	// A unique suffix keeps concurrent workers from clashing on retried articles.
	tempFilePath := audioPath + "." + uuid.NewString() + ".part"

	// Always overwrite .part files (they indicate incomplete downloads).
	f, openErr := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if openErr != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", openErr)
	}

	// Track whether download succeeded.
	// If not, we'll clean up the .part file on function exit.
	var downloadSucceeded bool

	defer func() {
		// Ensure file is closed before cleanup.
		closeErr := f.Close()

		// Clean up .part file if download failed.
		if !downloadSucceeded {
			// Small delay to ensure file handle is released (Windows needs this).
			time.Sleep(10 * time.Millisecond)

			if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
				// Log warning but don't fail - this is best-effort cleanup.
				logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
					tempFilePath, removeErr, closeErr)
			}
		}
	}()

	// Initialize progress tracker.
	// Progress bars are disabled when downloading concurrently to avoid terminal output conflicts.
	var writer io.Writer

	if logger.Level() <= zap.InfoLevel && s.cfg.MaxConcurrentDownloads == 1 {
		bar := progressbar.DefaultBytes(
			fetchResult.TotalBytes,
			"Downloading",
		)

		writer = io.MultiWriter(f, bar)
	} else {
		writer = f
	}

	// Download logic.
	var (
		bytesWritten int64
		err          error
	)

	if s.cfg.ParsedDownloadSpeedLimit == 0 {
		bytesWritten, err = io.Copy(writer, fetchResult.Body)
	} else {
		for {
			var n int64

			n, err = io.CopyN(writer, fetchResult.Body, s.cfg.ParsedDownloadSpeedLimit)
			bytesWritten += n

			if errors.Is(err, io.EOF) {
				err = nil

				break
			}

			if err != nil {
				break
			}

			// Throttle to respect speed limit.
			time.Sleep(time.Second)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	// Verify that we downloaded the expected number of bytes.
	// The audio CDN doesn't always report a size, so only verify when one is known.
	if fetchResult.TotalBytes > 0 && bytesWritten != fetchResult.TotalBytes {
		return nil, fmt.Errorf(
			"%w: wrote %d bytes, expected %d bytes",
			ErrIncompleteDownload,
			bytesWritten,
			fetchResult.TotalBytes,
		)
	}

	// Mark download as successful to prevent cleanup by defer.
	// The .part file will be renamed to final name by the caller after tags are written.
	downloadSucceeded = true

	// Return the temp file path for the caller to rename after writing tags.
	return &DownloadAudioResult{
		IsExist:         false,
		TempPath:        tempFilePath,
		BytesDownloaded: bytesWritten,
	}, nil
}

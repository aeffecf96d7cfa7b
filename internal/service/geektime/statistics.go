package geektime

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/geektime-grabber/internal/logger"
)

const (
	// unknownParentKey is used as a fallback key when the parent course is unknown.
	unknownParentKey = "unknown"
)

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// incrementArticleDownloaded atomically increments the downloaded articles counter and adds bytes.
func (s *ServiceImpl) incrementArticleDownloaded(bytes int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.ArticlesDownloaded++
	s.stats.TotalArticlesProcessed++
	s.stats.TotalBytesDownloaded += bytes
}

// incrementArticleSkipped atomically increments the skipped articles counter.
func (s *ServiceImpl) incrementArticleSkipped() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.ArticlesSkipped++
	s.stats.TotalArticlesProcessed++
}

// incrementArticleFailed atomically increments the failed articles counter.
func (s *ServiceImpl) incrementArticleFailed() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.ArticlesFailed++
	s.stats.TotalArticlesProcessed++
}

// incrementAudioDownloaded atomically increments the downloaded audio counter and adds bytes.
func (s *ServiceImpl) incrementAudioDownloaded(bytes int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.AudioDownloaded++
	s.stats.TotalBytesDownloaded += bytes
}

// incrementAudioSkipped atomically increments the skipped audio counter.
func (s *ServiceImpl) incrementAudioSkipped() {
	atomic.AddInt64(&s.stats.AudioSkipped, 1)
}

// incrementCommentThreadDownloaded atomically increments the saved comment threads counter.
func (s *ServiceImpl) incrementCommentThreadDownloaded() {
	atomic.AddInt64(&s.stats.CommentThreadsDownloaded, 1)
}

// incrementCoverDownloaded atomically increments the downloaded covers counter.
func (s *ServiceImpl) incrementCoverDownloaded() {
	atomic.AddInt64(&s.stats.CoversDownloaded, 1)
}

// incrementCoverSkipped atomically increments the skipped covers counter.
func (s *ServiceImpl) incrementCoverSkipped() {
	atomic.AddInt64(&s.stats.CoversSkipped, 1)
}

// groupErrors separates article errors from collection errors for better display organization.
func (s *ServiceImpl) groupErrors(errors []DownloadError) (articleErrors, collectionErrors []DownloadError) {
	for i := range errors {
		if errors[i].Category == DownloadCategoryArticle {
			articleErrors = append(articleErrors, errors[i])
		} else {
			collectionErrors = append(collectionErrors, errors[i])
		}
	}

	return articleErrors, collectionErrors
}

// PrintDownloadSummary prints a formatted summary of download statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.stats

	// If nothing was processed, don't print summary.
	// Collection downloads only touch cover counters, so check those too.
	if stats.TotalArticlesProcessed == 0 && stats.CoversDownloaded+stats.CoversSkipped == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	s.printSummaryHeader(ctx, wasInterrupted)
	s.printArticleStatistics(ctx, stats)
	s.printDataTransferStatistics(ctx, stats)
	s.printAudioStatistics(ctx, stats)
	s.printCommentStatistics(ctx, stats)
	s.printCoverArtStatistics(ctx, stats)
	s.printSummaryFooter(ctx)
	s.printErrorDetails(ctx, stats)
	s.printFinalMessage(ctx, wasInterrupted, stats)
}

// printSummaryHeader prints the summary header.
func (s *ServiceImpl) printSummaryHeader(ctx context.Context, wasInterrupted bool) {
	logger.Info(ctx, "")

	if wasInterrupted {
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
		logger.Info(ctx, "═══════════════════════════════════════════════════════════════")

		return
	}

	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
	logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
}

// printArticleStatistics prints article download statistics.
func (s *ServiceImpl) printArticleStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalArticlesProcessed == 0 {
		return
	}

	logger.Infof(ctx, "Articles:         %d total processed", stats.TotalArticlesProcessed)

	if stats.ArticlesDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:     %d", stats.ArticlesDownloaded)
	}

	if stats.ArticlesSkipped > 0 {
		logger.Infof(ctx, "  Already Exist:  %d", stats.ArticlesSkipped)
	}

	if stats.ArticlesFailed > 0 {
		logger.Infof(ctx, "  Failed:         %d", stats.ArticlesFailed)
	}

	// Success rate.
	successCount := stats.ArticlesDownloaded + stats.ArticlesSkipped
	successRate := float64(successCount) / float64(stats.TotalArticlesProcessed) * 100
	logger.Infof(ctx, "  Success Rate:   %.1f%%", successRate)
}

// printDataTransferStatistics prints data transfer statistics.
func (s *ServiceImpl) printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	// Print duration if we have both start and end times.
	if !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		duration := stats.EndTime.Sub(stats.StartTime)

		// Only show if duration is meaningful (> 100ms).
		if duration > 100*time.Millisecond {
			logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

			// Calculate and show average speed if we downloaded anything.
			if stats.TotalBytesDownloaded > 0 {
				bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
				logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
			}
		}
	}
}

// printAudioStatistics prints narration audio download statistics.
func (s *ServiceImpl) printAudioStatistics(ctx context.Context, stats *DownloadStatistics) {
	totalAudio := stats.AudioDownloaded + stats.AudioSkipped
	if totalAudio == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Narration Audio:  %d total", totalAudio)

	if stats.AudioDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:     %d", stats.AudioDownloaded)
	}

	if stats.AudioSkipped > 0 {
		logger.Infof(ctx, "  Skipped:        %d", stats.AudioSkipped)
	}
}

// printCommentStatistics prints comment thread download statistics.
func (s *ServiceImpl) printCommentStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.CommentThreadsDownloaded == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Comment Threads:  %d saved", stats.CommentThreadsDownloaded)
}

// printCoverArtStatistics prints cover art download statistics.
func (s *ServiceImpl) printCoverArtStatistics(ctx context.Context, stats *DownloadStatistics) {
	totalCovers := stats.CoversDownloaded + stats.CoversSkipped
	if totalCovers == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Cover Art:        %d total", totalCovers)

	if stats.CoversDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:     %d", stats.CoversDownloaded)
	}

	if stats.CoversSkipped > 0 {
		logger.Infof(ctx, "  Skipped:        %d", stats.CoversSkipped)
	}
}

// printSummaryFooter prints the summary footer separator.
func (s *ServiceImpl) printSummaryFooter(ctx context.Context) {
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")
}

// printErrorDetails prints detailed error information if any errors occurred.
func (s *ServiceImpl) printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	// Group errors by parent course for better readability.
	articleErrors, collectionErrors := s.groupErrors(stats.Errors)

	s.printCollectionErrors(ctx, collectionErrors)
	s.printArticleErrors(ctx, articleErrors)

	logger.Info(ctx, "")
	logger.Info(ctx, "═══════════════════════════════════════════════════════════════")

	// Print retry command for failed items.
	s.printRetryCommand(ctx, stats.Errors)
}

// printCollectionErrors prints top-level errors (courses and daily lesson collections).
func (s *ServiceImpl) printCollectionErrors(ctx context.Context, collectionErrors []DownloadError) {
	if len(collectionErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "COURSE AND COLLECTION ERRORS:")

	for i := range collectionErrors {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, collectionErrors[i].Category, collectionErrors[i].ItemTitle)

		if collectionErrors[i].ItemURL != "" {
			logger.Errorf(ctx, "      URL: %s", collectionErrors[i].ItemURL)
		}

		logger.Errorf(ctx, "      ID: %s", collectionErrors[i].ItemID)
		logger.Errorf(ctx, "      Phase: %s", collectionErrors[i].Phase)
		logger.Errorf(ctx, "      Error: %s", collectionErrors[i].ErrorMessage)
	}
}

// printArticleErrors prints article-level errors grouped by parent course.
func (s *ServiceImpl) printArticleErrors(ctx context.Context, articleErrors []DownloadError) {
	if len(articleErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ARTICLE ERRORS:")

	// Group by parent.
	parentGroups := s.groupArticleErrorsByParent(articleErrors)

	// Print grouped errors.
	for _, errs := range parentGroups {
		if len(errs) == 0 {
			continue
		}

		s.printParentGroupErrors(ctx, errs)
	}
}

// groupArticleErrorsByParent groups article errors by their parent course.
func (s *ServiceImpl) groupArticleErrorsByParent(articleErrors []DownloadError) map[string][]DownloadError {
	parentGroups := make(map[string][]DownloadError)

	for i := range articleErrors {
		key := articleErrors[i].ParentID
		if key == "" {
			key = unknownParentKey
		}

		parentGroups[key] = append(parentGroups[key], articleErrors[i])
	}

	return parentGroups
}

// printParentGroupErrors prints errors for articles from a specific parent course.
func (s *ServiceImpl) printParentGroupErrors(ctx context.Context, errs []DownloadError) {
	firstErr := errs[0]

	logger.Info(ctx, "")

	if firstErr.ParentTitle != "" {
		logger.Errorf(ctx, "  From %s: %s (ID: %s)",
			firstErr.ParentCategory, firstErr.ParentTitle, firstErr.ParentID)
	} else {
		logger.Errorf(ctx, "  From unknown course:")
	}

	for i := range errs {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "    [%d] %s", i+1, errs[i].ItemTitle)
		logger.Errorf(ctx, "        Article ID: %s", errs[i].ItemID)
		logger.Errorf(ctx, "        Phase: %s", errs[i].Phase)
		logger.Errorf(ctx, "        Error: %s", errs[i].ErrorMessage)
	}
}

// printRetryCommand generates and prints a command to retry failed downloads.
func (s *ServiceImpl) printRetryCommand(ctx context.Context, errors []DownloadError) {
	if len(errors) == 0 {
		return
	}

	// Collect unique URLs from failed items.
	// Only top-level requested items carry a URL, so failures inside
	// a course download don't repeat their parent here.
	var (
		urlsMap = make(map[string]bool)
		urls    []string
	)

	for i := range errors {
		if errors[i].ItemURL == "" {
			continue
		}

		if !urlsMap[errors[i].ItemURL] {
			urlsMap[errors[i].ItemURL] = true
			urls = append(urls, errors[i].ItemURL)
		}
	}

	// If we have any failed items, show the retry command.
	if len(urls) > 0 {
		logger.Info(ctx, "")
		logger.Info(ctx, "To retry only failed downloads, run:")
		logger.Info(ctx, "")

		// Build command line.
		command := "geektime-grabber download"
		for _, url := range urls {
			command += " " + url
		}

		logger.Infof(ctx, "  %s", command)
	}
}

// printFinalMessage prints a helpful message based on download results.
func (s *ServiceImpl) printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.ArticlesDownloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d article(s) before interruption.", stats.ArticlesDownloaded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.ArticlesDownloaded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	case stats.ArticlesSkipped > 0 && stats.ArticlesDownloaded == 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All articles already exist in the output directory.")
	}
}

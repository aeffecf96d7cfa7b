package geektime

import (
	"context"
	"errors"
)

// Common errors for the service layer.
var (
	// ErrIncompleteDownload indicates that the downloaded file size doesn't match the expected size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrArticleMetadataNotFound indicates that a listed article has no metadata entry.
	ErrArticleMetadataNotFound = errors.New("article metadata not found")
	// ErrCourseFolderFailed indicates that the course folder could not be prepared.
	ErrCourseFolderFailed = errors.New("failed to prepare course folder")
)

// ErrorContext provides context information for download errors.
type ErrorContext struct {
	// Category is the type of item that failed (article, course, collection).
	Category DownloadCategory
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed item (for courses and collections).
	ItemURL string
	// Phase indicates when the error occurred (e.g., "fetching metadata", "downloading audio").
	Phase string
	// ParentCategory is the type of parent collection (course) for articles.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent course.
	ParentID string
	// ParentTitle is the title of the parent course.
	ParentTitle string
}

// recordError records an error in the statistics with proper context.
// Context cancellation errors are ignored as they are expected during graceful shutdown.
func (s *ServiceImpl) recordError(errCtx *ErrorContext, err error) {
	if errCtx == nil || err == nil {
		return
	}

	// Don't record context cancellation as an error - it's expected when user presses CTRL+C.
	if errors.Is(err, context.Canceled) {
		return
	}

	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	downloadErr := DownloadError{
		Category:       errCtx.Category,
		ItemID:         errCtx.ItemID,
		ItemTitle:      errCtx.ItemTitle,
		ItemURL:        errCtx.ItemURL,
		ErrorMessage:   err.Error(),
		Phase:          errCtx.Phase,
		ParentCategory: errCtx.ParentCategory,
		ParentID:       errCtx.ParentID,
		ParentTitle:    errCtx.ParentTitle,
	}

	s.stats.Errors = append(s.stats.Errors, downloadErr)
}

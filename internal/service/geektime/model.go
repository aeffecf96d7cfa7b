package geektime

import (
	"fmt"
	"time"
)

const (
	// Default filenames and values.
	defaultCoverBasename    = "cover"
	defaultIntroBasename    = "intro"
	defaultMetadataBasename = "collection"

	// Composite extensions for files that accompany an article.
	commentsFileExtension = ".comments.json"

	// defaultPublisherName is the GeekTime brand name used when no author is available.
	defaultPublisherName = "极客时间"

	articleNumberPaddingWidth = 2
)

// DownloadCategory represents the type of content being downloaded.
type DownloadCategory uint8

const (
	// DownloadCategoryUnknown - unknown category.
	DownloadCategoryUnknown DownloadCategory = iota
	// DownloadCategoryArticle - single course article.
	DownloadCategoryArticle
	// DownloadCategoryCourse - full course.
	DownloadCategoryCourse
	// DownloadCategoryCollection - daily lesson video collection.
	DownloadCategoryCollection
)

// String returns a human-readable representation of the DownloadCategory.
func (dc DownloadCategory) String() string {
	switch dc {
	case DownloadCategoryUnknown:
		return "unknown"
	case DownloadCategoryArticle:
		return "article"
	case DownloadCategoryCourse:
		return "course"
	case DownloadCategoryCollection:
		return "collection"
	default:
		return fmt.Sprintf("unknown: %d", dc)
	}
}

// DownloadItem represents a full downloadable item, including its category, URL, and unique identifier.
type DownloadItem struct {
	// Category is the type of content (article, course, collection).
	Category DownloadCategory
	// URL is the direct URL to the item.
	URL string
	// ItemID is the unique identifier of the item.
	ItemID string
}

// ShortDownloadItem is a lightweight version of DownloadItem without the URL.
// It is useful when storing or processing items without needing the actual download link.
type ShortDownloadItem struct {
	// Category is the type of content.
	Category DownloadCategory
	// ItemID is the unique identifier of the item.
	ItemID string
}

// String returns a human-readable representation of the DownloadItem.
func (di DownloadItem) String() string {
	return fmt.Sprintf("category: %v, ID: %s", di.Category, di.ItemID)
}

// GetShortVersion converts a full DownloadItem into a ShortDownloadItem by stripping the URL.
func (di DownloadItem) GetShortVersion() ShortDownloadItem {
	return ShortDownloadItem{
		Category: di.Category,
		ItemID:   di.ItemID,
	}
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session completed.
	EndTime time.Time
	// TotalArticlesProcessed is the total number of articles attempted.
	TotalArticlesProcessed int64
	// ArticlesDownloaded is the number of articles successfully saved.
	ArticlesDownloaded int64
	// ArticlesSkipped is the number of articles skipped because they already exist.
	ArticlesSkipped int64
	// ArticlesFailed is the number of articles that failed to download.
	ArticlesFailed int64
	// TotalBytesDownloaded is the total size of downloaded content in bytes.
	TotalBytesDownloaded int64
	// AudioDownloaded is the number of narration audio files downloaded.
	AudioDownloaded int64
	// AudioSkipped is the number of narration audio files skipped (already exist).
	AudioSkipped int64
	// CommentThreadsDownloaded is the number of comment threads saved.
	CommentThreadsDownloaded int64
	// CoversDownloaded is the number of cover and poster images downloaded.
	CoversDownloaded int64
	// CoversSkipped is the number of cover and poster images skipped (already exist).
	CoversSkipped int64
	// Errors is a list of all errors encountered during the download process.
	Errors []DownloadError
}

// DownloadError represents a single error that occurred during download.
type DownloadError struct {
	// Category is the type of item that failed (article, course, collection).
	Category DownloadCategory
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed item (for courses and collections).
	ItemURL string
	// ErrorMessage is the error message.
	ErrorMessage string
	// Phase indicates when the error occurred (e.g., "fetching metadata", "downloading audio").
	Phase string
	// ParentCategory is the type of parent collection (course) for articles.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent course.
	ParentID string
	// ParentTitle is the title of the parent course.
	ParentTitle string
}

// DownloadAudioResult contains the result of a downloadAndSaveAudio operation.
type DownloadAudioResult struct {
	// IsExist indicates whether the audio file already existed (download was skipped).
	IsExist bool
	// TempPath is the path to the temporary .part file (empty if download was skipped or failed).
	TempPath string
	// BytesDownloaded is the number of bytes successfully downloaded.
	BytesDownloaded int64
}

// courseCollection represents a course folder with associated metadata.
type courseCollection struct {
	// category indicates the type of collection (course or video collection).
	category DownloadCategory
	// title is the course name.
	title string
	// tags contains metadata key-value pairs for the course.
	tags map[string]string
	// postsPath is the directory path where article files will be saved.
	postsPath string
	// coverPath is the file path of the course cover image.
	coverPath string
	// postIDs is the list of article IDs in chronological order.
	postIDs []int64
	// postsCount is the total number of articles in the course.
	postsCount int64
}

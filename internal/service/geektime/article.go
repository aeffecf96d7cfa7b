package geektime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/geektime-grabber/internal/client/geektime"
	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// downloadPostsMetadata contains all metadata needed for downloading articles.
type downloadPostsMetadata struct {
	// category indicates the type of download (course or standalone article).
	category DownloadCategory
	// postIDs is the list of article IDs to download.
	postIDs []int64
	// postsMetadata contains article summaries mapped by article ID.
	postsMetadata map[string]*geektime.Post
	// courseID is the ID of the parent course.
	courseID string
	// courseTitle is the title of the parent course.
	courseTitle string
	// courseCollection contains the course folder structure for the download.
	courseCollection *courseCollection
}

// downloadPostRequest contains parameters for downloading a single article.
type downloadPostRequest struct {
	// postIndex is the position of the article in the download queue.
	postIndex int64
	// postID is the unique identifier of the article.
	postID int64
	// content is the prefetched full article, nil when it still has to be fetched.
	content *geektime.Post
	// metadata contains all metadata needed for downloading.
	metadata *downloadPostsMetadata
}

func (s *ServiceImpl) downloadPosts(ctx context.Context, metadata *downloadPostsMetadata) {
	maxConcurrent := s.cfg.MaxConcurrentDownloads

	// Sequential download (default behavior when maxConcurrent == 1).
	if maxConcurrent == 1 {
		s.downloadPostsSequentially(ctx, metadata)

		return
	}

	// Concurrent downloads with worker pool pattern.
	s.downloadPostsConcurrently(ctx, metadata, maxConcurrent)
}

// executePostDownload creates a download request and executes the article download.
// This is the common logic shared between sequential and concurrent downloads.
func (s *ServiceImpl) executePostDownload(
	ctx context.Context,
	postIndex int,
	postID int64,
	metadata *downloadPostsMetadata,
) {
	request := &downloadPostRequest{
		// Article numbers start at 1 for user-facing numbering.
		postIndex: int64(postIndex) + 1,
		postID:    postID,
		content:   nil,
		metadata:  metadata,
	}

	s.downloadPost(ctx, request)

	// Add a random pause between downloads to avoid rate limiting.
	utils.RandomPause(0, s.cfg.ParsedMaxDownloadPause)
}

// downloadPostsSequentially downloads articles one by one (original behavior).
func (s *ServiceImpl) downloadPostsSequentially(ctx context.Context, metadata *downloadPostsMetadata) {
	for i, postID := range metadata.postIDs {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.executePostDownload(ctx, i, postID, metadata)
	}
}

// downloadPostsConcurrently downloads articles using a worker pool for concurrent execution.
func (s *ServiceImpl) downloadPostsConcurrently(
	ctx context.Context,
	metadata *downloadPostsMetadata,
	maxConcurrent int64,
) {
	// Create a semaphore channel to limit concurrent downloads.
	semaphore := make(chan struct{}, maxConcurrent)

	var waitGroup sync.WaitGroup

	// Process each article in a separate goroutine.
	for index, postID := range metadata.postIDs {
		// Check if context was canceled (CTRL+C pressed) - stop queueing new downloads.
		select {
		case <-ctx.Done():
			goto waitForCompletion
		default:
		}

		waitGroup.Add(1)

		go func(postIndex int, currentPostID int64) {
			defer waitGroup.Done()

			// Acquire semaphore slot (blocks if all workers are busy).
			semaphore <- struct{}{}

			defer func() {
				// Release semaphore slot when done.
				<-semaphore
			}()

			// Execute the article download with common logic.
			s.executePostDownload(ctx, postIndex, currentPostID, metadata)
		}(index, postID)
	}

waitForCompletion:
	// Wait for all in-flight downloads to complete.
	waitGroup.Wait()
}

//nolint:funlen,gocognit,cyclop // Function orchestrates complex download workflow with multiple sequential steps.
func (s *ServiceImpl) downloadPost(
	ctx context.Context,
	req *downloadPostRequest,
) {
	metadata := req.metadata
	// Retrieve the article summary.
	postIDString := strconv.FormatInt(req.postID, 10)

	post, ok := metadata.postsMetadata[postIDString]
	if !ok || post == nil {
		err := fmt.Errorf("article with ID '%s': %w", postIDString, ErrArticleMetadataNotFound)
		logger.Errorf(ctx, "Article with ID '%s' is not found", postIDString)
		s.recordError(&ErrorContext{
			Category:       DownloadCategoryArticle,
			ItemID:         postIDString,
			ItemTitle:      "Unknown Article",
			Phase:          "fetching metadata",
			ParentCategory: metadata.category,
			ParentID:       metadata.courseID,
			ParentTitle:    metadata.courseTitle,
		}, err)

		return
	}

	// Fetch the full article unless the caller already did.
	content := req.content
	if content == nil {
		var err error

		content, err = s.gtClient.GetPostContent(ctx, req.postID)
		if err != nil {
			// Don't log context cancellation - it's expected when user presses CTRL+C.
			if !errors.Is(err, context.Canceled) {
				logger.Errorf(ctx, "Failed to get article content: %v", err)
			}

			s.incrementArticleFailed()
			s.recordError(&ErrorContext{
				Category:       DownloadCategoryArticle,
				ItemID:         postIDString,
				ItemTitle:      post.Title,
				Phase:          "fetching article content",
				ParentCategory: metadata.category,
				ParentID:       metadata.courseID,
				ParentTitle:    metadata.courseTitle,
			}, err)

			return
		}
	}

	// If separate articles are being downloaded, we must create folders for their courses.
	collection := metadata.courseCollection
	if collection == nil {
		collection = s.getOrRegisterCourseCollection(ctx, content.CID)
	}

	// If the course folder is not available, return.
	if collection == nil {
		logger.Errorf(ctx, "Course folder wasn't found for article with ID '%s'", postIDString)
		s.incrementArticleFailed()
		s.recordError(&ErrorContext{
			Category:       DownloadCategoryArticle,
			ItemID:         postIDString,
			ItemTitle:      post.Title,
			Phase:          "preparing course folder",
			ParentCategory: metadata.category,
			ParentID:       metadata.courseID,
			ParentTitle:    metadata.courseTitle,
		}, ErrCourseFolderFailed)

		return
	}

	// Determine the article's position in the course.
	postNumber := findPostNumber(collection, req.postID)
	if postNumber == 0 {
		// Fall back to the queue position when the article list doesn't mention the article.
		postNumber = req.postIndex
	}

	// Generate the article filename with the proper extension.
	postTags := s.fillPostTagsForTemplating(postNumber, content, collection)
	postFilename := s.templateManager.GetArticleFilename(ctx, postTags)
	postFilename = utils.SetFileExtension(utils.SanitizeFilename(postFilename), constants.ExtensionHTML, true)
	postPath := filepath.Join(collection.postsPath, postFilename)

	logger.Infof(
		ctx,
		"Downloading article %d of %d: %s",
		req.postIndex,
		collection.postsCount,
		post.Title)

	// Check if the article file already exists.
	// An existing article also keeps its audio and comments untouched.
	if !s.cfg.ReplaceExisting {
		if exists, err := utils.IsFileExist(postPath); err == nil && exists {
			logger.Infof(ctx, "Article '%s' already exists, skipping download", postPath)
			s.incrementArticleSkipped()

			return
		}
	}

	document := renderHTMLDocument(content.Title, content.Content)

	_, err := s.writeTextFile(ctx, document, postPath, true)
	if err != nil {
		logger.Errorf(ctx, "Failed to save article: %v", err)
		s.incrementArticleFailed()
		s.recordError(&ErrorContext{
			Category:       DownloadCategoryArticle,
			ItemID:         postIDString,
			ItemTitle:      post.Title,
			Phase:          "saving article",
			ParentCategory: metadata.category,
			ParentID:       metadata.courseID,
			ParentTitle:    metadata.courseTitle,
		}, err)

		return
	}

	s.incrementArticleDownloaded(int64(len(document)))

	// Base error context for the companion downloads, each phase fills its own copy.
	errCtx := &ErrorContext{
		Category:       DownloadCategoryArticle,
		ItemID:         postIDString,
		ItemTitle:      post.Title,
		Phase:          "",
		ParentCategory: metadata.category,
		ParentID:       metadata.courseID,
		ParentTitle:    metadata.courseTitle,
	}

	// Download the narration audio and the comment thread alongside the article.
	s.downloadPostAudio(ctx, content, postFilename, postTags, collection, errCtx)
	s.downloadPostComments(ctx, req.postID, postFilename, collection, errCtx)
}

//nolint:cyclop // Each audio finalization step needs its own error handling.
func (s *ServiceImpl) downloadPostAudio(
	ctx context.Context,
	content *geektime.Post,
	postFilename string,
	postTags map[string]string,
	collection *courseCollection,
	errCtx *ErrorContext,
) {
	if !s.cfg.DownloadAudio {
		return
	}

	// Not every article has a narration track.
	audioURL := strings.TrimSpace(content.AudioDownloadURL)
	if audioURL == "" {
		return
	}

	audioFilename := utils.SetFileExtension(postFilename, constants.ExtensionMP3, true)
	audioPath := filepath.Join(collection.postsPath, audioFilename)

	result, err := s.downloadAndSaveAudio(ctx, audioURL, audioPath)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to download narration audio: %v", err)
		}

		phaseCtx := *errCtx
		phaseCtx.Phase = "downloading audio"
		s.recordError(&phaseCtx, err)

		return
	}

	if result.IsExist {
		s.incrementAudioSkipped()

		return
	}

	// Write metadata tags to the .part file BEFORE renaming for atomic operation.
	writeTagsRequest := &WriteTagsRequest{
		AudioPath:       result.TempPath, // Write to .part file.
		CoverPath:       collection.coverPath,
		AudioTags:       postTags,
		IsCoverEmbedded: true,
	}

	err = s.tagProcessor.WriteTags(ctx, writeTagsRequest)
	if err != nil {
		logger.Errorf(ctx, "Failed to write audio tags: %v", err)

		phaseCtx := *errCtx
		phaseCtx.Phase = "writing metadata tags"
		s.recordError(&phaseCtx, err)

		// Clean up .part file on tagging failure.
		_ = os.Remove(result.TempPath)

		return
	}

	// Atomically rename .part file to final name.
	// At this point, the file has complete audio data AND metadata tags.
	if err = os.Rename(result.TempPath, audioPath); err != nil {
		logger.Errorf(ctx, "Failed to finalize audio file: %v", err)

		phaseCtx := *errCtx
		phaseCtx.Phase = "renaming temporary file"
		s.recordError(&phaseCtx, err)

		// Clean up .part file on rename failure.
		_ = os.Remove(result.TempPath)

		return
	}

	s.incrementAudioDownloaded(result.BytesDownloaded)
}

func (s *ServiceImpl) downloadPostComments(
	ctx context.Context,
	postID int64,
	postFilename string,
	collection *courseCollection,
	errCtx *ErrorContext,
) {
	if !s.cfg.DownloadComments {
		return
	}

	commentsFilename := utils.SetFileExtension(postFilename, commentsFileExtension, true)
	commentsPath := filepath.Join(collection.postsPath, commentsFilename)

	// Check if the comments file already exists.
	if !s.cfg.ReplaceExisting {
		if exists, err := utils.IsFileExist(commentsPath); err == nil && exists {
			logger.Infof(ctx, "Comments '%s' already exist, skipping download", commentsPath)

			return
		}
	}

	pages, err := s.gtClient.GetPostComments(ctx, postID)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to get comments: %v", err)
		}

		phaseCtx := *errCtx
		phaseCtx.Phase = "fetching comments"
		s.recordError(&phaseCtx, err)

		return
	}

	if len(pages) == 0 {
		logger.Info(ctx, "Article has no comments")

		return
	}

	// Keep the page structure so readers can tell the fetch order apart.
	encoded, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		logger.Errorf(ctx, "Failed to encode comments: %v", err)

		phaseCtx := *errCtx
		phaseCtx.Phase = "encoding comments"
		s.recordError(&phaseCtx, err)

		return
	}

	_, err = s.writeTextFile(ctx, string(encoded), commentsPath, true)
	if err != nil {
		logger.Errorf(ctx, "Failed to save comments: %v", err)

		phaseCtx := *errCtx
		phaseCtx.Phase = "saving comments"
		s.recordError(&phaseCtx, err)

		return
	}

	s.incrementCommentThreadDownloaded()
	logger.Infof(ctx, "Comments saved to file: %s", commentsPath)
}

func (s *ServiceImpl) fillPostTagsForTemplating(
	postNumber int64,
	content *geektime.Post,
	collection *courseCollection,
) map[string]string {
	// Initialize the result map with course tags first.
	result := make(map[string]string, len(collection.tags))
	maps.Copy(result, collection.tags)

	publishTime := time.Unix(content.PublishTime, 0)

	// Apply article-specific tags.
	result["articleID"] = strconv.FormatInt(content.ID, 10)
	result["articleNumber"] = strconv.FormatInt(postNumber, 10)
	result["articleNumberPad"] = fmt.Sprintf("%0*d", articleNumberPaddingWidth, postNumber)
	result["articleTitle"] = content.Title
	result["publishDate"] = publishTime.Format("2006-01-02")
	result["publishYear"] = publishTime.Format("2006")

	if summary := strings.TrimSpace(content.Summary); summary != "" {
		result["articleSummary"] = summary
	}

	return result
}

// findPostNumber returns the 1-based position of an article in its course,
// or 0 when the article list doesn't mention the article.
func findPostNumber(collection *courseCollection, postID int64) int64 {
	for index, id := range collection.postIDs {
		if id == postID {
			return int64(index) + 1
		}
	}

	return 0
}

// downloadArticleItems handles the download of standalone articles.
// Articles are placed into their course folder, registering the course on first use.
func (s *ServiceImpl) downloadArticleItems(ctx context.Context, items []*DownloadItem) {
	logger.Info(ctx, "Downloading standalone articles")

	for index, item := range items {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.downloadStandaloneArticle(ctx, int64(index)+1, item)

		// Add a random pause between downloads to avoid rate limiting.
		utils.RandomPause(0, s.cfg.ParsedMaxDownloadPause)
	}
}

func (s *ServiceImpl) downloadStandaloneArticle(ctx context.Context, queuePosition int64, item *DownloadItem) {
	postID, err := strconv.ParseInt(item.ItemID, 10, 64)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse article ID '%s': %v", item.ItemID, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryArticle,
			ItemID:    item.ItemID,
			ItemTitle: "Unknown Article",
			ItemURL:   item.URL,
			Phase:     "parsing article ID",
		}, err)

		return
	}

	// Fetch the content up front: the response carries the course ID
	// needed to place the article next to the rest of its course.
	content, err := s.gtClient.GetPostContent(ctx, postID)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to get article content: %v", err)
		}

		s.incrementArticleFailed()
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryArticle,
			ItemID:    item.ItemID,
			ItemTitle: "Unknown Article",
			ItemURL:   item.URL,
			Phase:     "fetching article content",
		}, err)

		return
	}

	collection := s.getOrRegisterCourseCollection(ctx, content.CID)

	metadata := &downloadPostsMetadata{
		category:         DownloadCategoryArticle,
		postIDs:          []int64{postID},
		postsMetadata:    map[string]*geektime.Post{item.ItemID: content},
		courseID:         strconv.FormatInt(content.CID, 10),
		courseTitle:      "",
		courseCollection: collection,
	}

	if collection != nil {
		metadata.courseTitle = collection.title
	}

	request := &downloadPostRequest{
		postIndex: queuePosition,
		postID:    postID,
		content:   content,
		metadata:  metadata,
	}

	s.downloadPost(ctx, request)
}

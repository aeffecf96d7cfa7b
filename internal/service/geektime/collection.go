package geektime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/geektime-grabber/internal/client/geektime"
	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// collectionMetadata is the shape of the metadata file saved next to the posters.
type collectionMetadata struct {
	// Collection is the daily lesson collection introduction.
	Collection *geektime.VideoCollection `json:"collection"`
	// Videos lists the videos of the collection in API order.
	Videos []*geektime.Video `json:"videos"`
}

// downloadCollection saves a daily lesson collection: its cover art, a metadata
// file describing the videos, and a poster image per video.
// Video streams are protected by DRM, so the media itself is not fetched.
//
//nolint:funlen // Function orchestrates complex download workflow with multiple sequential steps.
func (s *ServiceImpl) downloadCollection(ctx context.Context, item *DownloadItem) {
	collectionID, err := strconv.ParseInt(item.ItemID, 10, 64)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse collection ID '%s': %v", item.ItemID, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCollection,
			ItemID:    item.ItemID,
			ItemTitle: "Unknown Collection",
			ItemURL:   item.URL,
			Phase:     "parsing collection ID",
		}, err)

		return
	}

	// Fetch the collection introduction from the API.
	collection, err := s.gtClient.GetVideoCollectionIntro(ctx, collectionID)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to get collection info for ID '%s': %v", item.ItemID, err)
		}

		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCollection,
			ItemID:    item.ItemID,
			ItemTitle: "Unknown Collection",
			ItemURL:   item.URL,
			Phase:     "fetching collection info",
		}, err)

		return
	}

	// Fetch the video list.
	videos, err := s.gtClient.GetVideoList(ctx, collectionID)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to get video list for ID '%s': %v", item.ItemID, err)
		}

		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCollection,
			ItemID:    item.ItemID,
			ItemTitle: collection.Title,
			ItemURL:   item.URL,
			Phase:     "fetching video list",
		}, err)

		return
	}

	logger.Infof(ctx, "Downloading '%s' (%d videos)", collection.Title, len(videos))

	// Generate tags for templating (e.g., folder names, filenames).
	collectionTags := s.fillCollectionTagsForTemplating(collection, int64(len(videos)))

	// Get raw template output before sanitization (might contain invalid characters).
	rawCollectionFolderName := s.templateManager.GetCourseFolderName(ctx, collectionTags)

	// Universal path handling: process both Unix and Windows separators.
	collectionFolderName := s.generateSanitizedFolderPath(ctx, "Collection", rawCollectionFolderName)

	// Create the collection folder path by joining with the base output path.
	collectionPath := filepath.Join(s.cfg.OutputPath, collectionFolderName)

	err = os.MkdirAll(collectionPath, constants.DefaultFolderPermissions)
	if err != nil {
		logger.Errorf(ctx, "Failed to create collection folder '%s': %v", collectionPath, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCollection,
			ItemID:    item.ItemID,
			ItemTitle: collection.Title,
			ItemURL:   item.URL,
			Phase:     "preparing collection folder",
		}, err)

		return
	}

	// Download the collection cover art.
	s.downloadCover(ctx, collection.Cover, collectionPath, "Collection")

	// Save the collection metadata next to the posters.
	s.saveCollectionMetadata(ctx, item, collection, videos, collectionPath)

	// Download a poster image for every video.
	for index, video := range videos {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.downloadVideoPoster(ctx, int64(index)+1, video, collection, collectionPath)

		// Add a random pause between downloads to avoid rate limiting.
		utils.RandomPause(0, s.cfg.ParsedMaxDownloadPause)
	}
}

func (s *ServiceImpl) saveCollectionMetadata(
	ctx context.Context,
	item *DownloadItem,
	collection *geektime.VideoCollection,
	videos []*geektime.Video,
	collectionPath string,
) {
	metadata := &collectionMetadata{
		Collection: collection,
		Videos:     videos,
	}

	encoded, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		logger.Errorf(ctx, "Failed to encode collection metadata: %v", err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCollection,
			ItemID:    item.ItemID,
			ItemTitle: collection.Title,
			ItemURL:   item.URL,
			Phase:     "encoding metadata",
		}, err)

		return
	}

	metadataFilename := utils.SetFileExtension(defaultMetadataBasename, constants.ExtensionJSON, false)
	metadataPath := filepath.Join(collectionPath, metadataFilename)

	skipped, err := s.writeTextFile(ctx, string(encoded), metadataPath, s.cfg.ReplaceExisting)
	if err != nil {
		logger.Errorf(ctx, "Failed to save collection metadata: %v", err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCollection,
			ItemID:    item.ItemID,
			ItemTitle: collection.Title,
			ItemURL:   item.URL,
			Phase:     "saving metadata",
		}, err)

		return
	}

	if !skipped {
		logger.Infof(ctx, "Collection metadata saved to file: %s", metadataPath)
	}
}

func (s *ServiceImpl) downloadVideoPoster(
	ctx context.Context,
	videoNumber int64,
	video *geektime.Video,
	collection *geektime.VideoCollection,
	collectionPath string,
) {
	posterURL := strings.TrimSpace(video.Cover)
	if posterURL == "" {
		return
	}

	videoTags := s.fillVideoTagsForTemplating(videoNumber, video)

	posterFilename := s.templateManager.GetVideoFilename(ctx, videoTags)
	posterFilename = utils.SetFileExtension(
		utils.SanitizeFilename(posterFilename),
		parseCoverURLExtension(posterURL),
		true)
	posterPath := filepath.Join(collectionPath, posterFilename)

	skipped, err := s.downloadAndSaveFile(ctx, posterURL, posterPath, s.cfg.ReplaceExisting)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to download video poster: %v", err)
		}

		s.recordError(&ErrorContext{
			Category:       DownloadCategoryCollection,
			ItemID:         strconv.FormatInt(video.ID, 10),
			ItemTitle:      video.Title,
			Phase:          "downloading video poster",
			ParentCategory: DownloadCategoryCollection,
			ParentID:       strconv.FormatInt(collection.ID, 10),
			ParentTitle:    collection.Title,
		}, err)

		return
	}

	if skipped {
		s.incrementCoverSkipped()
	} else {
		s.incrementCoverDownloaded()
	}
}

func (s *ServiceImpl) fillCollectionTagsForTemplating(
	collection *geektime.VideoCollection,
	videosCount int64,
) map[string]string {
	// Collections carry no author, so the folder template falls back to the brand name.
	return map[string]string{
		"articleCount":   strconv.FormatInt(videosCount, 10),
		"authorName":     defaultPublisherName,
		"courseID":       strconv.FormatInt(collection.ID, 10),
		"courseSubtitle": "",
		"courseTitle":    collection.Title,
		"courseUnit":     fmt.Sprintf("%d videos", collection.VideoCount),
		"publisher":      defaultPublisherName,
		"type":           "collection",
	}
}

func (s *ServiceImpl) fillVideoTagsForTemplating(videoNumber int64, video *geektime.Video) map[string]string {
	authorName := strings.TrimSpace(video.AuthorName)
	if authorName == "" {
		authorName = defaultPublisherName
	}

	return map[string]string{
		"authorName":     authorName,
		"videoDuration":  strconv.FormatInt(video.Duration, 10),
		"videoID":        strconv.FormatInt(video.ID, 10),
		"videoNumber":    strconv.FormatInt(videoNumber, 10),
		"videoNumberPad": fmt.Sprintf("%0*d", articleNumberPaddingWidth, videoNumber),
		"videoTitle":     video.Title,
	}
}

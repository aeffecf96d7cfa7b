package geektime

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/oshokin/geektime-grabber/internal/client/geektime"
	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
)

// Service provides methods for downloading GeekTime content from URLs.
type Service interface {
	// DownloadURLs orchestrates the full download pipeline, from URL processing to file creation.
	DownloadURLs(ctx context.Context, urls []string)
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the content download service with deduplication and metadata handling.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// gtClient is the client for interacting with GeekTime's API.
	gtClient geektime.Client
	// urlProcessor handles URL parsing and categorization.
	urlProcessor URLProcessor
	// templateManager generates filenames and folder names.
	templateManager TemplateManager
	// tagProcessor writes metadata tags to narration audio files.
	tagProcessor TagProcessor
	// courseCollections stores course folders indexed by item.
	courseCollections map[ShortDownloadItem]*courseCollection
	// courseCollectionsMutex protects concurrent access to courseCollections.
	courseCollectionsMutex *sync.Mutex
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// NewService creates a download service instance with dependency-injected components.
func NewService(
	cfg *config.Config,
	gtClient geektime.Client,
	urlProcessor URLProcessor,
	templateManager TemplateManager,
	tagProcessor TagProcessor,
) Service {
	return &ServiceImpl{
		cfg:                    cfg,
		gtClient:               gtClient,
		urlProcessor:           urlProcessor,
		templateManager:        templateManager,
		tagProcessor:           tagProcessor,
		courseCollections:      make(map[ShortDownloadItem]*courseCollection),
		courseCollectionsMutex: new(sync.Mutex),
		stats:                  new(DownloadStatistics),
		statsMutex:             new(sync.Mutex),
	}
}

// DownloadURLs orchestrates the full download pipeline, from URL processing to file creation.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, urls []string) {
	// Record start time for statistics.
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.statsMutex.Unlock()

	// Ensure the output directory exists.
	err := os.MkdirAll(s.cfg.OutputPath, constants.DefaultFolderPermissions)
	if err != nil {
		logger.Errorf(ctx, "Failed to create output path: %v", err)
		return
	}

	// Extract and categorize download items from the provided URLs.
	downloadItemsByCategories, err := s.urlProcessor.ExtractDownloadItems(ctx, urls)
	if err != nil {
		logger.Errorf(ctx, "Failed to extract items to download: %v", err)
		return
	}

	logger.Info(ctx, "Starting download process")

	// Process courses and collections first to maintain organizational structure.
	standaloneItems := s.urlProcessor.DeduplicateDownloadItems(downloadItemsByCategories.StandaloneItems)
	if len(standaloneItems) > 0 {
		s.downloadStandaloneItems(ctx, standaloneItems)
	}

	// Process individual articles after courses to reuse already registered course folders.
	if len(downloadItemsByCategories.Articles) > 0 {
		s.downloadArticleItems(ctx, downloadItemsByCategories.Articles)
	}

	logger.Info(ctx, "Download process completed")

	// Record end time for statistics.
	s.statsMutex.Lock()
	s.stats.EndTime = time.Now()
	s.statsMutex.Unlock()
}

// downloadStandaloneItems handles the download of courses and daily lesson collections.
func (s *ServiceImpl) downloadStandaloneItems(ctx context.Context, items []*DownloadItem) {
	logger.Info(ctx, "Downloading courses and collections")

	itemsCount := len(items)

	// Iterate through each item and download based on its category.
	for index, item := range items {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return
		default:
		}

		//nolint:exhaustive // All meaningful cases are explicitly handled; default covers unknown values.
		switch item.Category {
		case DownloadCategoryCourse:
			logger.Infof(ctx, "Downloading item: %v (%d / %d)", item, index+1, itemsCount)
			s.downloadCourse(ctx, item)
		case DownloadCategoryCollection:
			logger.Infof(ctx, "Downloading item: %v (%d / %d)", item, index+1, itemsCount)
			s.downloadCollection(ctx, item)
		default:
			logger.Errorf(ctx, "Unknown URL category: %d", item.Category)
		}
	}
}

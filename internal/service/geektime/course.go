package geektime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/geektime-grabber/internal/client/geektime"
	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// fetchCourseDataResponse contains course data needed to start a download.
type fetchCourseDataResponse struct {
	// course is the course introduction.
	course *geektime.Course
	// posts is the course article list in chronological order.
	posts []*geektime.Post
}

const defaultCoverExtension = constants.ExtensionJPEG

func (s *ServiceImpl) downloadCourse(ctx context.Context, item *DownloadItem) {
	courseID, err := strconv.ParseInt(item.ItemID, 10, 64)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse course ID '%s': %v", item.ItemID, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCourse,
			ItemID:    item.ItemID,
			ItemTitle: "Unknown Course",
			ItemURL:   item.URL,
			Phase:     "parsing course ID",
		}, err)

		return
	}

	// Fetch course data (introduction and article list).
	fetchCourseDataResponse, err := s.fetchCourseData(ctx, courseID)
	if err != nil {
		// Don't log context cancellation - it's expected when user presses CTRL+C.
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to fetch course data for ID '%s': %v", item.ItemID, err)
		}

		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCourse,
			ItemID:    item.ItemID,
			ItemTitle: "Unknown Course",
			ItemURL:   item.URL,
			Phase:     "fetching course metadata",
		}, err)

		return
	}

	// Generate tags for templating (e.g., folder names, filenames).
	courseTags := s.fillCourseTagsForTemplating(fetchCourseDataResponse.course, int64(len(fetchCourseDataResponse.posts)))

	// Register the course collection (create folders, download cover art, save the intro).
	courseCollection := s.registerCourseCollection(
		ctx,
		fetchCourseDataResponse.course,
		courseTags,
		fetchCourseDataResponse.posts,
		true)
	if courseCollection == nil {
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryCourse,
			ItemID:    item.ItemID,
			ItemTitle: fetchCourseDataResponse.course.Title,
			ItemURL:   item.URL,
			Phase:     "preparing course folder",
		}, ErrCourseFolderFailed)

		return
	}

	// Prepare metadata for downloading the articles.
	metadata := &downloadPostsMetadata{
		category:         DownloadCategoryCourse,
		postIDs:          courseCollection.postIDs,
		postsMetadata:    groupPostsByID(fetchCourseDataResponse.posts),
		courseID:         item.ItemID,
		courseTitle:      fetchCourseDataResponse.course.Title,
		courseCollection: courseCollection,
	}

	// Download all articles of the course.
	s.downloadPosts(ctx, metadata)
}

func (s *ServiceImpl) fetchCourseData(ctx context.Context, courseID int64) (*fetchCourseDataResponse, error) {
	// Fetch the course introduction from the API.
	course, err := s.gtClient.GetCourseIntro(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course intro: %w", err)
	}

	// Fetch the article list in chronological order.
	posts, err := s.gtClient.GetPostList(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article list: %w", err)
	}

	return &fetchCourseDataResponse{
		course: course,
		posts:  posts,
	}, nil
}

// getOrRegisterCourseCollection returns the registered folder for a course,
// fetching the course metadata and registering it on first use.
// Standalone article downloads rely on this to land next to their course.
func (s *ServiceImpl) getOrRegisterCourseCollection(ctx context.Context, courseID int64) *courseCollection {
	s.courseCollectionsMutex.Lock()

	downloadItem := ShortDownloadItem{
		Category: DownloadCategoryCourse,
		ItemID:   strconv.FormatInt(courseID, 10),
	}
	collection, exists := s.courseCollections[downloadItem]

	s.courseCollectionsMutex.Unlock()

	if exists && collection != nil {
		return collection
	}

	fetchCourseDataResponse, err := s.fetchCourseData(ctx, courseID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to fetch course data for ID '%d': %v", courseID, err)
		}

		return nil
	}

	courseTags := s.fillCourseTagsForTemplating(fetchCourseDataResponse.course, int64(len(fetchCourseDataResponse.posts)))

	return s.registerCourseCollection(ctx, fetchCourseDataResponse.course, courseTags, fetchCourseDataResponse.posts, false)
}

func (s *ServiceImpl) registerCourseCollection(
	ctx context.Context,
	course *geektime.Course,
	courseTags map[string]string,
	posts []*geektime.Post,
	isCourseDownload bool,
) *courseCollection {
	// Log the course being downloaded.
	if isCourseDownload {
		logger.Infof(
			ctx,
			"Downloading '%s - %s (%s)'",
			courseTags["courseTitle"],
			courseTags["authorName"],
			courseTags["courseUnit"])
	}

	// Get raw template output before sanitization (might contain invalid characters).
	rawCourseFolderName := s.templateManager.GetCourseFolderName(ctx, courseTags)

	// Universal path handling: process both Unix and Windows separators.
	courseFolderName := s.generateSanitizedFolderPath(ctx, "Course", rawCourseFolderName)

	// Create the course folder path by joining with the base output path.
	coursePath := filepath.Join(s.cfg.OutputPath, courseFolderName)

	err := os.MkdirAll(coursePath, constants.DefaultFolderPermissions)
	if err != nil {
		logger.Errorf(ctx, "Failed to create course folder '%s': %v", coursePath, err)

		return nil
	}

	// Download the course cover art.
	courseCoverPath := s.downloadCover(ctx, course.Cover, coursePath, "Course")

	// Save the course introduction next to the articles.
	s.saveCourseIntro(ctx, course, coursePath)

	postIDs := make([]int64, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}

	courseID := strconv.FormatInt(course.ID, 10)

	// Lock to ensure thread-safe access to courseCollections.
	s.courseCollectionsMutex.Lock()
	defer s.courseCollectionsMutex.Unlock()

	// Create and register the course collection.
	courseCollectionKey := ShortDownloadItem{
		Category: DownloadCategoryCourse,
		ItemID:   courseID,
	}
	courseCollection := &courseCollection{
		category:   DownloadCategoryCourse,
		title:      course.Title,
		tags:       courseTags,
		postsPath:  coursePath,
		coverPath:  courseCoverPath,
		postIDs:    postIDs,
		postsCount: int64(len(posts)),
	}

	s.courseCollections[courseCollectionKey] = courseCollection

	return courseCollection
}

func (s *ServiceImpl) fillCourseTagsForTemplating(course *geektime.Course, postsCount int64) map[string]string {
	return map[string]string{
		"articleCount":   strconv.FormatInt(postsCount, 10),
		"authorName":     course.AuthorName,
		"courseID":       strconv.FormatInt(course.ID, 10),
		"courseSubtitle": course.Subtitle,
		"courseTitle":    course.Title,
		"courseUnit":     course.Unit,
		"publisher":      defaultPublisherName,
		"type":           "course",
	}
}

// downloadCover downloads the cover art for courses and video collections.
func (s *ServiceImpl) downloadCover(ctx context.Context, imageURL, folderPath, itemType string) string {
	// Trim and validate the source URL.
	trimmedSourceURL := strings.TrimSpace(imageURL)
	if trimmedSourceURL == "" {
		return ""
	}

	// Determine the cover extension from the URL.
	coverExtension := parseCoverURLExtension(trimmedSourceURL)

	// Generate the cover filename and path.
	coverFilename := utils.SetFileExtension(defaultCoverBasename, coverExtension, false)
	coverPath := filepath.Join(folderPath, coverFilename)

	// Download and save the cover art.
	skipped, err := s.downloadAndSaveFile(ctx, trimmedSourceURL, coverPath, s.cfg.ReplaceExisting)
	if err != nil {
		logger.Errorf(ctx, "Failed to download %s cover: %v", itemType, err)

		return ""
	}

	if skipped {
		s.incrementCoverSkipped()
	} else {
		s.incrementCoverDownloaded()
		logger.Infof(ctx, "Successfully downloaded %s cover", itemType)
	}

	return coverPath
}

// parseCoverURLExtension extracts the image extension from a cover URL,
// falling back to .jpg when the URL carries none.
func parseCoverURLExtension(sourceURL string) string {
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return defaultCoverExtension
	}

	switch strings.ToLower(path.Ext(parsedURL.Path)) {
	case constants.ExtensionJPEG, ".jpeg":
		return constants.ExtensionJPEG
	case constants.ExtensionPNG:
		return constants.ExtensionPNG
	default:
		return defaultCoverExtension
	}
}

func (s *ServiceImpl) saveCourseIntro(ctx context.Context, course *geektime.Course, coursePath string) {
	if strings.TrimSpace(course.Intro) == "" {
		return
	}

	introDocument := renderHTMLDocument(course.Title, course.Intro)
	introFilename := utils.SetFileExtension(defaultIntroBasename, constants.ExtensionHTML, false)
	introPath := filepath.Join(coursePath, introFilename)

	skipped, err := s.writeTextFile(ctx, introDocument, introPath, s.cfg.ReplaceExisting)
	if err != nil {
		logger.Errorf(ctx, "Failed to save course intro: %v", err)

		return
	}

	if !skipped {
		logger.Infof(ctx, "Course intro saved to file: %s", introPath)
	}
}

// groupPostsByID indexes article summaries by their string ID for quick lookup.
func groupPostsByID(posts []*geektime.Post) map[string]*geektime.Post {
	result := make(map[string]*geektime.Post, len(posts))
	for _, post := range posts {
		result[strconv.FormatInt(post.ID, 10)] = post
	}

	return result
}

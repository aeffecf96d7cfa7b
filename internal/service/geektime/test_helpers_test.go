package geektime

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/geektime-grabber/internal/client/geektime"
	mock_geektime_client "github.com/oshokin/geektime-grabber/internal/client/geektime/mocks"
	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/constants"
	"github.com/oshokin/geektime-grabber/internal/logger"
)

// testDownloadSetup encapsulates common test dependencies and configuration.
type testDownloadSetup struct {
	ctrl       *gomock.Controller
	mockClient *mock_geektime_client.MockClient
	service    Service
	config     *config.Config
	tempDir    string
}

// newTestDownloadSetup creates a standard test setup with optional config overrides.
func newTestDownloadSetup(t *testing.T, configOverrides ...func(*config.Config)) *testDownloadSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockClient := mock_geektime_client.NewMockClient(ctrl)
	tempDir := t.TempDir()

	cfg := &config.Config{
		OutputPath:             tempDir,
		MaxConcurrentDownloads: 1,
		ReplaceExisting:        false,
		ParsedLogLevel:         logger.Level(),
		ParsedMaxDownloadPause: 100 * time.Millisecond,
	}

	// Apply overrides.
	for _, override := range configOverrides {
		override(cfg)
	}

	service := NewService(
		cfg,
		mockClient,
		new(mockURLProcessor),
		new(mockTemplateManager),
		new(mockTagProcessor),
	)

	return &testDownloadSetup{
		ctrl:       ctrl,
		mockClient: mockClient,
		service:    service,
		config:     cfg,
		tempDir:    tempDir,
	}
}

// cleanup releases test resources.
func (s *testDownloadSetup) cleanup() {
	s.ctrl.Finish()
}

// newTestCourseCollection creates a registered course folder rooted in dir.
func newTestCourseCollection(courseID int64, dir string, postIDs []int64) *courseCollection {
	return &courseCollection{
		category: DownloadCategoryCourse,
		title:    "Test Course",
		tags: map[string]string{
			"authorName":  "Test Author",
			"courseID":    strconv.FormatInt(courseID, 10),
			"courseTitle": "Test Course",
			"publisher":   defaultPublisherName,
		},
		postsPath:  dir,
		coverPath:  "",
		postIDs:    postIDs,
		postsCount: int64(len(postIDs)),
	}
}

// newTestPostsMetadata creates download metadata with auto-generated article summaries.
func newTestPostsMetadata(courseID int64, postIDs []int64, collection *courseCollection) *downloadPostsMetadata {
	postsMetadata := make(map[string]*geektime.Post, len(postIDs))
	for i, postID := range postIDs {
		postsMetadata[strconv.FormatInt(postID, 10)] = &geektime.Post{
			ID:    postID,
			CID:   courseID,
			Title: "Article " + strconv.Itoa(i+1),
		}
	}

	return &downloadPostsMetadata{
		category:         DownloadCategoryCourse,
		postIDs:          postIDs,
		postsMetadata:    postsMetadata,
		courseID:         strconv.FormatInt(courseID, 10),
		courseTitle:      "Test Course",
		courseCollection: collection,
	}
}

// makeTestPostContent creates a full article response for GetPostContent mocks.
func makeTestPostContent(courseID, postID int64, title string) *geektime.Post {
	return &geektime.Post{
		ID:          postID,
		CID:         courseID,
		Title:       title,
		Content:     "<p>Body of " + title + "</p>",
		PublishTime: time.Date(2023, 4, 15, 12, 0, 0, 0, time.UTC).Unix(),
	}
}

// partialReadCloser simulates a connection that drops before the body is fully read.
type partialReadCloser struct {
	io.Reader
}

// Close implements io.Closer.
func (p *partialReadCloser) Close() error {
	return nil
}

// makeFakeAudioData creates deterministic fake audio data for testing.
func makeFakeAudioData(sizeKB int) []byte {
	fakeData := make([]byte, sizeKB*1024)
	for i := range fakeData {
		fakeData[i] = byte(i % 256)
	}

	return fakeData
}

// findPartFiles finds all .part files in the given directory.
func findPartFiles(t *testing.T, dir string) []string {
	t.Helper()

	var partFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ".part" {
			partFiles = append(partFiles, path)
		}

		return nil
	})

	require.NoError(t, err, "Failed to walk directory for .part files")

	return partFiles
}

// findAudioFiles finds all audio files in the given directory.
func findAudioFiles(t *testing.T, dir string) []string {
	t.Helper()

	var audioFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == constants.ExtensionMP3 {
			audioFiles = append(audioFiles, path)
		}

		return nil
	})

	require.NoError(t, err, "Failed to walk directory for audio files")

	return audioFiles
}

// findFileWithExtension finds the first file with the specified extension and returns its path.
// Also verifies the file content matches expectedContent if provided.
func findFileWithExtension(t *testing.T, dir, ext string, expectedContent []byte) (string, bool) {
	t.Helper()

	var (
		foundPath string
		found     bool
	)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ext {
			found = true
			foundPath = path

			// Verify content if provided.
			if expectedContent != nil {
				content, readErr := os.ReadFile(path)
				require.NoError(t, readErr, "Failed to read file: %s", path)
				assert.Len(t, content, len(expectedContent),
					"File size should match expected size (no truncation)")
				assert.Equal(t, expectedContent, content,
					"File content should match source data exactly")
			}
		}

		return nil
	})

	require.NoError(t, err, "Failed to walk directory")

	return foundPath, found
}

package geektime

//go:generate $MOCKGEN -source=template_manager.go -destination=mocks/template_manager_mock.go

import (
	"bytes"
	"context"
	"html"
	"html/template"

	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
)

// TemplateManager defines the interface for managing templates used to generate filenames and folder names.
type TemplateManager interface {
	// GetCourseFolderName generates a folder name for a course or a video collection based on its tags.
	GetCourseFolderName(ctx context.Context, tags map[string]string) string

	// GetArticleFilename generates a filename for an article based on its tags.
	GetArticleFilename(ctx context.Context, articleTags map[string]string) string

	// GetVideoFilename generates a filename for a daily lesson video based on its tags.
	GetVideoFilename(ctx context.Context, videoTags map[string]string) string
}

// TemplateManagerImpl implements the TemplateManager interface.
type TemplateManagerImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// courseFolderTemplate is the template for course folder names.
	courseFolderTemplate *template.Template
	// articleFilenameTemplate is the template for article filenames.
	articleFilenameTemplate *template.Template
	// videoFilenameTemplate is the template for video filenames.
	videoFilenameTemplate *template.Template
	// defaultCourseFolderTemplate is the fallback template for course folder names.
	defaultCourseFolderTemplate *template.Template
	// defaultArticleFilenameTemplate is the fallback template for article filenames.
	defaultArticleFilenameTemplate *template.Template
	// defaultVideoFilenameTemplate is the fallback template for video filenames.
	defaultVideoFilenameTemplate *template.Template
}

// NewTemplateManager creates and returns a new instance of TemplateManagerImpl.
// It initializes templates from the configuration and falls back to default templates if parsing fails.
func NewTemplateManager(ctx context.Context, cfg *config.Config) TemplateManager {
	// Initialize default templates.
	defaultCourseFolderTemplate := template.Must(
		template.New("defaultCourseFolderTemplate").Parse(config.DefaultCourseFolderTemplate))
	defaultArticleFilenameTemplate := template.Must(
		template.New("defaultArticleFilenameTemplate").Parse(config.DefaultArticleFilenameTemplate))
	defaultVideoFilenameTemplate := template.Must(
		template.New("defaultVideoFilenameTemplate").Parse(config.DefaultVideoFilenameTemplate))

	// Parse custom templates from the configuration.
	courseFolderTemplate, err := template.New("courseFolderTemplate").Parse(cfg.CourseFolderTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse course folder template, using default: %v", err)
	}

	articleFilenameTemplate, err := template.New("articleFilenameTemplate").Parse(cfg.ArticleFilenameTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse article filename template, using default: %v", err)
	}

	videoFilenameTemplate, err := template.New("videoFilenameTemplate").Parse(cfg.VideoFilenameTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse video filename template, using default: %v", err)
	}

	return &TemplateManagerImpl{
		cfg:                            cfg,
		courseFolderTemplate:           courseFolderTemplate,
		articleFilenameTemplate:        articleFilenameTemplate,
		videoFilenameTemplate:          videoFilenameTemplate,
		defaultCourseFolderTemplate:    defaultCourseFolderTemplate,
		defaultArticleFilenameTemplate: defaultArticleFilenameTemplate,
		defaultVideoFilenameTemplate:   defaultVideoFilenameTemplate,
	}
}

// GetCourseFolderName generates a folder name for a course or a video collection based on its tags.
func (s *TemplateManagerImpl) GetCourseFolderName(ctx context.Context, tags map[string]string) string {
	return s.executeTemplate(ctx, s.courseFolderTemplate, s.defaultCourseFolderTemplate, tags)
}

// GetArticleFilename generates a filename for an article based on its tags.
func (s *TemplateManagerImpl) GetArticleFilename(ctx context.Context, articleTags map[string]string) string {
	return s.executeTemplate(ctx, s.articleFilenameTemplate, s.defaultArticleFilenameTemplate, articleTags)
}

// GetVideoFilename generates a filename for a daily lesson video based on its tags.
func (s *TemplateManagerImpl) GetVideoFilename(ctx context.Context, videoTags map[string]string) string {
	return s.executeTemplate(ctx, s.videoFilenameTemplate, s.defaultVideoFilenameTemplate, videoTags)
}

// executeTemplate renders the custom template and falls back to the default one on failure.
func (s *TemplateManagerImpl) executeTemplate(
	ctx context.Context,
	textBuilder *template.Template,
	defaultTextBuilder *template.Template,
	tags map[string]string,
) string {
	var buffer bytes.Buffer

	if textBuilder != nil {
		if err := textBuilder.Execute(&buffer, tags); err != nil {
			logger.Errorf(ctx, "Failed to execute template, using default: %v", err)

			// Fall back to the default template if execution fails.
			buffer.Reset()
			_ = defaultTextBuilder.Execute(&buffer, tags) //nolint:errcheck // Default template is always valid.
		}
	} else {
		// Use default template if custom template is nil.
		_ = defaultTextBuilder.Execute(&buffer, tags) //nolint:errcheck // Default template is always valid.
	}

	// Unescape HTML entities in the generated name.
	return html.UnescapeString(buffer.String())
}

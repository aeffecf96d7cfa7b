package geektime

//go:generate $MOCKGEN -source=tag_processor.go -destination=mocks/tag_processor_mock.go

import (
	"context"
	"errors"
	"mime"
	"os"
	"path/filepath"

	"github.com/oshokin/id3v2/v2"
)

// TagProcessor defines the interface for writing metadata tags to narration audio files.
type TagProcessor interface {
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// AudioPath is the file path of the narration audio.
	AudioPath string
	// CoverPath is the file path of the course cover image.
	CoverPath string
	// AudioTags contains metadata key-value pairs to write.
	AudioTags map[string]string
	// IsCoverEmbedded indicates whether cover art is embedded in the audio file.
	IsCoverEmbedded bool
}

// TagProcessorImpl provides the default implementation of TagProcessor.
type TagProcessorImpl struct{}

// imageMetadata contains image data and its MIME type.
type imageMetadata struct {
	// data contains the raw image bytes.
	data []byte
	// mimeType specifies the image format (e.g., "image/jpeg").
	mimeType string
}

// Static error definitions for better error handling.
var (
	// ErrEmptyAudioPath indicates that the audio file path is empty.
	ErrEmptyAudioPath = errors.New("audio path cannot be empty")
)

// NewTagProcessor creates a new TagProcessor instance.
func NewTagProcessor() TagProcessor {
	return new(TagProcessorImpl)
}

// WriteTags writes ID3v2 metadata to a narration audio file based on the provided request.
// GeekTime serves narration audio as MP3 only, so no other container is handled.
func (tp *TagProcessorImpl) WriteTags(_ context.Context, req *WriteTagsRequest) error {
	if req.AudioPath == "" {
		return ErrEmptyAudioPath
	}

	var image *imageMetadata

	// If a cover path is provided and embedding is enabled, read the cover art.
	if req.CoverPath != "" && req.IsCoverEmbedded {
		imageData, err := os.ReadFile(filepath.Clean(req.CoverPath))
		if err != nil {
			return err
		}

		// Determine the MIME type of the cover art based on its file extension.
		imageMIMEType := mime.TypeByExtension(filepath.Ext(req.CoverPath))
		image = &imageMetadata{
			data:     imageData,
			mimeType: imageMIMEType,
		}
	}

	return tp.writeMP3Tags(req, image)
}

func (tp *TagProcessorImpl) writeMP3Tags(req *WriteTagsRequest, image *imageMetadata) error {
	// Open the MP3 file for writing metadata.
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.AudioPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	// Add metadata tags to the MP3 file.
	tp.addMP3Tags(tag, req)

	// Embed the cover art into the MP3 file if provided.
	if image != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    image.mimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     image.data,
		})
	}

	// Save the updated MP3 file.
	return tag.Save()
}

func (tp *TagProcessorImpl) addMP3Tags(tag *id3v2.Tag, req *WriteTagsRequest) {
	// Set default encoding for the tags.
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Add basic metadata tags. The course becomes the album and
	// the course author becomes the artist.
	tag.SetAlbum(req.AudioTags["courseTitle"])
	tag.SetArtist(req.AudioTags["authorName"])
	tag.SetTitle(req.AudioTags["articleTitle"])
	tag.SetYear(req.AudioTags["publishYear"])

	// Add article number and total articles (e.g., "1/75").
	var (
		articleNumber = req.AudioTags["articleNumber"]
		articleCount  = req.AudioTags["articleCount"]
	)

	if articleNumber != "" && articleCount != "" {
		tag.AddTextFrame(
			tag.CommonID("Track number/Position in set"),
			tag.DefaultEncoding(),
			articleNumber+"/"+articleCount,
		)
	}

	// Add additional metadata tags.
	tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), req.AudioTags["authorName"])
	tag.AddTextFrame(tag.CommonID("Publisher"), tag.DefaultEncoding(), req.AudioTags["publisher"])
}

package drive

import "forum-geni/pkg/models"

// FolderMimeType is the MIME type Drive reports for folders
const FolderMimeType = "application/vnd.google-apps.folder"

// DisplayableImageMimeTypes are the image types shown in the gallery.
// SVG is deliberately absent.
var DisplayableImageMimeTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/heic",
	"image/heif",
}

// AllImageMimeTypes includes SVG on top of the displayable image types
var AllImageMimeTypes = append(append([]string{}, DisplayableImageMimeTypes...), "image/svg+xml")

// VideoMimeTypes are the video types shown in the gallery
var VideoMimeTypes = []string{
	"video/mp4",
	"video/quicktime",
	"video/webm",
	"video/x-msvideo",
	"video/x-matroska",
	"video/mpeg",
	"video/3gpp",
}

// DisplayableMimeTypes returns the union queried at the event level
func DisplayableMimeTypes() []string {
	out := make([]string, 0, len(DisplayableImageMimeTypes)+len(VideoMimeTypes))
	out = append(out, DisplayableImageMimeTypes...)
	return append(out, VideoMimeTypes...)
}

// ClassifyMimeType maps a MIME type to its gallery media type. The second
// result is false for anything outside both allow-lists.
func ClassifyMimeType(mimeType string) (models.MediaType, bool) {
	if contains(DisplayableImageMimeTypes, mimeType) {
		return models.MediaTypeImage, true
	}
	if contains(VideoMimeTypes, mimeType) {
		return models.MediaTypeVideo, true
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

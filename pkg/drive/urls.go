package drive

import (
	"fmt"
	"net/url"

	"forum-geni/pkg/models"
)

// DefaultThumbnailWidth is the pixel width requested from the thumbnail endpoint
const DefaultThumbnailWidth = 400

// ImageURL returns the direct view URL of an image
func ImageURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=view&id=%s", url.QueryEscape(id))
}

// VideoPreviewURL returns the embeddable preview URL of a video
func VideoPreviewURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", url.PathEscape(id))
}

// ThumbnailURL returns the thumbnail endpoint URL for the given width
func ThumbnailURL(id string, width int) string {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w%d", url.QueryEscape(id), width)
}

// DownloadURL returns the download URL of a file
func DownloadURL(id string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", url.QueryEscape(id))
}

// MediaURL picks the preview URL for videos and the view URL otherwise
func MediaURL(id string, mediaType models.MediaType) string {
	if mediaType == models.MediaTypeVideo {
		return VideoPreviewURL(id)
	}
	return ImageURL(id)
}

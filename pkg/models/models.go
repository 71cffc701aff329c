package models

import "time"

// MediaType classifies a gallery file
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// GalleryStructure is the full Year → Category → Event tree
type GalleryStructure struct {
	Years           []GalleryYear `json:"years"`
	TotalYears      int           `json:"totalYears"`
	TotalCategories int           `json:"totalCategories"`
	TotalEvents     int           `json:"totalEvents"`
	TotalMedia      int           `json:"totalMedia"`
}

// GalleryYear represents a top-level year folder
type GalleryYear struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Categories      []GalleryCategory `json:"categories"`
	CategoryCount   int               `json:"categoryCount"`
	TotalMediaCount int               `json:"totalMediaCount"`
}

// GalleryCategory represents a category folder inside a year
type GalleryCategory struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Events          []GalleryEvent `json:"events"`
	EventCount      int            `json:"eventCount"`
	TotalMediaCount int            `json:"totalMediaCount"`
}

// GalleryEvent represents an event folder holding the media files
type GalleryEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Media      []GalleryMedia `json:"media"`
	MediaCount int            `json:"mediaCount"`
}

// GalleryMedia is a displayable image or video
type GalleryMedia struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         MediaType `json:"type"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	CreatedTime  time.Time `json:"createdTime"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// GalleryMediaItem is a media file annotated with the names of its folders
type GalleryMediaItem struct {
	GalleryMedia
	Year     string `json:"year"`
	Category string `json:"category"`
	Event    string `json:"event"`
}

// MediaFilter restricts a media listing. Empty fields match everything.
type MediaFilter struct {
	Year     string `json:"year,omitempty"`
	Category string `json:"category,omitempty"`
	Event    string `json:"event,omitempty"`
}

// Matches reports whether item satisfies every non-empty field of f
func (f MediaFilter) Matches(item GalleryMediaItem) bool {
	if f.Year != "" && item.Year != f.Year {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Event != "" && item.Event != f.Event {
		return false
	}
	return true
}

// CategorySummary aggregates a category name across all years
type CategorySummary struct {
	Name       string   `json:"name"`
	Years      []string `json:"years"`
	EventCount int      `json:"eventCount"`
	MediaCount int      `json:"mediaCount"`
	CoverURL   string   `json:"coverUrl,omitempty"`
}

// NewGalleryEvent builds an event with its media count derived from media
func NewGalleryEvent(id, name string, media []GalleryMedia) GalleryEvent {
	if media == nil {
		media = []GalleryMedia{}
	}
	return GalleryEvent{
		ID:         id,
		Name:       name,
		Media:      media,
		MediaCount: len(media),
	}
}

// NewGalleryCategory builds a category with counts summed over its events
func NewGalleryCategory(id, name string, events []GalleryEvent) GalleryCategory {
	if events == nil {
		events = []GalleryEvent{}
	}
	total := 0
	for _, event := range events {
		total += event.MediaCount
	}
	return GalleryCategory{
		ID:              id,
		Name:            name,
		Events:          events,
		EventCount:      len(events),
		TotalMediaCount: total,
	}
}

// NewGalleryYear builds a year with counts summed over its categories
func NewGalleryYear(id, name string, categories []GalleryCategory) GalleryYear {
	if categories == nil {
		categories = []GalleryCategory{}
	}
	total := 0
	for _, category := range categories {
		total += category.TotalMediaCount
	}
	return GalleryYear{
		ID:              id,
		Name:            name,
		Categories:      categories,
		CategoryCount:   len(categories),
		TotalMediaCount: total,
	}
}

// NewGalleryStructure builds the root aggregate with totals summed over years
func NewGalleryStructure(years []GalleryYear) GalleryStructure {
	if years == nil {
		years = []GalleryYear{}
	}
	s := GalleryStructure{Years: years, TotalYears: len(years)}
	for _, year := range years {
		s.TotalCategories += year.CategoryCount
		s.TotalMedia += year.TotalMediaCount
		for _, category := range year.Categories {
			s.TotalEvents += category.EventCount
		}
	}
	return s
}

// Flatten lists every media file of the structure with its folder names,
// in tree order.
func (s GalleryStructure) Flatten() []GalleryMediaItem {
	items := make([]GalleryMediaItem, 0, s.TotalMedia)
	for _, year := range s.Years {
		for _, category := range year.Categories {
			for _, event := range category.Events {
				for _, media := range event.Media {
					items = append(items, GalleryMediaItem{
						GalleryMedia: media,
						Year:         year.Name,
						Category:     category.Name,
						Event:        event.Name,
					})
				}
			}
		}
	}
	return items
}

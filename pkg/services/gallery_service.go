package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
	"unicode"

	"go.uber.org/zap"

	"forum-geni/pkg/cache"
	"forum-geni/pkg/drive"
	"forum-geni/pkg/metrics"
	"forum-geni/pkg/models"
)

// Cache tags. Each tag is also the key its entry is stored under.
const (
	StructureCacheKey = "gallery-structure"
	MediaCacheKey     = "gallery-media"
)

// AllTags lists every gallery cache tag
var AllTags = []string{StructureCacheKey, MediaCacheKey}

const (
	// DefaultBatchSize caps the concurrent Drive listings per tree level
	DefaultBatchSize = 5
	// DefaultCacheTTL is how long a built gallery stays valid
	DefaultCacheTTL = time.Hour
)

// ErrFetchGallery is returned when the gallery tree cannot be built at all
var ErrFetchGallery = errors.New("failed to fetch gallery structure")

// ErrUnknownTag is returned when invalidating a tag that is not a gallery tag
var ErrUnknownTag = errors.New("unknown cache tag")

// Options tune the gallery service
type Options struct {
	BatchSize      int
	CacheTTL       time.Duration
	ThumbnailWidth int
	Logger         *zap.Logger
}

// Service builds and caches the gallery read models
type Service struct {
	drive  drive.Client
	cache  cache.Store
	opts   Options
	logger *zap.Logger
}

// NewService wires the gallery service to a Drive client and a cache store
func NewService(client drive.Client, store cache.Store, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = drive.DefaultThumbnailWidth
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		drive:  client,
		cache:  store,
		opts:   opts,
		logger: logger,
	}
}

// GetGalleryStructure returns the Year → Category → Event tree under rootID.
// Only one root is cached at a time.
func (s *Service) GetGalleryStructure(ctx context.Context, rootID string) (models.GalleryStructure, error) {
	structure, err := cache.GetOrCompute(ctx, s.cache, StructureCacheKey, s.opts.CacheTTL, func(ctx context.Context) (models.GalleryStructure, error) {
		return s.buildStructure(ctx, rootID)
	})
	if err != nil && !errors.Is(err, ErrFetchGallery) {
		return structure, fmt.Errorf("%w: %w", ErrFetchGallery, err)
	}
	return structure, err
}

// GetAllGalleryMedia returns every media file with its year, category and
// event names
func (s *Service) GetAllGalleryMedia(ctx context.Context, rootID string) ([]models.GalleryMediaItem, error) {
	return cache.GetOrCompute(ctx, s.cache, MediaCacheKey, s.opts.CacheTTL, func(ctx context.Context) ([]models.GalleryMediaItem, error) {
		structure, err := s.GetGalleryStructure(ctx, rootID)
		if err != nil {
			return nil, err
		}
		return structure.Flatten(), nil
	})
}

// GetFilteredGalleryMedia returns the media matching filter
func (s *Service) GetFilteredGalleryMedia(ctx context.Context, rootID string, filter models.MediaFilter) ([]models.GalleryMediaItem, error) {
	items, err := s.GetAllGalleryMedia(ctx, rootID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.GalleryMediaItem, 0, len(items))
	for _, item := range items {
		if filter.Matches(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GetCategorySummaries groups categories by name across years, in natural
// name order
func (s *Service) GetCategorySummaries(ctx context.Context, rootID string) ([]models.CategorySummary, error) {
	structure, err := s.GetGalleryStructure(ctx, rootID)
	if err != nil {
		return nil, err
	}
	return summarizeCategories(structure), nil
}

// Refresh rebuilds the gallery from Drive without reading the cache and
// replaces both cache entries
func (s *Service) Refresh(ctx context.Context, rootID string) (models.GalleryStructure, error) {
	structure, err := s.buildStructure(ctx, rootID)
	if err != nil {
		return models.GalleryStructure{}, err
	}

	if err := cache.Put(ctx, s.cache, StructureCacheKey, structure, s.opts.CacheTTL); err != nil {
		return structure, err
	}
	if err := cache.Put(ctx, s.cache, MediaCacheKey, structure.Flatten(), s.opts.CacheTTL); err != nil {
		return structure, err
	}
	return structure, nil
}

// Invalidate drops the given cache tags, or every gallery tag when none is
// given, and returns the tags dropped
func (s *Service) Invalidate(ctx context.Context, tags ...string) ([]string, error) {
	if len(tags) == 0 {
		tags = AllTags
	}
	for _, tag := range tags {
		if !isGalleryTag(tag) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
		}
	}

	if err := s.cache.Delete(ctx, tags...); err != nil {
		return nil, fmt.Errorf("invalidate %v: %w", tags, err)
	}
	s.logger.Info("gallery cache invalidated", zap.Strings("tags", tags), zap.String("backend", s.cache.Name()))
	return tags, nil
}

// CheckRoot verifies that rootID is a folder Drive lets us read
func (s *Service) CheckRoot(ctx context.Context, rootID string) error {
	f, err := s.drive.GetFile(ctx, rootID)
	if err != nil {
		return err
	}
	if f.MimeType != drive.FolderMimeType {
		return fmt.Errorf("%s is not a folder (%s)", rootID, f.MimeType)
	}
	return nil
}

func isGalleryTag(tag string) bool {
	for _, t := range AllTags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s *Service) buildStructure(ctx context.Context, rootID string) (models.GalleryStructure, error) {
	if rootID == "" {
		return models.GalleryStructure{}, fmt.Errorf("%w: root folder id is empty", ErrFetchGallery)
	}

	started := time.Now()
	defer metrics.ObserveBuild(started)

	structure, err := s.walkGallery(ctx, rootID)
	if err != nil {
		s.logger.Error("gallery build failed", zap.String("root", rootID), zap.Error(err))
		return models.GalleryStructure{}, fmt.Errorf("%w: %w", ErrFetchGallery, err)
	}

	s.logger.Info("gallery structure built",
		zap.String("root", rootID),
		zap.Int("years", structure.TotalYears),
		zap.Int("categories", structure.TotalCategories),
		zap.Int("events", structure.TotalEvents),
		zap.Int("media", structure.TotalMedia),
		zap.Duration("took", time.Since(started)),
	)
	return structure, nil
}

func summarizeCategories(structure models.GalleryStructure) []models.CategorySummary {
	byName := make(map[string]*models.CategorySummary)
	order := make([]string, 0)

	for _, year := range structure.Years {
		for _, category := range year.Categories {
			summary, exists := byName[category.Name]
			if !exists {
				summary = &models.CategorySummary{Name: category.Name, Years: []string{}}
				byName[category.Name] = summary
				order = append(order, category.Name)
			}
			summary.Years = append(summary.Years, year.Name)
			summary.EventCount += category.EventCount
			summary.MediaCount += category.TotalMediaCount
			if summary.CoverURL == "" {
				summary.CoverURL = firstThumbnail(category)
			}
		}
	}

	summaries := make([]models.CategorySummary, 0, len(order))
	for _, name := range order {
		summaries = append(summaries, *byName[name])
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return naturalLess(summaries[i].Name, summaries[j].Name)
	})
	return summaries
}

func firstThumbnail(category models.GalleryCategory) string {
	for _, event := range category.Events {
		for _, media := range event.Media {
			if media.Type == models.MediaTypeImage {
				return media.ThumbnailURL
			}
		}
	}
	return ""
}

// naturalLess compares strings in a way that treats numbers as numbers rather than characters
// For example: "file2" < "file10" when using naturalLess
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		for i < len(s1) && unicode.IsSpace(rune(s1[i])) {
			i++
		}
		for j < len(s2) && unicode.IsSpace(rune(s2[j])) {
			j++
		}
		if i >= len(s1) || j >= len(s2) {
			break
		}

		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			startI, startJ := i, j
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}
			n1, _ := strconv.Atoi(s1[startI:i])
			n2, _ := strconv.Atoi(s2[startJ:j])
			if n1 != n2 {
				return n1 < n2
			}
		} else {
			if s1[i] != s2[j] {
				return s1[i] < s2[j]
			}
			i++
			j++
		}
	}

	return len(s1)-i < len(s2)-j
}

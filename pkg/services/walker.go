package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"forum-geni/pkg/drive"
	"forum-geni/pkg/models"
)

// Folder levels below the gallery root. Media files only live at eventLevel.
const (
	yearLevel = iota + 1
	categoryLevel
	eventLevel
)

// folderNode is one walked folder: child folders above eventLevel, media at it
type folderNode struct {
	folder   drive.Folder
	children []folderNode
	media    []models.GalleryMedia
}

// walkGallery lists the years under rootID and walks each of them. A failure
// to list the root itself is returned; deeper failures only empty the
// affected folder.
func (s *Service) walkGallery(ctx context.Context, rootID string) (models.GalleryStructure, error) {
	years, err := s.drive.ListFolders(ctx, rootID)
	if err != nil {
		return models.GalleryStructure{}, err
	}

	nodes, err := s.walkChildren(ctx, years, yearLevel)
	if err != nil {
		return models.GalleryStructure{}, err
	}
	return assemble(nodes), nil
}

func (s *Service) walkChildren(ctx context.Context, folders []drive.Folder, depth int) ([]folderNode, error) {
	nodes := make([]folderNode, len(folders))
	err := forEachBatch(ctx, len(folders), s.opts.BatchSize, func(ctx context.Context, i int) error {
		node, err := s.walk(ctx, folders[i], depth)
		nodes[i] = node
		return err
	})
	return nodes, err
}

func (s *Service) walk(ctx context.Context, folder drive.Folder, depth int) (folderNode, error) {
	node := folderNode{folder: folder}

	if depth == eventLevel {
		media, err := s.listMedia(ctx, folder)
		node.media = media
		return node, err
	}

	children, err := s.listFolders(ctx, folder)
	if err != nil {
		return node, err
	}
	node.children, err = s.walkChildren(ctx, children, depth+1)
	return node, err
}

// listFolders degrades a listing failure to no children. Only cancellation
// of ctx is returned.
func (s *Service) listFolders(ctx context.Context, folder drive.Folder) ([]drive.Folder, error) {
	folders, err := s.drive.ListFolders(ctx, folder.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("listing folder failed, skipping its children",
			zap.String("folder", folder.Name), zap.String("id", folder.ID), zap.Error(err))
		return nil, nil
	}
	return folders, nil
}

// listMedia lists the displayable files of an event folder. Files outside the
// image and video allow-lists are dropped here.
func (s *Service) listMedia(ctx context.Context, folder drive.Folder) ([]models.GalleryMedia, error) {
	files, err := s.drive.ListFiles(ctx, folder.ID, drive.DisplayableMimeTypes())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("listing event media failed, showing it empty",
			zap.String("event", folder.Name), zap.String("id", folder.ID), zap.Error(err))
		return nil, nil
	}

	media := make([]models.GalleryMedia, 0, len(files))
	for _, f := range files {
		mediaType, ok := drive.ClassifyMimeType(f.MimeType)
		if !ok {
			continue
		}
		media = append(media, models.GalleryMedia{
			ID:           f.ID,
			Name:         f.Name,
			Type:         mediaType,
			URL:          drive.MediaURL(f.ID, mediaType),
			ThumbnailURL: drive.ThumbnailURL(f.ID, s.opts.ThumbnailWidth),
			MimeType:     f.MimeType,
			Size:         f.Size,
			CreatedTime:  f.CreatedTime,
			ModifiedTime: f.ModifiedTime,
		})
	}
	return media, nil
}

// forEachBatch runs fn for indexes [0, n) in consecutive batches of size.
// Items of a batch run concurrently; a batch finishes before the next starts.
func forEachBatch(ctx context.Context, n, size int, fn func(ctx context.Context, i int) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < n; start += size {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+size, n)
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				return fn(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// assemble converts walked year nodes into the gallery aggregate
func assemble(years []folderNode) models.GalleryStructure {
	out := make([]models.GalleryYear, 0, len(years))
	for _, y := range years {
		categories := make([]models.GalleryCategory, 0, len(y.children))
		for _, c := range y.children {
			events := make([]models.GalleryEvent, 0, len(c.children))
			for _, e := range c.children {
				events = append(events, models.NewGalleryEvent(e.folder.ID, e.folder.Name, e.media))
			}
			categories = append(categories, models.NewGalleryCategory(c.folder.ID, c.folder.Name, events))
		}
		out = append(out, models.NewGalleryYear(y.folder.ID, y.folder.Name, categories))
	}
	return models.NewGalleryStructure(out)
}

// Package drive lists the gallery folders and media files stored in Google
// Drive.
package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"forum-geni/pkg/metrics"
)

// MaxFilesPageSize bounds a media listing to a single page
const MaxFilesPageSize = 1000

// Folder is a child folder of a gallery folder
type Folder struct {
	ID   string
	Name string
}

// File is the metadata of a Drive file
type File struct {
	ID            string
	Name          string
	MimeType      string
	Size          int64
	CreatedTime   time.Time
	ModifiedTime  time.Time
	ThumbnailLink string
}

// Client is the subset of the Drive API the gallery needs
type Client interface {
	// ListFolders returns the non-trashed child folders of parentID sorted by name, descending
	ListFolders(ctx context.Context, parentID string) ([]Folder, error)
	// ListFiles returns the non-trashed child files of parentID with one of the
	// given MIME types, newest first
	ListFiles(ctx context.Context, parentID string, mimeTypes []string) ([]File, error)
	// GetFile returns the metadata of a single file or folder
	GetFile(ctx context.Context, id string) (File, error)
}

// Options tune the Google client
type Options struct {
	// RateLimit caps requests per second; zero disables pacing
	RateLimit float64
	Logger    *zap.Logger
}

// GoogleClient implements Client on top of the Drive v3 API
type GoogleClient struct {
	files   *gdrive.FilesService
	limiter *rate.Limiter
	logger  *zap.Logger
}

const fileFields = "id, name, mimeType, size, createdTime, modifiedTime, thumbnailLink"

// NewGoogleClient creates a read-only Drive client from service account key JSON
func NewGoogleClient(ctx context.Context, credentials []byte, opts Options) (*GoogleClient, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(gdrive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return newGoogleClient(svc, opts), nil
}

func newGoogleClient(svc *gdrive.Service, opts Options) *GoogleClient {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &GoogleClient{files: svc.Files, logger: logger}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

func (c *GoogleClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// ListFolders implements Client
func (c *GoogleClient) ListFolders(ctx context.Context, parentID string) ([]Folder, error) {
	q := fmt.Sprintf("%s and mimeType = '%s' and trashed = false", parentClause(parentID), FolderMimeType)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var folders []Folder
	call := c.files.List().
		Q(q).
		OrderBy("name desc").
		PageSize(MaxFilesPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields(googleapi.Field("nextPageToken, files(id, name)"))

	err := call.Pages(ctx, func(page *gdrive.FileList) error {
		for _, f := range page.Files {
			folders = append(folders, Folder{ID: f.Id, Name: f.Name})
		}
		// every further page is another request
		if page.NextPageToken != "" {
			return c.wait(ctx)
		}
		return nil
	})
	metrics.ObserveDriveRequest("list_folders", err)
	if err != nil {
		return nil, fmt.Errorf("list folders of %s: %w", parentID, err)
	}

	c.logger.Debug("listed folders", zap.String("parent", parentID), zap.Int("count", len(folders)))
	return folders, nil
}

// ListFiles implements Client
func (c *GoogleClient) ListFiles(ctx context.Context, parentID string, mimeTypes []string) ([]File, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	q := fmt.Sprintf("%s and (%s) and trashed = false", parentClause(parentID), mimeClause(mimeTypes))

	list, err := c.files.List().
		Context(ctx).
		Q(q).
		OrderBy("createdTime desc").
		PageSize(MaxFilesPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields(googleapi.Field("files(" + fileFields + ")")).
		Do()
	metrics.ObserveDriveRequest("list_files", err)
	if err != nil {
		return nil, fmt.Errorf("list files of %s: %w", parentID, err)
	}

	files := make([]File, 0, len(list.Files))
	for _, f := range list.Files {
		files = append(files, fromDrive(f))
	}

	c.logger.Debug("listed files", zap.String("parent", parentID), zap.Int("count", len(files)))
	return files, nil
}

// GetFile implements Client
func (c *GoogleClient) GetFile(ctx context.Context, id string) (File, error) {
	if err := c.wait(ctx); err != nil {
		return File{}, err
	}

	f, err := c.files.Get(id).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fileFields)).
		Do()
	metrics.ObserveDriveRequest("get_file", err)
	if err != nil {
		return File{}, fmt.Errorf("get file %s: %w", id, err)
	}
	return fromDrive(f), nil
}

func fromDrive(f *gdrive.File) File {
	return File{
		ID:            f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		Size:          f.Size,
		CreatedTime:   parseTime(f.CreatedTime),
		ModifiedTime:  parseTime(f.ModifiedTime),
		ThumbnailLink: f.ThumbnailLink,
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parentClause(parentID string) string {
	return fmt.Sprintf("'%s' in parents", escapeQuery(parentID))
}

func mimeClause(mimeTypes []string) string {
	parts := make([]string, 0, len(mimeTypes))
	for _, m := range mimeTypes {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", escapeQuery(m)))
	}
	return strings.Join(parts, " or ")
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

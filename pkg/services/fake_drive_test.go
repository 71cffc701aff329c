package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"forum-geni/pkg/drive"
)

// fakeDrive serves an in-memory folder tree and counts the calls it gets
type fakeDrive struct {
	folders  map[string][]drive.Folder
	files    map[string][]drive.File
	failures map[string]error
	delay    time.Duration

	listFolderCalls atomic.Int32
	listFileCalls   atomic.Int32
	inFlight        atomic.Int32
	maxInFlight     atomic.Int32
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders:  make(map[string][]drive.Folder),
		files:    make(map[string][]drive.File),
		failures: make(map[string]error),
	}
}

func (f *fakeDrive) addFolder(parent, id, name string) {
	f.folders[parent] = append(f.folders[parent], drive.Folder{ID: id, Name: name})
}

func (f *fakeDrive) addFile(parent, id, mimeType string) {
	f.files[parent] = append(f.files[parent], drive.File{
		ID:          id,
		Name:        id,
		MimeType:    mimeType,
		Size:        1024,
		CreatedTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
}

func (f *fakeDrive) fail(id string) {
	f.failures[id] = errors.New("drive: 403 rate limit exceeded")
}

func (f *fakeDrive) enter() func() {
	n := f.inFlight.Add(1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeDrive) ListFolders(ctx context.Context, parentID string) ([]drive.Folder, error) {
	f.listFolderCalls.Add(1)
	defer f.enter()()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failures[parentID]; ok {
		return nil, err
	}
	return append([]drive.Folder(nil), f.folders[parentID]...), nil
}

func (f *fakeDrive) ListFiles(ctx context.Context, parentID string, mimeTypes []string) ([]drive.File, error) {
	f.listFileCalls.Add(1)
	defer f.enter()()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failures[parentID]; ok {
		return nil, err
	}
	return append([]drive.File(nil), f.files[parentID]...), nil
}

func (f *fakeDrive) GetFile(_ context.Context, id string) (drive.File, error) {
	if err, ok := f.failures[id]; ok {
		return drive.File{}, err
	}
	if _, ok := f.folders[id]; ok {
		return drive.File{ID: id, MimeType: drive.FolderMimeType}, nil
	}
	return drive.File{}, fmt.Errorf("file %s not found", id)
}

func (f *fakeDrive) calls() int {
	return int(f.listFolderCalls.Load() + f.listFileCalls.Load())
}

// seedGallery builds:
//
//	root
//	├── 2024
//	│   ├── Culture: Concert (2 images, 1 video, 1 svg, 1 pdf), Gala (1 image)
//	│   └── Sport: Tournoi (1 video)
//	└── 2023
//	    └── Culture: Forum (2 images)
func seedGallery() *fakeDrive {
	f := newFakeDrive()

	f.addFolder("root", "y2024", "2024")
	f.addFolder("root", "y2023", "2023")

	f.addFolder("y2024", "c2024-culture", "Culture")
	f.addFolder("y2024", "c2024-sport", "Sport")
	f.addFolder("y2023", "c2023-culture", "Culture")

	f.addFolder("c2024-culture", "e-concert", "Concert")
	f.addFolder("c2024-culture", "e-gala", "Gala")
	f.addFolder("c2024-sport", "e-tournoi", "Tournoi")
	f.addFolder("c2023-culture", "e-forum", "Forum")

	f.addFile("e-concert", "img-1", "image/jpeg")
	f.addFile("e-concert", "img-2", "image/png")
	f.addFile("e-concert", "vid-1", "video/mp4")
	f.addFile("e-concert", "logo", "image/svg+xml")
	f.addFile("e-concert", "program", "application/pdf")
	f.addFile("e-gala", "img-3", "image/webp")
	f.addFile("e-tournoi", "vid-2", "video/quicktime")
	f.addFile("e-forum", "img-4", "image/jpeg")
	f.addFile("e-forum", "img-5", "image/jpeg")

	return f
}

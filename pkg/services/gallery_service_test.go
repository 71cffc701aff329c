package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-geni/pkg/cache"
	"forum-geni/pkg/models"
)

func newTestService(client *fakeDrive, opts Options) *Service {
	opts.Logger = zap.NewNop()
	return NewService(client, cache.NewMemoryStore(time.Minute), opts)
}

func findYear(t *testing.T, s models.GalleryStructure, name string) models.GalleryYear {
	t.Helper()
	for _, y := range s.Years {
		if y.Name == name {
			return y
		}
	}
	t.Fatalf("year %s not found", name)
	return models.GalleryYear{}
}

func findCategory(t *testing.T, y models.GalleryYear, name string) models.GalleryCategory {
	t.Helper()
	for _, c := range y.Categories {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %s not found in %s", name, y.Name)
	return models.GalleryCategory{}
}

func TestGetGalleryStructureBuildsTree(t *testing.T) {
	svc := newTestService(seedGallery(), Options{})

	s, err := svc.GetGalleryStructure(context.Background(), "root")
	require.NoError(t, err)

	require.Len(t, s.Years, 2)
	assert.Equal(t, "2024", s.Years[0].Name)
	assert.Equal(t, "2023", s.Years[1].Name)
	assert.Equal(t, 2, s.TotalYears)
	assert.Equal(t, 3, s.TotalCategories)
	assert.Equal(t, 4, s.TotalEvents)
	assert.Equal(t, 7, s.TotalMedia)

	culture := findCategory(t, findYear(t, s, "2024"), "Culture")
	require.Len(t, culture.Events, 2)
	assert.Equal(t, "Concert", culture.Events[0].Name)
	assert.Equal(t, 3, culture.Events[0].MediaCount)
	assert.Equal(t, 4, culture.TotalMediaCount)
}

func TestTotalsEqualSumOfChildren(t *testing.T) {
	svc := newTestService(seedGallery(), Options{})

	s, err := svc.GetGalleryStructure(context.Background(), "root")
	require.NoError(t, err)

	yearSum, categorySum, eventSum := 0, 0, 0
	for _, y := range s.Years {
		yearSum += y.TotalMediaCount
		yearCategories := 0
		for _, c := range y.Categories {
			categorySum += c.TotalMediaCount
			categoryEvents := 0
			for _, e := range c.Events {
				eventSum += len(e.Media)
				categoryEvents += len(e.Media)
				assert.Equal(t, len(e.Media), e.MediaCount)
			}
			assert.Equal(t, categoryEvents, c.TotalMediaCount)
			assert.Equal(t, len(c.Events), c.EventCount)
			yearCategories += c.TotalMediaCount
		}
		assert.Equal(t, yearCategories, y.TotalMediaCount)
		assert.Equal(t, len(y.Categories), y.CategoryCount)
	}

	assert.Equal(t, s.TotalMedia, yearSum)
	assert.Equal(t, yearSum, categorySum)
	assert.Equal(t, categorySum, eventSum)
}

func TestOnlyDisplayableMediaIsKept(t *testing.T) {
	svc := newTestService(seedGallery(), Options{ThumbnailWidth: 320})

	items, err := svc.GetAllGalleryMedia(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, items, 7)

	for _, item := range items {
		assert.NotEqual(t, "image/svg+xml", item.MimeType)
		assert.NotEqual(t, "application/pdf", item.MimeType)
		assert.Contains(t, []models.MediaType{models.MediaTypeImage, models.MediaTypeVideo}, item.Type)
		assert.Contains(t, item.ThumbnailURL, "sz=w320")

		switch item.Type {
		case models.MediaTypeVideo:
			assert.Contains(t, item.URL, "/preview")
		case models.MediaTypeImage:
			assert.Contains(t, item.URL, "export=view")
		}
	}
}

func TestGetGalleryStructureIsCached(t *testing.T) {
	client := seedGallery()
	svc := newTestService(client, Options{})
	ctx := context.Background()

	first, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)
	calls := client.calls()
	require.Positive(t, calls)

	second, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)

	assert.Equal(t, calls, client.calls())
	assert.Equal(t, first, second)
}

func TestMediaCacheReusesStructureCache(t *testing.T) {
	client := seedGallery()
	svc := newTestService(client, Options{})
	ctx := context.Background()

	_, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)
	calls := client.calls()

	_, err = svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)
	_, err = svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)

	assert.Equal(t, calls, client.calls())
}

func TestCacheExpiryTriggersRebuild(t *testing.T) {
	client := seedGallery()
	svc := newTestService(client, Options{CacheTTL: 30 * time.Millisecond})
	ctx := context.Background()

	_, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)
	calls := client.calls()

	time.Sleep(60 * time.Millisecond)
	_, err = svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)

	assert.Equal(t, 2*calls, client.calls())
}

func TestGetFilteredGalleryMedia(t *testing.T) {
	svc := newTestService(seedGallery(), Options{})
	ctx := context.Background()

	all, err := svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)

	filtered, err := svc.GetFilteredGalleryMedia(ctx, "root", models.MediaFilter{Year: "2024"})
	require.NoError(t, err)

	expected := 0
	for _, item := range all {
		if item.Year == "2024" {
			expected++
			assert.Contains(t, filtered, item)
		}
	}
	assert.Len(t, filtered, expected)
	for _, item := range filtered {
		assert.Equal(t, "2024", item.Year)
	}

	byEvent, err := svc.GetFilteredGalleryMedia(ctx, "root", models.MediaFilter{Year: "2024", Category: "Culture", Event: "Gala"})
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	assert.Equal(t, "img-3", byEvent[0].ID)

	none, err := svc.GetFilteredGalleryMedia(ctx, "root", models.MediaFilter{Year: "1999"})
	require.NoError(t, err)
	assert.Empty(t, none)

	unfiltered, err := svc.GetFilteredGalleryMedia(ctx, "root", models.MediaFilter{})
	require.NoError(t, err)
	assert.Equal(t, all, unfiltered)
}

func TestFailingEventDegradesToEmpty(t *testing.T) {
	client := seedGallery()
	client.addFolder("c2024-culture", "e-broken", "Atelier")
	client.fail("e-broken")
	svc := newTestService(client, Options{})

	s, err := svc.GetGalleryStructure(context.Background(), "root")
	require.NoError(t, err)

	culture := findCategory(t, findYear(t, s, "2024"), "Culture")
	require.Len(t, culture.Events, 3)
	assert.Equal(t, "Atelier", culture.Events[2].Name)
	assert.Equal(t, 0, culture.Events[2].MediaCount)
	assert.NotNil(t, culture.Events[2].Media)
	assert.Equal(t, 3, culture.Events[0].MediaCount)
}

func TestFailingCategoryDegradesToEmpty(t *testing.T) {
	client := seedGallery()
	client.fail("c2024-sport")
	svc := newTestService(client, Options{})

	s, err := svc.GetGalleryStructure(context.Background(), "root")
	require.NoError(t, err)

	sport := findCategory(t, findYear(t, s, "2024"), "Sport")
	assert.Equal(t, 0, sport.EventCount)
	assert.Equal(t, 6, s.TotalMedia)
}

func TestRootFailureIsSurfaced(t *testing.T) {
	client := seedGallery()
	client.fail("root")
	svc := newTestService(client, Options{})
	ctx := context.Background()

	_, err := svc.GetGalleryStructure(ctx, "root")
	require.ErrorIs(t, err, ErrFetchGallery)

	_, err = svc.GetAllGalleryMedia(ctx, "root")
	require.ErrorIs(t, err, ErrFetchGallery)

	// failures are not cached
	delete(client.failures, "root")
	s, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 7, s.TotalMedia)
}

func TestEmptyRootIDFails(t *testing.T) {
	svc := newTestService(seedGallery(), Options{})

	_, err := svc.GetGalleryStructure(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetchGallery)
}

func TestCancelledContextFailsBuild(t *testing.T) {
	svc := newTestService(seedGallery(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetGalleryStructure(ctx, "root")
	assert.True(t, errors.Is(err, ErrFetchGallery))
}

func TestCancelledCallerDoesNotFailSharedBuild(t *testing.T) {
	client := seedGallery()
	client.delay = 50 * time.Millisecond
	svc := newTestService(client, Options{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetGalleryStructure(firstCtx, "root")
		firstErr <- err
	}()
	time.Sleep(10 * time.Millisecond)

	type result struct {
		structure models.GalleryStructure
		err       error
	}
	second := make(chan result, 1)
	go func() {
		s, err := svc.GetGalleryStructure(context.Background(), "root")
		second <- result{s, err}
	}()
	time.Sleep(10 * time.Millisecond)
	cancelFirst()

	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrFetchGallery)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 7, res.structure.TotalMedia)
	assert.Equal(t, 10, client.calls())

	_, err = svc.GetGalleryStructure(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, 10, client.calls())
}

func TestBatchesBoundConcurrency(t *testing.T) {
	client := newFakeDrive()
	client.delay = 10 * time.Millisecond
	client.addFolder("root", "y", "2024")
	client.addFolder("y", "c", "Culture")
	for i := 0; i < 12; i++ {
		id := string(rune('a' + i))
		client.addFolder("c", id, "Event "+id)
		client.addFile(id, id+"-img", "image/jpeg")
	}

	svc := newTestService(client, Options{BatchSize: 4})
	s, err := svc.GetGalleryStructure(context.Background(), "root")
	require.NoError(t, err)

	assert.Equal(t, 12, s.TotalEvents)
	assert.Equal(t, 12, s.TotalMedia)
	assert.LessOrEqual(t, client.maxInFlight.Load(), int32(4))
}

func TestForEachBatchRunsBatchesInOrder(t *testing.T) {
	var finished []int
	done := make(chan int, 10)

	err := forEachBatch(context.Background(), 10, 3, func(_ context.Context, i int) error {
		done <- i
		return nil
	})
	require.NoError(t, err)
	close(done)
	for i := range done {
		finished = append(finished, i)
	}

	require.Len(t, finished, 10)
	for i, v := range finished {
		// every item of batch k completes before any item of batch k+1 starts
		assert.Equal(t, i/3, v/3)
	}
}

func TestRefreshReplacesCache(t *testing.T) {
	client := seedGallery()
	svc := newTestService(client, Options{})
	ctx := context.Background()

	_, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)
	calls := client.calls()

	client.addFile("e-gala", "img-new", "image/png")
	s, err := svc.Refresh(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 8, s.TotalMedia)
	assert.Equal(t, 2*calls, client.calls())

	cached, err := svc.GetGalleryStructure(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 8, cached.TotalMedia)

	items, err := svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)
	assert.Len(t, items, 8)
	assert.Equal(t, 2*calls, client.calls())
}

func TestInvalidate(t *testing.T) {
	client := seedGallery()
	svc := newTestService(client, Options{})
	ctx := context.Background()

	_, err := svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)
	calls := client.calls()

	tags, err := svc.Invalidate(ctx, MediaCacheKey)
	require.NoError(t, err)
	assert.Equal(t, []string{MediaCacheKey}, tags)

	_, err = svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, calls, client.calls(), "structure cache still warm")

	tags, err = svc.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, AllTags, tags)

	_, err = svc.GetAllGalleryMedia(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 2*calls, client.calls())

	_, err = svc.Invalidate(ctx, "blog-posts")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestGetCategorySummaries(t *testing.T) {
	svc := newTestService(seedGallery(), Options{})

	summaries, err := svc.GetCategorySummaries(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	culture := summaries[0]
	assert.Equal(t, "Culture", culture.Name)
	assert.Equal(t, []string{"2024", "2023"}, culture.Years)
	assert.Equal(t, 3, culture.EventCount)
	assert.Equal(t, 6, culture.MediaCount)
	assert.Contains(t, culture.CoverURL, "id=img-1")

	sport := summaries[1]
	assert.Equal(t, "Sport", sport.Name)
	assert.Equal(t, 1, sport.MediaCount)
	assert.Empty(t, sport.CoverURL)
}

func TestCheckRoot(t *testing.T) {
	client := seedGallery()
	svc := newTestService(client, Options{})

	assert.NoError(t, svc.CheckRoot(context.Background(), "root"))
	assert.Error(t, svc.CheckRoot(context.Background(), "missing"))
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("Event 2", "Event 10"))
	assert.False(t, naturalLess("Event 10", "Event 2"))
	assert.True(t, naturalLess("Culture", "Sport"))
	assert.False(t, naturalLess("same", "same"))
	assert.True(t, naturalLess("a", "ab"))
}

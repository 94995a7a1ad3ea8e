package kdgo

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/hupe1980/kdgo/resource"
	"github.com/hupe1980/kdgo/testutil"
)

func TestSearch_WithFilter(t *testing.T) {
	ix, err := New(textbookPoints())
	require.NoError(t, err)

	// Exclude (8,1) and (7,2); the next best for (9,2) is (9,6) at 16.
	skip := func(id uint32) bool { return id != 4 && id != 5 }
	res, err := ix.Search(context.Background(), NewPoint(9, 2), 1, WithFilter(skip))
	require.NoError(t, err)

	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, uint32(2), best.ID)
	assert.Equal(t, 16.0, best.SquaredDistance)
}

func TestSearch_WithAllowList(t *testing.T) {
	rng := testutil.NewRNG(4711)
	raw := rng.UniformPoints(300, 2, 0, 1)
	ix, err := New(toPoints(raw))
	require.NoError(t, err)

	allowed := roaring.New()
	var subset [][]float64
	var ids []uint32
	for i := 0; i < len(raw); i += 3 {
		allowed.Add(uint32(i))
		subset = append(subset, raw[i])
		ids = append(ids, uint32(i))
	}

	for range 20 {
		q := rng.UniformPoint(2, 0, 1)
		res, err := ix.Search(context.Background(), NewPoint(q...), 5, WithAllowList(allowed))
		require.NoError(t, err)
		require.Len(t, res.Neighbors, 5)

		want := testutil.BruteForceSearch(subset, q, 5)
		for i, n := range res.Neighbors {
			assert.True(t, allowed.Contains(n.ID))
			assert.Equal(t, want[i].Distance, n.SquaredDistance)
		}
		assert.Contains(t, ids, res.Neighbors[0].ID)
	}
}

func TestSearch_FilterRejectsAll(t *testing.T) {
	ix, err := New(textbookPoints())
	require.NoError(t, err)

	res, err := ix.Search(context.Background(), NewPoint(9, 2), 3, WithAllowList(roaring.New()))
	require.NoError(t, err)
	assert.Empty(t, res.Neighbors)
	assert.Equal(t, 6, res.Visited, "nothing accepted means nothing can be pruned")
	assert.Equal(t, 0.0, res.Distance())
}

func TestSearch_NilAllowListDisablesFilter(t *testing.T) {
	ix, err := New(textbookPoints())
	require.NoError(t, err)

	res, err := ix.Search(context.Background(), NewPoint(9, 2), 1, WithAllowList(nil))
	require.NoError(t, err)
	best, _ := res.Best()
	assert.Equal(t, uint32(4), best.ID)
}

func TestSearch_ContextCancelled(t *testing.T) {
	ix, err := New(textbookPoints())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ix.Search(ctx, NewPoint(9, 2), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_MatchesGonumKDTree(t *testing.T) {
	rng := testutil.NewRNG(99)
	raw := rng.GaussianPoints(1000, 4)

	ix, err := New(toPoints(raw))
	require.NoError(t, err)

	ref := make(kdtree.Points, len(raw))
	for i, p := range raw {
		ref[i] = kdtree.Point(p)
	}
	oracle := kdtree.New(ref, false)

	for range 25 {
		q := rng.GaussianPoints(1, 4)[0]
		const k = 7

		keeper := kdtree.NewNKeeper(k)
		oracle.NearestSet(keeper, kdtree.Point(q))
		require.Len(t, keeper.Heap, k)

		res, err := ix.Search(context.Background(), NewPoint(q...), k)
		require.NoError(t, err)

		for i, cd := range keeper.Heap {
			assert.InDelta(t, cd.Dist, res.Neighbors[i].SquaredDistance, 1e-9)
		}
	}
}

func TestBatchSearch(t *testing.T) {
	rng := testutil.NewRNG(4711)
	raw := rng.UniformPoints(2000, 3, 0, 1)
	ix, err := New(toPoints(raw), WithBatchConcurrency(4))
	require.NoError(t, err)

	queries := make([]Point[float64], 64)
	rawQueries := rng.UniformPoints(len(queries), 3, 0, 1)
	for i, q := range rawQueries {
		queries[i] = NewPoint(q...)
	}

	results, err := ix.BatchSearch(context.Background(), queries, 3)
	require.NoError(t, err)
	require.Len(t, results, len(queries))

	for i, res := range results {
		want := testutil.BruteForceSearch(raw, rawQueries[i], 3)
		require.Len(t, res.Neighbors, 3)
		for j, n := range res.Neighbors {
			assert.Equal(t, want[j].Distance, n.SquaredDistance)
		}
	}

	// Batches leave last-query diagnostics untouched.
	assert.Equal(t, 0, ix.LastVisited())
}

func TestBatchSearch_Error(t *testing.T) {
	ix, err := New(textbookPoints())
	require.NoError(t, err)

	queries := []Point[int]{NewPoint(1, 1), NewPoint(1, 1, 1)}
	_, err = ix.BatchSearch(context.Background(), queries, 1)

	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}

func TestSearch_ConcurrentQueries(t *testing.T) {
	rng := testutil.NewRNG(4711)
	raw := rng.UniformPoints(1000, 2, 0, 1)
	ix, err := New(toPoints(raw))
	require.NoError(t, err)

	queries := rng.UniformPoints(200, 2, 0, 1)
	want := make([]float64, len(queries))
	for i, q := range queries {
		want[i] = testutil.BruteForceSearch(raw, q, 4)[3].Distance
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(queries))
	got := make([]float64, len(queries))
	for i, q := range queries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ix.Search(context.Background(), NewPoint(q...), 4)
			if err != nil {
				errs <- err
				return
			}
			got[i] = res.Neighbors[3].SquaredDistance
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, want, got)
}

func TestResourceController_MemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})

	_, err := New(textbookPoints(), WithResourceController(rc))
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage(), "failed builds must not hold a reservation")
}

func TestResourceController_ReleaseOnClose(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

	ix, err := New(textbookPoints(), WithResourceController(rc))
	require.NoError(t, err)

	used := rc.MemoryUsage()
	assert.Positive(t, used)
	assert.Equal(t, used, ix.Stats().MemoryBytes)

	require.NoError(t, ix.Close())
	require.NoError(t, ix.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())

	_, _, _, err = ix.Nearest(NewPoint(1, 1), 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestResourceController_ConcurrentCloseAndStats(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	ix, err := New(textbookPoints(), WithResourceController(rc))
	require.NoError(t, err)

	reserved := ix.Stats().MemoryBytes
	require.Positive(t, reserved)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				got := ix.Stats().MemoryBytes
				assert.True(t, got == 0 || got == reserved)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, ix.Close())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(0), ix.Stats().MemoryBytes)
}

func TestResourceController_QuerySlots(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxConcurrentQueries: 1})
	ix, err := New(textbookPoints(), WithResourceController(rc))
	require.NoError(t, err)

	_, _, _, err = ix.Nearest(NewPoint(9, 2), 1)
	require.NoError(t, err)

	// Occupy the only slot; a bounded wait then fails.
	require.NoError(t, rc.AcquireQuery(t.Context()))
	defer rc.ReleaseQuery()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = ix.Search(ctx, NewPoint(9, 2), 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetricsCollector(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	ix, err := New(textbookPoints(), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, _, _, err = ix.Nearest(NewPoint(9, 2), 1)
	require.NoError(t, err)
	_, _, _, err = ix.Nearest(NewPoint(9, 2), 0)
	require.Error(t, err)
	_, err = ix.BatchSearch(context.Background(), []Point[int]{NewPoint(1, 1)}, 1)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(6), stats.BuildPoints)
	assert.Equal(t, int64(2), stats.SearchCount)
	assert.Equal(t, int64(1), stats.SearchErrors)
	assert.Equal(t, int64(3), stats.SearchAvgVisits)
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(1), stats.BatchQueries)
}

func TestMetricsCollector_BuildFailure(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	_, err := New([]Point[int]{NewPoint(1), NewPoint(1, 2)}, WithMetricsCollector(metrics))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildErrors)
	assert.Equal(t, int64(0), stats.BuildPoints)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ix, err := New(textbookPoints(), WithLogger(logger))
	require.NoError(t, err)
	_, _, _, err = ix.Nearest(NewPoint(9, 2), 1)
	require.NoError(t, err)
	_, _, _, err = ix.Nearest(NewPoint(9, 2), 0)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "build completed")
	assert.Contains(t, out, "count=6")
	assert.Contains(t, out, "search completed")
	assert.Contains(t, out, "visited=3")
	assert.Contains(t, out, "search failed")
}

func TestWithLogger_Nil(t *testing.T) {
	ix, err := New(textbookPoints(), WithLogger(nil), WithMetricsCollector(nil))
	require.NoError(t, err)
	_, _, _, err = ix.Nearest(NewPoint(9, 2), 1)
	assert.NoError(t, err)
}

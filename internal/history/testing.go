package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any Store implementation.
func RunStoreTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("Add", func(t *testing.T) {
		runAddTests(t, newStore)
	})
	t.Run("Get", func(t *testing.T) {
		runGetTests(t, newStore)
	})
	t.Run("List", func(t *testing.T) {
		runListTests(t, newStore)
	})
	t.Run("Stats", func(t *testing.T) {
		runStatsTests(t, newStore)
	})
	t.Run("Clear", func(t *testing.T) {
		runClearTests(t, newStore)
	})
	t.Run("Close", func(t *testing.T) {
		runCloseTests(t, newStore)
	})
}

func sampleEntry(route, method string, status int) Entry {
	return Entry{
		Timestamp: time.Now(),
		Route:     route,
		Method:    method,
		URL:       "http://127.0.0.1:5000" + route,
		Status:    status,
		Tone:      "success",
		Applied:   true,
	}
}

func runAddTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("adds entry and returns ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Add(context.Background(), sampleEntry("/", "GET", 200))

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("round trips all fields", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := Entry{
			Timestamp:     time.Now(),
			Route:         "/order/",
			Method:        "PUT",
			URL:           "http://127.0.0.1:5000/order/1",
			RequestBody:   `{"credit_card":{"number":"4242 4242 4242 4242"}}`,
			Seq:           7,
			Status:        202,
			Tone:          "failed",
			FailureKind:   "parse",
			FailureDetail: "response is not JSON",
			Duration:      42,
			Applied:       true,
		}

		id, err := store.Add(context.Background(), entry)
		require.NoError(t, err)

		got, err := store.Get(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, got.ID)
		assert.Equal(t, entry.Route, got.Route)
		assert.Equal(t, entry.Method, got.Method)
		assert.Equal(t, entry.URL, got.URL)
		assert.Equal(t, entry.RequestBody, got.RequestBody)
		assert.Equal(t, entry.Seq, got.Seq)
		assert.Equal(t, entry.Status, got.Status)
		assert.Equal(t, entry.Tone, got.Tone)
		assert.Equal(t, entry.FailureKind, got.FailureKind)
		assert.Equal(t, entry.FailureDetail, got.FailureDetail)
		assert.Equal(t, entry.Duration, got.Duration)
		assert.True(t, got.Applied)
		assert.True(t, got.Failed())
		assert.WithinDuration(t, entry.Timestamp, got.Timestamp, time.Millisecond)
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ids := make(map[string]bool)
		for i := 0; i < 10; i++ {
			id, err := store.Add(context.Background(), sampleEntry("/", "GET", 200))
			require.NoError(t, err)
			assert.False(t, ids[id], "Duplicate ID generated")
			ids[id] = true
		}
	})

	t.Run("keeps caller ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		e := sampleEntry("/", "GET", 200)
		e.ID = "fixed"
		id, err := store.Add(context.Background(), e)
		require.NoError(t, err)
		assert.Equal(t, "fixed", id)
	})
}

func runGetTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("returns error for non-existent entry", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(context.Background(), "non-existent-id")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns error for empty ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(context.Background(), "")

		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func runListTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("filters by route and method", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entries := []Entry{
			sampleEntry("/", "GET", 200),
			sampleEntry("/order", "POST", 200),
			sampleEntry("/order/", "GET", 404),
			sampleEntry("/order/", "PUT", 200),
			sampleEntry("/order/", "GET", 200),
		}
		for _, e := range entries {
			_, err := store.Add(context.Background(), e)
			require.NoError(t, err)
		}

		got, err := store.List(context.Background(), QueryOptions{Route: "/order/"})
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = store.List(context.Background(), QueryOptions{Route: "/order/", Method: "GET"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, e := range got {
			assert.Equal(t, "GET", e.Method)
		}

		n, err := store.Count(context.Background(), QueryOptions{Method: "GET"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("filters by status range", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		for _, status := range []int{200, 201, 400, 404, 500} {
			_, err := store.Add(context.Background(), sampleEntry("/order", "POST", status))
			require.NoError(t, err)
		}

		got, err := store.List(context.Background(), QueryOptions{StatusMin: 400, StatusMax: 499})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filters applied entries", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		stale := sampleEntry("/order/", "GET", 200)
		stale.Applied = false
		_, err := store.Add(context.Background(), stale)
		require.NoError(t, err)
		_, err = store.Add(context.Background(), sampleEntry("/order/", "GET", 404))
		require.NoError(t, err)

		got, err := store.List(context.Background(), QueryOptions{AppliedOnly: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 404, got[0].Status)
	})

	t.Run("newest first with pagination", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		base := time.Now()
		for i := 0; i < 10; i++ {
			e := sampleEntry("/", "GET", 200)
			e.Timestamp = base.Add(time.Duration(i) * time.Second)
			e.Seq = uint64(i + 1)
			_, err := store.Add(context.Background(), e)
			require.NoError(t, err)
		}

		page1, err := store.List(context.Background(), QueryOptions{Limit: 3})
		require.NoError(t, err)
		require.Len(t, page1, 3)
		assert.Equal(t, uint64(10), page1[0].Seq)
		assert.Equal(t, uint64(8), page1[2].Seq)

		page2, err := store.List(context.Background(), QueryOptions{Limit: 3, Offset: 3})
		require.NoError(t, err)
		require.Len(t, page2, 3)
		assert.Equal(t, uint64(7), page2[0].Seq)
	})

	t.Run("empty store", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		got, err := store.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func runStatsTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("summarizes calls", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entries := []Entry{
			{Tone: "success", Status: 200, Duration: 100, Applied: true},
			{Tone: "success", Status: 201, Duration: 200, Applied: true},
			{Tone: "warning", Status: 404, Duration: 60, Applied: true},
			{Tone: "failed", FailureKind: "network", Duration: 20, Applied: true},
			{Tone: "success", Status: 200, Duration: 120, Applied: false},
		}
		for i, e := range entries {
			e.Timestamp = time.Now().Add(time.Duration(i) * time.Second)
			e.Route = "/order/"
			e.Method = "GET"
			e.URL = "http://127.0.0.1:5000/order/1"
			_, err := store.Add(context.Background(), e)
			require.NoError(t, err)
		}

		stats, err := store.Stats(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(5), stats.Total)
		assert.Equal(t, int64(4), stats.Applied)
		assert.Equal(t, int64(1), stats.Discarded)
		assert.Equal(t, int64(1), stats.Failures)
		assert.Equal(t, int64(3), stats.ToneCounts["success"])
		assert.Equal(t, int64(1), stats.ToneCounts["warning"])
		assert.InDelta(t, 100.0, stats.AverageTime, 0.01)
	})

	t.Run("empty store", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		stats, err := store.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.Total)
		assert.NotNil(t, stats.ToneCounts)
	})
}

func runClearTests(t *testing.T, newStore func() (Store, func())) {
	store, cleanup := newStore()
	defer cleanup()

	for i := 0; i < 5; i++ {
		_, err := store.Add(context.Background(), sampleEntry("/", "GET", 200))
		require.NoError(t, err)
	}

	require.NoError(t, store.Clear(context.Background()))

	n, err := store.Count(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func runCloseTests(t *testing.T, newStore func() (Store, func())) {
	store, _ := newStore()
	require.NoError(t, store.Close())

	_, err := store.Add(context.Background(), sampleEntry("/", "GET", 200))
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.List(context.Background(), QueryOptions{})
	assert.ErrorIs(t, err, ErrStoreClosed)

	assert.NoError(t, store.Close())
}

// Package store holds the markers from the most recent feed fetch in memory,
// indexed by location for bounding-box queries.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// Snapshot is the result of one feed fetch.
type Snapshot struct {
	FeedURL   string
	FetchedAt time.Time
	Markers   []domain.RenderableMarker
}

// Store is a concurrency-safe holder for the current snapshot.
// It implements pipeline.BatchLoader.
type Store struct {
	feedURL string

	mu       sync.RWMutex
	snapshot *Snapshot
	index    *rtree.RTreeG[int] // values are positions in snapshot.Markers
}

// New creates an empty store for markers from feedURL.
func New(feedURL string) *Store {
	return &Store{feedURL: feedURL}
}

// LoadBatch replaces the current snapshot with markers.
func (s *Store) LoadBatch(_ context.Context, markers []domain.RenderableMarker) error {
	s.Replace(Snapshot{
		FeedURL:   s.feedURL,
		FetchedAt: domain.Now(),
		Markers:   markers,
	})
	return nil
}

// Replace swaps in a new snapshot and rebuilds the spatial index.
func (s *Store) Replace(snap Snapshot) {
	markers := slices.Clone(snap.Markers)
	slices.SortStableFunc(markers, func(a, b domain.RenderableMarker) int {
		return a.SourceIndex - b.SourceIndex
	})
	snap.Markers = markers

	index := &rtree.RTreeG[int]{}
	for i, m := range markers {
		p := [2]float64{m.Point.Lon(), m.Point.Lat()}
		index.Insert(p, p, i)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snap
	s.index = index
}

// Snapshot returns the current snapshot and whether one has been loaded.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// CheckReadiness returns nil once a snapshot has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if _, ok := s.Snapshot(); !ok {
		return errors.New("no earthquake snapshot loaded yet")
	}
	return nil
}

// Query returns markers inside bound, in source order. A nil bound returns all markers.
func (s *Store) Query(bound *orb.Bound) []domain.RenderableMarker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	if bound == nil {
		return slices.Clone(s.snapshot.Markers)
	}

	positions := make([]int, 0, 32)
	s.index.Search(
		[2]float64{bound.Min.Lon(), bound.Min.Lat()},
		[2]float64{bound.Max.Lon(), bound.Max.Lat()},
		func(_, _ [2]float64, pos int) bool {
			positions = append(positions, pos)
			return true
		},
	)
	slices.Sort(positions)

	result := make([]domain.RenderableMarker, len(positions))
	for i, pos := range positions {
		result[i] = s.snapshot.Markers[pos]
	}
	return result
}

// Package leaderboard derives the ranked top-N view of the store and
// publishes it only when the ranking actually changed.
package leaderboard

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/logging"
)

const (
	DefaultSize     = 10
	DefaultInterval = 5 * time.Minute
)

// Source is the part of the store the deriver reads.
type Source interface {
	Snapshot() []models.Work
	Changes() <-chan struct{}
}

// Entry is one ranked row. Only these fields take part in change detection.
type Entry struct {
	Rank   int
	ID     string
	Title  string
	Author string
	Likes  int
}

// Snapshot is an immutable published ranking; a new one replaces it
// wholesale.
type Snapshot struct {
	Entries    []Entry
	ComputedAt time.Time
}

type Deriver struct {
	src      Source
	log      logging.Logger
	size     int
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	published atomic.Pointer[Snapshot]
	subs      []chan struct{}
}

func New(src Source, size int, interval time.Duration, log logging.Logger) *Deriver {
	if size <= 0 {
		size = DefaultSize
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	d := &Deriver{src: src, log: log, size: size, interval: interval, now: time.Now}
	d.published.Store(&Snapshot{})
	return d
}

// Current returns the last published snapshot. It is never nil.
func (d *Deriver) Current() *Snapshot {
	return d.published.Load()
}

// Subscribe returns a channel signalled after each publish. Signals
// coalesce.
func (d *Deriver) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	d.mu.Lock()
	d.subs = append(d.subs, ch)
	d.mu.Unlock()
	return ch
}

// Rank sorts works by likes descending, keeping input order on ties, and
// keeps the first size entries.
func Rank(works []models.Work, size int) []Entry {
	ranked := make([]models.Work, len(works))
	copy(ranked, works)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].LikeCount > ranked[j].LikeCount
	})
	if len(ranked) > size {
		ranked = ranked[:size]
	}

	out := make([]Entry, 0, len(ranked))
	for i := range ranked {
		out = append(out, Entry{
			Rank:   i + 1,
			ID:     ranked[i].ID,
			Title:  ranked[i].Title,
			Author: ranked[i].Author(),
			Likes:  ranked[i].LikeCount,
		})
	}
	return out
}

func equal(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Recompute ranks the current store contents. When the ranking equals the
// published one it returns the published snapshot and false.
//
// The store is read under d.mu so concurrent calls publish in the order
// they read; an older read never replaces a newer ranking.
func (d *Deriver) Recompute() (*Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := Rank(d.src.Snapshot(), d.size)

	prev := d.published.Load()
	if equal(prev.Entries, entries) {
		return prev, false
	}

	next := &Snapshot{Entries: entries, ComputedAt: d.now()}
	d.published.Store(next)
	for _, ch := range d.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	d.log.Debug(context.Background(), "leaderboard published", "entries", len(entries))
	return next, true
}

// Run recomputes on every store change and on every tick until ctx is
// done. The ticker is stopped on return.
func (d *Deriver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.Recompute()
	changes := d.src.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			d.Recompute()
		case <-ticker.C:
			d.Recompute()
		}
	}
}

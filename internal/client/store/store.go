// Package store keeps the local mirror of server-owned works and their
// comments.
//
// Every mutation is applied under one write lock, so readers never observe
// a half-applied change. Reads hand out deep copies.
package store

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/artwall/internal/client/models"
)

// ErrWorkNotFound reports a mutation aimed at a work the store does not
// hold.
var ErrWorkNotFound = errors.New("work not in local store")

type entry struct {
	work     models.Work // Comments stays nil, the list below holds them
	comments *list.List  // of models.Comment
	byID     map[string]*list.Element
}

func newEntry(w models.Work) *entry {
	e := &entry{comments: list.New(), byID: make(map[string]*list.Element, len(w.Comments))}
	for _, c := range w.Comments {
		if _, dup := e.byID[c.ID]; dup {
			continue
		}
		c.WorkID = w.ID
		e.byID[c.ID] = e.comments.PushBack(c)
	}
	w = w.Clone()
	w.Comments = nil
	if w.LikedBy == nil {
		w.LikedBy = map[string]struct{}{}
	}
	e.work = w
	return e
}

func (e *entry) snapshot() models.Work {
	w := e.work.Clone()
	w.Comments = make([]models.Comment, 0, e.comments.Len())
	for el := e.comments.Front(); el != nil; el = el.Next() {
		w.Comments = append(w.Comments, el.Value.(models.Comment))
	}
	return w
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	order *list.List // of *entry, display order
	index map[string]*list.Element

	version atomic.Uint64
	changes chan struct{}
}

func New() *Store {
	return &Store{
		order:   list.New(),
		index:   map[string]*list.Element{},
		changes: make(chan struct{}, 1),
	}
}

// Changes fires after mutations. Notifications coalesce: a reader that
// falls behind sees one pending signal, not one per mutation.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// Version increases by one with every applied mutation.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

func (s *Store) changed() {
	s.version.Add(1)
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// LoadAll replaces the whole collection. Later duplicates of an id are
// dropped.
func (s *Store) LoadAll(works []models.Work) {
	order := list.New()
	index := make(map[string]*list.Element, len(works))
	for _, w := range works {
		if _, dup := index[w.ID]; dup {
			continue
		}
		index[w.ID] = order.PushBack(newEntry(w))
	}

	s.mu.Lock()
	s.order, s.index = order, index
	s.mu.Unlock()
	s.changed()
}

// Prepend puts w at the head. A work with the same id is replaced and moved
// to the head.
func (s *Store) Prepend(w models.Work) {
	e := newEntry(w)

	s.mu.Lock()
	if el, ok := s.index[w.ID]; ok {
		s.order.Remove(el)
	}
	s.index[w.ID] = s.order.PushFront(e)
	s.mu.Unlock()
	s.changed()
}

// PatchLike applies a like response: likes becomes the count and userID is
// added to or removed from the liker set.
func (s *Store) PatchLike(workID string, likes int, liked bool, userID string) error {
	s.mu.Lock()
	el, ok := s.index[workID]
	if !ok {
		s.mu.Unlock()
		return ErrWorkNotFound
	}
	w := &el.Value.(*entry).work
	w.LikeCount = likes
	if liked {
		w.LikedBy[userID] = struct{}{}
	} else {
		delete(w.LikedBy, userID)
	}
	s.mu.Unlock()
	s.changed()
	return nil
}

// RemoveWork drops a work with its comments. It reports whether the work
// was present.
func (s *Store) RemoveWork(workID string) bool {
	s.mu.Lock()
	el, ok := s.index[workID]
	if ok {
		s.order.Remove(el)
		delete(s.index, workID)
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// AppendComment adds c to the end of the work's comments. Unknown works and
// already present comment ids are ignored.
func (s *Store) AppendComment(workID string, c models.Comment) bool {
	s.mu.Lock()
	el, ok := s.index[workID]
	if ok {
		e := el.Value.(*entry)
		if _, dup := e.byID[c.ID]; dup {
			ok = false
		} else {
			c.WorkID = workID
			e.byID[c.ID] = e.comments.PushBack(c)
		}
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

func (s *Store) RemoveComment(workID, commentID string) bool {
	s.mu.Lock()
	el, ok := s.index[workID]
	if ok {
		e := el.Value.(*entry)
		var cel *list.Element
		if cel, ok = e.byID[commentID]; ok {
			e.comments.Remove(cel)
			delete(e.byID, commentID)
		}
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// SetPinned updates the local pin flag only; ordering is left to the next
// full refresh.
func (s *Store) SetPinned(workID string, pinned bool) bool {
	s.mu.Lock()
	el, ok := s.index[workID]
	if ok {
		el.Value.(*entry).work.IsPinned = pinned
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// Snapshot returns copies of all works in display order.
func (s *Store) Snapshot() []models.Work {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Work, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry).snapshot())
	}
	return out
}

// Get returns a copy of one work.
func (s *Store) Get(workID string) (models.Work, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.index[workID]
	if !ok {
		return models.Work{}, false
	}
	return el.Value.(*entry).snapshot(), true
}

// Comment returns a copy of one comment.
func (s *Store) Comment(workID, commentID string) (models.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.index[workID]
	if !ok {
		return models.Comment{}, false
	}
	cel, ok := el.Value.(*entry).byID[commentID]
	if !ok {
		return models.Comment{}, false
	}
	return cel.Value.(models.Comment), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

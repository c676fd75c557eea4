// Package quest owns the learner's canonical progress snapshot. It hydrates
// the snapshot from the host or local store at start and writes every later
// change to both.
package quest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/reflectquest/internal/store"
)

// Source records where the initial snapshot came from.
type Source int

const (
	SourceDefault Source = iota
	SourceHost
	SourceLocal
)

func (s Source) String() string {
	switch s {
	case SourceHost:
		return "host"
	case SourceLocal:
		return "local"
	default:
		return "default"
	}
}

// Options configures a Store.
type Options struct {
	// SchemaVersion and BuildID identify the snapshots this build accepts.
	SchemaVersion int
	BuildID       string

	// TotalPages is the manifest length; page indices are clamped to it.
	TotalPages int

	// ForceFresh skips every saved snapshot.
	ForceFresh bool

	// Host and Local may be nil.
	Host  HostChannel
	Local LocalChannel

	Logger *slog.Logger
}

// Store is the single owner of the progress snapshot. Changes replace the
// snapshot wholesale; the pointer returned by Snapshot never mutates.
type Store struct {
	version    int
	buildID    string
	totalPages int
	host       HostChannel
	local      LocalChannel
	logger     *slog.Logger

	mu       sync.Mutex
	snap     *store.Snapshot
	origin   Source
	hydrated bool
	subs     map[int]func(*store.Snapshot)
	nextSub  int
}

// New hydrates a Store. Hydration never fails: without a usable saved
// snapshot the store starts from defaults.
func New(ctx context.Context, opts Options) *Store {
	s := &Store{
		version:    opts.SchemaVersion,
		buildID:    opts.BuildID,
		totalPages: max(opts.TotalPages, 1),
		host:       opts.Host,
		local:      opts.Local,
		logger:     opts.Logger,
		subs:       make(map[int]func(*store.Snapshot)),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.snap, s.origin = s.hydrate(ctx, opts.ForceFresh)
	s.hydrated = true
	return s
}

// hydrate picks the starting snapshot: host data first, then local data,
// then defaults. A candidate from another schema version or build is
// dropped entirely.
func (s *Store) hydrate(ctx context.Context, fresh bool) (*store.Snapshot, Source) {
	if fresh {
		s.logger.Info("starting fresh on request")
		return store.Default(s.version, s.buildID), SourceDefault
	}

	cand, src := s.candidate(ctx)
	if cand == nil {
		return store.Default(s.version, s.buildID), SourceDefault
	}
	if cand.Version != s.version || cand.BuildID != s.buildID {
		s.logger.Info("discarding saved progress from another build",
			"source", src,
			"saved_version", cand.Version, "version", s.version,
			"saved_build", cand.BuildID, "build", s.buildID)
		return store.Default(s.version, s.buildID), SourceDefault
	}

	page := Clamp(cand.PageIndex, s.totalPages)
	visited := cand.Visited
	if visited == nil {
		visited = store.NewPageSet()
	}
	snap := &store.Snapshot{
		PageIndex: page,
		Notes:     cand.Notes,
		Completed: cand.Completed,
		Visited:   visited.With(page),
		Finished:  cand.Finished,
		Version:   s.version,
		BuildID:   s.buildID,
	}
	s.logger.Info("progress restored", "source", src, "page", page, "visited", snap.Visited.Len())
	return snap, src
}

func (s *Store) candidate(ctx context.Context) (*store.Snapshot, Source) {
	if s.host != nil {
		if raw, ok := s.host.LoadSuspended(); ok {
			snap, err := store.Decode([]byte(raw))
			if err == nil {
				return snap, SourceHost
			}
			s.logger.Warn("host suspend data ignored", "error", err)
		}
	}
	if s.local != nil {
		if snap := s.local.Load(ctx); snap != nil {
			return snap, SourceLocal
		}
	}
	return nil, SourceDefault
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *Store) Snapshot() *store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Origin reports where the initial snapshot came from.
func (s *Store) Origin() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// TotalPages returns the page count indices are clamped to.
func (s *Store) TotalPages() int { return s.totalPages }

// SetNote stores value as the note for item id.
func (s *Store) SetNote(ctx context.Context, id string, value json.RawMessage) {
	s.Apply(ctx, func(cur *store.Snapshot) *store.Snapshot {
		return cur.WithNote(id, value)
	})
}

// ToggleComplete flips the completion flag of item id.
func (s *Store) ToggleComplete(ctx context.Context, id string) {
	s.Apply(ctx, func(cur *store.Snapshot) *store.Snapshot {
		return cur.WithCompletionToggled(id)
	})
}

// Finish marks the course finished. It is a no-op once finished.
func (s *Store) Finish(ctx context.Context) {
	s.Apply(ctx, func(cur *store.Snapshot) *store.Snapshot {
		if cur.Finished {
			return cur
		}
		return cur.WithFinished()
	})
}

// Apply replaces the snapshot with fn(current). Returning nil or the current
// pointer leaves the store untouched and writes nothing. It reports whether
// a replacement happened.
func (s *Store) Apply(ctx context.Context, fn func(*store.Snapshot) *store.Snapshot) bool {
	next, subs := s.replace(ctx, fn)
	if next == nil {
		return false
	}
	for _, f := range subs {
		f(next)
	}
	return true
}

// replace swaps in fn(current) and persists it under the lock. It returns
// nil when nothing changed.
func (s *Store) replace(ctx context.Context, fn func(*store.Snapshot) *store.Snapshot) (*store.Snapshot, []func(*store.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap
	next := fn(cur)
	if next == nil || next == cur {
		return nil, nil
	}
	s.snap = next
	if s.hydrated {
		s.persist(ctx, next)
	}
	subs := make([]func(*store.Snapshot), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	return next, subs
}

// Subscribe registers fn to receive every replacement snapshot. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(*store.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persist writes snap to both channels. Neither channel's failure stops the
// other. Callers hold s.mu so writes happen in replacement order.
func (s *Store) persist(ctx context.Context, snap *store.Snapshot) {
	raw, err := store.Encode(snap)
	if err != nil {
		s.logger.Error("snapshot not persisted", "error", err)
		return
	}
	if s.host != nil && !s.writeHost(snap, raw) {
		s.logger.Debug("host write skipped or failed", "page", snap.PageIndex)
	}
	if s.local != nil {
		s.local.Save(ctx, snap)
	}
}

func (s *Store) writeHost(snap *store.Snapshot, raw []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("host write panicked", "error", fmt.Errorf("%v", r))
			ok = false
		}
	}()
	return s.host.WriteSnapshot(snap, raw)
}

// Clamp limits page to [0, total-1].
func Clamp(page, total int) int {
	return min(max(page, 0), total-1)
}

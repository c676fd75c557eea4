// Package router keeps the navigation-owned page index and the snapshot's
// page index in step.
package router

import (
	"context"

	"github.com/abhisek/reflectquest/internal/quest"
	"github.com/abhisek/reflectquest/internal/store"
)

// GoToPageMsg requests navigation to an absolute page index.
type GoToPageMsg struct {
	Index int
}

// NextPageMsg requests the page after the current one.
type NextPageMsg struct{}

// PrevPageMsg requests the page before the current one.
type PrevPageMsg struct{}

// Snapshotter is the part of the quest store the router writes through.
// *quest.Store satisfies it.
type Snapshotter interface {
	Snapshot() *store.Snapshot
	TotalPages() int
	Apply(ctx context.Context, fn func(*store.Snapshot) *store.Snapshot) bool
}

// Router reconciles requested page indices with the snapshot.
type Router struct {
	store     Snapshotter
	requested int
}

// New creates a Router positioned at the snapshot's current page.
func New(s Snapshotter) *Router {
	return &Router{
		store:     s,
		requested: s.Snapshot().PageIndex,
	}
}

// Sync applies an externally requested page index. The index is clamped to
// the manifest; a new snapshot is produced only when the page differs from
// the current one or has not been visited yet. It reports whether the
// snapshot changed.
func (r *Router) Sync(ctx context.Context, requested int) bool {
	page := quest.Clamp(requested, r.store.TotalPages())
	r.requested = page
	return r.store.Apply(ctx, func(cur *store.Snapshot) *store.Snapshot {
		if cur.PageIndex == page && cur.Visited.Has(page) {
			return cur
		}
		return cur.WithPage(page)
	})
}

// Go navigates to page i.
func (r *Router) Go(ctx context.Context, i int) bool {
	return r.Sync(ctx, i)
}

// Next navigates forward one page.
func (r *Router) Next(ctx context.Context) bool {
	return r.Sync(ctx, r.requested+1)
}

// Prev navigates back one page.
func (r *Router) Prev(ctx context.Context) bool {
	return r.Sync(ctx, r.requested-1)
}

// Current returns the last requested page after clamping.
func (r *Router) Current() int {
	return r.requested
}

// AtEnd reports whether the current page is the terminal page.
func (r *Router) AtEnd() bool {
	return r.requested == r.store.TotalPages()-1
}

// Update handles navigation messages and ignores anything else.
func (r *Router) Update(ctx context.Context, msg any) bool {
	switch msg := msg.(type) {
	case GoToPageMsg:
		return r.Go(ctx, msg.Index)
	case NextPageMsg:
		return r.Next(ctx)
	case PrevPageMsg:
		return r.Prev(ctx)
	}
	return false
}

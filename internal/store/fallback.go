package store

import (
	"context"
	"log/slog"
)

// DefaultKey is the storage slot the course keeps its snapshot in.
const DefaultKey = "reflectquest.progress"

// Fallback persists snapshots as one JSON blob in a KV slot. It never
// returns read or write failures to callers: persistence on this channel is
// best effort.
type Fallback struct {
	kv     KV
	key    string
	logger *slog.Logger
}

// FallbackOption customises a Fallback.
type FallbackOption func(*Fallback)

// WithKey overrides the storage slot.
func WithKey(key string) FallbackOption {
	return func(f *Fallback) {
		if key != "" {
			f.key = key
		}
	}
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger *slog.Logger) FallbackOption {
	return func(f *Fallback) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFallback creates a Fallback over kv.
func NewFallback(kv KV, opts ...FallbackOption) *Fallback {
	f := &Fallback{
		kv:     kv,
		key:    DefaultKey,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Key returns the storage slot in use.
func (f *Fallback) Key() string { return f.key }

// Load returns the stored snapshot, or nil when the slot is empty,
// unreadable or malformed.
func (f *Fallback) Load(ctx context.Context) *Snapshot {
	raw, ok, err := f.kv.Get(ctx, f.key)
	if err != nil {
		f.logger.Warn("local snapshot unreadable", "key", f.key, "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	snap, err := Decode([]byte(raw))
	if err != nil {
		f.logger.Warn("local snapshot ignored", "key", f.key, "error", err)
		return nil
	}
	return snap
}

// Save writes snap to the slot. Failures are logged and dropped; the next
// save retries implicitly.
func (f *Fallback) Save(ctx context.Context, snap *Snapshot) {
	if snap == nil {
		return
	}
	b, err := Encode(snap)
	if err != nil {
		f.logger.Warn("local snapshot not saved", "key", f.key, "error", err)
		return
	}
	if err := f.kv.Set(ctx, f.key, string(b)); err != nil {
		f.logger.Warn("local snapshot not saved", "key", f.key, "error", err)
	}
}

// Clear removes the stored snapshot.
func (f *Fallback) Clear(ctx context.Context) error {
	return f.kv.Delete(ctx, f.key)
}

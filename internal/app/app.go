// Package app wires the host locator, session, stores and router into one
// running quest, and hosts the terminal front-end.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abhisek/reflectquest/internal/config"
	"github.com/abhisek/reflectquest/internal/host"
	"github.com/abhisek/reflectquest/internal/manifest"
	"github.com/abhisek/reflectquest/internal/progress"
	"github.com/abhisek/reflectquest/internal/quest"
	"github.com/abhisek/reflectquest/internal/router"
	"github.com/abhisek/reflectquest/internal/session"
	"github.com/abhisek/reflectquest/internal/store"
)

// hostPrefix namespaces the simulated LMS data model inside the local KV so
// it cannot collide with the fallback snapshot slot.
const hostPrefix = "host:"

// simulatedDepth is how many frames sit between the content window and the
// simulated LMS window.
const simulatedDepth = 2

// Options holds the dependencies for Open.
type Options struct {
	Config   config.Config
	Manifest *manifest.Manifest
	// KV backs both the local fallback slot and any scripted host data
	// model. Defaults to an in-memory store.
	KV     store.KV
	Logger *slog.Logger
}

// App is one running quest.
type App struct {
	cfg      config.Config
	manifest *manifest.Manifest
	session  *session.Session
	quest    *quest.Store
	router   *router.Router
	local    *store.Fallback
	logger   *slog.Logger
}

// Open locates the host, starts the session and hydrates the quest store.
// A missing or uncooperative host is not an error: the quest then runs on
// local storage alone.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Manifest == nil {
		return nil, errors.New("open app: manifest required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	kv := opts.KV
	if kv == nil {
		kv = store.NewMemory()
	}
	cfg := opts.Config

	window, err := hostWindow(ctx, cfg, kv, logger)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}

	locator := host.NewLocator(window,
		host.WithMaxDepth(cfg.FrameDepth),
		host.WithLogger(logger),
	)
	sess := session.New(locator, session.WithLogger(logger))
	if !sess.Initialize() {
		logger.Info("no LMS session, progress is kept locally")
	}

	local := store.NewFallback(kv, store.WithKey(cfg.StorageKey), store.WithLogger(logger))
	qs := quest.New(ctx, quest.Options{
		SchemaVersion: cfg.SchemaVersion,
		BuildID:       cfg.BuildID,
		TotalPages:    opts.Manifest.Len(),
		ForceFresh:    cfg.ForceFresh(),
		Host:          quest.NewSessionChannel(sess, logger),
		Local:         local,
		Logger:        logger,
	})
	logger.Debug("quest hydrated", "origin", qs.Origin(), "snapshot", qs.Snapshot())

	return &App{
		cfg:      cfg,
		manifest: opts.Manifest,
		session:  sess,
		quest:    qs,
		router:   router.New(qs),
		local:    local,
		logger:   logger,
	}, nil
}

// hostWindow builds the frame the locator starts from. It returns a nil
// frame when no host is configured.
func hostWindow(ctx context.Context, cfg config.Config, kv store.KV, logger *slog.Logger) (host.Frame, error) {
	bindings := &kvBindings{ctx: ctx, kv: kv, logger: logger}

	switch {
	case cfg.HostScript != "":
		src, err := os.ReadFile(cfg.HostScript)
		if err != nil {
			return nil, fmt.Errorf("read host script: %w", err)
		}
		sh, err := host.LoadScript(filepath.Base(cfg.HostScript), string(src), host.WithBindings(bindings))
		if err != nil {
			return nil, fmt.Errorf("load host script: %w", err)
		}
		return sh.Window(), nil

	case cfg.SimulateLMS != "":
		d := host.DialectByName(cfg.SimulateLMS)
		if d == nil {
			return nil, fmt.Errorf("unknown lms dialect %q", cfg.SimulateLMS)
		}
		sh, err := host.SimulatedLMS(d, simulatedDepth, false, host.WithBindings(bindings))
		if err != nil {
			return nil, fmt.Errorf("start simulated lms: %w", err)
		}
		return sh.Window(), nil
	}
	return nil, nil
}

// Manifest returns the course manifest.
func (a *App) Manifest() *manifest.Manifest { return a.manifest }

// Quest returns the quest store.
func (a *App) Quest() *quest.Store { return a.quest }

// Router returns the page navigator.
func (a *App) Router() *router.Router { return a.router }

// Session returns the host session.
func (a *App) Session() *session.Session { return a.session }

// Summary computes the progress summary of the current snapshot.
func (a *App) Summary() progress.Summary {
	return progress.Summarize(a.manifest, a.quest.Snapshot())
}

// Pages returns per-page status for the current snapshot.
func (a *App) Pages() []progress.PageStatus {
	return progress.Pages(a.manifest, a.quest.Snapshot())
}

// Export encodes the current snapshot in its persisted form.
func (a *App) Export() ([]byte, error) {
	b, err := store.Encode(a.quest.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return b, nil
}

// ItemPage resolves an item id to its page, rejecting ids the manifest does
// not know.
func (a *App) ItemPage(itemID string) (manifest.Page, error) {
	i := a.manifest.IndexOf(itemID)
	if i < 0 {
		return manifest.Page{}, fmt.Errorf("unknown item %q", itemID)
	}
	p, _ := a.manifest.Page(i)
	return p, nil
}

// Reset replaces the snapshot with defaults, which overwrites both the host
// suspend data and the local slot.
func (a *App) Reset(ctx context.Context) {
	a.quest.Apply(ctx, func(*store.Snapshot) *store.Snapshot {
		return store.Default(a.cfg.SchemaVersion, a.cfg.BuildID)
	})
	a.router.Go(ctx, 0)
	a.logger.Info("progress reset")
}

// Close ends the host session. Terminate commits first, so nothing written
// before Close is lost.
func (a *App) Close() {
	if a.session.Active() && !a.session.Terminate() {
		a.logger.Warn("host session did not terminate cleanly")
	}
}

// kvBindings stores a scripted host's data model in the local KV.
type kvBindings struct {
	ctx    context.Context
	kv     store.KV
	logger *slog.Logger
}

func (b *kvBindings) HostGet(key string) (string, bool) {
	v, ok, err := b.kv.Get(b.ctx, hostPrefix+key)
	if err != nil {
		b.logger.Warn("host data unreadable", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (b *kvBindings) HostSet(key, value string) {
	if err := b.kv.Set(b.ctx, hostPrefix+key, value); err != nil {
		b.logger.Warn("host data not saved", "key", key, "error", err)
	}
}

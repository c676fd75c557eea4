package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/reflectquest/internal/config"
	"github.com/abhisek/reflectquest/internal/manifest"
	"github.com/abhisek/reflectquest/internal/quest"
	"github.com/abhisek/reflectquest/internal/store"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.BuildID = "2024.06.1"
	return cfg
}

func open(t *testing.T, cfg config.Config, kv store.KV) *App {
	t.Helper()
	a, err := Open(context.Background(), Options{
		Config:   cfg,
		Manifest: manifest.Default(),
		KV:       kv,
	})
	require.NoError(t, err)
	return a
}

func TestOpen_RequiresManifest(t *testing.T) {
	_, err := Open(context.Background(), Options{Config: testConfig()})
	assert.Error(t, err)
}

func TestOpen_LocalOnly(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	a := open(t, testConfig(), kv)
	assert.False(t, a.Session().Active())
	assert.Equal(t, quest.SourceDefault, a.Quest().Origin())

	a.Router().Go(ctx, 3)
	a.Quest().SetNote(ctx, "activity-2", store.TextNote("trail notes"))
	a.Close()

	again := open(t, testConfig(), kv)
	assert.Equal(t, quest.SourceLocal, again.Quest().Origin())
	assert.Equal(t, 3, again.Router().Current())
	assert.Equal(t, 1, again.Summary().Notes)
}

func TestOpen_SimulatedLMS(t *testing.T) {
	for _, dialect := range []string{"legacy", "current"} {
		t.Run(dialect, func(t *testing.T) {
			ctx := context.Background()
			kv := store.NewMemory()
			cfg := testConfig()
			cfg.SimulateLMS = dialect

			a := open(t, cfg, kv)
			require.True(t, a.Session().Active())
			assert.Equal(t, dialect, a.Session().Dialect().Name())
			a.Router().Go(ctx, 5)
			a.Close()
			assert.False(t, a.Session().Active())

			raw, ok, err := kv.Get(ctx, hostPrefix+"cmi.suspend_data")
			require.NoError(t, err)
			require.True(t, ok)
			snap, err := store.Decode([]byte(raw))
			require.NoError(t, err)
			assert.Equal(t, 5, snap.PageIndex)

			// Drop the local slot so the relaunch can only read the host.
			require.NoError(t, kv.Delete(ctx, store.DefaultKey))
			again := open(t, cfg, kv)
			assert.Equal(t, quest.SourceHost, again.Quest().Origin())
			assert.Equal(t, 5, again.Router().Current())
		})
	}
}

func TestOpen_FreshLaunchURL(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	a := open(t, testConfig(), kv)
	a.Router().Go(ctx, 4)

	cfg := testConfig()
	cfg.LaunchURL = "https://lms.example.com/course/index.html?fresh=1"
	fresh := open(t, cfg, kv)
	assert.Equal(t, quest.SourceDefault, fresh.Quest().Origin())
	assert.Equal(t, 0, fresh.Router().Current())
}

func TestOpen_OtherBuildStartsOver(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	a := open(t, testConfig(), kv)
	a.Router().Go(ctx, 4)

	cfg := testConfig()
	cfg.BuildID = "2024.07.1"
	next := open(t, cfg, kv)
	assert.Equal(t, 0, next.Router().Current())
}

func TestOpen_HostScript(t *testing.T) {
	ctx := context.Background()
	script := `
var window = {
  API_1484_11: {
    Initialize: function () { return "true"; },
    GetValue: function (k) { var v = __hostGet(k); return v === null ? "" : v; },
    SetValue: function (k, v) { __hostSet(k, v); return "true"; },
    Commit: function () { return "true"; },
    Terminate: function () { return "true"; },
    GetLastError: function () { return "0"; }
  }
};
window.parent = window;
window.top = window;
`
	path := filepath.Join(t.TempDir(), "host.js")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	kv := store.NewMemory()
	cfg := testConfig()
	cfg.HostScript = path

	a := open(t, cfg, kv)
	require.True(t, a.Session().Active())
	a.Quest().ToggleComplete(ctx, "activity-1")
	a.Close()

	status, ok, err := kv.Get(ctx, hostPrefix+"cmi.completion_status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "incomplete", status)
}

func TestOpen_HostScriptErrors(t *testing.T) {
	cfg := testConfig()
	cfg.HostScript = filepath.Join(t.TempDir(), "missing.js")
	_, err := Open(context.Background(), Options{Config: cfg, Manifest: manifest.Default()})
	assert.ErrorContains(t, err, "read host script")

	path := filepath.Join(t.TempDir(), "nowindow.js")
	require.NoError(t, os.WriteFile(path, []byte(`var frames = [];`), 0o644))
	cfg.HostScript = path
	_, err = Open(context.Background(), Options{Config: cfg, Manifest: manifest.Default()})
	assert.ErrorContains(t, err, "load host script")
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	a := open(t, testConfig(), kv)
	a.Router().Go(ctx, 6)
	a.Quest().ToggleComplete(ctx, "activity-1")
	a.Reset(ctx)

	assert.Equal(t, 0, a.Router().Current())
	assert.Equal(t, store.Default(3, "2024.06.1"), a.Quest().Snapshot())

	again := open(t, testConfig(), kv)
	assert.Equal(t, 0, again.Summary().Completed)
}

func TestExportAndItemPage(t *testing.T) {
	a := open(t, testConfig(), nil)

	b, err := a.Export()
	require.NoError(t, err)
	snap, err := store.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, a.Quest().Snapshot(), snap)

	p, err := a.ItemPage("activity-3")
	require.NoError(t, err)
	assert.Equal(t, manifest.TypeActivity, p.Type)

	_, err = a.ItemPage("nope")
	assert.Error(t, err)
	assert.Len(t, a.Pages(), 10)
}

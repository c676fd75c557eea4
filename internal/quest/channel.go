package quest

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/abhisek/reflectquest/internal/session"
	"github.com/abhisek/reflectquest/internal/store"
)

// HostChannel is the LMS side of persistence.
type HostChannel interface {
	// LoadSuspended returns previously saved suspend data, if any.
	LoadSuspended() (raw string, ok bool)
	// WriteSnapshot stores the snapshot and commits. It reports false on
	// any host failure.
	WriteSnapshot(snap *store.Snapshot, raw []byte) bool
}

// LocalChannel is the local fallback side of persistence. *store.Fallback
// satisfies it.
type LocalChannel interface {
	Load(ctx context.Context) *store.Snapshot
	Save(ctx context.Context, snap *store.Snapshot)
}

// SessionChannel writes snapshots through a host session using the
// session's dialect keys.
type SessionChannel struct {
	sess   *session.Session
	logger *slog.Logger
}

var _ HostChannel = (*SessionChannel)(nil)

// NewSessionChannel adapts sess to HostChannel.
func NewSessionChannel(sess *session.Session, logger *slog.Logger) *SessionChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionChannel{sess: sess, logger: logger}
}

func (c *SessionChannel) LoadSuspended() (string, bool) {
	if !c.sess.Active() {
		return "", false
	}
	keys := c.sess.Dialect().Keys()
	v, ok := c.sess.GetValue(keys.SuspendData)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (c *SessionChannel) WriteSnapshot(snap *store.Snapshot, raw []byte) bool {
	if !c.sess.Active() {
		return false
	}
	d := c.sess.Dialect()
	keys := d.Keys()

	if len(raw) > d.SuspendLimit() {
		c.logger.Warn("suspend data exceeds host limit", "size", len(raw), "limit", d.SuspendLimit())
	}
	ok := c.sess.SetValue(keys.SuspendData, string(raw))

	// Location and status are informational for the LMS; their failure does
	// not make the write fail.
	c.sess.SetValue(keys.Location, strconv.Itoa(snap.PageIndex))
	if snap.Finished {
		c.sess.SetValue(keys.Completion, "completed")
	} else {
		c.sess.SetValue(keys.Completion, "incomplete")
		c.sess.SetValue(keys.Exit, "suspend")
	}

	return c.sess.Save() && ok
}

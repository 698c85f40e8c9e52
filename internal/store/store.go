// Package store defines the boundary to the remote report collection.
// Adapters live in subpackages; the synchronizer only sees this interface.
package store

import (
	"context"
	"errors"

	"github.com/couchcryptid/safespot-sync/internal/domain"
)

// ErrUnavailable wraps any transport, auth, or serialization failure from
// the remote store. Callers branch on this to enter degraded mode.
var ErrUnavailable = errors.New("report store unavailable")

// SnapshotFunc receives the complete current report set, ordered by
// timestamp descending. Every remote change delivers a full snapshot,
// never a diff.
type SnapshotFunc func(reports []domain.Report)

// ErrorFunc receives a terminal subscription error. After it fires the
// subscription is dead; there is no automatic retry.
type ErrorFunc func(err error)

// Disposer tears down a standing subscription. Safe to call once;
// callers wanting idempotence wrap it themselves.
type Disposer func()

// Client talks to the remote document collection. It holds no report
// state of its own.
type Client interface {
	// Subscribe opens a standing ordered query. onSnapshot fires with the
	// full report set on every change; onError fires once if the
	// subscription breaks. Timestamps are epoch milliseconds by the time
	// reports reach the callback.
	Subscribe(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) (Disposer, error)

	// Create persists a report (without ID) and returns the assigned ID.
	// Failures are reported as ErrUnavailable, never swallowed.
	Create(ctx context.Context, report domain.Report) (string, error)
}

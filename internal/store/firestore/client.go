// Package firestore adapts a Google Cloud Firestore collection to the
// store.Client interface. One report is one document; the standing query
// orders by timestamp descending and delivers full snapshots on every
// change, which is exactly the contract the synchronizer expects.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/store"
)

// reportDoc is the Firestore document shape. Timestamps are stored as the
// backend's native temporal type and converted to epoch milliseconds at
// this boundary.
type reportDoc struct {
	Lat         float64   `firestore:"lat"`
	Lng         float64   `firestore:"lng"`
	Category    string    `firestore:"category"`
	Severity    string    `firestore:"severity"`
	Description string    `firestore:"description"`
	Anonymous   bool      `firestore:"anonymous"`
	Timestamp   time.Time `firestore:"timestamp"`
}

// Client implements store.Client on a Firestore collection.
type Client struct {
	fs         *gfirestore.Client
	collection string
	logger     *slog.Logger
}

// NewClient connects to Firestore. Credentials come from the ambient
// environment (GOOGLE_APPLICATION_CREDENTIALS or metadata server).
func NewClient(ctx context.Context, projectID, collection string, logger *slog.Logger) (*Client, error) {
	fs, err := gfirestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: connect firestore: %w", store.ErrUnavailable, err)
	}
	return &Client{fs: fs, collection: collection, logger: logger}, nil
}

// Subscribe opens the ordered snapshot listener. The watch goroutine runs
// until the disposer is called or the listener fails terminally.
func (c *Client) Subscribe(ctx context.Context, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Disposer, error) {
	subCtx, cancel := context.WithCancel(ctx)

	query := c.fs.Collection(c.collection).Query.OrderBy("timestamp", gfirestore.Desc)
	snaps := query.Snapshots(subCtx)

	go c.watch(subCtx, snaps, onSnapshot, onError)

	return func() {
		cancel()
		snaps.Stop()
	}, nil
}

func (c *Client) watch(ctx context.Context, snaps *gfirestore.QuerySnapshotIterator, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) {
	for {
		snap, err := snaps.Next()
		if err != nil {
			if ctx.Err() != nil {
				return // disposed, not an error
			}
			onError(fmt.Errorf("%w: snapshot listener: %w", store.ErrUnavailable, err))
			return
		}

		reports, err := collectDocuments(snap.Documents)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			onError(fmt.Errorf("%w: read snapshot documents: %w", store.ErrUnavailable, err))
			return
		}

		c.logger.Debug("firestore snapshot received", "reports", len(reports))
		onSnapshot(reports)
	}
}

func collectDocuments(docs *gfirestore.DocumentIterator) ([]domain.Report, error) {
	var reports []domain.Report
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			return reports, nil
		}
		if err != nil {
			return nil, err
		}

		var d reportDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.Ref.ID, err)
		}
		reports = append(reports, docToReport(doc.Ref.ID, d))
	}
}

// Create persists a new report and returns the store-assigned document ID.
func (c *Client) Create(ctx context.Context, report domain.Report) (string, error) {
	ref, _, err := c.fs.Collection(c.collection).Add(ctx, reportToDoc(report))
	if err != nil {
		return "", fmt.Errorf("%w: create report: %w", store.ErrUnavailable, err)
	}
	c.logger.Info("report persisted", "id", ref.ID, "category", report.Category)
	return ref.ID, nil
}

// Close releases the underlying Firestore client.
func (c *Client) Close() error {
	return c.fs.Close()
}

func docToReport(id string, d reportDoc) domain.Report {
	return domain.Report{
		ID:          id,
		Lat:         d.Lat,
		Lng:         d.Lng,
		Category:    domain.Category(d.Category),
		Severity:    domain.Severity(d.Severity),
		Description: d.Description,
		Anonymous:   d.Anonymous,
		Timestamp:   d.Timestamp.UnixMilli(),
	}
}

func reportToDoc(r domain.Report) reportDoc {
	return reportDoc{
		Lat:         r.Lat,
		Lng:         r.Lng,
		Category:    string(r.Category),
		Severity:    string(r.Severity),
		Description: r.Description,
		Anonymous:   r.Anonymous,
		Timestamp:   time.UnixMilli(r.Timestamp).UTC(),
	}
}

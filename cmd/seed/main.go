// Command seed publishes a batch of sample hazard reports through the
// configured store backend so a fresh environment has data to render.
//
// Usage:
//
//	STORE_BACKEND=kafka KAFKA_BROKERS=localhost:9092 go run ./cmd/seed -count 25
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/safespot-sync/internal/config"
	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/observability"
	"github.com/couchcryptid/safespot-sync/internal/store"
	firestorestore "github.com/couchcryptid/safespot-sync/internal/store/firestore"
	kafkastore "github.com/couchcryptid/safespot-sync/internal/store/kafka"
)

var categories = []domain.Category{
	domain.CategoryLighting,
	domain.CategoryFlooding,
	domain.CategoryUnsafeCrossing,
	domain.CategoryDebris,
	domain.CategoryExtremeWeather,
	domain.CategoryOther,
}

var severities = []domain.Severity{
	domain.SeverityLow,
	domain.SeverityMedium,
	domain.SeverityHigh,
}

var descriptions = map[domain.Category][]string{
	domain.CategoryLighting:       {"Street light out", "Dark stretch along the trail", "Flickering lamppost"},
	domain.CategoryFlooding:       {"Intersection flooded after rain", "Storm drain backed up", "Standing water on the bike path"},
	domain.CategoryUnsafeCrossing: {"Crosswalk signal broken", "No crossing markings near the school", "Cars running the stop sign"},
	domain.CategoryDebris:         {"Couch dumped in the bike lane", "Broken glass on the sidewalk", "Fallen branch blocking the path"},
	domain.CategoryExtremeWeather: {"Ice on the overpass", "Heat advisory, no shade on this block", "Wind knocked over construction fencing"},
	domain.CategoryOther:          {"Aggressive dog off leash", "Open manhole cover", "Loose paving stones"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 25, "number of reports to publish")
	seed := flag.Int64("seed", 1, "random seed for reproducible batches")
	spreadHours := flag.Int("spread-hours", 48, "spread report ages over this many hours")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, "text")

	// Fixed clock so repeated runs with the same seed produce the same batch.
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var st store.Client
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client, err := firestorestore.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCollection, logger)
		if err != nil {
			return fmt.Errorf("create firestore client: %w", err)
		}
		defer client.Close()
		st = client
	case config.BackendKafka:
		ks := kafkastore.NewStore(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer ks.Close()
		st = ks
	}

	rng := rand.New(rand.NewSource(*seed))
	spread := int64(*spreadHours) * 3_600_000

	for i := 0; i < *count; i++ {
		category := categories[rng.Intn(len(categories))]
		lines := descriptions[category]

		report := domain.Report{
			// Scatter around the default center, roughly a few kilometers.
			Lat:         cfg.DefaultLat + (rng.Float64()-0.5)*0.06,
			Lng:         cfg.DefaultLng + (rng.Float64()-0.5)*0.06,
			Category:    category,
			Severity:    severities[rng.Intn(len(severities))],
			Description: lines[rng.Intn(len(lines))],
			Anonymous:   rng.Intn(4) == 0,
			Timestamp:   domain.NowMillis() - rng.Int63n(spread),
		}

		id, err := st.Create(ctx, report)
		if err != nil {
			return fmt.Errorf("publish report %d: %w", i, err)
		}
		log.Printf("published %s: %s (%s)", id, report.Description, report.Category)
	}

	log.Printf("seeded %d reports via %s backend", *count, cfg.StoreBackend)
	return nil
}

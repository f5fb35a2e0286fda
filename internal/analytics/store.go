package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/docwell/docsearch/pkg/logger"
	"github.com/docwell/docsearch/pkg/postgres"
)

// Store persists aggregated analytics snapshots in PostgreSQL.
//
// It requires a `search_analytics_snapshots` table:
//
//	CREATE TABLE search_analytics_snapshots (
//	    id          BIGSERIAL PRIMARY KEY,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates an analytics persistence store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: logger.WithComponent("analytics-store"),
	}
}

// snapshotRetention bounds the number of rows kept in the snapshot table.
const snapshotRetention = 500

// SaveSnapshot persists a stats snapshot and prunes rows beyond the
// retention window in the same transaction.
func (s *Store) SaveSnapshot(ctx context.Context, stats AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO search_analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
			data, time.Now().UTC(),
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM search_analytics_snapshots
			 WHERE id NOT IN (
			     SELECT id FROM search_analytics_snapshots
			     ORDER BY captured_at DESC LIMIT $1
			 )`,
			snapshotRetention,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Info("analytics snapshot saved", "total_searches", stats.TotalSearches)
	return nil
}

// LatestSnapshot loads the most recent snapshot, or nil when none exists.
func (s *Store) LatestSnapshot(ctx context.Context) (*AggregatedStats, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM search_analytics_snapshots ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	var stats AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}

// StartPeriodicSave launches a goroutine that snapshots the aggregator's
// stats on an interval, plus once on shutdown.
func (s *Store) StartPeriodicSave(ctx context.Context, agg *Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := s.SaveSnapshot(shutdownCtx, agg.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				cancel()
				return
			}
		}
	}()
	s.logger.Info("periodic analytics snapshots started", "interval", interval)
}

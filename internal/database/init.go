package database

import (
	"context"
	"fmt"
)

// signalHistorySchema creates the snapshot history tables. Applied at
// startup when persistence is enabled; idempotent.
const signalHistorySchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          UUID PRIMARY KEY,
	fetched_at  TIMESTAMPTZ NOT NULL,
	game_count  INT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS market_signals (
	id               UUID PRIMARY KEY,
	snapshot_id      UUID NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	game_id          TEXT NOT NULL,
	home_team        TEXT NOT NULL,
	away_team        TEXT NOT NULL,
	commence_at      TIMESTAMPTZ NOT NULL,
	market_type      TEXT NOT NULL,
	decision         TEXT NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	stability        DOUBLE PRECISION NOT NULL,
	payload          JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_market_signals_game
	ON market_signals (game_id, market_type);
CREATE INDEX IF NOT EXISTS idx_market_signals_fetched
	ON market_signals (snapshot_id);
`

// InitSchema applies the signal-history schema.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, signalHistorySchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Package repository persists snapshot history for closing-line
// analysis. The engine never reads these rows back; every aggregation
// pass computes from scratch.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/service"
)

// PostgresSnapshotRepository implements service.SignalStore for
// PostgreSQL.
type PostgresSnapshotRepository struct {
	db *database.DB
}

// NewPostgresSnapshotRepository creates a new snapshot repository
func NewPostgresSnapshotRepository(db *database.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// SaveSnapshot inserts one fetch cycle's signals.
func (r *PostgresSnapshotRepository) SaveSnapshot(ctx context.Context, snap *service.Snapshot) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snapshotID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO snapshots (id, fetched_at, game_count) VALUES ($1, $2, $3)`,
		snapshotID, snap.FetchedAt, len(snap.Games),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for _, game := range snap.Games {
		for marketType, sig := range game.Markets {
			payload, err := json.Marshal(sig)
			if err != nil {
				return fmt.Errorf("failed to marshal signal payload: %w", err)
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO market_signals
					(id, snapshot_id, game_id, home_team, away_team, commence_at,
					 market_type, decision, confidence_score, stability, payload)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				uuid.New(), snapshotID, game.ID, game.HomeTeam, game.AwayTeam, game.CommenceAt,
				string(marketType), string(sig.Decision), sig.ConfidenceScore, sig.Stability, payload,
			)
			if err != nil {
				return fmt.Errorf("failed to insert market signal: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// SignalRow is one persisted market signal.
type SignalRow struct {
	GameID          string            `json:"game_id"`
	MarketType      models.MarketType `json:"market_type"`
	Decision        models.Decision   `json:"decision"`
	ConfidenceScore float64           `json:"confidence_score"`
	Stability       float64           `json:"stability"`
	FetchedAt       time.Time         `json:"fetched_at"`
}

// HistoryForGame returns the persisted decision history for one game's
// market, newest first.
func (r *PostgresSnapshotRepository) HistoryForGame(ctx context.Context, gameID string, marketType models.MarketType, limit int) ([]SignalRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT ms.game_id, ms.market_type, ms.decision, ms.confidence_score, ms.stability, s.fetched_at
		 FROM market_signals ms
		 JOIN snapshots s ON s.id = ms.snapshot_id
		 WHERE ms.game_id = $1 AND ms.market_type = $2
		 ORDER BY s.fetched_at DESC
		 LIMIT $3`,
		gameID, string(marketType), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal history: %w", err)
	}
	defer rows.Close()

	var out []SignalRow
	for rows.Next() {
		var row SignalRow
		var marketTypeStr, decisionStr string
		if err := rows.Scan(&row.GameID, &marketTypeStr, &decisionStr, &row.ConfidenceScore, &row.Stability, &row.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		row.MarketType = models.MarketType(marketTypeStr)
		row.Decision = models.Decision(decisionStr)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}
	return out, nil
}

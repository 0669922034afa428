package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/models"
)

func TestEvaluateGamesDropsExpired(t *testing.T) {
	e := newTestEngine(t)
	now := time.Date(2026, 1, 11, 18, 0, 0, 0, time.UTC)

	snapshots := []GameSnapshot{
		{ID: "finished", CommenceAt: now.Add(-9 * time.Hour)},
		{ID: "in-progress", CommenceAt: now.Add(-5 * time.Hour)},
		{ID: "tonight", CommenceAt: now.Add(2 * time.Hour)},
	}

	games := e.EvaluateGames(snapshots, now)
	require.Len(t, games, 2)
	// Soonest kickoff first; the 9 hour old game fell outside the 8
	// hour window.
	assert.Equal(t, "in-progress", games[0].ID)
	assert.Equal(t, "tonight", games[1].ID)
}

func TestEvaluateGamesSortedByKickoff(t *testing.T) {
	e := newTestEngine(t)
	now := time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC)

	snapshots := []GameSnapshot{
		{ID: "late", CommenceAt: now.Add(8 * time.Hour)},
		{ID: "early", CommenceAt: now.Add(1 * time.Hour)},
		{ID: "mid", CommenceAt: now.Add(4 * time.Hour)},
	}

	games := e.EvaluateGames(snapshots, now)
	require.Len(t, games, 3)
	assert.Equal(t, "early", games[0].ID)
	assert.Equal(t, "mid", games[1].ID)
	assert.Equal(t, "late", games[2].ID)
}

func TestEvaluateGamesEmpty(t *testing.T) {
	e := newTestEngine(t)
	games := e.EvaluateGames(nil, time.Now())
	require.NotNil(t, games)
	assert.Empty(t, games)
}

func TestEvaluateGamesWithStatsCountsDrops(t *testing.T) {
	e := newTestEngine(t)
	now := time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC)

	snapshots := []GameSnapshot{{
		ID:         "g1",
		CommenceAt: now.Add(time.Hour),
		Quotes: []models.Quote{
			moneyline("fanduel", "Home", -140),
			moneyline("fanduel", "Away", 120),
			moneyline("draftkings", "Home", -150),
			moneyline("draftkings", "Away", 130),
			// Pulled line.
			moneyline("betmgm", "Home", 0),
			// Only one book resolves the total, so both of its
			// selections fall below the minimum book threshold.
			total("betmgm", "Over", "47.5", -110),
			total("betmgm", "Under", "47.5", -110),
		},
	}}

	games, stats := e.EvaluateGamesWithStats(snapshots, now)
	require.Len(t, games, 1)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 2, stats.ThinSample)
	assert.Zero(t, stats.Degenerate)
	require.NotNil(t, games[0].Markets[models.MarketMoneyline])
	assert.Nil(t, games[0].Markets[models.MarketTotal])
}

func TestEvaluateGameSkipsMalformedQuotes(t *testing.T) {
	e := newTestEngine(t)
	snap := &GameSnapshot{
		ID:         "g1",
		HomeTeam:   "Home",
		AwayTeam:   "Away",
		CommenceAt: time.Now().Add(time.Hour),
		Quotes: []models.Quote{
			moneyline("fanduel", "Home", -140),
			moneyline("fanduel", "Away", 120),
			moneyline("draftkings", "Home", -150),
			moneyline("draftkings", "Away", 130),
			// Pulled line and missing side must not poison the market.
			moneyline("betmgm", "Home", 0),
			moneyline("betmgm", "", 110),
		},
	}

	game := e.EvaluateGame(snap)
	require.NotNil(t, game.Markets[models.MarketMoneyline])
	for _, v := range game.Markets[models.MarketMoneyline].Selections {
		assert.Equal(t, 2, v.BookCount)
	}
}

func TestEvaluateGameBestMarket(t *testing.T) {
	e := newTestEngine(t)
	snap := &GameSnapshot{
		ID:         "g1",
		HomeTeam:   "Home",
		AwayTeam:   "Away",
		CommenceAt: time.Now().Add(time.Hour),
		Quotes: []models.Quote{
			// Moneyline with a sharp/public split big enough to play.
			moneyline("pinnacle", "Home", -150),
			moneyline("pinnacle", "Away", 130),
			moneyline("barstool", "Home", -115),
			moneyline("barstool", "Away", 105),
			// Flat totals market with nothing in it.
			total("fanduel", "Over", "47.5", -110),
			total("fanduel", "Under", "47.5", -110),
			total("draftkings", "Over", "47.5", -110),
			total("draftkings", "Under", "47.5", -110),
		},
	}

	game := e.EvaluateGame(snap)
	require.Len(t, game.Markets, 2)
	require.NotNil(t, game.BestMarket)
	assert.Equal(t, models.MarketMoneyline, *game.BestMarket)
}

func TestEvaluateGameNoQualifiedMarkets(t *testing.T) {
	e := newTestEngine(t)
	snap := &GameSnapshot{
		ID:         "g1",
		CommenceAt: time.Now().Add(time.Hour),
		Quotes: []models.Quote{
			moneyline("fanduel", "Home", -140),
			moneyline("fanduel", "Away", 120),
		},
	}

	game := e.EvaluateGame(snap)
	// One book is below the minimum: the market is omitted, not
	// errored, and there is no headline pick.
	assert.Empty(t, game.Markets)
	assert.Nil(t, game.BestMarket)
}

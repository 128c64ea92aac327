package rosterdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func sampleRoster() *model.Roster {
	return &model.Roster{
		LastUpdated: "2025-03-01T12:00:00Z",
		Players: []model.Player{
			{ID: 20, Name: "Jones", Team: "ATL", Position: "CF", StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				{Season: "2024", Variant: "actual"}:     {Avg: 0.281, HR: 30, Runs: 90, BABIP: 0.301},
				{Season: "2025", Variant: "projected"}: {Avg: 0.270, HR: 26},
			}},
			{ID: 10, Name: "Ace", Team: "NYY", Position: "SP", IsPitcher: true, StatsBySeasonVariant: map[model.SeasonKey]model.StatBundle{
				{Season: "2024", Variant: "actual"}: {ERA: 3.1, FIP: 3.4, Wins: 12, Walks: 40, RunsScored: 60},
			}},
			{ID: 30, Name: "Rookie", Team: "SEA", Position: "C"},
		},
	}
}

func TestReplaceAndLoadRoster(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.ReplaceRoster(ctx, sampleRoster()))

	got, err := db.LoadRoster(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T12:00:00Z", got.LastUpdated)
	require.Len(t, got.Players, 3)

	assert.Equal(t, []int{10, 20, 30}, []int{got.Players[0].ID, got.Players[1].ID, got.Players[2].ID})
	ace := got.Players[0]
	assert.True(t, ace.IsPitcher)
	b, ok := ace.Bundle(model.DefaultSeasonKey)
	require.True(t, ok)
	assert.Equal(t, 3.1, b.ERA)
	assert.Equal(t, 60.0, b.RunsScored)

	jones := got.Players[1]
	assert.Len(t, jones.StatsBySeasonVariant, 2)
	proj, ok := jones.Bundle(model.SeasonKey{Season: "2025", Variant: "projected"})
	require.True(t, ok)
	assert.Equal(t, 26.0, proj.HR)

	assert.Empty(t, got.Players[2].StatsBySeasonVariant)
}

func TestReplaceRoster_DeletesPrevious(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.ReplaceRoster(ctx, sampleRoster()))

	next := &model.Roster{Players: []model.Player{{ID: 99, Name: "Solo"}}}
	require.NoError(t, db.ReplaceRoster(ctx, next))

	n, err := db.PlayerCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ts, err := db.LastUpdated(ctx)
	require.NoError(t, err)
	assert.Empty(t, ts)

	var stats int64
	require.NoError(t, db.db.Model(&StatRow{}).Count(&stats).Error)
	assert.Zero(t, stats)
}

func TestLoadRoster_Empty(t *testing.T) {
	db := openTestDB(t)
	got, err := db.LoadRoster(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Players)
	assert.Empty(t, got.LastUpdated)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")
	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.ReplaceRoster(context.Background(), sampleRoster()))
	require.NoError(t, db.Close())

	again, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer again.Close()
	n, err := again.PlayerCount(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

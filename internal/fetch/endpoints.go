package fetch

import (
	"context"
	"fmt"

	"github.com/diamonddraft/diamond-draft/internal/model"
	"github.com/diamonddraft/diamond-draft/internal/store"
)

// /players.json
func (c *Client) Players(ctx context.Context, force bool) ([]model.Player, error) {
	b, err := c.FetchRaw(ctx, "/"+store.PlayersFile, store.PlayersFile, force)
	if err != nil {
		return nil, err
	}
	return store.DecodePlayers(b)
}

// /last_updated.json
func (c *Client) LastUpdated(ctx context.Context, force bool) (string, error) {
	b, err := c.FetchRaw(ctx, "/"+store.LastUpdatedFile, store.LastUpdatedFile, force)
	if err != nil {
		return "", err
	}
	return store.DecodeLastUpdated(b)
}

// Roster fetches both roster documents.
func (c *Client) Roster(ctx context.Context, force bool) (*model.Roster, error) {
	players, err := c.Players(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	ts, err := c.LastUpdated(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("last updated: %w", err)
	}
	return &model.Roster{Players: players, LastUpdated: ts}, nil
}

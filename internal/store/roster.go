package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

// Files making up a roster snapshot in the data directory.
const (
	PlayersFile     = "players.json"
	LastUpdatedFile = "last_updated.json"
)

// LastUpdated is the layout of last_updated.json.
type LastUpdated struct {
	Timestamp string `json:"timestamp"`
}

// DecodePlayers parses a players.json document: a JSON array of players.
func DecodePlayers(b []byte) ([]model.Player, error) {
	var players []model.Player
	if err := json.Unmarshal(b, &players); err != nil {
		return nil, fmt.Errorf("decode players: %w", err)
	}
	return players, nil
}

// DecodeLastUpdated parses a last_updated.json document.
func DecodeLastUpdated(b []byte) (string, error) {
	var lu LastUpdated
	if err := json.Unmarshal(b, &lu); err != nil {
		return "", fmt.Errorf("decode last updated: %w", err)
	}
	return lu.Timestamp, nil
}

// ReadRoster loads players.json and, when present, last_updated.json.
func (s *JSONStore) ReadRoster() (*model.Roster, error) {
	b, err := s.ReadRaw(PlayersFile)
	if err != nil {
		return nil, err
	}
	players, err := DecodePlayers(b)
	if err != nil {
		return nil, err
	}
	ts, err := s.ReadLastUpdated()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return &model.Roster{Players: players, LastUpdated: ts}, nil
}

func (s *JSONStore) ReadLastUpdated() (string, error) {
	b, err := s.ReadRaw(LastUpdatedFile)
	if err != nil {
		return "", err
	}
	return DecodeLastUpdated(b)
}

// WriteRoster writes both roster files. An empty LastUpdated leaves the
// timestamp file untouched.
func (s *JSONStore) WriteRoster(r *model.Roster) error {
	players := r.Players
	if players == nil {
		players = []model.Player{}
	}
	if err := s.WriteJSON(PlayersFile, players); err != nil {
		return err
	}
	if r.LastUpdated == "" {
		return nil
	}
	return s.WriteJSON(LastUpdatedFile, LastUpdated{Timestamp: r.LastUpdated})
}

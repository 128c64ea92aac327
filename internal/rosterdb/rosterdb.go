// Package rosterdb keeps the roster in a SQLite database.
package rosterdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diamonddraft/diamond-draft/internal/model"
)

const createBatchSize = 100

type DB struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the SQLite file at path; an empty path opens a private
// in-memory database.
func Open(path string, log zerolog.Logger) (*DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        createBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// one connection: an in-memory database exists per connection
	sqlDB.SetMaxOpenConns(1)

	if path == "" {
		log.Debug().Msg("Using in-memory roster DB")
	} else {
		log.Debug().Str("path", path).Msg("Using roster DB")
	}
	return &DB{db: db, log: log}, nil
}

func (d *DB) Migrate() error {
	if err := d.db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate roster db: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceRoster deletes every stored player and inserts r in one
// transaction.
func (d *DB) ReplaceRoster(ctx context.Context, r *model.Roster) error {
	rows := make([]PlayerRow, 0, len(r.Players))
	for _, p := range r.Players {
		rows = append(rows, fromPlayer(p))
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"player_stats", "players", "roster_meta"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, createBatchSize).Error; err != nil {
				return err
			}
		}
		if r.LastUpdated != "" {
			return tx.Create(&Meta{Name: metaLastUpdated, Value: r.LastUpdated}).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace roster: %w", err)
	}
	d.log.Info().Int("players", len(rows)).Msg("Roster replaced")
	return nil
}

// LoadRoster returns every stored player ordered by id.
func (d *DB) LoadRoster(ctx context.Context) (*model.Roster, error) {
	var rows []PlayerRow
	if err := d.db.WithContext(ctx).Preload("Stats").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	ts, err := d.LastUpdated(ctx)
	if err != nil {
		return nil, err
	}
	out := &model.Roster{Players: make([]model.Player, 0, len(rows)), LastUpdated: ts}
	for _, row := range rows {
		out.Players = append(out.Players, row.toPlayer())
	}
	return out, nil
}

// LastUpdated returns the stored refresh timestamp, or "" if none.
func (d *DB) LastUpdated(ctx context.Context) (string, error) {
	var m Meta
	err := d.db.WithContext(ctx).Where("name = ?", metaLastUpdated).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read last updated: %w", err)
	}
	return m.Value, nil
}

// PlayerCount returns the number of stored players.
func (d *DB) PlayerCount(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&PlayerRow{}).Count(&n).Error
	return n, err
}

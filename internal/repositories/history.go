package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 20

// PlayRepository stores [models.Play] rows.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new PlayRepository with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Record inserts play unless the most recent row is the same track, and reports whether a row was written.
//
// A missing ID is generated; a zero PlayedAt is set to now.
func (r *PlayRepository) Record(ctx context.Context, play models.Play) (bool, error) {
	if err := play.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if play.ID == "" {
		play.ID = shared.GenerateID()
	}
	if play.PlayedAt.IsZero() {
		play.PlayedAt = time.Now()
	}

	if play.Artists == nil {
		play.Artists = []string{}
	}
	artists, err := json.Marshal(play.Artists)
	if err != nil {
		return false, fmt.Errorf("failed to encode artists: %w", err)
	}

	var recorded bool
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		var last string
		err := tx.QueryRowContext(ctx, `
			SELECT track_id FROM plays
			ORDER BY played_at DESC, rowid DESC
			LIMIT 1
		`).Scan(&last)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("failed to read latest play: %w", err)
		case last == play.TrackID:
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO plays (id, track_id, track_name, artists, news_count, played_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, play.ID, play.TrackID, play.TrackName, string(artists), play.NewsCount, play.PlayedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert play: %w", err)
		}
		recorded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return recorded, nil
}

// List returns up to limit plays, most recent first.
func (r *PlayRepository) List(ctx context.Context, limit int) ([]models.Play, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, track_id, track_name, artists, news_count, played_at
		FROM plays
		ORDER BY played_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	plays := []models.Play{}
	for rows.Next() {
		play, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, play)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return plays, nil
}

// Count returns the number of stored plays.
func (r *PlayRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plays").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Play]
func (r *PlayRepository) scanRow(rows *sql.Rows) (models.Play, error) {
	var (
		play    models.Play
		artists string
	)

	err := rows.Scan(&play.ID, &play.TrackID, &play.TrackName, &artists, &play.NewsCount, &play.PlayedAt)
	if err != nil {
		return models.Play{}, fmt.Errorf("failed to scan play: %w", err)
	}

	if err := json.Unmarshal([]byte(artists), &play.Artists); err != nil {
		return models.Play{}, fmt.Errorf("failed to decode artists for play %s: %w", play.ID, err)
	}
	return play, nil
}

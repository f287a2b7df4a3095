// ===============================
// internal/services/episode.go - Episode Store Operations
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"podcastbe/internal/models"

	"github.com/jmoiron/sqlx"
)

type EpisodeService struct {
	db *sqlx.DB
}

func NewEpisodeService(db *sqlx.DB) *EpisodeService {
	return &EpisodeService{db: db}
}

// ===============================
// EPISODE CRUD OPERATIONS
// ===============================

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// Create inserts a new episode with a zero play count and a server-assigned
// id and timestamp, and returns the persisted row.
func (s *EpisodeService) Create(ctx context.Context, title, description, audioURL string) (models.Episode, error) {
	if err := ValidateTitle(title); err != nil {
		return models.Episode{}, err
	}
	title = strings.TrimSpace(title)
	if audioURL == "" {
		return models.Episode{}, ValidationError{Field: "audio", Message: "audio file is required"}
	}

	var desc *string
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		desc = &trimmed
	}

	// Second precision matches the schema's DATETIME column; same-second
	// inserts fall back to the id tiebreak when listing.
	createdAt := time.Now().UTC().Truncate(time.Second)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (title, description, audio_url, play_count, created_at) VALUES (?, ?, ?, 0, ?)`,
		title, desc, audioURL, createdAt)
	if err != nil {
		return models.Episode{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Episode{}, err
	}

	return s.GetByID(ctx, id)
}

// List returns every episode, newest first. An empty catalog yields an empty slice.
func (s *EpisodeService) List(ctx context.Context) ([]models.Episode, error) {
	episodes := []models.Episode{}
	err := s.db.SelectContext(ctx, &episodes,
		`SELECT id, title, description, audio_url, play_count, created_at
		 FROM episodes
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return episodes, nil
}

// GetByID returns a single episode or ErrEpisodeNotFound.
func (s *EpisodeService) GetByID(ctx context.Context, id int64) (models.Episode, error) {
	var episode models.Episode
	err := s.db.GetContext(ctx, &episode,
		`SELECT id, title, description, audio_url, play_count, created_at
		 FROM episodes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Episode{}, ErrEpisodeNotFound
	}
	if err != nil {
		return models.Episode{}, err
	}
	return episode, nil
}

// ===============================
// PLAY COUNTING
// ===============================

// IncrementPlayCount atomically adds one play to an episode. Unknown ids are a
// silent no-op, and storage failures are logged but never fail the request.
func (s *EpisodeService) IncrementPlayCount(ctx context.Context, id int64) error {
	query := `UPDATE episodes SET play_count = play_count + 1 WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		// Log error but don't fail the request
		log.Printf("Warning: failed to increment play count for episode %d: %v", id, err)
		return nil
	}

	return nil
}

// ===============================
// CATALOG ANALYTICS
// ===============================

// Stats derives the catalog-wide analytics: episode count, total plays and
// the rounded average, zero for an empty catalog.
func (s *EpisodeService) Stats(ctx context.Context) (models.CatalogStats, error) {
	var stats models.CatalogStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM episodes) as total_episodes,
			(SELECT COALESCE(SUM(play_count), 0) FROM episodes) as total_plays
	`)
	if err != nil {
		return models.CatalogStats{}, err
	}

	stats.AvgPlays = AveragePlays(stats.TotalPlays, stats.TotalEpisodes)
	return stats, nil
}

// AveragePlays rounds totalPlays/episodes to the nearest integer, 0 when empty.
func AveragePlays(totalPlays, episodes int64) int64 {
	if episodes <= 0 {
		return 0
	}
	return int64(math.Round(float64(totalPlays) / float64(episodes)))
}

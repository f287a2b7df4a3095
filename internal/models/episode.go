// ===============================
// internal/models/episode.go
// ===============================

package models

import (
	"time"
)

// Episode is the sole persisted entity: an uploaded audio item plus its play counter.
// Rows are append-only; the only mutation is the play_count increment.
type Episode struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	AudioURL    string    `json:"audio_url" db:"audio_url"`
	PlayCount   int64     `json:"play_count" db:"play_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Helper methods
func (e *Episode) DescriptionText() string {
	if e.Description != nil {
		return *e.Description
	}
	return ""
}

func (e *Episode) IsPlayable() bool {
	return e.AudioURL != ""
}

// CatalogStats is the derived analytics view over the whole episode list.
type CatalogStats struct {
	TotalEpisodes int64 `json:"totalEpisodes" db:"total_episodes"`
	TotalPlays    int64 `json:"totalPlays" db:"total_plays"`
	AvgPlays      int64 `json:"avgPlays"`
}

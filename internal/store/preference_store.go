package store

import (
	"database/sql"
	"errors"
	"time"
)

// DefaultPlaybackRate applies until the user picks another speed.
const DefaultPlaybackRate = 1.0

// GetPlaybackRate returns the user's preferred playback rate.
func (s *Store) GetPlaybackRate(userID int64) (float64, error) {
	var rate float64
	err := s.db.Get(&rate, "SELECT playback_rate FROM playback_preferences WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPlaybackRate, nil
	}
	return rate, err
}

// SetPlaybackRate stores the user's preferred playback rate.
func (s *Store) SetPlaybackRate(userID int64, rate float64) error {
	_, err := s.db.Exec(`
		INSERT INTO playback_preferences (user_id, playback_rate, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET playback_rate = excluded.playback_rate, updated_at = excluded.updated_at`,
		userID, rate, time.Now().UTC())
	return err
}

package models

import "time"

// Feed is a subscribed podcast RSS source.
type Feed struct {
	ID               int64      `json:"id" db:"id"`
	UserID           int64      `json:"-" db:"user_id"`
	URL              string     `json:"url" db:"url"`
	Title            string     `json:"title" db:"title"`
	Author           string     `json:"author" db:"author"`
	Description      string     `json:"description" db:"description"`
	ArtworkURL       string     `json:"artwork_url" db:"artwork_url"`
	ArtworkThumbnail string     `json:"artwork_thumbnail,omitempty" db:"artwork_thumbnail"`
	WebsiteURL       string     `json:"website_url" db:"website_url"`
	LastRefreshedAt  *time.Time `json:"last_refreshed_at,omitempty" db:"last_refreshed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	EpisodeCount     int        `json:"episode_count" db:"episode_count"`
	UnplayedCount    int        `json:"unplayed_count" db:"unplayed_count"`
}

// Episode is a single item of a feed. GUID is unique per feed.
type Episode struct {
	ID           int64      `json:"id" db:"id"`
	FeedID       int64      `json:"feed_id" db:"feed_id"`
	UserID       int64      `json:"-" db:"user_id"`
	GUID         string     `json:"guid" db:"guid"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	AudioURL     string     `json:"audio_url" db:"audio_url"`
	PublishedAt  *time.Time `json:"published_at,omitempty" db:"published_at"`
	Duration     int        `json:"duration" db:"duration"`
	ImageURL     string     `json:"image_url" db:"image_url"`
	Played       bool       `json:"played" db:"played"`
	Favorite     bool       `json:"favorite" db:"favorite"`
	Archived     bool       `json:"archived" db:"archived"`
	Queued       bool       `json:"queued" db:"queued"`
	QueuedAt     *time.Time `json:"queued_at,omitempty" db:"queued_at"`
	PlayPosition float64    `json:"play_position" db:"play_position"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	FeedTitle    string     `json:"feed_title,omitempty" db:"feed_title"`
}

// EpisodeStatusUpdate carries the flags a client wants to change; nil
// fields are left alone.
type EpisodeStatusUpdate struct {
	Played   *bool `json:"played,omitempty"`
	Favorite *bool `json:"favorite,omitempty"`
	Archived *bool `json:"archived,omitempty"`
	Queued   *bool `json:"queued,omitempty"`
}

// PodcastSearchResult is one directory hit, reshaped for the client.
type PodcastSearchResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	FeedURL      string `json:"feed_url"`
	ArtworkURL   string `json:"artwork_url"`
	Genre        string `json:"genre,omitempty"`
	EpisodeCount int    `json:"episode_count"`
}

package models

// HomeCounts is the per-entity tally shown at the top of the dashboard.
type HomeCounts struct {
	Articles       int `json:"articles"`
	UnreadArticles int `json:"unread_articles"`
	Links          int `json:"links"`
	Notes          int `json:"notes"`
	Books          int `json:"books"`
	Feeds          int `json:"feeds"`
	QueuedEpisodes int `json:"queued_episodes"`
}

// HomePageData is the top-level struct for the /api/home response.
type HomePageData struct {
	Counts            HomeCounts `json:"counts"`
	ContinueListening []*Episode `json:"continue_listening"`
	Reading           []*Book    `json:"reading"`
	RecentArticles    []*Article `json:"recent_articles"`
}

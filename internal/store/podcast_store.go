package store

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vrsandeep/homebase/internal/models"
)

const feedColumns = `f.id, f.user_id, f.url, f.title, f.author, f.description, f.artwork_url, f.artwork_thumbnail,
	f.website_url, f.last_refreshed_at, f.created_at,
	(SELECT COUNT(*) FROM podcast_episodes e WHERE e.feed_id = f.id) AS episode_count,
	(SELECT COUNT(*) FROM podcast_episodes e WHERE e.feed_id = f.id AND e.played = 0) AS unplayed_count`

// CreateFeed stores a new subscription. A second subscription to the same
// URL by the same user returns ErrAlreadyExists.
func (s *Store) CreateFeed(userID int64, feed *models.Feed) (*models.Feed, error) {
	id, err := insertFeed(s.db, userID, feed)
	if err != nil {
		return nil, err
	}
	return s.GetFeed(userID, id)
}

// SubscribeFeed stores a new subscription and its episodes in a single
// transaction; on any error neither the feed nor its episodes remain.
func (s *Store) SubscribeFeed(userID int64, feed *models.Feed, episodes []*models.Episode) (*models.Feed, int, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	id, err := insertFeed(tx, userID, feed)
	if err != nil {
		return nil, 0, err
	}
	added, err := insertEpisodes(tx, userID, id, episodes)
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	stored, err := s.GetFeed(userID, id)
	return stored, added, err
}

func insertFeed(db sqlx.Execer, userID int64, feed *models.Feed) (int64, error) {
	now := time.Now().UTC()
	res, err := db.Exec(`
		INSERT INTO podcast_feeds (user_id, url, title, author, description, artwork_url, artwork_thumbnail, website_url, last_refreshed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, feed.URL, feed.Title, feed.Author, feed.Description, feed.ArtworkURL, feed.ArtworkThumbnail,
		feed.WebsiteURL, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

// GetFeed returns one of the user's feeds with its episode counts.
func (s *Store) GetFeed(userID, id int64) (*models.Feed, error) {
	var feed models.Feed
	err := s.db.Get(&feed, "SELECT "+feedColumns+" FROM podcast_feeds f WHERE f.id = ? AND f.user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &feed, nil
}

// GetFeedByURL finds the user's subscription to url.
func (s *Store) GetFeedByURL(userID int64, url string) (*models.Feed, error) {
	var feed models.Feed
	err := s.db.Get(&feed, "SELECT "+feedColumns+" FROM podcast_feeds f WHERE f.url = ? AND f.user_id = ?", url, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &feed, nil
}

// ListFeeds returns every feed of the user ordered by title.
func (s *Store) ListFeeds(userID int64) ([]*models.Feed, error) {
	feeds := []*models.Feed{}
	err := s.db.Select(&feeds, "SELECT "+feedColumns+" FROM podcast_feeds f WHERE f.user_id = ? ORDER BY f.title COLLATE NOCASE, f.id", userID)
	return feeds, err
}

// ListAllFeeds returns every feed of every user, for the refresh job.
func (s *Store) ListAllFeeds() ([]*models.Feed, error) {
	feeds := []*models.Feed{}
	err := s.db.Select(&feeds, "SELECT "+feedColumns+" FROM podcast_feeds f ORDER BY f.user_id, f.id")
	return feeds, err
}

// UpdateFeedMetadata stores channel metadata from a fresh fetch and stamps
// last_refreshed_at.
func (s *Store) UpdateFeedMetadata(feed *models.Feed, refreshedAt time.Time) error {
	return requireAffected(s.db.Exec(`
		UPDATE podcast_feeds SET title = ?, author = ?, description = ?, artwork_url = ?, website_url = ?, last_refreshed_at = ?
		WHERE id = ?`,
		feed.Title, feed.Author, feed.Description, feed.ArtworkURL, feed.WebsiteURL, refreshedAt.UTC(), feed.ID))
}

// SetFeedThumbnail stores the generated artwork thumbnail data URI.
func (s *Store) SetFeedThumbnail(feedID int64, thumbnail string) error {
	return requireAffected(s.db.Exec("UPDATE podcast_feeds SET artwork_thumbnail = ? WHERE id = ?", thumbnail, feedID))
}

// DeleteFeed unsubscribes the user. Episodes go with it.
func (s *Store) DeleteFeed(userID, id int64) error {
	return requireAffected(s.db.Exec("DELETE FROM podcast_feeds WHERE id = ? AND user_id = ?", id, userID))
}

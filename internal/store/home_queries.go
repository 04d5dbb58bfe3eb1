// Read-only aggregate queries backing the dashboard.

package store

import "github.com/vrsandeep/homebase/internal/models"

// GetHomeCounts tallies the user's items for the dashboard header.
func (s *Store) GetHomeCounts(userID int64) (models.HomeCounts, error) {
	var c models.HomeCounts
	query := `
		SELECT
			(SELECT COUNT(*) FROM articles WHERE user_id = ?) AS articles,
			(SELECT COUNT(*) FROM articles WHERE user_id = ? AND archived = 0) AS unread_articles,
			(SELECT COUNT(*) FROM links WHERE user_id = ?) AS links,
			(SELECT COUNT(*) FROM notes WHERE user_id = ?) AS notes,
			(SELECT COUNT(*) FROM books WHERE user_id = ?) AS books,
			(SELECT COUNT(*) FROM podcast_feeds WHERE user_id = ?) AS feeds,
			(SELECT COUNT(*) FROM podcast_episodes WHERE user_id = ? AND queued = 1) AS queued_episodes`
	row := s.db.QueryRow(query, userID, userID, userID, userID, userID, userID, userID)
	err := row.Scan(&c.Articles, &c.UnreadArticles, &c.Links, &c.Notes, &c.Books, &c.Feeds, &c.QueuedEpisodes)
	return c, err
}

// GetContinueListening returns partially played episodes.
func (s *Store) GetContinueListening(userID int64, limit int) ([]*models.Episode, error) {
	return s.ListInProgressEpisodes(userID, limit)
}

// GetReadingBooks returns the books currently being read.
func (s *Store) GetReadingBooks(userID int64, limit int) ([]*models.Book, error) {
	books, _, err := s.ListBooks(userID, ListOptions{
		Status:  string(models.BookReading),
		PerPage: limit,
		SortBy:  "updated_at",
	})
	return books, err
}

// GetRecentArticles returns the newest unarchived articles.
func (s *Store) GetRecentArticles(userID int64, limit int) ([]*models.Article, error) {
	archived := false
	articles, _, err := s.ListArticles(userID, ListOptions{Archived: &archived, PerPage: limit})
	return articles, err
}

package store

import "github.com/vrsandeep/homebase/internal/models"

// TagCounts returns every tag the user has applied to articles, links or
// notes with the number of items carrying it, most used first.
func (s *Store) TagCounts(userID int64) ([]models.TagCount, error) {
	query := `
		SELECT t.value AS name, COUNT(*) AS count FROM (
			SELECT j.value FROM articles a, json_each(a.tags) j WHERE a.user_id = ?
			UNION ALL
			SELECT j.value FROM links l, json_each(l.tags) j WHERE l.user_id = ?
			UNION ALL
			SELECT j.value FROM notes n, json_each(n.tags) j WHERE n.user_id = ?
		) t
		GROUP BY t.value
		ORDER BY count DESC, name ASC`
	counts := []models.TagCount{}
	err := s.db.Select(&counts, query, userID, userID, userID)
	return counts, err
}

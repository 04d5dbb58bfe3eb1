package store

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vrsandeep/homebase/internal/models"
)

const episodeColumns = `e.id, e.feed_id, e.user_id, e.guid, e.title, e.description, e.audio_url, e.published_at,
	e.duration, e.image_url, e.played, e.favorite, e.archived, e.queued, e.queued_at, e.play_position,
	e.created_at, e.updated_at, f.title AS feed_title`

const (
	episodeTables = "podcast_episodes e JOIN podcast_feeds f ON f.id = e.feed_id"
	episodeFrom   = " FROM " + episodeTables
)

var episodeSorts = map[string]string{
	"published_at": "e.published_at",
	"title":        "e.title",
	"duration":     "e.duration",
	"created_at":   "e.created_at",
}

// ExistingGUIDs returns the set of GUIDs already stored for a feed.
func (s *Store) ExistingGUIDs(feedID int64) (map[string]bool, error) {
	var guids []string
	if err := s.db.Select(&guids, "SELECT guid FROM podcast_episodes WHERE feed_id = ?", feedID); err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(guids))
	for _, g := range guids {
		set[g] = true
	}
	return set, nil
}

// InsertEpisodes adds episodes to a feed in one transaction and returns how
// many rows were new. GUIDs that already exist for the feed are ignored.
func (s *Store) InsertEpisodes(userID, feedID int64, episodes []*models.Episode) (int, error) {
	if len(episodes) == 0 {
		return 0, nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added, err := insertEpisodes(tx, userID, feedID, episodes)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func insertEpisodes(tx *sqlx.Tx, userID, feedID int64, episodes []*models.Episode) (int, error) {
	if len(episodes) == 0 {
		return 0, nil
	}
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO podcast_episodes
		(feed_id, user_id, guid, title, description, audio_url, published_at, duration, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	added := 0
	for _, ep := range episodes {
		res, err := stmt.Exec(feedID, userID, ep.GUID, ep.Title, ep.Description, ep.AudioURL, ep.PublishedAt,
			ep.Duration, ep.ImageURL, now, now)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// GetEpisode returns one episode owned by the user.
func (s *Store) GetEpisode(userID, id int64) (*models.Episode, error) {
	var ep models.Episode
	err := s.db.Get(&ep, "SELECT "+episodeColumns+episodeFrom+" WHERE e.id = ? AND e.user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &ep, nil
}

// ListEpisodes returns a page of a feed's episodes, newest first by default.
// opts.Status accepts "played" or "unplayed".
func (s *Store) ListEpisodes(userID, feedID int64, opts ListOptions) ([]*models.Episode, int, error) {
	f := newFilter("e.user_id", userID)
	f.add("e.feed_id = ?", feedID)
	f.search(opts.Search, "e.title", "e.description")
	f.flags(opts, "e.")
	switch opts.Status {
	case "played":
		f.add("e.played = 1")
	case "unplayed":
		f.add("e.played = 0")
	}
	episodes := []*models.Episode{}
	total, err := s.list(&episodes, episodeColumns, episodeTables, f, opts,
		opts.orderBy(episodeSorts, "published_at", "e.id"))
	if err != nil {
		return nil, 0, err
	}
	return episodes, total, nil
}

// ListQueue returns the user's queued episodes in the order they were queued.
func (s *Store) ListQueue(userID int64) ([]*models.Episode, error) {
	episodes := []*models.Episode{}
	err := s.db.Select(&episodes, "SELECT "+episodeColumns+episodeFrom+
		" WHERE e.user_id = ? AND e.queued = 1 ORDER BY e.queued_at ASC, e.id ASC", userID)
	return episodes, err
}

// ListInProgressEpisodes returns episodes with a saved position that are not
// yet played, most recently touched first.
func (s *Store) ListInProgressEpisodes(userID int64, limit int) ([]*models.Episode, error) {
	episodes := []*models.Episode{}
	err := s.db.Select(&episodes, "SELECT "+episodeColumns+episodeFrom+
		" WHERE e.user_id = ? AND e.play_position > 0 AND e.played = 0 ORDER BY e.updated_at DESC, e.id DESC LIMIT ?",
		userID, limit)
	return episodes, err
}

// UpdateEpisodeStatus applies the non-nil flags in upd. Queuing stamps
// queued_at; dequeuing clears it.
func (s *Store) UpdateEpisodeStatus(userID, id int64, upd models.EpisodeStatusUpdate) (*models.Episode, error) {
	now := time.Now().UTC()
	sets := "updated_at = ?"
	args := []interface{}{now}
	if upd.Played != nil {
		sets += ", played = ?"
		args = append(args, *upd.Played)
	}
	if upd.Favorite != nil {
		sets += ", favorite = ?"
		args = append(args, *upd.Favorite)
	}
	if upd.Archived != nil {
		sets += ", archived = ?"
		args = append(args, *upd.Archived)
	}
	if upd.Queued != nil {
		if *upd.Queued {
			sets += ", queued = 1, queued_at = CASE WHEN queued = 1 THEN queued_at ELSE ? END"
			args = append(args, now)
		} else {
			sets += ", queued = 0, queued_at = NULL"
		}
	}
	args = append(args, id, userID)
	if err := requireAffected(s.db.Exec("UPDATE podcast_episodes SET "+sets+" WHERE id = ? AND user_id = ?", args...)); err != nil {
		return nil, err
	}
	return s.GetEpisode(userID, id)
}

// UpdateEpisodePosition saves the playback position in seconds.
func (s *Store) UpdateEpisodePosition(userID, id int64, position float64) error {
	if position < 0 {
		position = 0
	}
	return requireAffected(s.db.Exec(
		"UPDATE podcast_episodes SET play_position = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		position, time.Now().UTC(), id, userID))
}

// MarkEpisodePlayed flags the episode played, resets its position and takes
// it off the queue.
func (s *Store) MarkEpisodePlayed(userID, id int64) error {
	return requireAffected(s.db.Exec(`
		UPDATE podcast_episodes SET played = 1, play_position = 0, queued = 0, queued_at = NULL, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, userID))
}

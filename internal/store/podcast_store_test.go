package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

func sampleEpisodes(guids ...string) []*models.Episode {
	eps := make([]*models.Episode, len(guids))
	for i, g := range guids {
		published := time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
		eps[i] = &models.Episode{GUID: g, Title: "Episode " + g, AudioURL: "https://cdn.example/" + g + ".mp3", PublishedAt: &published, Duration: 60 * (i + 1)}
	}
	return eps
}

func TestPodcastStore_Feeds(t *testing.T) {
	s, alice, bob := newStoreWithUsers(t)

	feed, err := s.CreateFeed(alice.ID, &models.Feed{URL: "https://pod.example/rss", Title: "Pod"})
	require.NoError(t, err)
	assert.NotNil(t, feed.LastRefreshedAt)

	t.Run("Duplicate subscription", func(t *testing.T) {
		_, err := s.CreateFeed(alice.ID, &models.Feed{URL: "https://pod.example/rss"})
		assert.True(t, errors.Is(err, store.ErrAlreadyExists))
		// Another user may subscribe to the same URL.
		_, err = s.CreateFeed(bob.ID, &models.Feed{URL: "https://pod.example/rss"})
		assert.NoError(t, err)
	})

	t.Run("Lookup by URL", func(t *testing.T) {
		found, err := s.GetFeedByURL(alice.ID, "https://pod.example/rss")
		require.NoError(t, err)
		assert.Equal(t, feed.ID, found.ID)
	})

	t.Run("Metadata and thumbnail", func(t *testing.T) {
		feed.Title = "Renamed Pod"
		require.NoError(t, s.UpdateFeedMetadata(feed, time.Now()))
		require.NoError(t, s.SetFeedThumbnail(feed.ID, "data:image/jpeg;base64,AAAA"))
		got, err := s.GetFeed(alice.ID, feed.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Pod", got.Title)
		assert.Equal(t, "data:image/jpeg;base64,AAAA", got.ArtworkThumbnail)
	})

	t.Run("List", func(t *testing.T) {
		feeds, err := s.ListFeeds(alice.ID)
		require.NoError(t, err)
		assert.Len(t, feeds, 1)
		all, err := s.ListAllFeeds()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestPodcastStore_IdempotentEpisodeInsert(t *testing.T) {
	s, alice, _ := newStoreWithUsers(t)
	feed, err := s.CreateFeed(alice.ID, &models.Feed{URL: "https://pod.example/rss"})
	require.NoError(t, err)

	added, err := s.InsertEpisodes(alice.ID, feed.ID, sampleEpisodes("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = s.InsertEpisodes(alice.ID, feed.ID, sampleEpisodes("a", "b", "c", "d"))
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	guids, err := s.ExistingGUIDs(feed.ID)
	require.NoError(t, err)
	assert.Len(t, guids, 4)
	assert.True(t, guids["d"])

	got, err := s.GetFeed(alice.ID, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.EpisodeCount)
	assert.Equal(t, 4, got.UnplayedCount)

	episodes, total, err := s.ListEpisodes(alice.ID, feed.ID, store.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, "d", episodes[0].GUID, "newest first")
	assert.Equal(t, feed.Title, episodes[0].FeedTitle)
}

func TestPodcastStore_EpisodeStatus(t *testing.T) {
	s, alice, bob := newStoreWithUsers(t)
	feed, err := s.CreateFeed(alice.ID, &models.Feed{URL: "https://pod.example/rss", Title: "Pod"})
	require.NoError(t, err)
	_, err = s.InsertEpisodes(alice.ID, feed.ID, sampleEpisodes("a", "b"))
	require.NoError(t, err)
	episodes, _, err := s.ListEpisodes(alice.ID, feed.ID, store.ListOptions{SortBy: "published_at", SortDir: "asc"})
	require.NoError(t, err)
	first, second := episodes[0], episodes[1]

	t.Run("Queue order", func(t *testing.T) {
		_, err := s.UpdateEpisodeStatus(alice.ID, second.ID, models.EpisodeStatusUpdate{Queued: boolPtr(true)})
		require.NoError(t, err)
		ep, err := s.UpdateEpisodeStatus(alice.ID, first.ID, models.EpisodeStatusUpdate{Queued: boolPtr(true)})
		require.NoError(t, err)
		assert.True(t, ep.Queued)
		assert.NotNil(t, ep.QueuedAt)

		queue, err := s.ListQueue(alice.ID)
		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, second.ID, queue[0].ID)

		ep, err = s.UpdateEpisodeStatus(alice.ID, second.ID, models.EpisodeStatusUpdate{Queued: boolPtr(false)})
		require.NoError(t, err)
		assert.Nil(t, ep.QueuedAt)
	})

	t.Run("Position and in progress", func(t *testing.T) {
		require.NoError(t, s.UpdateEpisodePosition(alice.ID, first.ID, 42.5))
		ep, err := s.GetEpisode(alice.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 42.5, ep.PlayPosition)

		inProgress, err := s.ListInProgressEpisodes(alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, inProgress, 1)
		assert.Equal(t, first.ID, inProgress[0].ID)
	})

	t.Run("Played resets position", func(t *testing.T) {
		require.NoError(t, s.MarkEpisodePlayed(alice.ID, first.ID))
		ep, err := s.GetEpisode(alice.ID, first.ID)
		require.NoError(t, err)
		assert.True(t, ep.Played)
		assert.Zero(t, ep.PlayPosition)
		assert.False(t, ep.Queued)

		unplayed, _, err := s.ListEpisodes(alice.ID, feed.ID, store.ListOptions{Status: "unplayed"})
		require.NoError(t, err)
		assert.Len(t, unplayed, 1)
	})

	t.Run("Other user", func(t *testing.T) {
		err := s.UpdateEpisodePosition(bob.ID, first.ID, 10)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("Cascade on unsubscribe", func(t *testing.T) {
		require.NoError(t, s.DeleteFeed(alice.ID, feed.ID))
		_, err := s.GetEpisode(alice.ID, first.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})
}

func TestPreferenceStore(t *testing.T) {
	s, alice, _ := newStoreWithUsers(t)

	rate, err := s.GetPlaybackRate(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultPlaybackRate, rate)

	require.NoError(t, s.SetPlaybackRate(alice.ID, 1.5))
	require.NoError(t, s.SetPlaybackRate(alice.ID, 1.75))
	rate, err = s.GetPlaybackRate(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.75, rate)
}

func TestHomeQueries(t *testing.T) {
	s, alice, _ := newStoreWithUsers(t)

	_, err := s.CreateArticle(alice.ID, &models.Article{URL: "https://a", Title: "Unread"})
	require.NoError(t, err)
	_, err = s.CreateArticle(alice.ID, &models.Article{URL: "https://b", Title: "Done", Archived: true})
	require.NoError(t, err)
	_, err = s.CreateBook(alice.ID, &models.Book{Title: "Now", Status: models.BookReading})
	require.NoError(t, err)
	_, err = s.CreateBook(alice.ID, &models.Book{Title: "Later"})
	require.NoError(t, err)

	counts, err := s.GetHomeCounts(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Articles)
	assert.Equal(t, 1, counts.UnreadArticles)
	assert.Equal(t, 2, counts.Books)

	reading, err := s.GetReadingBooks(alice.ID, 5)
	require.NoError(t, err)
	require.Len(t, reading, 1)
	assert.Equal(t, "Now", reading[0].Title)

	recent, err := s.GetRecentArticles(alice.ID, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Unread", recent[0].Title)
}

package mcp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
	"github.com/vrsandeep/homebase/internal/testutil"
)

// resultText flattens a tool result to its text and error flag.
func resultText(t *testing.T) func(res *mcp.CallToolResult, err error) (string, bool) {
	return func(res *mcp.CallToolResult, err error) (string, bool) {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, res)
		raw, err := json.Marshal(res)
		require.NoError(t, err)
		var body struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		require.NotEmpty(t, body.Content)
		return body.Content[0].Text, body.IsError
	}
}

func setupServer(t *testing.T) (*Server, *store.Store, int64) {
	t.Helper()
	st := store.New(testutil.SetupTestDB(t))
	user, err := st.CreateUser("reader", "hash", models.RoleUser)
	require.NoError(t, err)
	return NewServer(st, user.ID, "test"), st, user.ID
}

func TestSearchArticles(t *testing.T) {
	s, st, userID := setupServer(t)
	content := "<p>Compost needs greens and browns.</p>"
	_, err := st.CreateArticle(userID, &models.Article{URL: "https://example.com/compost", Title: "Composting basics", Content: &content, Tags: models.Tags{"garden"}})
	require.NoError(t, err)
	_, err = st.CreateArticle(userID, &models.Article{URL: "https://example.com/old", Title: "Old compost piece", Archived: true})
	require.NoError(t, err)
	_, err = st.CreateArticle(userID, &models.Article{URL: "https://example.com/go", Title: "Go generics"})
	require.NoError(t, err)

	t.Run("Query", func(t *testing.T) {
		text, isErr := resultText(t)(s.handleSearchArticles(map[string]interface{}{"query": "compost"}))
		assert.False(t, isErr)
		assert.Contains(t, text, "Found 1 articles")
		assert.Contains(t, text, "Composting basics")
		assert.Contains(t, text, "Tags: garden")
		assert.NotContains(t, text, "Old compost piece")
	})

	t.Run("Archived on request", func(t *testing.T) {
		text, _ := resultText(t)(s.handleSearchArticles(map[string]interface{}{"query": "compost", "include_archived": true}))
		assert.Contains(t, text, "Found 2 articles")
	})

	t.Run("Limit", func(t *testing.T) {
		text, _ := resultText(t)(s.handleSearchArticles(map[string]interface{}{"limit": float64(1)}))
		assert.Contains(t, text, "Found 2 articles (showing 1)")
	})

	t.Run("No match", func(t *testing.T) {
		text, isErr := resultText(t)(s.handleSearchArticles(map[string]interface{}{"query": "kubernetes"}))
		assert.False(t, isErr)
		assert.Equal(t, "No articles found matching the search criteria.", text)
	})
}

func TestGetArticle(t *testing.T) {
	s, st, userID := setupServer(t)
	content := "<h2>Soil</h2><p>Start with <strong>good</strong> soil.</p>"
	a, err := st.CreateArticle(userID, &models.Article{URL: "https://example.com/soil", Title: "Soil", Content: &content})
	require.NoError(t, err)
	bare, err := st.CreateArticle(userID, &models.Article{URL: "https://example.com/bare", Title: "Bare"})
	require.NoError(t, err)

	text, isErr := resultText(t)(s.handleGetArticle(map[string]interface{}{"id": float64(a.ID)}))
	assert.False(t, isErr)
	assert.Contains(t, text, "# Soil")
	assert.Contains(t, text, "## Soil")
	assert.Contains(t, text, "**good**")

	text, _ = resultText(t)(s.handleGetArticle(map[string]interface{}{"id": float64(bare.ID)}))
	assert.Contains(t, text, "not extracted")

	_, isErr = resultText(t)(s.handleGetArticle(map[string]interface{}{"id": float64(9999)}))
	assert.True(t, isErr)

	_, isErr = resultText(t)(s.handleGetArticle(map[string]interface{}{}))
	assert.True(t, isErr)
}

func TestListNotes(t *testing.T) {
	s, st, userID := setupServer(t)
	_, err := st.CreateNote(userID, &models.Note{Content: "Buy seeds", Tags: models.Tags{"todo"}})
	require.NoError(t, err)
	_, err = st.CreateNote(userID, &models.Note{Content: "Call the plumber"})
	require.NoError(t, err)

	text, _ := resultText(t)(s.handleListNotes(map[string]interface{}{}))
	assert.Contains(t, text, "Found 2 notes")

	text, _ = resultText(t)(s.handleListNotes(map[string]interface{}{"tag": "todo"}))
	assert.Contains(t, text, "Buy seeds")
	assert.NotContains(t, text, "plumber")

	text, _ = resultText(t)(s.handleListNotes(map[string]interface{}{"query": "nothing like this"}))
	assert.Equal(t, "No notes found.", text)
}

func TestListEpisodes(t *testing.T) {
	s, st, userID := setupServer(t)

	text, _ := resultText(t)(s.handleListEpisodes(map[string]interface{}{}))
	assert.Contains(t, text, "The queue is empty.")
	assert.Contains(t, text, "No podcast subscriptions.")

	feed, err := st.CreateFeed(userID, &models.Feed{URL: "https://example.com/feed.xml", Title: "Balcony Radio"})
	require.NoError(t, err)
	older := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	_, err = st.InsertEpisodes(userID, feed.ID, []*models.Episode{
		{GUID: "a", Title: "First", AudioURL: "https://example.com/a.mp3", PublishedAt: &older, Duration: 1800},
		{GUID: "b", Title: "Second", AudioURL: "https://example.com/b.mp3", PublishedAt: &newer, Duration: 600},
	})
	require.NoError(t, err)

	episodes, _, err := st.ListEpisodes(userID, feed.ID, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	queued := true
	_, err = st.UpdateEpisodeStatus(userID, episodes[1].ID, models.EpisodeStatusUpdate{Queued: &queued})
	require.NoError(t, err)
	require.NoError(t, st.MarkEpisodePlayed(userID, episodes[0].ID))

	t.Run("Queue and feeds", func(t *testing.T) {
		text, _ := resultText(t)(s.handleListEpisodes(map[string]interface{}{}))
		assert.Contains(t, text, "Queue (1 episodes)")
		assert.Contains(t, text, "First")
		assert.Contains(t, text, "Length: 30 min")
		assert.Contains(t, text, "Balcony Radio")
	})

	t.Run("Feed", func(t *testing.T) {
		text, _ := resultText(t)(s.handleListEpisodes(map[string]interface{}{"feed_id": float64(feed.ID)}))
		assert.Contains(t, text, "Balcony Radio: 2 episodes")
		assert.Contains(t, text, "Status: played")

		text, _ = resultText(t)(s.handleListEpisodes(map[string]interface{}{"feed_id": float64(feed.ID), "unplayed": true}))
		assert.Contains(t, text, "Balcony Radio: 1 episodes")
		assert.NotContains(t, text, "Second")
	})

	t.Run("Unknown feed", func(t *testing.T) {
		text, _ := resultText(t)(s.handleListEpisodes(map[string]interface{}{"feed_id": float64(999)}))
		assert.Equal(t, "No episodes found for this feed.", text)
	})
}

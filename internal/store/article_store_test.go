package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

func TestArticleStore_CRUD(t *testing.T) {
	s, alice, bob := newStoreWithUsers(t)

	content := "<p>Hello</p>"
	text := "Hello"
	created, err := s.CreateArticle(alice.ID, &models.Article{
		URL:         "https://example.com/a",
		Title:       "First",
		Content:     &content,
		TextContent: &text,
		Tags:        models.Tags{" Go ", "go", "News"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Tags{"go", "news"}, created.Tags)
	require.NotNil(t, created.Content)
	assert.Equal(t, content, *created.Content)

	t.Run("Other users cannot see it", func(t *testing.T) {
		_, err := s.GetArticle(bob.ID, created.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))
		err = s.DeleteArticle(bob.ID, created.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("Update keeps content", func(t *testing.T) {
		created.Title = "Renamed"
		created.Favorite = true
		updated, err := s.UpdateArticle(alice.ID, created)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.True(t, updated.Favorite)
		require.NotNil(t, updated.Content)
	})

	t.Run("Content refresh keeps title when empty", func(t *testing.T) {
		updated, err := s.UpdateArticleContent(alice.ID, created.ID, "<p>New</p>", "New", "", "excerpt", "")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "excerpt", updated.Excerpt)
		assert.Equal(t, "New", *updated.TextContent)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.DeleteArticle(alice.ID, created.ID))
		_, err := s.GetArticle(alice.ID, created.ID)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})
}

func TestArticleStore_List(t *testing.T) {
	s, alice, bob := newStoreWithUsers(t)

	for _, a := range []*models.Article{
		{URL: "https://a.example/1", Title: "Go generics", Tags: models.Tags{"go"}},
		{URL: "https://a.example/2", Title: "Rust traits", Tags: models.Tags{"rust"}, Archived: true},
		{URL: "https://a.example/3", Title: "Go channels", Tags: models.Tags{"go", "concurrency"}, Favorite: true},
	} {
		_, err := s.CreateArticle(alice.ID, a)
		require.NoError(t, err)
	}
	_, err := s.CreateArticle(bob.ID, &models.Article{URL: "https://b.example", Title: "Go for bob"})
	require.NoError(t, err)

	t.Run("Scoped to user", func(t *testing.T) {
		items, total, err := s.ListArticles(alice.ID, store.ListOptions{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, items, 3)
		assert.Nil(t, items[0].Content, "list omits the body")
	})

	t.Run("Search", func(t *testing.T) {
		items, total, err := s.ListArticles(alice.ID, store.ListOptions{Search: "go"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, items, 2)
	})

	t.Run("Tag", func(t *testing.T) {
		items, _, err := s.ListArticles(alice.ID, store.ListOptions{Tag: "Concurrency"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Go channels", items[0].Title)
	})

	t.Run("Flags", func(t *testing.T) {
		items, _, err := s.ListArticles(alice.ID, store.ListOptions{Archived: boolPtr(false), Favorite: boolPtr(true)})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Go channels", items[0].Title)
	})

	t.Run("Paging and sort", func(t *testing.T) {
		items, total, err := s.ListArticles(alice.ID, store.ListOptions{SortBy: "title", SortDir: "asc", PerPage: 2, Page: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Rust traits", items[0].Title)
	})

	t.Run("Unknown sort falls back", func(t *testing.T) {
		_, _, err := s.ListArticles(alice.ID, store.ListOptions{SortBy: "id; DROP TABLE articles"})
		require.NoError(t, err)
	})
}

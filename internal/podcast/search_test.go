package podcast_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/podcast"
)

func TestSearcher(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		switch r.URL.Query().Get("term") {
		case "nothing":
			w.Write([]byte(`{"resultCount":0,"results":[]}`))
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(`{"resultCount":3,"results":[
				{"wrapperType":"track","kind":"podcast","collectionId":1,"collectionName":"Go Time","artistName":"Changelog","feedUrl":"https://feeds.example/gotime","artworkUrl600":"https://img.example/600.jpg","primaryGenreName":"Technology","trackCount":300},
				{"wrapperType":"track","kind":"podcast","collectionId":2,"collectionName":"No Feed"},
				{"wrapperType":"track","kind":"song","collectionId":3,"collectionName":"A Song","feedUrl":"https://x"}
			]}`))
		}
	}))
	defer srv.Close()

	s := podcast.NewSearcher(fetch.New(5*time.Second, "test", fetch.WithPrivateHosts(true)), srv.URL)

	t.Run("Filters and reshapes", func(t *testing.T) {
		results, err := s.Search(context.Background(), "go time")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Go Time", results[0].Title)
		assert.Equal(t, "https://feeds.example/gotime", results[0].FeedURL)
		assert.Equal(t, 300, results[0].EpisodeCount)
		assert.Contains(t, gotQuery, "media=podcast")
	})

	t.Run("Zero results is an empty slice", func(t *testing.T) {
		results, err := s.Search(context.Background(), "nothing")
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("Empty term", func(t *testing.T) {
		_, err := s.Search(context.Background(), "  ")
		assert.ErrorIs(t, err, podcast.ErrEmptyTerm)
	})

	t.Run("Upstream status", func(t *testing.T) {
		_, err := s.Search(context.Background(), "broken")
		var upstream *podcast.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
	})
}

package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/models"
)

// ErrEmptyTerm is returned when Search is called without a term.
var ErrEmptyTerm = errors.New("search term is required")

// Searcher queries the iTunes podcast directory.
type Searcher struct {
	client  *fetch.Client
	baseURL string
}

// NewSearcher creates a searcher against baseURL (the iTunes search endpoint
// in production, an httptest server in tests).
func NewSearcher(client *fetch.Client, baseURL string) *Searcher {
	return &Searcher{client: client, baseURL: baseURL}
}

type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

type itunesResult struct {
	WrapperType      string `json:"wrapperType"`
	Kind             string `json:"kind"`
	CollectionID     int64  `json:"collectionId"`
	TrackID          int64  `json:"trackId"`
	CollectionName   string `json:"collectionName"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	FeedURL          string `json:"feedUrl"`
	ArtworkURL600    string `json:"artworkUrl600"`
	ArtworkURL100    string `json:"artworkUrl100"`
	PrimaryGenreName string `json:"primaryGenreName"`
	TrackCount       int    `json:"trackCount"`
}

// Search returns podcasts matching term. Results without a feed URL are
// dropped. No matches is an empty slice, not an error.
func (s *Searcher) Search(ctx context.Context, term string) ([]models.PodcastSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	q := url.Values{}
	q.Set("media", "podcast")
	q.Set("entity", "podcast")
	q.Set("term", term)

	sep := "?"
	if strings.Contains(s.baseURL, "?") {
		sep = "&"
	}
	body, err := s.client.GetBody(ctx, "search", s.baseURL+sep+q.Encode(), "application/json")
	if err != nil {
		return nil, err
	}

	var resp itunesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]models.PodcastSearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Kind != "podcast" || r.FeedURL == "" {
			continue
		}
		results = append(results, reshape(r))
	}
	return results, nil
}

func reshape(r itunesResult) models.PodcastSearchResult {
	out := models.PodcastSearchResult{
		ID:           r.CollectionID,
		Title:        r.CollectionName,
		Author:       r.ArtistName,
		FeedURL:      r.FeedURL,
		ArtworkURL:   r.ArtworkURL600,
		Genre:        r.PrimaryGenreName,
		EpisodeCount: r.TrackCount,
	}
	if out.ID == 0 {
		out.ID = r.TrackID
	}
	if out.Title == "" {
		out.Title = r.TrackName
	}
	if out.ArtworkURL == "" {
		out.ArtworkURL = r.ArtworkURL100
	}
	return out
}

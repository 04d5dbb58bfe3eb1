package widgets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/fetch"
)

func testClient() *fetch.Client {
	return fetch.New(5*time.Second, "test", fetch.WithPrivateHosts(true))
}

func TestDailyPokemonID(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, 1, DailyPokemonID(epoch))
	assert.Equal(t, 2, DailyPokemonID(epoch.Add(24*time.Hour)))
	assert.Equal(t, 2, DailyPokemonID(epoch.Add(47*time.Hour)))
	assert.Equal(t, 1, DailyPokemonID(epoch.Add(PokemonCount*24*time.Hour)))

	for d := 0; d < 3000; d += 37 {
		id := DailyPokemonID(epoch.Add(time.Duration(d) * 24 * time.Hour))
		assert.True(t, id >= 1 && id <= PokemonCount)
	}
}

func TestPokemonOfTheDay(t *testing.T) {
	var hits atomic.Int32
	var lastPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastPath.Store(r.URL.Path)
		fmt.Fprint(w, `{"id":25,"name":"pikachu","height":4,"weight":60,
			"sprites":{"front_default":"https://img/front.png","other":{"official-artwork":{"front_default":"https://img/art.png"}}},
			"types":[{"slot":1,"type":{"name":"electric"}}]}`)
	}))
	defer srv.Close()

	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	p := NewPokemonOfTheDay(testClient(), srv.URL+"/")
	p.now = func() time.Time { return day }

	mon, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pikachu", mon.Name)
	assert.Equal(t, "https://img/art.png", mon.Image)
	assert.Equal(t, []string{"electric"}, mon.Types)
	assert.Equal(t, "2024-03-10", mon.Date)
	assert.Equal(t, fmt.Sprintf("/pokemon/%d", DailyPokemonID(day)), lastPath.Load())

	day = day.Add(10 * time.Hour)
	_, err = p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "cached within the day")

	day = day.Add(24 * time.Hour)
	_, err = p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "refetched on a new day")
}

func TestPokemonOfTheDay_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewPokemonOfTheDay(testClient(), srv.URL).Get(context.Background())
	var upstream *fetch.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
}

func TestTrivia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed A</title>
<item><title>Old</title><link>https://a/1</link><pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate></item>
<item><title>Newest</title><link>https://a/2</link><pubDate>Fri, 01 Mar 2024 00:00:00 GMT</pubDate></item>
</channel></rss>`)
		case "/b":
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?><feed xmlns="http://www.w3.org/2005/Atom"><title>Feed B</title>
<entry><title>Middle</title><link href="https://b/1"/><updated>2024-02-01T00:00:00Z</updated></entry>
<entry><title>Undated</title><link href="https://b/2"/></entry>
</feed>`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	trivia := NewTrivia(testClient(), []string{srv.URL + "/a", srv.URL + "/broken", srv.URL + "/b"}, 3, nil)
	items := trivia.Items(context.Background())
	require.Len(t, items, 3)
	assert.Equal(t, "Newest", items[0].Title)
	assert.Equal(t, "Feed A", items[0].Source)
	assert.Equal(t, "Middle", items[1].Title)
	assert.Equal(t, "Feed B", items[1].Source)
	assert.Equal(t, "Old", items[2].Title)

	t.Run("No feeds", func(t *testing.T) {
		items := NewTrivia(testClient(), nil, 0, nil).Items(context.Background())
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

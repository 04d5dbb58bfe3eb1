package api_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vrsandeep/homebase/internal/api"
	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/core"
	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/testutil"
)

const articleHTML = `<!DOCTYPE html>
<html><head>
<title>Gardening in Small Spaces</title>
<meta property="og:title" content="Gardening in Small Spaces">
<meta property="og:description" content="Grow more on a balcony.">
<meta property="og:image" content="/img/balcony.jpg">
</head><body>
<nav>Home | About</nav>
<article>
<h1>Gardening in Small Spaces</h1>
<p>A balcony garden needs planning. Containers dry out quickly in the summer sun, so
choose deep pots and water early in the morning before the heat of the day sets in.</p>
<p>Herbs like basil, thyme and rosemary thrive in pots and reward frequent harvesting.
Tomatoes need support and at least six hours of direct light to produce a good crop.</p>
<p>Vertical planters multiply the growing area of a small balcony. Hang them on a sunny
wall and plant trailing strawberries or lettuce for a steady supply of fresh greens.</p>
</article>
<footer>Copyright</footer>
</body></html>`

// upstream fakes every remote service the API talks to.
type upstream struct {
	*httptest.Server
	feedItems atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.feedItems.Store(2)
	art := pngBytes(t, 64, 64)

	mux := http.NewServeMux()
	mux.HandleFunc("/article.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML)
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, u.feed(int(u.feedItems.Load())))
	})
	mux.HandleFunc("/noaudio.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Silent</title>
			<item><guid>silent-1</guid><title>No enclosure</title></item></channel></rss>`)
	})
	mux.HandleFunc("/art.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(art)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") == "nothing" {
			fmt.Fprint(w, `{"resultCount":0,"results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"resultCount":1,"results":[{"wrapperType":"track","kind":"podcast","collectionId":7,
			"collectionName":"Balcony Radio","artistName":"Green Thumbs","feedUrl":"%s/feed.xml","trackCount":2}]}`, u.URL)
	})
	mux.HandleFunc("/pokeapi/pokemon/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/pokeapi/pokemon/")
		fmt.Fprintf(w, `{"id":%s,"name":"bulbasaur","height":7,"weight":69,
			"sprites":{"front_default":"https://img/front.png"},
			"types":[{"slot":1,"type":{"name":"grass"}},{"slot":2,"type":{"name":"poison"}}]}`, id)
	})
	mux.HandleFunc("/trivia.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>On this day</title>
<entry><title>Older fact</title><link href="https://example.com/1"/><id>1</id><updated>2024-01-01T00:00:00Z</updated><summary>old</summary></entry>
<entry><title>Newer fact</title><link href="https://example.com/2"/><id>2</id><updated>2024-02-01T00:00:00Z</updated><summary>new</summary></entry>
</feed>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) feed(items int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
<title>Balcony Radio</title>
<link>%[1]s</link>
<description>Weekly gardening talk.</description>
<itunes:author>Green Thumbs</itunes:author>
<itunes:image href="%[1]s/art.png"/>`, u.URL)
	for i := 1; i <= items; i++ {
		fmt.Fprintf(&b, `
<item>
<guid>ep-%[1]d</guid>
<title>Episode %[1]d</title>
<description>Notes for episode %[1]d</description>
<pubDate>Mon, 0%[1]d Jan 2024 10:00:00 GMT</pubDate>
<enclosure url="%[2]s/audio/%[1]d.mp3" type="audio/mpeg" length="1000"/>
<itunes:duration>30:00</itunes:duration>
</item>`, i, u.URL)
	}
	b.WriteString("\n</channel>\n</rss>")
	return b.String()
}

// setupWithUpstream returns a server whose configured upstreams all point at
// a fresh fake.
func setupWithUpstream(t *testing.T) (*api.Server, *core.App, *upstream) {
	t.Helper()
	up := newUpstream(t)
	app := testutil.SetupTestApp(t, func(cfg *config.Config) {
		cfg.Podcasts.SearchURL = up.URL + "/search"
		cfg.Widgets.PokeAPIURL = up.URL + "/pokeapi"
		cfg.Widgets.TriviaFeeds = []string{up.URL + "/trivia.xml", up.URL + "/missing"}
		cfg.HTTP.Timeout = 5
	})
	server := api.NewServer(app)
	t.Cleanup(server.Close)
	return server, app, up
}

// subscribe returns the events published on topics until the test ends.
func subscribe(t *testing.T, app *core.App, topics ...string) <-chan events.Event {
	t.Helper()
	sub := app.Bus().Subscribe(topics...)
	t.Cleanup(func() { app.Bus().Unsubscribe(sub) })
	return sub.C
}

func nextEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

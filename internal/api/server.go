// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vrsandeep/homebase/internal/assets"
	"github.com/vrsandeep/homebase/internal/core"
	"github.com/vrsandeep/homebase/internal/extract"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/metrics"
	"github.com/vrsandeep/homebase/internal/playback"
	"github.com/vrsandeep/homebase/internal/podcast"
	"github.com/vrsandeep/homebase/internal/store"
	"github.com/vrsandeep/homebase/internal/websocket"
	"github.com/vrsandeep/homebase/internal/widgets"
)

// Server holds the dependencies for our API.
type Server struct {
	app       *core.App
	db        *sql.DB
	store     *store.Store
	homeStore HomeStore
	log       logger.Logger

	client    *fetch.Client
	extractor *extract.Extractor
	podcasts  *podcast.Service
	searcher  *podcast.Searcher
	players   *playback.Manager
	pokemon   *widgets.PokemonOfTheDay
	trivia    *widgets.Trivia
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Players exposes the per-user playback controllers.
func (s *Server) Players() *playback.Manager {
	return s.players
}

// SetHomeStore sets the home store for testing purposes
func (s *Server) SetHomeStore(homeStore HomeStore) {
	s.homeStore = homeStore
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	cfg := app.Config()
	storeInstance := store.New(app.DB())
	client := fetch.New(time.Duration(cfg.HTTP.Timeout)*time.Second, cfg.HTTP.UserAgent,
		fetch.WithPrivateHosts(cfg.HTTP.AllowPrivateHosts))
	saveInterval := time.Duration(cfg.Player.SaveInterval) * time.Second
	if saveInterval <= 0 {
		saveInterval = playback.DefaultSaveInterval
	}

	return &Server{
		app:       app,
		db:        app.DB(),
		store:     storeInstance,
		homeStore: storeInstance, // Use the concrete store by default
		log:       app.Logger(),
		client:    client,
		extractor: extract.New(client),
		podcasts:  podcast.NewService(storeInstance, client, app.Bus(), app.Logger(), cfg.Podcasts.HostRate),
		searcher:  podcast.NewSearcher(client, cfg.Podcasts.SearchURL),
		players:   playback.NewManager(storeInstance, app.Bus(), app.Logger(), saveInterval),
		pokemon:   widgets.NewPokemonOfTheDay(client, cfg.Widgets.PokeAPIURL),
		trivia:    widgets.NewTrivia(client, cfg.Widgets.TriviaFeeds, cfg.Widgets.TriviaLimit, app.Logger()),
	}
}

// Close stops every running player.
func (s *Server) Close() {
	s.players.Close()
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(60 * time.Second))

	// API routes
	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			r.Get("/home", s.handleGetHomePageData)

			// Proxies for the browser
			r.Get("/article-content", s.handleArticleContent)
			r.Get("/podcast-feed", s.handlePodcastFeed)
			r.Get("/podcast-search", s.handlePodcastSearch)
			r.Get("/url-metadata", s.handleURLMetadata)
			r.Get("/proxy/image", s.handleProxyImage)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", s.handleListArticles)
				r.Post("/", s.handleCreateArticle)
				r.Get("/{articleID}", s.handleGetArticle)
				r.Put("/{articleID}", s.handleUpdateArticle)
				r.Delete("/{articleID}", s.handleDeleteArticle)
				r.Post("/{articleID}/refetch", s.handleRefetchArticle)
			})

			r.Route("/links", func(r chi.Router) {
				r.Get("/", s.handleListLinks)
				r.Post("/", s.handleCreateLink)
				r.Get("/{linkID}", s.handleGetLink)
				r.Put("/{linkID}", s.handleUpdateLink)
				r.Delete("/{linkID}", s.handleDeleteLink)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", s.handleListNotes)
				r.Post("/", s.handleCreateNote)
				r.Get("/{noteID}", s.handleGetNote)
				r.Put("/{noteID}", s.handleUpdateNote)
				r.Delete("/{noteID}", s.handleDeleteNote)
			})

			r.Route("/books", func(r chi.Router) {
				r.Get("/", s.handleListBooks)
				r.Post("/", s.handleCreateBook)
				r.Get("/{bookID}", s.handleGetBook)
				r.Put("/{bookID}", s.handleUpdateBook)
				r.Delete("/{bookID}", s.handleDeleteBook)
				r.Post("/{bookID}/status", s.handleUpdateBookStatus)
			})

			r.Get("/tags", s.handleListTags)

			// Podcast subscriptions
			r.Route("/podcasts", func(r chi.Router) {
				r.Get("/", s.handleListFeeds)
				r.Post("/", s.handleSubscribe)
				r.Get("/{feedID}", s.handleGetFeed)
				r.Delete("/{feedID}", s.handleUnsubscribe)
				r.Post("/{feedID}/refresh", s.handleRefreshFeed)
				r.Get("/{feedID}/episodes", s.handleListFeedEpisodes)
			})

			r.Get("/episodes/queue", s.handleGetQueue)
			r.Get("/episodes/{episodeID}", s.handleGetEpisode)
			r.Post("/episodes/{episodeID}/status", s.handleUpdateEpisodeStatus)
			r.Post("/episodes/{episodeID}/position", s.handleUpdateEpisodePosition)

			r.Route("/player", func(r chi.Router) {
				r.Get("/", s.handleGetPlayerState)
				r.Post("/play", s.handlePlayerPlay)
				r.Post("/pause", s.handlePlayerPause)
				r.Post("/stop", s.handlePlayerStop)
				r.Post("/seek", s.handlePlayerSeek)
				r.Post("/skip", s.handlePlayerSkip)
				r.Post("/rate", s.handlePlayerRate)
				r.Post("/report", s.handlePlayerReport)
			})

			r.Get("/widgets/pokemon", s.handleGetPokemon)
			r.Get("/widgets/trivia", s.handleGetTrivia)

			r.Get("/export", s.handleExport)

			// Admin Job Triggers
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				r.Get("/jobs/status", s.handleGetAdminJobsStatus)
				r.Post("/jobs/run", s.handleRunAdminJob)

				// User Management Routes
				r.Get("/users", s.handleAdminListUsers)
				r.Post("/users", s.handleAdminCreateUser)
				r.Put("/users/{userID}", s.handleAdminUpdateUser)
				r.Delete("/users/{userID}", s.handleAdminDeleteUser)
			})
		})

		// WebSocket route
		r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromContext(r)
			websocket.ServeWs(s.app.WsHub(), w, r, user.ID)
		})
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Frontend Routes
	webSubFS, err := fs.Sub(assets.WebFS, "web")
	if err != nil {
		s.log.Fatal("Failed to create web sub-filesystem", logger.Error(err))
	}

	// Create a file server for the static assets within the embedded FS.
	staticFS, err := fs.Sub(webSubFS, "dist")
	if err != nil {
		s.log.Fatal("Failed to create static sub-filesystem", logger.Error(err))
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Serve the favicon from the embedded FS.
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		file, err := staticFS.Open("images/favicon.ico")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer file.Close()
		http.ServeContent(w, r, "favicon.ico", time.Time{}, file.(io.ReadSeeker))
	})

	// This handler serves a specific HTML file from the embedded FS.
	serveHTML := func(fileName string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			file, err := webSubFS.Open(fileName)
			if err != nil {
				http.NotFound(w, r)
				s.log.Error("Error serving embedded file", logger.String("file", fileName), logger.Error(err))
				return
			}
			defer file.Close()
			http.ServeContent(w, r, fileName, time.Time{}, file.(io.ReadSeeker))
		}
	}

	r.Get("/", serveHTML("home.html"))
	r.Get("/login", serveHTML("login.html"))
	r.Get("/articles", serveHTML("articles.html"))
	r.Get("/articles/{articleID}", serveHTML("articles.html"))
	r.Get("/links", serveHTML("links.html"))
	r.Get("/notes", serveHTML("notes.html"))
	r.Get("/books", serveHTML("books.html"))
	r.Get("/podcasts", serveHTML("podcasts.html"))
	r.Get("/podcasts/{feedID}", serveHTML("podcasts.html"))
	r.Get("/player", serveHTML("player.html"))
	r.Get("/admin", serveHTML("admin.html"))

	return r
}

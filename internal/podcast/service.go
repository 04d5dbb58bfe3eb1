package podcast

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vrsandeep/homebase/internal/artwork"
	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/metrics"
	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

// ErrAlreadySubscribed is returned with the existing feed when a user
// subscribes to a URL twice.
var ErrAlreadySubscribed = fmt.Errorf("already subscribed: %w", store.ErrAlreadyExists)

// Service manages subscriptions and their episode lists.
type Service struct {
	store  *store.Store
	client *fetch.Client
	bus    *events.Bus
	log    logger.Logger

	hostRate rate.Limit
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewService creates a podcast service. hostRate is the number of feed
// fetches per second allowed against a single host; zero or less disables
// pacing.
func NewService(st *store.Store, client *fetch.Client, bus *events.Bus, log logger.Logger, hostRate float64) *Service {
	limit := rate.Inf
	if hostRate > 0 {
		limit = rate.Limit(hostRate)
	}
	return &Service{
		store:    st,
		client:   client,
		bus:      bus,
		log:      log,
		hostRate: limit,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (s *Service) limiter(feedURL string) *rate.Limiter {
	host := feedURL
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		host = u.Host
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[host]
	if !ok {
		l = rate.NewLimiter(s.hostRate, 1)
		s.limiters[host] = l
	}
	return l
}

// Fetch downloads and parses a feed, waiting for the host's rate limiter.
func (s *Service) Fetch(ctx context.Context, feedURL string) (*ParsedFeed, error) {
	if err := s.limiter(feedURL).Wait(ctx); err != nil {
		return nil, err
	}
	return FetchFeed(ctx, s.client, feedURL)
}

// Subscribe fetches the feed at feedURL and stores it with all of its
// episodes. When the user already follows the URL the existing feed is
// returned together with ErrAlreadySubscribed.
func (s *Service) Subscribe(ctx context.Context, userID int64, feedURL string) (*models.Feed, error) {
	if existing, err := s.store.GetFeedByURL(userID, feedURL); err == nil {
		return existing, ErrAlreadySubscribed
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	parsed, err := s.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, added, err := s.store.SubscribeFeed(userID, parsed.Feed, parsed.Episodes)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with a concurrent subscribe.
		existing, getErr := s.store.GetFeedByURL(userID, feedURL)
		if getErr != nil {
			return nil, getErr
		}
		return existing, ErrAlreadySubscribed
	}
	if err != nil {
		return nil, fmt.Errorf("store feed: %w", err)
	}
	metrics.EpisodesAdded.Add(float64(added))

	if thumb := s.thumbnail(ctx, feed.ArtworkURL); thumb != "" {
		if err := s.store.SetFeedThumbnail(feed.ID, thumb); err != nil {
			s.log.Warn("Failed to store feed thumbnail", logger.Int64("feed_id", feed.ID), logger.Error(err))
		}
	}

	s.log.Info("Subscribed to feed",
		logger.Int64("user_id", userID),
		logger.String("url", feedURL),
		logger.Int("episodes", added))
	s.bus.Emit(events.FeedsChanged, userID, map[string]int64{"id": feed.ID})
	s.bus.Emit(events.EpisodesChanged, userID, map[string]interface{}{"feed_id": feed.ID, "added": added})

	return s.store.GetFeed(userID, feed.ID)
}

// thumbnail downloads and shrinks the artwork. Failures are logged and
// yield an empty string.
func (s *Service) thumbnail(ctx context.Context, artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	data, err := s.client.GetBody(ctx, "image", artworkURL, "image/*")
	if err != nil {
		s.log.Warn("Failed to fetch feed artwork", logger.String("url", artworkURL), logger.Error(err))
		return ""
	}
	thumb, err := artwork.GenerateThumbnail(data)
	if err != nil {
		s.log.Warn("Failed to generate feed thumbnail", logger.String("url", artworkURL), logger.Error(err))
		return ""
	}
	return thumb
}

// Refresh re-reads one of the user's feeds and stores episodes whose GUID
// has not been seen. It returns the number of episodes added.
func (s *Service) Refresh(ctx context.Context, userID, feedID int64) (int, error) {
	feed, err := s.store.GetFeed(userID, feedID)
	if err != nil {
		return 0, err
	}
	return s.refresh(ctx, feed)
}

func (s *Service) refresh(ctx context.Context, feed *models.Feed) (int, error) {
	parsed, err := s.Fetch(ctx, feed.URL)
	if err != nil {
		metrics.FeedRefreshes.WithLabelValues(metrics.OutcomeFailed).Inc()
		return 0, err
	}

	existing, err := s.store.ExistingGUIDs(feed.ID)
	if err != nil {
		return 0, err
	}
	fresh := make([]*models.Episode, 0)
	for _, ep := range parsed.Episodes {
		if existing[ep.GUID] {
			continue
		}
		// Duplicate GUIDs inside one document count once.
		existing[ep.GUID] = true
		fresh = append(fresh, ep)
	}

	added, err := s.store.InsertEpisodes(feed.UserID, feed.ID, fresh)
	if err != nil {
		return 0, fmt.Errorf("store episodes: %w", err)
	}

	parsed.Feed.ID = feed.ID
	if parsed.Feed.Title == "" {
		parsed.Feed.Title = feed.Title
	}
	if err := s.store.UpdateFeedMetadata(parsed.Feed, time.Now()); err != nil {
		return added, fmt.Errorf("update feed: %w", err)
	}

	metrics.FeedRefreshes.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.EpisodesAdded.Add(float64(added))
	s.bus.Emit(events.FeedsChanged, feed.UserID, map[string]int64{"id": feed.ID})
	if added > 0 {
		s.bus.Emit(events.EpisodesChanged, feed.UserID, map[string]interface{}{"feed_id": feed.ID, "added": added})
	}
	return added, nil
}

// RefreshAll refreshes every feed of every user. A failing feed is logged
// and skipped. progress, when non-nil, is called after each feed.
func (s *Service) RefreshAll(ctx context.Context, progress func(done, total int)) (int, error) {
	feeds, err := s.store.ListAllFeeds()
	if err != nil {
		return 0, err
	}
	total := 0
	for i, feed := range feeds {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		added, err := s.refresh(ctx, feed)
		if err != nil {
			s.log.Warn("Feed refresh failed",
				logger.Int64("feed_id", feed.ID),
				logger.String("url", feed.URL),
				logger.Error(err))
		}
		total += added
		if progress != nil {
			progress(i+1, len(feeds))
		}
	}
	s.log.Info("Refreshed all feeds", logger.Int("feeds", len(feeds)), logger.Int("added", total))
	return total, nil
}

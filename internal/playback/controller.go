// Package playback runs each user's podcast player: what is loaded, whether
// it is playing, and where the playhead is.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/metrics"
	"github.com/vrsandeep/homebase/internal/models"
)

// Rate bounds.
const (
	MinRate = 0.5
	MaxRate = 3.0
)

// DefaultSaveInterval is how often the position of a playing episode is saved.
const DefaultSaveInterval = 10 * time.Second

// Browser signals accepted by Report.
const (
	SignalTimeUpdate = "timeupdate"
	SignalWaiting    = "waiting"
	SignalCanPlay    = "canplay"
	SignalEnded      = "ended"
)

var (
	ErrNothingLoaded = errors.New("no episode is loaded")
	ErrNoAudio       = errors.New("episode has no audio url")
	ErrUnknownSignal = errors.New("unknown player signal")
)

// Store is the persistence the controller needs.
type Store interface {
	GetEpisode(userID, id int64) (*models.Episode, error)
	UpdateEpisodePosition(userID, id int64, position float64) error
	MarkEpisodePlayed(userID, id int64) error
	GetPlaybackRate(userID int64) (float64, error)
	SetPlaybackRate(userID int64, rate float64) error
}

// Controller is one user's player. Every method is serialized by mu.
type Controller struct {
	mu           sync.Mutex
	userID       int64
	store        Store
	bus          *events.Bus
	log          logger.Logger
	el           Element
	saveInterval time.Duration

	status    models.PlayerStatus
	buffering bool
	episode   *models.Episode
	rate      float64

	stopSave chan struct{}
	wg       sync.WaitGroup
	closed   bool
}

// NewController creates an idle controller around el.
func NewController(userID int64, st Store, bus *events.Bus, log logger.Logger, el Element, saveInterval time.Duration) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	if saveInterval <= 0 {
		saveInterval = DefaultSaveInterval
	}
	return &Controller{
		userID:       userID,
		store:        st,
		bus:          bus,
		log:          log.With(logger.Int64("user_id", userID)),
		el:           el,
		saveInterval: saveInterval,
		status:       models.PlayerIdle,
		rate:         1,
	}
}

// State returns a snapshot of the player.
func (c *Controller) State() models.PlayerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() models.PlayerState {
	state := models.PlayerState{
		Status:    c.status,
		Buffering: c.buffering,
		Rate:      c.rate,
	}
	if c.episode != nil {
		ep := *c.episode
		state.Episode = &ep
		state.Position = c.el.CurrentTime()
		state.Duration = c.durationLocked()
	}
	return state
}

// durationLocked prefers the element's duration and falls back to the
// feed's declared length.
func (c *Controller) durationLocked() float64 {
	if d := c.el.Duration(); d > 0 {
		return d
	}
	if c.episode != nil {
		return float64(c.episode.Duration)
	}
	return 0
}

// Play starts episodeID. Playing the loaded episode resumes it where it
// is; switching episodes saves the previous one's position first.
func (c *Controller) Play(ctx context.Context, episodeID int64) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.episode != nil && c.episode.ID == episodeID {
		if c.status != models.PlayerPlaying {
			c.el.Play()
			c.setStatusLocked(models.PlayerPlaying)
		}
		return c.publishLocked(), nil
	}

	ep, err := c.store.GetEpisode(c.userID, episodeID)
	if err != nil {
		return c.stateLocked(), err
	}
	if ep.AudioURL == "" {
		return c.stateLocked(), ErrNoAudio
	}

	if c.episode != nil {
		c.savePositionLocked()
	}
	c.episode = ep
	c.buffering = false
	c.setStatusLocked(models.PlayerLoading)
	c.publishLocked()

	rate, err := c.store.GetPlaybackRate(c.userID)
	if err != nil {
		c.log.Warn("Failed to read playback rate", logger.Error(err))
		rate = c.rate
	}
	c.rate = clampRate(rate)

	c.el.Load(ep.AudioURL)
	c.el.SetCurrentTime(ep.PlayPosition)
	c.el.SetRate(c.rate)
	c.el.Play()
	c.setStatusLocked(models.PlayerPlaying)
	return c.publishLocked(), nil
}

// Pause halts playback and saves the position.
func (c *Controller) Pause(ctx context.Context) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.episode == nil {
		return c.stateLocked(), ErrNothingLoaded
	}
	c.el.Pause()
	c.savePositionLocked()
	c.setStatusLocked(models.PlayerPaused)
	return c.publishLocked(), nil
}

// Stop saves the position, unloads the episode and returns to idle.
func (c *Controller) Stop(ctx context.Context) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.episode != nil {
		c.el.Pause()
		c.savePositionLocked()
	}
	c.unloadLocked()
	return c.publishLocked(), nil
}

// Seek moves the playhead to t, clamped to [0, duration]. With an unknown
// duration only the lower bound applies.
func (c *Controller) Seek(t float64) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.episode == nil {
		return c.stateLocked(), ErrNothingLoaded
	}
	c.seekLocked(t)
	return c.publishLocked(), nil
}

// Skip moves the playhead by delta seconds, with the same clamping as Seek.
func (c *Controller) Skip(delta float64) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.episode == nil {
		return c.stateLocked(), ErrNothingLoaded
	}
	c.seekLocked(c.el.CurrentTime() + delta)
	return c.publishLocked(), nil
}

func (c *Controller) seekLocked(t float64) {
	c.el.SetCurrentTime(clampPosition(t, c.durationLocked()))
}

// SetRate clamps rate to [MinRate, MaxRate], applies it and saves it as the
// user's preference.
func (c *Controller) SetRate(rate float64) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = clampRate(rate)
	if c.episode != nil {
		c.el.SetRate(c.rate)
	}
	if err := c.store.SetPlaybackRate(c.userID, c.rate); err != nil {
		return c.stateLocked(), fmt.Errorf("save playback rate: %w", err)
	}
	return c.publishLocked(), nil
}

// Ended marks the loaded episode played and returns to idle.
func (c *Controller) Ended() (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endedLocked()
}

func (c *Controller) endedLocked() (models.PlayerState, error) {
	if c.episode == nil {
		return c.stateLocked(), ErrNothingLoaded
	}
	err := c.store.MarkEpisodePlayed(c.userID, c.episode.ID)
	c.unloadLocked()
	state := c.publishLocked()
	if err != nil {
		return state, fmt.Errorf("mark played: %w", err)
	}
	return state, nil
}

// Report applies a signal from the browser's audio element. A nil position
// or duration leaves that value alone, so buffering signals never move the
// playhead.
func (c *Controller) Report(signal string, position, duration *float64) (models.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.episode == nil {
		return c.stateLocked(), ErrNothingLoaded
	}
	if r, ok := c.el.(reporter); ok && (position != nil || duration != nil) {
		pos, dur := c.el.CurrentTime(), 0.0
		if position != nil {
			pos = *position
		}
		if duration != nil {
			dur = *duration
		}
		r.Report(pos, dur)
	}
	switch signal {
	case SignalTimeUpdate, "":
		// Position only; no state event to keep the socket quiet.
		return c.stateLocked(), nil
	case SignalWaiting:
		c.buffering = true
	case SignalCanPlay:
		c.buffering = false
	case SignalEnded:
		return c.endedLocked()
	default:
		return c.stateLocked(), ErrUnknownSignal
	}
	return c.publishLocked(), nil
}

// Close stops the save ticker, saving a playing episode's position once
// more. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.episode != nil && c.status == models.PlayerPlaying {
		c.savePositionLocked()
	}
	c.stopSaveLocked()
	if c.status == models.PlayerPlaying {
		metrics.ActivePlayers.Dec()
	}
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) unloadLocked() {
	c.el.Load("")
	c.episode = nil
	c.buffering = false
	c.setStatusLocked(models.PlayerIdle)
}

// setStatusLocked moves to status, starting the save ticker on entering
// playing and stopping it on leaving.
func (c *Controller) setStatusLocked(status models.PlayerStatus) {
	old := c.status
	c.status = status
	if old == status {
		return
	}
	if status == models.PlayerPlaying {
		metrics.ActivePlayers.Inc()
		c.startSaveLocked()
	} else if old == models.PlayerPlaying {
		metrics.ActivePlayers.Dec()
		c.stopSaveLocked()
	}
}

func (c *Controller) startSaveLocked() {
	if c.closed {
		return
	}
	c.stopSaveLocked()
	stop := make(chan struct{})
	c.stopSave = stop
	c.wg.Add(1)
	go c.saveLoop(stop)
}

func (c *Controller) stopSaveLocked() {
	if c.stopSave != nil {
		close(c.stopSave)
		c.stopSave = nil
	}
}

func (c *Controller) saveLoop(stop chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.saveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			select {
			case <-stop:
				// Stopped while waiting for the lock.
				c.mu.Unlock()
				return
			default:
			}
			c.savePositionLocked()
			c.mu.Unlock()
		}
	}
}

func (c *Controller) savePositionLocked() {
	if c.episode == nil {
		return
	}
	pos := c.el.CurrentTime()
	if err := c.store.UpdateEpisodePosition(c.userID, c.episode.ID, pos); err != nil {
		c.log.Warn("Failed to save play position",
			logger.Int64("episode_id", c.episode.ID),
			logger.Error(err))
		return
	}
	c.episode.PlayPosition = pos
}

func (c *Controller) publishLocked() models.PlayerState {
	state := c.stateLocked()
	if c.bus != nil {
		c.bus.Emit(events.PlayerState, c.userID, state)
	}
	return state
}

func clampRate(rate float64) float64 {
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}

func clampPosition(t, duration float64) float64 {
	if t < 0 {
		return 0
	}
	if duration > 0 && t > duration {
		return duration
	}
	return t
}

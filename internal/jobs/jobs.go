package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/fetch"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/podcast"
	"github.com/vrsandeep/homebase/internal/store"
)

// Job ids.
const (
	PodcastRefreshJob = "podcast-refresh"
	SessionPruneJob   = "session-prune"
)

// sessionPruneInterval is fixed; sessions expire after days, not minutes.
const sessionPruneInterval = 6 * time.Hour

// ProgressUpdate is published on the event bus while a job runs.
type ProgressUpdate struct {
	JobID    string  `json:"job_id"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Done     bool    `json:"done"`
}

// RegisterJobs adds the built-in jobs to the manager.
func RegisterJobs(jm *JobManager) {
	jm.Register(PodcastRefreshJob, "Refresh Podcast Feeds", RunPodcastRefresh)
	jm.Register(SessionPruneJob, "Prune Expired Sessions", RunSessionPrune)
}

// StartJobs starts the background job scheduler. The caller stops the
// returned scheduler on shutdown.
func StartJobs(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startPodcastRefreshJob(s, app)
	schedule(s, app, SessionPruneJob, sessionPruneInterval)

	app.Logger().Info("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func startPodcastRefreshJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().Podcasts.RefreshInterval
	if interval <= 0 {
		app.Logger().Info("Podcast refresh interval is 0, scheduled refresh is disabled.")
		return
	}
	schedule(s, app, PodcastRefreshJob, time.Duration(interval)*time.Minute)
}

func schedule(s *gocron.Scheduler, app JobContext, jobID string, every time.Duration) {
	log := app.Logger()
	log.Info("Scheduling job", logger.String("job", jobID), logger.Duration("every", every))

	// The first tick waits a full interval; startup should not stampede feed hosts.
	_, err := s.Every(every).WaitForSchedule().Do(func() {
		log.Debug("Scheduler is triggering job", logger.String("job", jobID))
		// Going through the manager keeps scheduled runs from overlapping manual ones.
		if err := app.JobManager().RunJob(jobID, app); err != nil {
			log.Warn("Scheduled job could not start", logger.String("job", jobID), logger.Error(err))
		}
	})
	if err != nil {
		log.Error("Error scheduling job", logger.String("job", jobID), logger.Error(err))
	}
}

func publishProgress(app JobContext, update ProgressUpdate) {
	app.Bus().Emit(events.JobProgress, 0, update)
}

// RunPodcastRefresh refreshes every subscribed feed of every user.
func RunPodcastRefresh(app JobContext) error {
	cfg := app.Config()
	client := fetch.New(time.Duration(cfg.HTTP.Timeout)*time.Second, cfg.HTTP.UserAgent,
		fetch.WithPrivateHosts(cfg.HTTP.AllowPrivateHosts))
	svc := podcast.NewService(store.New(app.DB()), client, app.Bus(), app.Logger(), cfg.Podcasts.HostRate)

	publishProgress(app, ProgressUpdate{JobID: PodcastRefreshJob, Message: "Refreshing feeds..."})
	added, err := svc.RefreshAll(context.Background(), func(done, total int) {
		publishProgress(app, ProgressUpdate{
			JobID:    PodcastRefreshJob,
			Message:  fmt.Sprintf("Refreshed %d of %d feeds", done, total),
			Progress: float64(done) / float64(total) * 100,
		})
	})
	if err != nil {
		publishProgress(app, ProgressUpdate{JobID: PodcastRefreshJob, Message: err.Error(), Done: true})
		return err
	}
	publishProgress(app, ProgressUpdate{
		JobID:    PodcastRefreshJob,
		Message:  fmt.Sprintf("Refresh complete. Added %d new episodes.", added),
		Progress: 100,
		Done:     true,
	})
	return nil
}

// RunSessionPrune deletes sessions past their expiry.
func RunSessionPrune(app JobContext) error {
	removed, err := store.New(app.DB()).PruneExpiredSessions(time.Now())
	if err != nil {
		publishProgress(app, ProgressUpdate{JobID: SessionPruneJob, Message: err.Error(), Done: true})
		return err
	}
	app.Logger().Info("Pruned expired sessions", logger.Int64("removed", removed))
	publishProgress(app, ProgressUpdate{
		JobID:    SessionPruneJob,
		Message:  fmt.Sprintf("Prune complete. Removed %d expired sessions.", removed),
		Progress: 100,
		Done:     true,
	})
	return nil
}

package jobs

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/logger"
)

// JobContext is an interface that provides the necessary dependencies for a job to run.
// The core.App struct implements this interface.
type JobContext interface {
	DB() *sql.DB
	Config() *config.Config
	Logger() logger.Logger
	Bus() *events.Bus
	JobManager() *JobManager
}

var (
	ErrJobRunning  = errors.New("a job is already running")
	ErrJobNotFound = errors.New("job not found")
)

// Task is the body of a job. A returned error marks the run as failed.
type Task func(ctx JobContext) error

// Job states reported by GetStatus.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type JobStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

type JobManager struct {
	mu      sync.Mutex
	jobs    map[string]Task
	status  map[string]*JobStatus
	running bool
	appCtx  JobContext // used by scheduled runs
	log     logger.Logger
}

func NewManager(appCtx JobContext) *JobManager {
	log := logger.NewNop()
	if appCtx != nil && appCtx.Logger() != nil {
		log = appCtx.Logger()
	}
	return &JobManager{
		jobs:   make(map[string]Task),
		status: make(map[string]*JobStatus),
		appCtx: appCtx,
		log:    log,
	}
}

// Register adds a job under id. name is what the admin page shows.
func (jm *JobManager) Register(id, name string, task Task) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.jobs[id] = task
	jm.status[id] = &JobStatus{ID: id, Name: name, Status: StatusIdle}
}

// RunJob starts the job in the background. Only one job runs at a time.
func (jm *JobManager) RunJob(id string, ctx JobContext) error {
	jm.mu.Lock()
	if jm.running {
		jm.mu.Unlock()
		return ErrJobRunning
	}

	task, ok := jm.jobs[id]
	if !ok {
		jm.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if ctx == nil {
		ctx = jm.appCtx
	}

	jm.running = true
	status := jm.status[id]
	status.Status = StatusRunning
	status.StartTime = time.Now()
	status.EndTime = time.Time{}
	status.Message = "Job started..."
	jm.mu.Unlock()

	jm.log.Info("Starting job", logger.String("job", id))
	go func() {
		var taskErr error
		defer func() {
			r := recover()

			jm.mu.Lock()
			status.EndTime = time.Now()
			switch {
			case r != nil:
				jm.log.Error("Job panicked", logger.String("job", id), logger.Any("panic", r))
				status.Status = StatusFailed
				status.Message = fmt.Sprintf("Job panicked: %v", r)
			case taskErr != nil:
				jm.log.Warn("Job failed", logger.String("job", id), logger.Error(taskErr))
				status.Status = StatusFailed
				status.Message = taskErr.Error()
			default:
				status.Status = StatusSuccess
				status.Message = "Job completed successfully."
			}
			jm.running = false
			jm.mu.Unlock()
			jm.log.Info("Finished job", logger.String("job", id))
		}()

		taskErr = task(ctx)
	}()
	return nil
}

// GetStatus returns a snapshot of every registered job, ordered by id.
func (jm *JobManager) GetStatus() []*JobStatus {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	statuses := make([]*JobStatus, 0, len(jm.status))
	for _, s := range jm.status {
		cp := *s
		statuses = append(statuses, &cp)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses
}

// IsRunning reports whether any job is currently running.
func (jm *JobManager) IsRunning() bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	return jm.running
}

package api

import (
	"errors"
	"net/http"

	"github.com/vrsandeep/homebase/internal/jobs"
)

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version})
}

func (s *Server) handleRunAdminJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobID   string `json:"job_id"`
		JobName string `json:"job_name"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	jobID := payload.JobID
	if jobID == "" {
		jobID = payload.JobName
	}
	if jobID == "" {
		RespondWithError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	err := s.app.JobManager().RunJob(jobID, s.app)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		RespondWithError(w, http.StatusConflict, err.Error()) // 409 Conflict if a job is already running
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job '" + jobID + "' started successfully.",
	})
}

func (s *Server) handleGetAdminJobsStatus(w http.ResponseWriter, r *http.Request) {
	statuses := s.app.JobManager().GetStatus()
	RespondWithJSON(w, http.StatusOK, statuses)
}

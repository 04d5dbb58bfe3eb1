package api

import (
	"net/http"
	"sync"

	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
)

const homeSectionLimit = 8

func (s *Server) handleGetHomePageData(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var wg sync.WaitGroup
	var homeData models.HomePageData

	var mu sync.Mutex
	var errs []error
	record := func(err error) {
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		counts, err := s.homeStore.GetHomeCounts(user.ID)
		record(err)
		homeData.Counts = counts
	}()

	go func() {
		defer wg.Done()
		data, err := s.homeStore.GetContinueListening(user.ID, homeSectionLimit)
		record(err)
		homeData.ContinueListening = data
	}()

	go func() {
		defer wg.Done()
		data, err := s.homeStore.GetReadingBooks(user.ID, homeSectionLimit)
		record(err)
		homeData.Reading = data
	}()

	go func() {
		defer wg.Done()
		data, err := s.homeStore.GetRecentArticles(user.ID, homeSectionLimit)
		record(err)
		homeData.RecentArticles = data
	}()

	wg.Wait()

	if len(errs) > 0 {
		for _, e := range errs {
			s.log.Error("Error fetching home page data", logger.Int64("user_id", user.ID), logger.Error(e))
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve home page data")
		return
	}

	RespondWithJSON(w, http.StatusOK, homeData)
}

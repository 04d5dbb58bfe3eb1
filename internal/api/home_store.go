package api

import (
	"github.com/vrsandeep/homebase/internal/models"
)

// HomeStore defines the interface for home page data operations
type HomeStore interface {
	GetHomeCounts(userID int64) (models.HomeCounts, error)
	GetContinueListening(userID int64, limit int) ([]*models.Episode, error)
	GetReadingBooks(userID int64, limit int) ([]*models.Book, error)
	GetRecentArticles(userID int64, limit int) ([]*models.Article, error)
}

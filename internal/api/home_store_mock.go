package api

import (
	"github.com/stretchr/testify/mock"

	"github.com/vrsandeep/homebase/internal/models"
)

// MockHomeStore is a mock implementation of HomeStore interface
type MockHomeStore struct {
	mock.Mock
}

func (m *MockHomeStore) GetHomeCounts(userID int64) (models.HomeCounts, error) {
	args := m.Called(userID)
	return args.Get(0).(models.HomeCounts), args.Error(1)
}

func (m *MockHomeStore) GetContinueListening(userID int64, limit int) ([]*models.Episode, error) {
	args := m.Called(userID, limit)
	return args.Get(0).([]*models.Episode), args.Error(1)
}

func (m *MockHomeStore) GetReadingBooks(userID int64, limit int) ([]*models.Book, error) {
	args := m.Called(userID, limit)
	return args.Get(0).([]*models.Book), args.Error(1)
}

func (m *MockHomeStore) GetRecentArticles(userID int64, limit int) ([]*models.Article, error) {
	args := m.Called(userID, limit)
	return args.Get(0).([]*models.Article), args.Error(1)
}

package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/testutil"
)

func TestBookHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.CookieForUser(t, server, "reader", "password", "user")

	var book models.Book
	t.Run("Create defaults to backlog", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/api/books", map[string]interface{}{
			"title":  "The Overstory",
			"author": "Richard Powers",
		}, cookie)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		decodeBody(t, rr, &book)
		assert.Equal(t, models.BookBacklog, book.Status)
		assert.Nil(t, book.StartedAt)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := map[string]map[string]interface{}{
			"no title":   {"author": "x"},
			"bad status": {"title": "x", "status": "lost"},
			"bad rating": {"title": "x", "rating": 9},
		}
		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				rr := doRequest(t, router, "POST", "/api/books", payload, cookie)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			})
		}
	})

	t.Run("Status transitions fill dates", func(t *testing.T) {
		path := fmt.Sprintf("/api/books/%d/status", book.ID)
		rr := doRequest(t, router, "POST", path, map[string]string{"status": "reading"}, cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var b models.Book
		decodeBody(t, rr, &b)
		assert.Equal(t, models.BookReading, b.Status)
		require.NotNil(t, b.StartedAt)
		assert.Nil(t, b.FinishedAt)

		rr = doRequest(t, router, "POST", path, map[string]string{"status": "finished"}, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		decodeBody(t, rr, &b)
		assert.NotNil(t, b.FinishedAt)

		rr = doRequest(t, router, "POST", path, map[string]string{"status": "borrowed"}, cookie)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Update with status", func(t *testing.T) {
		rr := doRequest(t, router, "PUT", fmt.Sprintf("/api/books/%d", book.ID), map[string]interface{}{
			"title":  "The Overstory",
			"author": "Richard Powers",
			"rating": 5,
			"status": "abandoned",
		}, cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var b models.Book
		decodeBody(t, rr, &b)
		assert.Equal(t, 5, b.Rating)
		assert.Equal(t, models.BookAbandoned, b.Status)
	})

	t.Run("List by status", func(t *testing.T) {
		rr := doRequest(t, router, "POST", "/api/books", map[string]interface{}{"title": "Braiding Sweetgrass", "status": "reading"}, cookie)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doRequest(t, router, "GET", "/api/books?status=reading", nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		var list []models.Book
		decodeBody(t, rr, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "Braiding Sweetgrass", list[0].Title)

		rr = doRequest(t, router, "GET", "/api/books?status=unknown", nil, cookie)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rr := doRequest(t, router, "DELETE", fmt.Sprintf("/api/books/%d", book.ID), nil, cookie)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = doRequest(t, router, "GET", fmt.Sprintf("/api/books/%d", book.ID), nil, cookie)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

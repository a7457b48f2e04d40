package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetProfileSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	profileController := &ProfileController{DB: db}

	router := gin.New()
	router.GET("/profiles/:username", profileController.GetProfileSummary)

	mock.ExpectQuery(`SELECT username, user_icon, points, wins FROM game_profiles WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "user_icon", "points", "wins"}).
			AddRow("alice", 3, 500, 5))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM game_results WHERE scores::jsonb \? \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	req, _ := http.NewRequest("GET", "/profiles/alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, "alice", response["username"])
	assert.Equal(t, float64(3), response["icon"])
	assert.Equal(t, float64(500), response["points"])
	assert.Equal(t, float64(5), response["wins"])
	assert.Equal(t, float64(12), response["games_played"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileSummaryNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	profileController := &ProfileController{DB: db}

	router := gin.New()
	router.GET("/profiles/:username", profileController.GetProfileSummary)

	mock.ExpectQuery(`SELECT username, user_icon, points, wins FROM game_profiles WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username", "user_icon", "points", "wins"}))

	req, _ := http.NewRequest("GET", "/profiles/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecentResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, _ := sqlmock.New()
	defer db.Close()

	profileController := &ProfileController{DB: db}

	router := gin.New()
	router.GET("/profiles/:username/results", profileController.GetRecentResults)

	mock.ExpectQuery(`SELECT room_id, winner_username, timeout_reason, ended_at FROM game_results WHERE scores::jsonb \? \$1 ORDER BY ended_at DESC LIMIT 10`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "winner_username", "timeout_reason", "ended_at"}).
			AddRow("room-9", "alice", nil, "2025-03-01T12:00:00Z").
			AddRow("room-8", "bob", "timeout", "2025-02-28T18:30:00Z"))

	req, _ := http.NewRequest("GET", "/profiles/alice/results", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Username string `json:"username"`
		Results  []struct {
			RoomId        string `json:"room_id"`
			Winner        string `json:"winner"`
			TimeoutReason string `json:"timeout_reason"`
		} `json:"results"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, "alice", response.Username)
	if assert.Len(t, response.Results, 2) {
		assert.Equal(t, "room-9", response.Results[0].RoomId)
		assert.Equal(t, "alice", response.Results[0].Winner)
		assert.Equal(t, "timeout", response.Results[1].TimeoutReason)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

package controllers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	DB *sql.DB
}

// GetProfileSummary returns the durable standings of a player: points, wins
// and how many finished games they appear in.
func (pc *ProfileController) GetProfileSummary(c *gin.Context) {
	username := c.Param("username")

	var profile struct {
		Username string `json:"username"`
		Icon     int    `json:"icon"`
		Points   int    `json:"points"`
		Wins     int    `json:"wins"`
	}

	err := pc.DB.QueryRow(`
		SELECT username, user_icon, points, wins
		FROM game_profiles
		WHERE username = $1
	`, username).Scan(
		&profile.Username, &profile.Icon, &profile.Points, &profile.Wins,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying database: " + err.Error()})
		}
		return
	}

	// Count finished games the player took part in
	var gamesPlayed int
	err = pc.DB.QueryRow(`
		SELECT COUNT(*)
		FROM game_results
		WHERE scores::jsonb ? $1
	`, username).Scan(&gamesPlayed)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting games: " + err.Error()})
		return
	}

	response := gin.H{
		"username":     profile.Username,
		"icon":         profile.Icon,
		"points":       profile.Points,
		"wins":         profile.Wins,
		"games_played": gamesPlayed,
	}

	c.JSON(http.StatusOK, response)
}

// GetRecentResults lists the most recent finished games of a player,
// newest first.
func (pc *ProfileController) GetRecentResults(c *gin.Context) {
	username := c.Param("username")

	rows, err := pc.DB.Query(`
		SELECT room_id, winner_username, timeout_reason, ended_at
		FROM game_results
		WHERE scores::jsonb ? $1
		ORDER BY ended_at DESC
		LIMIT 10
	`, username)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying database: " + err.Error()})
		return
	}
	defer rows.Close()

	type resultRow struct {
		RoomId        string `json:"room_id"`
		Winner        string `json:"winner"`
		TimeoutReason string `json:"timeout_reason,omitempty"`
		EndedAt       string `json:"ended_at"`
	}

	results := make([]resultRow, 0, 10)
	for rows.Next() {
		var r resultRow
		var winner, reason sql.NullString
		if err := rows.Scan(&r.RoomId, &winner, &reason, &r.EndedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading results: " + err.Error()})
			return
		}
		r.Winner = winner.String
		r.TimeoutReason = reason.String
		results = append(results, r)
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "results": results})
}

package web

import (
	"net/http"
	"strconv"
	"strings"
)

type scoreFields struct {
	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`
}

// scores returns both scores, or false after answering 400 when one is
// missing. Sign checks stay with the engine.
func (f scoreFields) scores(w http.ResponseWriter) (int, int, bool) {
	if f.Score1 == nil || f.Score2 == nil {
		badRequest(w, "score1 and score2 are required")
		return 0, 0, false
	}
	return *f.Score1, *f.Score2, true
}

// parseArchived reads the archived query flag; absent means present rounds.
func parseArchived(r *http.Request) (bool, error) {
	value := strings.TrimSpace(r.URL.Query().Get("archived"))
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

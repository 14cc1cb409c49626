package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func todayStamp() string {
	return time.Now().UTC().Format("2006-01-02")
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	response := performRequest(t, app, jsonRequest(t, http.MethodGet, "/health", "", nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("health status = %d, want 200", response.StatusCode)
	}
	response.Body.Close()
}

func TestSaveRatingRoundTrip(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	accessToken := signUpAndLogin(t, app, "Alice", "alice@example.com")
	today := todayStamp()

	payload := map[string]any{"date": today, "rating": 7.5}
	response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/ratings", accessToken, payload))
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("save rating status = %d, want 201", response.StatusCode)
	}
	saved := ratingDTO{}
	decodeBody(t, response, &saved)
	if saved.Date != today || saved.Rating != 7.5 {
		t.Fatalf("saved rating = %+v, want 7.5 on %s", saved, today)
	}

	// A second submission for the same day is rejected and the stored value
	// is untouched.
	retry := map[string]any{"date": today, "rating": 8.0}
	retryResponse := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/ratings", accessToken, retry))
	if retryResponse.StatusCode != fiber.StatusConflict {
		t.Fatalf("repeat save status = %d, want 409", retryResponse.StatusCode)
	}
	if message := readErrorMessage(t, retryResponse); message != "you already rated this day" {
		t.Fatalf("error message = %q", message)
	}

	listResponse := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/ratings", accessToken, nil))
	if listResponse.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d, want 200", listResponse.StatusCode)
	}
	var listed []ratingDTO
	decodeBody(t, listResponse, &listed)
	if len(listed) != 1 || listed[0].Rating != 7.5 {
		t.Fatalf("listed ratings = %+v, want the original 7.5", listed)
	}
}

func TestSaveRatingAcceptsStringNumbers(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	accessToken := signUpAndLogin(t, app, "Alice", "alice@example.com")

	payload := map[string]any{"date": todayStamp(), "rating": "6.5"}
	response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/ratings", accessToken, payload))
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("string rating status = %d, want 201", response.StatusCode)
	}
	saved := ratingDTO{}
	decodeBody(t, response, &saved)
	if saved.Rating != 6.5 {
		t.Fatalf("saved rating = %v, want 6.5", saved.Rating)
	}
}

func TestSaveRatingValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	accessToken := signUpAndLogin(t, app, "Alice", "alice@example.com")
	today := todayStamp()
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

	cases := []struct {
		name        string
		payload     map[string]any
		wantMessage string
	}{
		{"missing fields", map[string]any{"date": "", "rating": ""}, "date and rating are required"},
		{"out of range", map[string]any{"date": today, "rating": 10.5}, "rating must be between 0 and 10"},
		{"negative", map[string]any{"date": today, "rating": -1}, "rating must be between 0 and 10"},
		{"too precise", map[string]any{"date": today, "rating": 7.45}, "rating must have at most 1 decimal place"},
		{"not a number", map[string]any{"date": today, "rating": "abc"}, "rating must be a number"},
		{"bad date", map[string]any{"date": "15-06-2024", "rating": 5}, "invalid date format, use YYYY-MM-DD"},
		{"future date", map[string]any{"date": tomorrow, "rating": 5}, "cannot rate a future date"},
	}

	for _, testCase := range cases {
		response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/ratings", accessToken, testCase.payload))
		if response.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", testCase.name, response.StatusCode)
		}
		if message := readErrorMessage(t, response); message != testCase.wantMessage {
			t.Fatalf("%s: error message = %q, want %q", testCase.name, message, testCase.wantMessage)
		}
	}
}

func TestListRatingsNewestFirst(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	accessToken := signUpAndLogin(t, app, "Alice", "alice@example.com")

	now := time.Now().UTC()
	older := now.AddDate(0, 0, -2).Format("2006-01-02")
	newer := now.AddDate(0, 0, -1).Format("2006-01-02")
	for _, submission := range []map[string]any{
		{"date": older, "rating": 4.0},
		{"date": newer, "rating": 9.0},
	} {
		response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/ratings", accessToken, submission))
		if response.StatusCode != fiber.StatusCreated {
			t.Fatalf("save %v status = %d, want 201", submission["date"], response.StatusCode)
		}
		response.Body.Close()
	}

	listResponse := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/ratings", accessToken, nil))
	var listed []ratingDTO
	decodeBody(t, listResponse, &listed)
	if len(listed) != 2 {
		t.Fatalf("listed %d ratings, want 2", len(listed))
	}
	if listed[0].Date != newer || listed[1].Date != older {
		t.Fatalf("list order = [%s %s], want newest first", listed[0].Date, listed[1].Date)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	accessToken := signUpAndLogin(t, app, "Alice", "alice@example.com")

	// Two recent days inside every window: 7.0 and 8.0 average to 7.5.
	now := time.Now().UTC()
	for index, rating := range []float64{7.0, 8.0} {
		payload := map[string]any{
			"date":   now.AddDate(0, 0, -index).Format("2006-01-02"),
			"rating": rating,
		}
		response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/ratings", accessToken, payload))
		if response.StatusCode != fiber.StatusCreated {
			t.Fatalf("save rating status = %d, want 201", response.StatusCode)
		}
		response.Body.Close()
	}

	response := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/ratings/stats", accessToken, nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("stats status = %d, want 200", response.StatusCode)
	}
	stats := struct {
		Weekly  windowSummaryDTO `json:"weekly"`
		Monthly windowSummaryDTO `json:"monthly"`
		Yearly  windowSummaryDTO `json:"yearly"`
		Overall windowSummaryDTO `json:"overall"`
	}{}
	decodeBody(t, response, &stats)

	for name, window := range map[string]windowSummaryDTO{
		"weekly":  stats.Weekly,
		"overall": stats.Overall,
	} {
		if window.Count != 2 {
			t.Fatalf("%s count = %d, want 2", name, window.Count)
		}
		if window.Avg == nil || *window.Avg != 7.5 {
			t.Fatalf("%s avg = %v, want 7.5", name, window.Avg)
		}
	}

	// The monthly and yearly windows are calendar-anchored, so yesterday's
	// rating can fall outside them around a month or year boundary. Today's
	// rating is always inside both.
	for name, window := range map[string]windowSummaryDTO{
		"monthly": stats.Monthly,
		"yearly":  stats.Yearly,
	} {
		if window.Count < 1 || window.Count > 2 {
			t.Fatalf("%s count = %d, want 1 or 2", name, window.Count)
		}
		if window.Avg == nil {
			t.Fatalf("%s avg is null, want a value", name)
		}
	}
}

func TestGetStatsWithNoRatings(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	accessToken := signUpAndLogin(t, app, "Alice", "alice@example.com")

	response := performRequest(t, app, jsonRequest(t, http.MethodGet, "/api/ratings/stats", accessToken, nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("stats status = %d, want 200", response.StatusCode)
	}
	stats := struct {
		Overall windowSummaryDTO `json:"overall"`
	}{}
	decodeBody(t, response, &stats)
	if stats.Overall.Count != 0 {
		t.Fatalf("overall count = %d, want 0", stats.Overall.Count)
	}
	if stats.Overall.Avg != nil {
		t.Fatalf("overall avg = %v, want null when nothing is rated", *stats.Overall.Avg)
	}
}

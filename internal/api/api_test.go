package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayrate/internal/db"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app, _ := newTestAppWithDatabase(t)
	return app
}

func newTestAppWithDatabase(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}

	handler := NewHandler(database, "test-secret", zap.NewNop(), false)
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

// severDatabase closes the underlying connection so every later query fails,
// simulating a storage outage mid-flight.
func severDatabase(t *testing.T, database *gorm.DB) {
	t.Helper()

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("access raw database handle: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close database: %v", err)
	}
}

func jsonRequest(t *testing.T, method string, target string, accessToken string, payload any) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, target, body)
	if payload != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if accessToken != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)
	}
	return request
}

func performRequest(t *testing.T, app *fiber.App, request *http.Request) *http.Response {
	t.Helper()

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error: %v", request.Method, request.URL.Path, err)
	}
	return response
}

func decodeBody(t *testing.T, response *http.Response, target any) {
	t.Helper()

	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readErrorMessage(t *testing.T, response *http.Response) string {
	t.Helper()

	body := struct {
		Error string `json:"error"`
	}{}
	decodeBody(t, response, &body)
	return body.Error
}

func registerTestAccount(t *testing.T, app *fiber.App, name string, email string) {
	t.Helper()

	payload := map[string]string{"name": name, "email": email, "password": "secret123"}
	response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/auth/register", "", payload))
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s status = %d, want 201", email, response.StatusCode)
	}
	response.Body.Close()
}

func loginTestAccount(t *testing.T, app *fiber.App, email string) (string, []*http.Cookie) {
	t.Helper()

	payload := map[string]string{"email": email, "password": "secret123"}
	response := performRequest(t, app, jsonRequest(t, http.MethodPost, "/api/auth/login", "", payload))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("login %s status = %d, want 200", email, response.StatusCode)
	}

	session := struct {
		AccessToken string `json:"accessToken"`
	}{}
	decodeBody(t, response, &session)
	if session.AccessToken == "" {
		t.Fatalf("login %s returned no access token", email)
	}
	return session.AccessToken, response.Cookies()
}

func signUpAndLogin(t *testing.T, app *fiber.App, name string, email string) string {
	t.Helper()

	registerTestAccount(t, app, name, email)
	accessToken, _ := loginTestAccount(t, app, email)
	return accessToken
}

func refreshCookieValue(t *testing.T, cookies []*http.Cookie) string {
	t.Helper()

	for _, cookie := range cookies {
		if cookie.Name == refreshCookieName {
			return cookie.Value
		}
	}
	t.Fatal("response carried no refresh cookie")
	return ""
}

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/teamfocus-cli/internal/application"
	"github.com/bnema/teamfocus-cli/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeToken = "tok-123"

type fakeBackend struct {
	t    *testing.T
	role string

	mu       sync.Mutex
	name     string
	requests []string
}

func newFakeBackend(t *testing.T, role string) (*fakeBackend, *httptest.Server) {
	t.Helper()

	backend := &fakeBackend{t: t, role: role, name: "Ada"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "hunter2" {
			backend.writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		backend.writeJSON(w, map[string]any{"token": fakeToken, "user": backend.user()})
	})
	mux.HandleFunc("GET /auth/me", backend.authorized(func(w http.ResponseWriter, _ *http.Request) {
		backend.writeJSON(w, backend.user())
	}))
	mux.HandleFunc("GET /users/me", backend.authorized(func(w http.ResponseWriter, _ *http.Request) {
		backend.writeJSON(w, backend.user())
	}))
	mux.HandleFunc("PATCH /users/me", backend.authorized(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		backend.mu.Lock()
		backend.name = body["name"]
		backend.mu.Unlock()
		backend.writeJSON(w, backend.user())
	}))
	mux.HandleFunc("GET /teams/my", backend.authorized(func(w http.ResponseWriter, _ *http.Request) {
		backend.writeJSON(w, map[string]any{"id": "team-1", "name": "Analytical", "screenshotIntervalMinutes": 10})
	}))
	mux.HandleFunc("GET /work-events/my/summary", backend.authorized(func(w http.ResponseWriter, r *http.Request) {
		backend.writeJSON(w, map[string]any{"summary": []map[string]any{{
			"date":              r.URL.Query().Get("dateFrom"),
			"totalWorkMinutes":  125,
			"totalPauseMinutes": 15,
			"sessionCount":      2,
		}}})
	}))
	mux.HandleFunc("GET /work-events/my", backend.authorized(func(w http.ResponseWriter, _ *http.Request) {
		backend.writeJSON(w, map[string]any{
			"workEvents": []map[string]any{{"id": "ev-1", "eventType": "start", "timestamp": "2026-03-02T09:00:00.000Z"}},
			"pagination": map[string]any{"page": 1, "limit": 20, "total": 1, "totalPages": 1},
		})
	}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backend.mu.Lock()
		backend.requests = append(backend.requests, r.Method+" "+r.URL.RequestURI())
		backend.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	return backend, server
}

func (b *fakeBackend) user() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]any{"id": "user-1", "email": "ada@example.com", "name": b.name, "role": b.role}
}

func (b *fakeBackend) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fakeToken {
			b.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(b.t, json.NewEncoder(w).Encode(value))
}

func (b *fakeBackend) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(b.t, json.NewEncoder(w).Encode(map[string]string{"message": message}))
}

func (b *fakeBackend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func useBackend(t *testing.T, server *httptest.Server) {
	t.Helper()
	t.Setenv("TF_API_BASE_URL", server.URL)
	t.Setenv("TF_SECRETS_BACKEND", "file")
	t.Setenv("TF_LOG_LEVEL", "error")
}

func login(t *testing.T, home string) {
	t.Helper()
	stdout, _, err := executeCLIWithInput(t, home, "hunter2\n", "login", "--email", "ada@example.com", "--password-stdin")
	require.NoError(t, err)
	require.Contains(t, stdout, "Signed in as Ada (Analytical)")
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestInvalidConfigSurfacesError(t *testing.T) {
	t.Setenv("TF_LOG_FORMAT", "xml")

	_, _, err := executeCLI(t, t.TempDir(), "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoginStoresTokenAndRemembersEmail(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()

	login(t, home)

	token, err := os.ReadFile(filepath.Join(home, ".teamfocus", "secrets", "teamfocus", "token"))
	require.NoError(t, err)
	assert.Equal(t, fakeToken, string(token))

	prefs, err := os.ReadFile(filepath.Join(home, ".teamfocus", "preferences.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(prefs), "ada@example.com")
}

func TestLoginUsesRememberedEmail(t *testing.T) {
	backend, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	_, stderr, err := executeCLIWithInput(t, home, "\nhunter2\n", "login", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Email [ada@example.com]: ")

	logins := 0
	for _, request := range backend.Requests() {
		if request == "POST /auth/login" {
			logins++
		}
	}
	assert.Equal(t, 2, logins)
}

func TestLoginWrongPassword(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)

	_, _, err := executeCLIWithInput(t, t.TempDir(), "nope\n", "login", "--email", "ada@example.com", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestLoginRejectsManagers(t *testing.T) {
	_, server := newFakeBackend(t, "admin")
	useBackend(t, server)
	home := t.TempDir()

	_, _, err := executeCLIWithInput(t, home, "hunter2\n", "login", "--email", "ada@example.com", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), application.RoleNotAllowedMessage)

	_, _, err = executeCLI(t, home, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLoginWithoutPasswordSourceFails(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)

	_, _, err := executeCLIWithInput(t, t.TempDir(), "", "login", "--email", "ada@example.com")
	require.ErrorIs(t, err, errPasswordRequired)
}

func TestWhoamiRequiresLogin(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tf login")
}

func TestWhoamiJSONAfterLogin(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "whoami", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var out struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Team struct {
			Name string `json:"name"`
		} `json:"team"`
		TrialActive bool `json:"trialActive"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.Equal(t, "Analytical", out.Team.Name)
	assert.True(t, out.TrialActive)
}

func TestLogoutForgetsToken(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed out")

	_, _, err = executeCLI(t, home, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestSummaryDefaultsToToday(t *testing.T) {
	backend, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "summary", "--json")
	require.NoError(t, err)

	today := time.Now().UTC().Format(time.DateOnly)
	assert.Contains(t, stdout, `"date": "`+today+`"`)
	assert.Contains(t, backend.Requests(), "GET /work-events/my/summary?dateFrom="+today+"&dateTo="+today)
}

func TestSummaryRendersTable(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "summary", "--from", "2026-03-01", "--to", "2026-03-02")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Work summary")
	assert.Contains(t, stdout, "work 2h05m")
}

func TestEventsPassesQueryDefaults(t *testing.T) {
	backend, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "events", "--type", "start")
	require.NoError(t, err)
	assert.Contains(t, stdout, "page 1/1 (total 1)")
	assert.Contains(t, backend.Requests(), "GET /work-events/my?page=1&limit=20&eventType=start&sort=timestamp&order=desc")
}

func TestEventsRejectsUnknownType(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "events", "--type", "lunch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown work event type "lunch"`)
}

func TestProfileSetNameThenShow(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)
	home := t.TempDir()
	login(t, home)

	stdout, _, err := executeCLI(t, home, "profile", "set-name", "  Ada Lovelace ")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Name updated to Ada Lovelace")

	stdout, _, err = executeCLI(t, home, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ada Lovelace")
	assert.Contains(t, stdout, "team: Analytical")
	assert.Contains(t, stdout, "every 10 min")
}

func TestProfileSetNameRejectsBlank(t *testing.T) {
	_, server := newFakeBackend(t, "user")
	useBackend(t, server)

	_, _, err := executeCLI(t, t.TempDir(), "profile", "set-name", "   ")
	require.ErrorIs(t, err, application.ErrNameRequired)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "usage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"usage\"")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(input))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

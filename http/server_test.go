package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/stride-server/auth"
	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/mirror"
	"github.com/ViniZap4/stride-server/organizer"
	"github.com/ViniZap4/stride-server/store"
	"github.com/ViniZap4/stride-server/streak"
)

type testServer struct {
	app   *fiber.App
	token string
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	m := metrics.New()
	org := organizer.New(store.NewMemory(), organizer.Options{
		Logger:    zerolog.Nop(),
		Streak:    streak.Tracker{Policy: streak.PolicyGap, Location: time.UTC},
		Metrics:   m,
		PickColor: func(int) int { return 0 },
	})
	opts.Auth = auth.New("pass", "signing-key", time.Hour)
	opts.Metrics = m
	opts.Logger = zerolog.Nop()
	token, _, err := opts.Auth.GenerateToken()
	require.NoError(t, err)
	return &testServer{app: NewServer(org, opts).App(), token: token}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.token = ""

	code, body := ts.do(t, fiber.MethodGet, "/api/tree", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Contains(t, decode[map[string]string](t, body)["error"], "missing token")

	code, _ = ts.do(t, fiber.MethodGet, "/healthz", nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.token = ""

	code, _ := ts.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{"password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := ts.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{"password": "pass"})
	require.Equal(t, fiber.StatusOK, code)
	ts.token = decode[map[string]any](t, body)["token"].(string)

	code, _ = ts.do(t, fiber.MethodGet, "/api/tree", nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestFolderAndNoteFlow(t *testing.T) {
	ts := newTestServer(t, Options{})

	code, _ := ts.do(t, fiber.MethodPost, "/api/folders", map[string]any{"name": "Work"})
	require.Equal(t, fiber.StatusCreated, code)
	code, body := ts.do(t, fiber.MethodPost, "/api/folders", map[string]any{"name": "Work"})
	assert.Equal(t, fiber.StatusConflict, code)
	assert.NotEmpty(t, decode[map[string]string](t, body)["error"])

	code, body = ts.do(t, fiber.MethodPost, "/api/notes", map[string]any{
		"folder":  []string{"Work"},
		"title":   "Plan",
		"content": "hello world",
	})
	require.Equal(t, fiber.StatusCreated, code)
	note := decode[domain.Note](t, body)

	code, body = ts.do(t, fiber.MethodPost, "/api/notes/"+note.ID+"/format", map[string]any{
		"start": 0, "end": 5, "kind": "bold",
	})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "**hello** world", decode[domain.Note](t, body).Content)

	code, body = ts.do(t, fiber.MethodGet, "/api/notes/"+note.ID+"/render", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "<p><strong>hello</strong> world</p>", decode[map[string]string](t, body)["html"])

	code, _ = ts.do(t, fiber.MethodPost, "/api/notes/"+note.ID+"/format", map[string]any{
		"start": 0, "end": 5, "kind": "underline",
	})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = ts.do(t, fiber.MethodPost, "/api/notes/"+note.ID+"/format", map[string]any{
		"start": 0, "end": 50, "kind": "italic",
	})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = ts.do(t, fiber.MethodGet, "/api/notes/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body = ts.do(t, fiber.MethodGet, "/api/search?q=hello&commit=true", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, body), 1)
	_, body = ts.do(t, fiber.MethodGet, "/api/search/history", nil)
	assert.Equal(t, []string{"hello"}, decode[[]string](t, body))

	code, _ = ts.do(t, fiber.MethodDelete, "/api/folders?path=Work", nil)
	require.Equal(t, fiber.StatusOK, code)
	_, body = ts.do(t, fiber.MethodGet, "/api/trash", nil)
	items := decode[[]domain.TrashItem](t, body)
	require.Len(t, items, 1)

	code, _ = ts.do(t, fiber.MethodPost, "/api/trash/"+items[0].ID+"/restore", nil)
	assert.Equal(t, fiber.StatusNoContent, code)
	_, body = ts.do(t, fiber.MethodGet, "/api/tree", nil)
	assert.Len(t, decode[[]domain.Folder](t, body), 1)
}

func TestRecentNotesDefaultLimit(t *testing.T) {
	ts := newTestServer(t, Options{})
	code, _ := ts.do(t, fiber.MethodPost, "/api/folders", map[string]any{"name": "Inbox"})
	require.Equal(t, fiber.StatusCreated, code)
	for i := 0; i < 12; i++ {
		code, _ = ts.do(t, fiber.MethodPost, "/api/notes", map[string]any{
			"folder": []string{"Inbox"},
			"title":  "note",
		})
		require.Equal(t, fiber.StatusCreated, code)
	}

	_, body := ts.do(t, fiber.MethodGet, "/api/notes/recent", nil)
	assert.Len(t, decode[[]map[string]any](t, body), 10)

	_, body = ts.do(t, fiber.MethodGet, "/api/notes/recent?limit=3", nil)
	assert.Len(t, decode[[]map[string]any](t, body), 3)
}

func TestCollections(t *testing.T) {
	ts := newTestServer(t, Options{})

	code, _ := ts.do(t, fiber.MethodPost, "/api/todos", map[string]any{
		"title": "Write report", "date": "2025-06-02", "time": "09:30",
	})
	require.Equal(t, fiber.StatusCreated, code)
	code, _ = ts.do(t, fiber.MethodPost, "/api/todos", map[string]any{
		"title": "Bad", "date": "June 2", "time": "09:30",
	})
	assert.Equal(t, fiber.StatusBadRequest, code)
	_, body := ts.do(t, fiber.MethodGet, "/api/todos?status=pending", nil)
	todos := decode[[]domain.TodoItem](t, body)
	require.Len(t, todos, 1)
	assert.Equal(t, "gray", todos[0].Color)

	code, body = ts.do(t, fiber.MethodPost, "/api/dictionary", map[string]any{"word": "Go", "definition": "a language"})
	require.Equal(t, fiber.StatusCreated, code)
	entry := decode[domain.DictionaryEntry](t, body)
	code, _ = ts.do(t, fiber.MethodPost, "/api/dictionary/"+entry.ID+"/pin", nil)
	assert.Equal(t, fiber.StatusOK, code)
	_, body = ts.do(t, fiber.MethodGet, "/api/dictionary?q=go", nil)
	assert.Len(t, decode[[]domain.DictionaryEntry](t, body), 1)

	code, _ = ts.do(t, fiber.MethodPost, "/api/bookmarks", map[string]any{"title": "Docs"})
	assert.Equal(t, fiber.StatusCreated, code)

	code, body = ts.do(t, fiber.MethodPost, "/api/streak/rest-days/6", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, decode[organizer.StreakStatus](t, body).State.SelectedRestDays, 6)
	code, _ = ts.do(t, fiber.MethodPost, "/api/streak/rest-days/9", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.do(t, fiber.MethodPost, "/api/folders", map[string]any{"name": "Inbox"})

	code, body := ts.do(t, fiber.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, strings.Contains(string(body), "stride_mutations_total"))
}

type fakeAccounts struct{}

func (fakeAccounts) Register(_ context.Context, email, password string) (mirror.Account, error) {
	if email == "taken@example.com" {
		return mirror.Account{}, mirror.ErrAccountExists
	}
	return mirror.Account{ID: "acct-1", Email: email}, nil
}

func (fakeAccounts) Authenticate(_ context.Context, email, password string) (mirror.Account, error) {
	if password != "correct-horse" {
		return mirror.Account{}, mirror.ErrInvalidCredentials
	}
	return mirror.Account{ID: "acct-1", Email: email}, nil
}

type fakeMirror struct{ account string }

func (m *fakeMirror) Attach(_ context.Context, account string) error {
	m.account = account
	return nil
}
func (m *fakeMirror) Detach()         { m.account = "" }
func (m *fakeMirror) Account() string { return m.account }
func (m *fakeMirror) Pending() int    { return 0 }

func TestSyncDisabled(t *testing.T) {
	ts := newTestServer(t, Options{})

	_, body := ts.do(t, fiber.MethodGet, "/api/sync/status", nil)
	assert.Equal(t, false, decode[map[string]any](t, body)["enabled"])

	code, _ := ts.do(t, fiber.MethodPost, "/api/sync/login", map[string]string{"email": "a@b.c", "password": "x"})
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
}

func TestSyncSession(t *testing.T) {
	m := &fakeMirror{}
	ts := newTestServer(t, Options{Accounts: fakeAccounts{}, Mirror: m})

	code, _ := ts.do(t, fiber.MethodPost, "/api/sync/register", map[string]string{
		"email": "taken@example.com", "password": "correct-horse",
	})
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = ts.do(t, fiber.MethodPost, "/api/sync/login", map[string]string{
		"email": "me@example.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = ts.do(t, fiber.MethodPost, "/api/sync/login", map[string]string{
		"email": "me@example.com", "password": "correct-horse",
	})
	require.Equal(t, fiber.StatusOK, code)
	_, body := ts.do(t, fiber.MethodGet, "/api/sync/status", nil)
	assert.Equal(t, "acct-1", decode[map[string]any](t, body)["account"])

	code, _ = ts.do(t, fiber.MethodDelete, "/api/sync/session", nil)
	assert.Equal(t, fiber.StatusNoContent, code)
	assert.Empty(t, m.account)
}

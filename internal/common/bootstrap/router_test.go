package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "github.com/AlibekovAA/usersapp/internal/common/http"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
	"github.com/AlibekovAA/usersapp/internal/page"
	"github.com/AlibekovAA/usersapp/internal/user/domain"
)

// memoryUsers is an in-memory stand-in for the users table, enough to drive
// the router end to end.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.User
}

func (m *memoryUsers) Initialize(context.Context) error { return nil }

func (m *memoryUsers) Create(_ context.Context, f domain.Fields) error {
	if f.Firstname == nil || f.Lastname == nil || *f.Firstname == "" || *f.Lastname == "" {
		return errors.New("constraint violation")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows = append(m.rows, domain.User{ID: m.nextID, Firstname: *f.Firstname, Lastname: *f.Lastname})
	return nil
}

func (m *memoryUsers) Read(_ context.Context, _ domain.ReadFilter) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memoryUsers) Update(context.Context, domain.Fields) (int64, error) { return 0, nil }

func (m *memoryUsers) Delete(_ context.Context, f domain.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, u := range m.rows {
		if u.ID != f.ID.Int {
			kept = append(kept, u)
		}
	}
	m.rows = kept
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, health commonhttp.Pinger) (http.Handler, *memoryUsers) {
	t.Helper()
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "error")

	static := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(static, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "js", "main.js"), []byte("console.log(1);"), 0o600))

	templates := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(templates, "index.html"),
		[]byte(`<h1>{{.Heading}}</h1>{{range .Users}}<p>{{.Firstname}}</p>{{end}}`),
		0o600,
	))

	users := &memoryUsers{}
	pages, err := page.NewRenderer(templates, users, log)
	require.NoError(t, err)

	router := NewRouter(RouterDeps{
		Log:       log,
		Users:     users,
		Pages:     pages,
		StaticDir: static,
		Health:    health,
	})
	return commonhttp.BuildBaseHandler(log, nil, router), users
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func TestRouter_UsersLifecycle(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})

	rec := serve(h, http.MethodPost, "/api/users", strings.NewReader(`{"firstname":"Ada","lastname":"Lovelace"}`))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"firstname":"Ada","lastname":"Lovelace","dob":null,"zipcode":null}]`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<p>Ada</p>")

	rec = serve(h, http.MethodDelete, "/api/users", strings.NewReader(`{"id":1}`))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, http.MethodGet, "/api/users", nil)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestRouter_StaticFiles(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})

	rec := serve(h, http.MethodGet, "/static/js/main.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1);", rec.Body.String())

	rec = serve(h, http.MethodHead, "/static/js/main.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/static/js/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_StaticHidesDirectoryListings(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})

	for _, target := range []string{"/static/", "/static/js/"} {
		rec := serve(h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "main.js", target)
	}
}

func TestRouter_StaticIsReadOnly(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := serve(h, method, "/static/js/main.js", strings.NewReader("x"))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})

	rec := serve(h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})
	rec := serve(h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	h, _ = newTestRouter(t, stubPinger{err: errors.New("down")})
	rec = serve(h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})
	serve(h, http.MethodGet, "/api/users", nil)

	rec := serve(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "usersapp_requests_total")
}

func TestRouter_SetsTraceAndSecurityHeaders(t *testing.T) {
	h, _ := newTestRouter(t, stubPinger{})

	rec := serve(h, http.MethodGet, "/api/users", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

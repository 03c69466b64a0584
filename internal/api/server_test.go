package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZertGraf/user-directory/internal/api"
	"github.com/ZertGraf/user-directory/internal/api/handler"
	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

type staticDirectory struct{}

func (staticDirectory) Snapshot() service.DirectorySnapshot {
	return service.DirectorySnapshot{
		Status: service.StatusSuccess,
		Users:  []domain.User{{ID: 1, Name: "Leanne Graham", Address: domain.Address{City: "Gwenborough"}}},
	}
}

type noUsers struct{}

func (noUsers) GetUser(context.Context, int) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (noUsers) RecentFetches(context.Context, int) ([]*domain.FetchRecord, error) {
	return []*domain.FetchRecord{}, nil
}

func newRouter(t *testing.T, health api.HealthChecker) http.Handler {
	t.Helper()

	log := logger.Nop()
	pages, err := handler.NewPageHandler(staticDirectory{}, noUsers{}, service.ScopePage, log)
	require.NoError(t, err)
	users := handler.NewUserHandler(staticDirectory{}, noUsers{}, service.ScopePage, log)

	return api.NewRouter(users, pages, health, log)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	healthy := newRouter(t, healthFunc(func(context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	unhealthy := newRouter(t, healthFunc(func(context.Context) error { return errors.New("still loading") }))
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	router := newRouter(t, healthFunc(func(context.Context) error { return nil }))

	testCases := []struct {
		target     string
		wantStatus int
	}{
		{target: "/", wantStatus: http.StatusOK},
		{target: "/user/1", wantStatus: http.StatusNotFound},
		{target: "/api/users", wantStatus: http.StatusOK},
		{target: "/api/users/1", wantStatus: http.StatusNotFound},
		{target: "/api/fetches", wantStatus: http.StatusOK},
		{target: "/static/app.css", wantStatus: http.StatusOK},
		{target: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		assert.Equal(t, tc.wantStatus, rec.Code, tc.target)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), tc.target)
	}
}

func TestRouter_RequestID(t *testing.T) {
	t.Parallel()

	router := newRouter(t, healthFunc(func(context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := rec.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "<script>")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get("X-Request-ID"))
}

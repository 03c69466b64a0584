package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ZertGraf/user-directory/internal/api/handler"
	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type pageTestDeps struct {
	users   *MockUserReader
	router  chi.Router
	cleanup func()
}

func setupPageTest(t *testing.T, directory *stubDirectory) *pageTestDeps {
	return setupScopedPageTest(t, directory, service.ScopePage)
}

func setupScopedPageTest(t *testing.T, directory *stubDirectory, scope service.SearchScope) *pageTestDeps {
	users := &MockUserReader{}
	h, err := handler.NewPageHandler(directory, users, scope, logger.Nop())
	require.NoError(t, err)

	r := chi.NewRouter()
	h.Register(r)

	return &pageTestDeps{
		users:  users,
		router: r,
		cleanup: func() {
			users.AssertExpectations(t)
		},
	}
}

func (d *pageTestDeps) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

func TestListPage_FirstPage(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, loaded(makeUsers(13)))
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	for i := 1; i <= 5; i++ {
		assert.Contains(t, body, fmt.Sprintf("User %02d", i))
		assert.Contains(t, body, fmt.Sprintf(`href="/user/%d"`, i))
	}
	assert.NotContains(t, body, "User 06")
	assert.Contains(t, body, "Gwenborough")
	assert.Contains(t, body, `<button class="prev" disabled>Previous</button>`)
	assert.Contains(t, body, `href="/?page=2"`)
	assert.Contains(t, body, "Sort by Name (A-Z)")
	assert.Contains(t, body, `href="/?order=asc"`)
	assert.Contains(t, body, `data-theme="light"`)
	assert.Contains(t, body, "Dark Mode")
}

func TestListPage_LastPage(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, loaded(makeUsers(13)))
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/?page=3&order=asc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "User 13")
	assert.Contains(t, body, `<button class="next" disabled>Next</button>`)
	assert.Contains(t, body, `class="prev"`)
	assert.NotContains(t, body, `<button class="prev" disabled>`)
	assert.Contains(t, body, "Sort by Name (Z-A)")
}

func TestListPage_FilterOnlySeesCurrentPage(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, loaded(makeUsers(13)))
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/?q="+url.QueryEscape("User 12"), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, `class="user-item"`)
	assert.Contains(t, body, `value="User 12"`)
}

func TestListPage_SearchFormPage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		scope        service.SearchScope
		wantPageKept bool
	}{
		{name: "page scope keeps the current page", scope: service.ScopePage, wantPageKept: true},
		{name: "collection scope starts a new search on page 1", scope: service.ScopeCollection},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps := setupScopedPageTest(t, loaded(makeUsers(13)), tc.scope)
			defer deps.cleanup()

			rec := deps.do(httptest.NewRequest(http.MethodGet, "/?q=User&page=2", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.String()
			assert.Contains(t, body, "User 06")
			if tc.wantPageKept {
				assert.Contains(t, body, `name="page"`)
			} else {
				assert.NotContains(t, body, `name="page"`)
			}
		})
	}
}

func TestListPage_Loading(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, &stubDirectory{snap: service.DirectorySnapshot{Status: service.StatusLoading}})
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.Contains(t, body, "main-loader-container")
	assert.NotContains(t, body, "user-list")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestListPage_Failure(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, &stubDirectory{snap: service.DirectorySnapshot{
		Status: service.StatusFailure,
		Err:    service.MsgUsersFailed,
	}})
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, service.MsgUsersFailed)
	assert.NotContains(t, body, "user-list")
	assert.NotContains(t, body, "main-loader-container")
}

func TestListPage_InvalidQuery(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, loaded(makeUsers(3)))
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/?page=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be an integer")
}

func TestDetailPage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		target     string
		mockSetup  func(*MockUserReader)
		wantStatus int
		wantBody   []string
	}{
		{
			name:   "found",
			target: "/user/1",
			mockSetup: func(m *MockUserReader) {
				m.On("GetUser", mock.Anything, 1).Return(leanne(), nil)
			},
			wantStatus: http.StatusOK,
			wantBody: []string{
				"<h1>Leanne Graham</h1>",
				"Bret",
				"Sincere@april.biz",
				"1-770-736-8031 x56442",
				"Romaguera-Crona",
				"hildegard.org",
				"Go Back",
			},
		},
		{
			name:   "not found",
			target: "/user/77",
			mockSetup: func(m *MockUserReader) {
				m.On("GetUser", mock.Anything, 77).Return(nil, domain.ErrUserNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   []string{service.MsgUserMissing, "Go Back"},
		},
		{
			name:       "malformed id",
			target:     "/user/abc",
			mockSetup:  func(m *MockUserReader) {},
			wantStatus: http.StatusNotFound,
			wantBody:   []string{service.MsgUserMissing},
		},
		{
			name:   "fetch failed",
			target: "/user/2",
			mockSetup: func(m *MockUserReader) {
				m.On("GetUser", mock.Anything, 2).Return(nil, domain.ErrFetchFailed)
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   []string{service.MsgUserFailed},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps := setupPageTest(t, loaded(nil))
			defer deps.cleanup()
			tc.mockSetup(deps.users)

			rec := deps.do(httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, tc.wantStatus, rec.Code)
			for _, want := range tc.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestToggleTheme(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		cookie       string
		returnTo     string
		wantTheme    string
		wantLocation string
	}{
		{name: "light to dark", returnTo: "/user/1", wantTheme: "dark", wantLocation: "/user/1"},
		{name: "dark to light", cookie: "dark", returnTo: "/?page=2", wantTheme: "light", wantLocation: "/?page=2"},
		{name: "external return ignored", returnTo: "//evil.example", wantTheme: "dark", wantLocation: "/"},
		{name: "missing return", wantTheme: "dark", wantLocation: "/"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps := setupPageTest(t, loaded(nil))
			defer deps.cleanup()

			form := url.Values{"return": {tc.returnTo}}
			req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "theme", Value: tc.cookie})
			}

			rec := deps.do(req)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tc.wantLocation, rec.Header().Get("Location"))

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "theme", cookies[0].Name)
			assert.Equal(t, tc.wantTheme, cookies[0].Value)
		})
	}
}

func TestDarkThemeRendersToggle(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, loaded(makeUsers(1)))
	defer deps.cleanup()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	body := deps.do(req).Body.String()
	assert.Contains(t, body, `data-theme="dark"`)
	assert.Contains(t, body, "Light Mode")
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	deps := setupPageTest(t, loaded(nil))
	defer deps.cleanup()

	rec := deps.do(httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-theme")
}

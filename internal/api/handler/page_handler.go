package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/ZertGraf/user-directory/web"
	"github.com/go-chi/chi/v5"
)

const (
	themeCookie = "theme"
	themeLight  = "light"
	themeDark   = "dark"
)

// PageHandler renders the list and detail pages as HTML.
type PageHandler struct {
	directory DirectoryReader
	users     UserReader
	scope     service.SearchScope
	templates *template.Template
	static    http.Handler
	logger    *logger.Logger
}

func NewPageHandler(
	directory DirectoryReader,
	users UserReader,
	scope service.SearchScope,
	logger *logger.Logger,
) (*PageHandler, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	return &PageHandler{
		directory: directory,
		users:     users,
		scope:     scope,
		templates: tmpl,
		static:    http.StripPrefix("/static/", http.FileServerFS(static)),
		logger:    logger.Component("handler/page"),
	}, nil
}

// Register adds the page routes to the root router.
func (h *PageHandler) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/user/{id}", h.Detail)
	r.Post("/theme", h.ToggleTheme)
	r.Handle("/static/*", h.static)
}

type listLinks struct {
	Sort string
	Prev string
	Next string
}

type pageData struct {
	Title      string
	Theme      string
	ThemeLabel string
	Path       string
	Loading    bool
	Message    string

	Query          string
	NextOrderLabel string
	List           *service.ListPage
	Links          listLinks

	User *domain.User
}

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r, "User List")

	q, err := parseListQuery(r)
	if err != nil {
		data.Message = err.Error()
		h.render(w, http.StatusBadRequest, "list", data)
		return
	}

	view := q.View(h.scope)
	data.Query = view.Query
	data.NextOrderLabel = view.NextOrder().Label()
	data.Links.Sort = listURL(view.Query, view.NextOrder(), view.Page)

	snap := h.directory.Snapshot()
	switch snap.Status {
	case service.StatusIdle, service.StatusLoading:
		data.Loading = true
	case service.StatusFailure:
		data.Message = snap.Err
	default:
		page := view.Render(snap.Users)
		data.List = &page
		data.Links.Sort = listURL(page.Query, page.NextOrder, page.Number)
		data.Links.Prev = listURL(page.Query, page.Order, page.Number-1)
		data.Links.Next = listURL(page.Query, page.Order, page.Number+1)
	}

	h.render(w, http.StatusOK, "list", data)
}

func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(r, "User Details")

	userID, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		data.Message = service.MsgUserMissing
		h.render(w, http.StatusNotFound, "detail", data)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	switch {
	case err == nil:
		data.Title = user.Name
		data.User = user
		h.render(w, http.StatusOK, "detail", data)
	case errors.Is(err, domain.ErrUserNotFound):
		data.Message = service.MsgUserMissing
		h.render(w, http.StatusNotFound, "detail", data)
	default:
		h.logger.Warn("user detail failed", "user_id", userID, "error", err)
		data.Message = service.MsgUserFailed
		h.render(w, http.StatusBadGateway, "detail", data)
	}
}

// ToggleTheme flips the theme cookie and sends the browser back where it came from.
func (h *PageHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeDark
	if themeFrom(r) == themeDark {
		next = themeLight
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})

	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

func (h *PageHandler) newPageData(r *http.Request, title string) pageData {
	theme := themeFrom(r)
	label := "Dark"
	if theme == themeDark {
		label = "Light"
	}

	return pageData{
		Title:      title,
		Theme:      theme,
		ThemeLabel: label,
		Path:       r.URL.RequestURI(),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf strings.Builder
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data.Loading {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	if _, err := w.Write([]byte(buf.String())); err != nil {
		h.logger.Warn("failed to write page", "error", err)
	}
}

func themeFrom(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err == nil && c.Value == themeDark {
		return themeDark
	}
	return themeLight
}

// safeReturn only allows local absolute paths as redirect targets.
func safeReturn(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/go-chi/chi/v5"
)

// DirectoryReader exposes the process-wide user collection.
type DirectoryReader interface {
	Snapshot() service.DirectorySnapshot
}

// UserReader fetches single records and the fetch journal.
type UserReader interface {
	GetUser(ctx context.Context, userID int) (*domain.User, error)
	RecentFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error)
}

type UserHandler struct {
	directory DirectoryReader
	users     UserReader
	scope     service.SearchScope
	logger    *logger.Logger
}

func NewUserHandler(
	directory DirectoryReader,
	users UserReader,
	scope service.SearchScope,
	logger *logger.Logger,
) *UserHandler {
	return &UserHandler{
		directory: directory,
		users:     users,
		scope:     scope,
		logger:    logger.Component("handler/user"),
	}
}

func (h *UserHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Get("/fetches", h.RecentFetches)

	return r
}

// ListUsers serves one page of the list view-model.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	snap := h.directory.Snapshot()
	switch snap.Status {
	case service.StatusIdle, service.StatusLoading:
		WriteError(w, domain.ErrNotLoaded, h.logger)
		return
	case service.StatusFailure:
		WriteError(w, withMessage(domain.ErrFetchFailed, snap.Err), h.logger)
		return
	}

	page := q.View(h.scope).Render(snap.Users)
	writeJSON(w, http.StatusOK, page, h.logger)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		WriteError(w, userError(err), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user, h.logger)
}

type RecentFetchesResponse struct {
	Fetches []*domain.FetchRecord `json:"fetches"`
}

func (h *UserHandler) RecentFetches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	records, err := h.users.RecentFetches(r.Context(), limit)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, RecentFetchesResponse{Fetches: records}, h.logger)
}

// userError attaches the static detail-view message to a GetUser error.
func userError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidUserID):
		return withMessage(err, service.MsgUserMissing)
	case errors.Is(err, domain.ErrFetchFailed):
		return withMessage(err, service.MsgUserFailed)
	default:
		return err
	}
}

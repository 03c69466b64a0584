package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const maxResponseBytes = 4 << 20

type ClientConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

func (c *ClientConfig) Validate() error {
	return ValidateStruct(c,
		Field(&c.BaseURL, Required, is.URL),
		Field(&c.Timeout, Required, Min(100*time.Millisecond), Max(5*time.Minute)),
	)
}

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

type UserRepo struct {
	client  *http.Client
	baseURL string
	logger  *logger.Logger
}

func NewUserRepo(config *ClientConfig, logger *logger.Logger) (*UserRepo, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return &UserRepo{
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		logger:  logger.Component("repository/upstream"),
	}, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.getJSON(ctx, "/users", &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	r.logger.Debug("users fetched", "count", len(users))
	return users, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int) (*domain.User, error) {
	var user domain.User
	err := r.getJSON(ctx, "/users/"+strconv.Itoa(userID), &user)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) getJSON(ctx context.Context, path string, dst any) error {
	url := r.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{Code: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

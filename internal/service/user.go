package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type UserService struct {
	repo    repository.UserRepository
	journal repository.FetchJournal
	logger  *logger.Logger

	group singleflight.Group
	mu    sync.Mutex
	calls map[string]*sharedCall
}

// sharedCall is one upstream detail request and the callers waiting on it.
// The request is cancelled once the last waiter has gone.
type sharedCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func NewUserService(repo repository.UserRepository, journal repository.FetchJournal, logger *logger.Logger) *UserService {
	return &UserService{
		repo:    repo,
		journal: journal,
		logger:  logger.Component("service/user"),
		calls:   make(map[string]*sharedCall),
	}
}

// ListUsers fetches the whole collection. Any failure is reported as
// domain.ErrFetchFailed.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	started := time.Now()
	users, err := s.repo.List(ctx)
	s.record(ctx, domain.ResourceUsers, nil, started, err)

	if err != nil {
		s.logger.Warn("users fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	s.logger.Info("users fetched",
		"count", len(users),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return users, nil
}

// GetUser fetches a single record. Concurrent calls for the same id share one
// upstream request. A caller whose context ends stops waiting; the shared
// request is cancelled only when no caller is left.
func (s *UserService) GetUser(ctx context.Context, userID int) (*domain.User, error) {
	if userID < 1 {
		return nil, domain.ErrInvalidUserID
	}

	key := strconv.Itoa(userID)
	call, ch := s.join(ctx, key, userID)
	defer s.leave(key, call)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := *res.Val.(*domain.User)
		return &user, nil
	}
}

func (s *UserService) join(ctx context.Context, key string, userID int) (*sharedCall, <-chan singleflight.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call, ok := s.calls[key]
	if !ok {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		call = &sharedCall{ctx: callCtx, cancel: cancel}
		s.calls[key] = call
	}
	call.waiters++

	ch := s.group.DoChan(key, func() (any, error) {
		defer s.finish(key, call)
		return s.fetchUser(call.ctx, userID)
	})
	return call, ch
}

func (s *UserService) leave(key string, call *sharedCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call.waiters--
	if call.waiters > 0 {
		return
	}
	call.cancel()
	if s.calls[key] == call {
		delete(s.calls, key)
		// the next caller must not join a request that is being cancelled
		s.group.Forget(key)
	}
}

func (s *UserService) finish(key string, call *sharedCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls[key] == call {
		delete(s.calls, key)
	}
}

func (s *UserService) fetchUser(ctx context.Context, userID int) (*domain.User, error) {
	started := time.Now()
	user, err := s.repo.GetByID(ctx, userID)
	if err == nil && user == nil {
		err = domain.ErrUserNotFound
	}
	s.record(ctx, domain.ResourceUser, &userID, started, err)

	switch {
	case err == nil:
		s.logger.Info("user fetched",
			"user_id", userID,
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return user, nil
	case errors.Is(err, domain.ErrUserNotFound):
		s.logger.Info("user not found upstream", "user_id", userID)
		return nil, err
	default:
		s.logger.Warn("user fetch failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
}

func (s *UserService) RecentFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	records, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent fetches: %w", err)
	}
	return records, nil
}

func (s *UserService) record(ctx context.Context, resource domain.FetchResource, userID *int, started time.Time, err error) {
	rec := &domain.FetchRecord{
		ID:        uuid.New(),
		Resource:  resource,
		UserID:    userID,
		Outcome:   domain.OutcomeSuccess,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
	}
	if err != nil {
		rec.Outcome = domain.OutcomeFailure
		rec.Error = err.Error()
	}

	// the journal entry outlives a caller that gave up
	if jerr := s.journal.Record(context.WithoutCancel(ctx), rec); jerr != nil {
		s.logger.Warn("failed to record fetch", "resource", resource, "error", jerr)
	}
}

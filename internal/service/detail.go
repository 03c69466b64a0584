package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
)

type DetailSnapshot struct {
	ID       int          `json:"id"`
	Gen      uint64       `json:"generation"`
	Status   Status       `json:"status"`
	User     *domain.User `json:"user,omitempty"`
	Err      string       `json:"error,omitempty"`
	NotFound bool         `json:"not_found,omitempty"`
}

// Ticket identifies one Load call. Done is closed once that load has finished,
// whether or not its result was committed.
type Ticket struct {
	Gen  uint64
	Done <-chan struct{}
}

// DetailLoader fetches one record at a time. Every Load supersedes the
// previous one: the older request is cancelled and, should it still complete,
// its result is dropped.
type DetailLoader struct {
	fetcher UserFetcher
	logger  *logger.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  DetailSnapshot
	closed bool

	wg sync.WaitGroup
}

func NewDetailLoader(fetcher UserFetcher, logger *logger.Logger) *DetailLoader {
	return &DetailLoader{
		fetcher: fetcher,
		logger:  logger.Component("service/detail"),
	}
}

func (l *DetailLoader) Load(ctx context.Context, userID int) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	done := make(chan struct{})
	if l.closed {
		close(done)
		return Ticket{Gen: l.gen, Done: done}
	}

	if l.cancel != nil {
		l.cancel()
	}

	l.gen++
	gen := l.gen

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = DetailSnapshot{ID: userID, Gen: gen, Status: StatusLoading}

	l.wg.Add(1)
	go l.fetch(ctx, cancel, gen, userID, done)

	return Ticket{Gen: gen, Done: done}
}

func (l *DetailLoader) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, userID int, done chan struct{}) {
	defer l.wg.Done()
	defer close(done)
	defer cancel()

	user, err := l.fetcher.GetUser(ctx, userID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		l.logger.Debug("dropping stale user response",
			"user_id", userID,
			"generation", gen,
			"latest", l.gen)
		return
	}

	next := DetailSnapshot{ID: userID, Gen: gen}
	switch {
	case err == nil:
		next.Status = StatusSuccess
		next.User = user
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidUserID):
		next.Status = StatusSuccess
		next.NotFound = true
	default:
		next.Status = StatusFailure
		next.Err = MsgUserFailed
		l.logger.Warn("user load failed", "user_id", userID, "error", err)
	}
	l.state = next
}

func (l *DetailLoader) Snapshot() DetailSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.state
	if snap.User != nil {
		user := *snap.User
		snap.User = &user
	}
	return snap
}

// Generation is the generation of the most recent Load.
func (l *DetailLoader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Close cancels any in-flight load, discards its result and waits for it.
func (l *DetailLoader) Close() {
	l.mu.Lock()
	l.closed = true
	l.gen++
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	l.wg.Wait()
}

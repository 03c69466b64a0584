package service

import (
	"context"
	"slices"
	"sync"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
)

// UserFetcher is the read side the provider and the detail loader depend on.
type UserFetcher interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, userID int) (*domain.User, error)
}

type DirectorySnapshot struct {
	Status Status        `json:"status"`
	Users  []domain.User `json:"users,omitempty"`
	Err    string        `json:"error,omitempty"`
}

// Directory holds the user collection for the lifetime of the process. It is
// fetched once; a fresh Directory is the only way to fetch again.
type Directory struct {
	fetcher UserFetcher
	logger  *logger.Logger

	mu     sync.RWMutex
	status Status
	users  []domain.User
	errMsg string

	startOnce sync.Once
	cancel    context.CancelFunc
	settled   chan struct{}
	wg        sync.WaitGroup
}

func NewDirectory(fetcher UserFetcher, logger *logger.Logger) *Directory {
	return &Directory{
		fetcher: fetcher,
		logger:  logger.Component("service/directory"),
		status:  StatusIdle,
		cancel:  func() {},
		settled: make(chan struct{}),
	}
}

// Start moves the directory from idle to loading and fetches in the background.
// Only the first call has an effect.
func (d *Directory) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)

		d.mu.Lock()
		d.status = StatusLoading
		d.cancel = cancel
		d.mu.Unlock()

		d.logger.Info("loading users")

		d.wg.Add(1)
		go d.load(ctx)
	})
}

func (d *Directory) load(ctx context.Context) {
	defer d.wg.Done()
	defer close(d.settled)

	users, err := d.fetcher.ListUsers(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.status = StatusFailure
		d.errMsg = MsgUsersFailed
		d.logger.Error("users load failed", "error", err)
		return
	}

	d.status = StatusSuccess
	d.users = users
	d.logger.Info("users loaded", "count", len(users))
}

func (d *Directory) Snapshot() DirectorySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return DirectorySnapshot{
		Status: d.status,
		Users:  slices.Clone(d.users),
		Err:    d.errMsg,
	}
}

// Wait blocks until the load has settled or ctx ends. It returns
// domain.ErrNotLoaded if Start was never called.
func (d *Directory) Wait(ctx context.Context) error {
	d.mu.RLock()
	status := d.status
	d.mu.RUnlock()

	if status == StatusIdle {
		return domain.ErrNotLoaded
	}

	select {
	case <-d.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels an in-flight load and waits for it. A closed directory never
// starts.
func (d *Directory) Close() {
	d.startOnce.Do(func() {})

	d.mu.RLock()
	cancel := d.cancel
	d.mu.RUnlock()

	cancel()
	d.wg.Wait()
}

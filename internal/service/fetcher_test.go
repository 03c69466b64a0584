package service_test

import (
	"context"
	"sync"

	"github.com/ZertGraf/user-directory/internal/domain"
)

// gatedFetcher lets a test hold a fetch open until its gate is closed.
type gatedFetcher struct {
	mu           sync.Mutex
	users        []domain.User
	listErr      error
	listGate     chan struct{}
	listCalls    int
	byID         map[int]*domain.User
	errByID      map[int]error
	gates        map[int]chan struct{}
	ignoreCancel bool
	cancelled    int
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		byID:    map[int]*domain.User{},
		errByID: map[int]error{},
		gates:   map[int]chan struct{}{},
	}
}

func (f *gatedFetcher) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()

	if err := f.wait(ctx, gate); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *gatedFetcher) GetUser(ctx context.Context, userID int) (*domain.User, error) {
	f.mu.Lock()
	gate := f.gates[userID]
	f.mu.Unlock()

	if err := f.wait(ctx, gate); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errByID[userID]; err != nil {
		return nil, err
	}
	user, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *gatedFetcher) wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}

	f.mu.Lock()
	ignore := f.ignoreCancel
	f.mu.Unlock()

	if ignore {
		<-gate
		return nil
	}

	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		f.mu.Lock()
		f.cancelled++
		f.mu.Unlock()
		return ctx.Err()
	}
}

func (f *gatedFetcher) cancelledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

// blockingRepo is an upstream whose detail requests only end when cancelled.
type blockingRepo struct {
	mu        sync.Mutex
	started   map[int]int
	cancelled map[int]int
}

func newBlockingRepo() *blockingRepo {
	return &blockingRepo{started: map[int]int{}, cancelled: map[int]int{}}
}

func (r *blockingRepo) List(ctx context.Context) ([]domain.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r *blockingRepo) GetByID(ctx context.Context, userID int) (*domain.User, error) {
	r.mu.Lock()
	r.started[userID]++
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	r.cancelled[userID]++
	r.mu.Unlock()
	return nil, ctx.Err()
}

func (r *blockingRepo) startedCount(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started[userID]
}

func (r *blockingRepo) cancelledCount(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled[userID]
}

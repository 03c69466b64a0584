package repository

import (
	"context"

	"github.com/ZertGraf/user-directory/internal/domain"
)

// UserRepository - read-only access to the upstream user collection
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, userID int) (*domain.User, error)
}

// FetchJournal - журнал запросов к upstream
type FetchJournal interface {
	Record(ctx context.Context, record *domain.FetchRecord) error
	Recent(ctx context.Context, limit int) ([]*domain.FetchRecord, error)
}

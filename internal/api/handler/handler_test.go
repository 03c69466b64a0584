package handler_test

import (
	"context"
	"fmt"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/stretchr/testify/mock"
)

type stubDirectory struct {
	snap service.DirectorySnapshot
}

func (s *stubDirectory) Snapshot() service.DirectorySnapshot {
	return s.snap
}

func loaded(users []domain.User) *stubDirectory {
	return &stubDirectory{snap: service.DirectorySnapshot{Status: service.StatusSuccess, Users: users}}
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetUser(ctx context.Context, userID int) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserReader) RecentFetches(ctx context.Context, limit int) ([]*domain.FetchRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]*domain.FetchRecord)
	return records, args.Error(1)
}

func makeUsers(n int) []domain.User {
	users := make([]domain.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, domain.User{
			ID:      i,
			Name:    fmt.Sprintf("User %02d", i),
			Email:   fmt.Sprintf("user%02d@example.com", i),
			Address: domain.Address{City: "Gwenborough"},
		})
	}
	return users
}

func leanne() *domain.User {
	return &domain.User{
		ID:       1,
		Name:     "Leanne Graham",
		Username: "Bret",
		Email:    "Sincere@april.biz",
		Phone:    "1-770-736-8031 x56442",
		Website:  "hildegard.org",
		Company:  domain.Company{Name: "Romaguera-Crona"},
	}
}

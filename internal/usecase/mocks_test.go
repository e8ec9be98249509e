package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/release-tools/gitbump/internal/domain"
)

type mockConfigStore struct{ mock.Mock }

func (m *mockConfigStore) Read(ctx context.Context) (domain.Version, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Version), args.Error(1)
}

func (m *mockConfigStore) Write(ctx context.Context, v domain.Version, releaseDate time.Time) error {
	args := m.Called(ctx, v, releaseDate)
	return args.Error(0)
}

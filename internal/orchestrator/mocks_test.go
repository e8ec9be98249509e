package orchestrator

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

type mockTagger struct{ mock.Mock }

func (m *mockTagger) Root() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockTagger) CommitAll(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockTagger) CreateTag(ctx context.Context, name, message string) error {
	args := m.Called(ctx, name, message)
	return args.Error(0)
}

func (m *mockTagger) PushTags(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/hearts/internal/server/storage"
)

// MockStats 战绩存储 mock
type MockStats struct {
	mock.Mock
}

func (m *MockStats) IncrementWins(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStats) IncrementLosses(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStats) List(ctx context.Context) ([]storage.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]storage.Record)
	return records, args.Error(1)
}

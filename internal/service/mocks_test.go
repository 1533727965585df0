package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishDutyChange(ctx context.Context, change domain.DutyChange) error {
	return m.Called(ctx, change).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, bool, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(domain.HoursSummary), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, driverID uuid.UUID, summary domain.HoursSummary) error {
	return m.Called(ctx, driverID, summary).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, driverID uuid.UUID) error {
	return m.Called(ctx, driverID).Error(0)
}

// compile-time checks: the mocks must satisfy the service ports.
var (
	_ service.EventPublisher = (*mockPublisher)(nil)
	_ service.SummaryCache   = (*mockCache)(nil)
)

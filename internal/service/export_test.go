package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

func TestExportService_Export(t *testing.T) {
	f := newLedgerFixture(t, "UTC")
	ctx := context.Background()
	f.record(t, domain.StatusDriving, utc(1, 8, 0))
	f.record(t, domain.StatusOffDuty, utc(1, 10, 30))
	_, err := f.ledger.EndDutyPeriod(ctx, f.driver.ID, utc(1, 12, 0))
	require.NoError(t, err)
	_, err = service.NewDayService(f.store, f.clock).GetOrCreate(ctx, f.driver.ID, utc(3, 0, 0))
	require.NoError(t, err)

	svc := service.NewExportService(f.store.Repos())
	rows, err := svc.Export(ctx, f.driver.ID, domain.DayRange{})
	require.NoError(t, err)

	require.Len(t, rows, 3, "two intervals on June 1, one empty row for June 3")
	assert.Equal(t, "2025-06-01", rows[0].DayDate)
	assert.Equal(t, domain.StatusDriving, rows[0].Status)
	assert.Equal(t, 2.5, rows[0].Hours)
	assert.Equal(t, "Joliet, IL", rows[0].Remark)
	assert.Equal(t, domain.StatusOffDuty, rows[1].Status)
	assert.Equal(t, 1.5, rows[1].Hours)
	assert.Equal(t, "2025-06-03", rows[2].DayDate)
	assert.Nil(t, rows[2].StartAt)
	assert.Equal(t, domain.DutyStatus(""), rows[2].Status)

	ranged, err := svc.Export(ctx, f.driver.ID, domain.DayRange{From: utc(2, 0, 0)})
	require.NoError(t, err)
	assert.Len(t, ranged, 1)
}

func TestExportService_Export_Errors(t *testing.T) {
	f := newLedgerFixture(t, "UTC")
	svc := service.NewExportService(f.store.Repos())

	_, err := svc.Export(context.Background(), uuid.New(), domain.DayRange{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Export(context.Background(), f.driver.ID, domain.DayRange{From: utc(5, 0, 0), To: utc(1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

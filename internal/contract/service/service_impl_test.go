package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/clock"
	"github.com/suitedesk/suitedesk/internal/config"
	contractdomain "github.com/suitedesk/suitedesk/internal/contract/domain"
	"github.com/suitedesk/suitedesk/internal/migration"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newContractFixture(t *testing.T) (contractdomain.Service, *gorm.DB, clientdomain.Client) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zaptest.NewLogger(t),
		GenID:    genID,
		Clock:    clock.NewFakeClock(time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)),
		Settings: config.NewStaticBillingSettings(config.DefaultBillingSettings()),
	})

	owner := clientdomain.Client{
		ID:         genID.Generate(),
		Name:       "Acme Trading",
		RentalRate: 1000,
		StartDate:  time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC),
		Status:     clientdomain.ClientStatusActive,
		Metadata:   map[string]any{},
	}
	require.NoError(t, db.Create(&owner).Error)

	return svc, db, owner
}

func TestCreateAllocatesSequentialNumbers(t *testing.T) {
	svc, _, owner := newContractFixture(t)

	first, err := svc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  owner.ID.String(),
		StartDate: "2025-01-01",
		EndDate:   "2025-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, "VO-SA-2025-001", first.ContractNumber)
	assert.Equal(t, contractdomain.ContractStatusActive, first.Status)

	second, err := svc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  owner.ID.String(),
		StartDate: "2025-07-01",
		EndDate:   "2025-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "VO-SA-2025-002", second.ContractNumber)
}

func TestCreateRejectsInvalidRange(t *testing.T) {
	svc, _, owner := newContractFixture(t)

	_, err := svc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  owner.ID.String(),
		StartDate: "2025-06-30",
		EndDate:   "2025-01-01",
	})
	assert.ErrorIs(t, err, contractdomain.ErrInvalidDateRange)

	_, err = svc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  owner.ID.String(),
		StartDate: "June 1, 2025",
		EndDate:   "2025-12-31",
	})
	assert.ErrorIs(t, err, contractdomain.ErrInvalidDateRange)
}

func TestLatestActiveIgnoresTerminated(t *testing.T) {
	svc, _, owner := newContractFixture(t)

	older, err := svc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  owner.ID.String(),
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
	})
	require.NoError(t, err)

	newer, err := svc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  owner.ID.String(),
		StartDate: "2025-01-01",
		EndDate:   "2025-12-31",
	})
	require.NoError(t, err)

	latest, err := svc.LatestActive(context.Background(), owner.ID.String())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)

	_, err = svc.UpdateStatus(context.Background(), newer.ID.String(), contractdomain.ContractStatusTerminated)
	require.NoError(t, err)

	latest, err = svc.LatestActive(context.Background(), owner.ID.String())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, older.ID, latest.ID)
}

func TestLatestActiveNilWhenNone(t *testing.T) {
	svc, _, owner := newContractFixture(t)

	latest, err := svc.LatestActive(context.Background(), owner.ID.String())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

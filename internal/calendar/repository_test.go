package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: would otherwise see its own empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&ImportedEvent{}))
	return db
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func storedEvent(studioID, externalID string, start time.Time, status MigrationStatus) *ImportedEvent {
	return &ImportedEvent{
		IntegrationID:       "int-1",
		ExternalID:          externalID,
		Provider:            ProviderGoogle,
		StudioID:            studioID,
		Title:               "Wheel throwing",
		StartTime:           start,
		EndTime:             start.Add(2 * time.Hour),
		Room:                "Studio A",
		Category:            "pottery",
		MaxParticipants:     intPtr(10),
		CurrentParticipants: 9,
		Price:               floatPtr(65),
		MigrationStatus:     status,
	}
}

func TestCreateBatchAssignsIDs(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	events := []*ImportedEvent{
		storedEvent("s1", "e1", baseTime, MigrationStatusImported),
		storedEvent("s1", "e2", baseTime.Add(24*time.Hour), MigrationStatusMapped),
	}

	require.NoError(t, repo.CreateBatch(context.Background(), events))
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.NotEmpty(t, events[0].ID.String())
	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestCreateBatchRejectsDuplicateExternalID(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, []*ImportedEvent{storedEvent("s1", "e1", baseTime, MigrationStatusImported)}))
	err := repo.CreateBatch(ctx, []*ImportedEvent{
		storedEvent("s1", "e9", baseTime, MigrationStatusImported),
		storedEvent("s1", "e1", baseTime, MigrationStatusImported),
	})
	require.Error(t, err)

	// The whole batch rolled back.
	existing, err := repo.FindExistingExternalIDs(ctx, "int-1", []string{"e1", "e9"})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"e1": {}}, existing)
}

func TestListByStudioSince(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, []*ImportedEvent{
		storedEvent("s1", "old", baseTime.AddDate(0, -4, 0), MigrationStatusImported),
		storedEvent("s1", "edge", baseTime, MigrationStatusImported),
		storedEvent("s1", "later", baseTime.Add(48*time.Hour), MigrationStatusPending),
		storedEvent("s2", "other", baseTime.Add(time.Hour), MigrationStatusImported),
	}))

	events, err := repo.ListByStudioSince(ctx, "s1", baseTime)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "edge", events[0].ExternalID)
	assert.Equal(t, "later", events[1].ExternalID)
	assert.Equal(t, 10, *events[0].MaxParticipants)
	assert.True(t, events[0].StartTime.Equal(baseTime))
}

func TestListByStudioPaginationAndFilters(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	var batch []*ImportedEvent
	for i := 0; i < 25; i++ {
		status := MigrationStatusImported
		if i%5 == 0 {
			status = MigrationStatusMapped
		}
		batch = append(batch, storedEvent("s1", fmt.Sprintf("e%02d", i), baseTime.Add(time.Duration(i)*24*time.Hour), status))
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	q := EventListQuery{Page: 2, Limit: 10}
	events, total, err := repo.ListByStudio(ctx, "s1", q)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, events, 10)
	assert.Equal(t, "e14", events[0].ExternalID)

	q = EventListQuery{Page: 1, Limit: 100, Status: string(MigrationStatusMapped)}
	events, total, err = repo.ListByStudio(ctx, "s1", q)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 5)

	q = EventListQuery{Page: 1, Limit: 100, From: "2026-10-03", To: "2026-10-05"}
	events, total, err = repo.ListByStudio(ctx, "s1", q)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "e04", events[0].ExternalID)
}

func TestFindExistingExternalIDs(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateBatch(ctx, []*ImportedEvent{storedEvent("s1", "e1", baseTime, MigrationStatusImported)}))

	existing, err := repo.FindExistingExternalIDs(ctx, "int-1", []string{"e1", "e2"})
	require.NoError(t, err)
	assert.Contains(t, existing, "e1")
	assert.NotContains(t, existing, "e2")

	otherIntegration, err := repo.FindExistingExternalIDs(ctx, "int-2", []string{"e1"})
	require.NoError(t, err)
	assert.Empty(t, otherIntegration)

	none, err := repo.FindExistingExternalIDs(ctx, "int-1", nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestToInsightsEvent(t *testing.T) {
	ev := storedEvent("s1", "e1", baseTime, MigrationStatusImported)
	got := ev.ToInsightsEvent()
	assert.Equal(t, 65.0, got.Price)
	assert.Equal(t, 10, got.MaxParticipants)
	assert.Equal(t, "imported", got.MigrationStatus)

	ev.Price = nil
	ev.MaxParticipants = nil
	got = ev.ToInsightsEvent()
	assert.Zero(t, got.Price)
	assert.Zero(t, got.MaxParticipants)
}

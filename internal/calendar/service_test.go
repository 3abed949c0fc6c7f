package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hobbystudio/internal/messaging"
	"hobbystudio/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	messaging.NoopPublisher
	mu       sync.Mutex
	imported []messaging.EventsImportedPayload
	err      error
}

func (p *recordingPublisher) PublishEventsImported(_ context.Context, _ string, payload messaging.EventsImportedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.imported = append(p.imported, payload)
	return p.err
}

type recordingInvalidator struct {
	studios []string
}

func (i *recordingInvalidator) InvalidateStudio(_ context.Context, studioID string) error {
	i.studios = append(i.studios, studioID)
	return nil
}

type fixture struct {
	svc         Service
	repo        Repository
	publisher   *recordingPublisher
	invalidator *recordingInvalidator
	redis       *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		repo:        repo,
		publisher:   &recordingPublisher{},
		invalidator: &recordingInvalidator{},
		redis:       mr,
	}
	f.svc = NewService(repo, 50)
	f.svc.SetCacheService(cache.NewService(client))
	f.svc.SetPublisher(f.publisher)
	f.svc.SetInsightsInvalidator(f.invalidator)
	return f
}

func item(externalID string, start time.Time) ImportEventItem {
	return ImportEventItem{
		ExternalID:          externalID,
		Title:               "Pottery workshop",
		StartTime:           start,
		EndTime:             start.Add(2 * time.Hour),
		InstructorName:      "Sarah",
		InstructorEmail:     "sarah@example.com",
		Room:                "Studio A",
		MaxParticipants:     intPtr(10),
		CurrentParticipants: 9,
		Price:               floatPtr(65),
	}
}

func importRequest(items ...ImportEventItem) ImportEventsRequest {
	return ImportEventsRequest{IntegrationID: "int-1", Provider: ProviderGoogle, Events: items}
}

func TestImportEventsHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.ImportEvents(ctx, "s1", importRequest(item("e1", baseTime), item("e2", baseTime.Add(time.Hour))))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalEvents)
	assert.Equal(t, 2, result.SuccessfullyImported)
	assert.Zero(t, result.FailedImports)
	assert.Zero(t, result.RequiresReview)
	assert.Empty(t, result.ErrorDetails)
	require.Len(t, result.MappingSuggestions, 2)
	assert.Equal(t, 0.9, result.MappingSuggestions[0].ConfidenceScore)

	rows, err := f.repo.ListByStudioSince(ctx, "s1", baseTime)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, MigrationStatusImported, rows[0].MigrationStatus)
	assert.Equal(t, "pottery", rows[0].Category, "category inferred from the title")

	assert.Equal(t, []string{"s1"}, f.invalidator.studios)
	require.Len(t, f.publisher.imported, 1)
	assert.Equal(t, 2, f.publisher.imported[0].SuccessfullyImported)
}

func TestImportEventsCountsFailuresAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ImportEvents(ctx, "s1", importRequest(item("e1", baseTime)))
	require.NoError(t, err)

	backwards := item("bad-time", baseTime)
	backwards.EndTime = baseTime.Add(-time.Hour)
	negative := item("bad-count", baseTime)
	negative.CurrentParticipants = -1
	badEmail := item("bad-email", baseTime)
	badEmail.InstructorEmail = "nope"

	result, err := f.svc.ImportEvents(ctx, "s1", importRequest(
		item("e1", baseTime),
		item("e2", baseTime),
		item("e2", baseTime),
		backwards,
		negative,
		badEmail,
	))
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalEvents)
	assert.Equal(t, 1, result.SuccessfullyImported)
	assert.Equal(t, 2, result.DuplicateEvents)
	assert.Equal(t, 3, result.FailedImports)
	require.Len(t, result.ErrorDetails, 3)
	assert.Contains(t, result.ErrorDetails[0], "end_time gtfield=StartTime")
	assert.Contains(t, result.ErrorDetails[1], "current_participants min=0")
	assert.Contains(t, result.ErrorDetails[2], "instructor_email email")
}

func TestImportEventsReviewStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vague := item("vague", baseTime)
	vague.Title = "Open studio"
	vague.InstructorEmail = ""

	explicit := item("explicit", baseTime.Add(time.Hour))
	explicit.Title = "Open studio"
	explicit.InstructorEmail = ""
	explicit.MigrationStatus = MigrationStatusImported

	result, err := f.svc.ImportEvents(ctx, "s1", importRequest(vague, explicit))
	require.NoError(t, err)
	assert.Equal(t, 2, result.RequiresReview)

	rows, err := f.repo.ListByStudioSince(ctx, "s1", baseTime)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, MigrationStatusMapped, rows[0].MigrationStatus)
	assert.Empty(t, rows[0].Category, "undetected category stays empty")
	assert.Equal(t, MigrationStatusImported, rows[1].MigrationStatus)
	assert.True(t, rows[1].RequiresReview)
}

func TestImportEventsNothingNew(t *testing.T) {
	f := newFixture(t)
	bad := item("bad", baseTime)
	bad.Title = ""

	result, err := f.svc.ImportEvents(context.Background(), "s1", importRequest(bad))
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedImports)
	assert.Empty(t, f.publisher.imported)
	assert.Empty(t, f.invalidator.studios)
}

func TestImportEventsGuards(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ImportEvents(context.Background(), "", importRequest(item("e1", baseTime)))
	assert.ErrorIs(t, err, ErrStudioRequired)

	items := make([]ImportEventItem, 51)
	_, err = f.svc.ImportEvents(context.Background(), "s1", importRequest(items...))
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestImportEventsPublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	result, err := f.svc.ImportEvents(context.Background(), "s1", importRequest(item("e1", baseTime)))
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessfullyImported)
}

func TestListEventsCachesAndInvalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ImportEvents(ctx, "s1", importRequest(item("e1", baseTime)))
	require.NoError(t, err)

	page, err := f.svc.ListEvents(ctx, "s1", EventListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 20, page.Pagination.Limit)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	require.Len(t, page.Events, 1)
	assert.True(t, f.redis.Exists("hobbystudio:calendar:events:studio:s1:page:1:limit:20:status:"))

	_, err = f.svc.ImportEvents(ctx, "s1", importRequest(item("e2", baseTime.Add(time.Hour))))
	require.NoError(t, err)
	assert.False(t, f.redis.Exists("hobbystudio:calendar:events:studio:s1:page:1:limit:20:status:"))

	page, err = f.svc.ListEvents(ctx, "s1", EventListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.TotalCount)
}

func TestRecentEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ImportEvents(ctx, "s1", importRequest(item("old", baseTime.AddDate(0, -6, 0)), item("new", baseTime)))
	require.NoError(t, err)

	events, err := f.svc.RecentEvents(ctx, "s1", baseTime.AddDate(0, -3, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Studio A", events[0].Room)
	assert.Equal(t, 9, events[0].CurrentParticipants)
	assert.Equal(t, "imported", events[0].MigrationStatus)
}

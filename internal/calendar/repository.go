package calendar

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const createBatchSize = 100

type Repository interface {
	ListByStudioSince(ctx context.Context, studioID string, since time.Time) ([]ImportedEvent, error)
	ListByStudio(ctx context.Context, studioID string, query EventListQuery) ([]ImportedEvent, int64, error)
	FindExistingExternalIDs(ctx context.Context, integrationID string, externalIDs []string) (map[string]struct{}, error)
	CreateBatch(ctx context.Context, events []*ImportedEvent) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListByStudioSince returns every row starting at or after since, oldest first.
// Status filtering is left to the insights engine.
func (r *repository) ListByStudioSince(ctx context.Context, studioID string, since time.Time) ([]ImportedEvent, error) {
	var events []ImportedEvent
	err := r.db.WithContext(ctx).
		Where("studio_id = ? AND start_time >= ?", studioID, since).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for studio %s: %w", studioID, err)
	}
	return events, nil
}

func (r *repository) ListByStudio(ctx context.Context, studioID string, query EventListQuery) ([]ImportedEvent, int64, error) {
	var events []ImportedEvent
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&ImportedEvent{}).Where("studio_id = ?", studioID)

	if query.Status != "" {
		db = db.Where("migration_status = ?", query.Status)
	}
	if query.From != "" {
		if from, err := time.Parse("2006-01-02", query.From); err == nil {
			db = db.Where("start_time >= ?", from)
		}
	}
	if query.To != "" {
		if to, err := time.Parse("2006-01-02", query.To); err == nil {
			db = db.Where("start_time < ?", to.AddDate(0, 0, 1))
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	if err := db.Order("start_time DESC").Offset(offset).Limit(query.Limit).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, totalCount, nil
}

func (r *repository) FindExistingExternalIDs(ctx context.Context, integrationID string, externalIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(externalIDs) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&ImportedEvent{}).
		Where("integration_id = ? AND external_id IN ?", integrationID, externalIDs).
		Pluck("external_id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing events: %w", err)
	}

	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// CreateBatch inserts all events in one transaction
func (r *repository) CreateBatch(ctx context.Context, events []*ImportedEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(events, createBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert imported events: %w", err)
		}
		return nil
	})
}

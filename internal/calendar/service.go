package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"hobbystudio/internal/insights"
	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/constants"
	"hobbystudio/pkg/cache"
	"hobbystudio/pkg/logger"
)

const DefaultMaxBatchSize = 1000

var (
	ErrStudioRequired = errors.New("studio id is required")
	ErrBatchTooLarge  = errors.New("import batch is too large")
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	SetPublisher(publisher messaging.Publisher)
	SetInsightsInvalidator(invalidator InsightsInvalidator)
	SetMetrics(recorder metrics.Recorder)

	ImportEvents(ctx context.Context, studioID string, req ImportEventsRequest) (*ImportResult, error)
	ListEvents(ctx context.Context, studioID string, query EventListQuery) (*PaginatedEventsResponse, error)
	RecentEvents(ctx context.Context, studioID string, since time.Time) ([]insights.Event, error)
}

// InsightsInvalidator drops cached insights after new events land.
// Declared here to keep calendar free of an insights-service import.
type InsightsInvalidator interface {
	InvalidateStudio(ctx context.Context, studioID string) error
}

type service struct {
	repo         Repository
	maxBatchSize int
	cacheService cache.Service
	publisher    messaging.Publisher
	invalidator  InsightsInvalidator
	metrics      metrics.Recorder
	logger       *logger.Logger
}

func NewService(repo Repository, maxBatchSize int) Service {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &service{
		repo:         repo,
		maxBatchSize: maxBatchSize,
		publisher:    messaging.NoopPublisher{},
		metrics:      metrics.Noop{},
		logger:       logger.GetDefault(),
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetPublisher(publisher messaging.Publisher) {
	s.publisher = publisher
}

func (s *service) SetInsightsInvalidator(invalidator InsightsInvalidator) {
	s.invalidator = invalidator
}

func (s *service) SetMetrics(recorder metrics.Recorder) {
	s.metrics = recorder
}

func (s *service) ImportEvents(ctx context.Context, studioID string, req ImportEventsRequest) (*ImportResult, error) {
	if studioID == "" {
		return nil, ErrStudioRequired
	}
	if len(req.Events) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d events, limit %d", ErrBatchTooLarge, len(req.Events), s.maxBatchSize)
	}

	result := &ImportResult{
		TotalEvents:        len(req.Events),
		ErrorDetails:       []string{},
		MappingSuggestions: []EventMapping{},
	}

	externalIDs := make([]string, 0, len(req.Events))
	for _, item := range req.Events {
		if item.ExternalID != "" {
			externalIDs = append(externalIDs, item.ExternalID)
		}
	}
	existing, err := s.repo.FindExistingExternalIDs(ctx, req.IntegrationID, externalIDs)
	if err != nil {
		return nil, err
	}

	toCreate := make([]*ImportedEvent, 0, len(req.Events))
	mappings := make([]MappingResult, 0, len(req.Events))
	seen := make(map[string]struct{}, len(req.Events))

	for i := range req.Events {
		item := &req.Events[i]

		if err := itemValidator.Struct(item); err != nil {
			result.FailedImports++
			result.ErrorDetails = append(result.ErrorDetails,
				fmt.Sprintf("event %d (%s): %s", i, item.ExternalID, describeItemError(err)))
			continue
		}

		if _, dup := existing[item.ExternalID]; dup {
			result.DuplicateEvents++
			continue
		}
		if _, dup := seen[item.ExternalID]; dup {
			result.DuplicateEvents++
			continue
		}
		seen[item.ExternalID] = struct{}{}

		event, err := s.buildEvent(studioID, req, item)
		if err != nil {
			result.FailedImports++
			result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("event %d (%s): %v", i, item.ExternalID, err))
			continue
		}

		mapping := ScoreMapping(event)
		event.MappingConfidence = mapping.ConfidenceScore
		event.RequiresReview = mapping.RequiresManualReview
		switch {
		case item.MigrationStatus != "":
			event.MigrationStatus = item.MigrationStatus
		case mapping.RequiresManualReview:
			event.MigrationStatus = MigrationStatusMapped
		default:
			event.MigrationStatus = MigrationStatusImported
		}

		toCreate = append(toCreate, event)
		mappings = append(mappings, mapping)
	}

	if err := s.repo.CreateBatch(ctx, toCreate); err != nil {
		s.metrics.EventsImported(metrics.ImportFailed, len(toCreate))
		return nil, err
	}

	result.SuccessfullyImported = len(toCreate)
	for i, event := range toCreate {
		if mappings[i].RequiresManualReview {
			result.RequiresReview++
		}
		result.MappingSuggestions = append(result.MappingSuggestions, EventMapping{
			EventID:       event.ID.String(),
			ExternalID:    event.ExternalID,
			MappingResult: mappings[i],
		})
	}

	s.metrics.EventsImported(metrics.ImportImported, result.SuccessfullyImported)
	s.metrics.EventsImported(metrics.ImportFailed, result.FailedImports)
	s.metrics.EventsImported(metrics.ImportDuplicate, result.DuplicateEvents)
	s.logger.LogEventsImported(ctx, studioID, req.IntegrationID,
		result.SuccessfullyImported, result.FailedImports, result.DuplicateEvents)

	if result.SuccessfullyImported > 0 {
		s.afterImport(ctx, studioID, req, result)
	}

	return result, nil
}

func (s *service) buildEvent(studioID string, req ImportEventsRequest, item *ImportEventItem) (*ImportedEvent, error) {
	event := &ImportedEvent{
		IntegrationID:       req.IntegrationID,
		ExternalID:          item.ExternalID,
		Provider:            req.Provider,
		StudioID:            studioID,
		Title:               item.Title,
		Description:         item.Description,
		StartTime:           item.StartTime.UTC(),
		EndTime:             item.EndTime.UTC(),
		AllDay:              item.AllDay,
		InstructorName:      item.InstructorName,
		InstructorEmail:     item.InstructorEmail,
		Location:            item.Location,
		Room:                item.Room,
		Category:            item.Category,
		SkillLevel:          item.SkillLevel,
		MaxParticipants:     item.MaxParticipants,
		CurrentParticipants: item.CurrentParticipants,
		Price:               item.Price,
		MaterialFee:         item.MaterialFee,
	}

	details := ExtractWorkshopDetails(item.Title, item.Description)
	// An undetected category stays empty so the engine applies its own default.
	if event.Category == "" && details.Category != DefaultDetectedCategory {
		event.Category = details.Category
	}
	if event.SkillLevel == "" {
		event.SkillLevel = details.SkillLevel
	}
	if event.MaxParticipants == nil {
		event.MaxParticipants = details.MaxParticipants
	}

	if item.RawData != nil {
		raw, err := json.Marshal(item.RawData)
		if err != nil {
			return nil, fmt.Errorf("raw_data is not serialisable: %w", err)
		}
		event.RawData = raw
	}

	return event, nil
}

// afterImport refreshes derived state. Failures are logged, the import itself already succeeded.
func (s *service) afterImport(ctx context.Context, studioID string, req ImportEventsRequest, result *ImportResult) {
	if s.cacheService != nil {
		pattern := constants.BuildCalendarEventsPattern(studioID)
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			s.logger.LogCacheError(ctx, "delete_pattern", pattern, err)
		}
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateStudio(ctx, studioID); err != nil {
			s.logger.LogCacheError(ctx, "invalidate_insights", studioID, err)
		}
	}

	err := s.publisher.PublishEventsImported(ctx, studioID, messaging.EventsImportedPayload{
		IntegrationID:        req.IntegrationID,
		Provider:             string(req.Provider),
		TotalEvents:          result.TotalEvents,
		SuccessfullyImported: result.SuccessfullyImported,
		FailedImports:        result.FailedImports,
		DuplicateEvents:      result.DuplicateEvents,
	})
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to publish import message", err, map[string]interface{}{
			"studio_id": studioID,
		})
	}
}

func (s *service) ListEvents(ctx context.Context, studioID string, query EventListQuery) (*PaginatedEventsResponse, error) {
	if studioID == "" {
		return nil, ErrStudioRequired
	}
	query.normalize()

	cacheable := s.cacheService != nil && query.From == "" && query.To == ""
	key := constants.BuildCalendarEventsKey(studioID, query.Page, query.Limit, query.Status)

	if cacheable {
		var cached PaginatedEventsResponse
		if err := s.cacheService.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.LogCacheError(ctx, "get", key, err)
		}
	}

	events, total, err := s.repo.ListByStudio(ctx, studioID, query)
	if err != nil {
		return nil, err
	}

	resp := &PaginatedEventsResponse{
		Events: make([]ImportedEventResponse, 0, len(events)),
		Pagination: Pagination{
			CurrentPage: query.Page,
			TotalPages:  int(math.Ceil(float64(total) / float64(query.Limit))),
			TotalCount:  total,
			Limit:       query.Limit,
		},
	}
	for i := range events {
		resp.Events = append(resp.Events, events[i].ToResponse())
	}

	if cacheable {
		if err := s.cacheService.Set(ctx, key, resp, constants.TTL_CALENDAR_EVENTS); err != nil {
			s.logger.LogCacheError(ctx, "set", key, err)
		}
	}

	return resp, nil
}

// RecentEvents loads rows starting at or after since in the engine's shape
func (s *service) RecentEvents(ctx context.Context, studioID string, since time.Time) ([]insights.Event, error) {
	rows, err := s.repo.ListByStudioSince(ctx, studioID, since)
	if err != nil {
		return nil, err
	}
	events := make([]insights.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].ToInsightsEvent())
	}
	return events, nil
}

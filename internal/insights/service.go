package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/constants"
	"hobbystudio/pkg/cache"
	"hobbystudio/pkg/logger"

	"golang.org/x/sync/singleflight"
)

var ErrStudioRequired = errors.New("studio id is required")

// EventSource loads a studio's events that start at or after since
type EventSource interface {
	RecentEvents(ctx context.Context, studioID string, since time.Time) ([]Event, error)
}

type Service interface {
	SetCacheService(cacheService cache.Service)
	SetPublisher(publisher messaging.Publisher)
	SetMetrics(recorder metrics.Recorder)

	GetStudioInsights(ctx context.Context, studioID string) (*StudioIntelligenceInsights, error)
	RefreshStudioInsights(ctx context.Context, studioID string) (*StudioIntelligenceInsights, error)
	GetSummary(ctx context.Context, studioID string) (*InsightsSummary, error)
	InvalidateStudio(ctx context.Context, studioID string) error
	InvalidateAll(ctx context.Context) error
}

type service struct {
	engine       *Engine
	source       EventSource
	cacheTTL     time.Duration
	cacheService cache.Service
	publisher    messaging.Publisher
	metrics      metrics.Recorder
	logger       *logger.Logger

	// Collapses concurrent computations for the same studio and generation.
	inflight singleflight.Group

	// Invalidation bumps a generation. Results computed under an older
	// generation are returned to their callers but never cached.
	mu          sync.Mutex
	generations map[string]uint64
	epoch       uint64
}

func NewService(engine *Engine, source EventSource, cacheTTL time.Duration) Service {
	if cacheTTL <= 0 {
		cacheTTL = constants.TTL_INSIGHTS_STUDIO
	}
	return &service{
		engine:      engine,
		source:      source,
		cacheTTL:    cacheTTL,
		publisher:   messaging.NoopPublisher{},
		generations: make(map[string]uint64),
		metrics:     metrics.Noop{},
		logger:      logger.GetDefault(),
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetPublisher(publisher messaging.Publisher) {
	s.publisher = publisher
}

func (s *service) SetMetrics(recorder metrics.Recorder) {
	s.metrics = recorder
}

// GetStudioInsights serves from cache and computes on a miss
func (s *service) GetStudioInsights(ctx context.Context, studioID string) (*StudioIntelligenceInsights, error) {
	if studioID == "" {
		return nil, ErrStudioRequired
	}

	key := constants.BuildInsightsKey(studioID)
	if s.cacheService != nil {
		var cached StudioIntelligenceInsights
		err := s.cacheService.Get(ctx, key, &cached)
		switch {
		case err == nil:
			s.metrics.CacheRequest(metrics.CacheHit)
			return &cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.CacheRequest(metrics.CacheMiss)
		default:
			s.metrics.CacheRequest(metrics.CacheError)
			s.logger.LogCacheError(ctx, "get", key, err)
		}
	}

	return s.compute(ctx, studioID)
}

// RefreshStudioInsights drops the cached copy and recomputes
func (s *service) RefreshStudioInsights(ctx context.Context, studioID string) (*StudioIntelligenceInsights, error) {
	if studioID == "" {
		return nil, ErrStudioRequired
	}
	if err := s.InvalidateStudio(ctx, studioID); err != nil {
		s.logger.LogCacheError(ctx, "delete", constants.BuildInsightsKey(studioID), err)
	}
	return s.compute(ctx, studioID)
}

func (s *service) GetSummary(ctx context.Context, studioID string) (*InsightsSummary, error) {
	result, err := s.GetStudioInsights(ctx, studioID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(studioID, *result)
	return &summary, nil
}

func (s *service) InvalidateStudio(ctx context.Context, studioID string) error {
	s.mu.Lock()
	s.generations[studioID]++
	s.mu.Unlock()

	if s.cacheService == nil {
		return nil
	}
	return s.cacheService.Delete(ctx, constants.BuildInsightsKey(studioID))
}

func (s *service) InvalidateAll(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()

	if s.cacheService == nil {
		return nil
	}
	return s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_INSIGHTS)
}

// generation identifies the studio's current cache state. Both counters only
// grow, so their sum changes on every invalidation.
func (s *service) generation(studioID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch + s.generations[studioID]
}

// compute shares one computation between callers of the same generation. The
// computation is detached from any caller's cancellation; each caller stops
// waiting when its own context ends.
func (s *service) compute(ctx context.Context, studioID string) (*StudioIntelligenceInsights, error) {
	gen := s.generation(studioID)
	key := fmt.Sprintf("%s@%d", studioID, gen)
	shared := context.WithoutCancel(ctx)

	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.generate(shared, studioID, gen)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := res.Val.(StudioIntelligenceInsights)
		return &result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *service) generate(ctx context.Context, studioID string, gen uint64) (StudioIntelligenceInsights, error) {
	start := time.Now()

	events, err := s.source.RecentEvents(ctx, studioID, s.engine.WindowStart())
	if err != nil {
		s.metrics.InsightsGenerated(metrics.OutcomeError, time.Since(start))
		return StudioIntelligenceInsights{}, fmt.Errorf("failed to load events for studio %s: %w", studioID, err)
	}

	result := s.engine.GenerateStudioInsights(events, studioID)
	duration := time.Since(start)

	outcome := metrics.OutcomeSuccess
	if len(s.engine.FilterRecentEvents(events, studioID)) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.InsightsGenerated(outcome, duration)
	s.logger.LogInsightsGenerated(ctx, studioID, len(events), result.WeeklyRevenuePotential, duration)

	if s.generation(studioID) != gen {
		// Invalidated while loading; the events may predate an import.
		return result, nil
	}

	if s.cacheService != nil {
		key := constants.BuildInsightsKey(studioID)
		if err := s.cacheService.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.LogCacheError(ctx, "set", key, err)
		}
		if s.generation(studioID) != gen {
			if err := s.cacheService.Delete(ctx, key); err != nil {
				s.logger.LogCacheError(ctx, "delete", key, err)
			}
			return result, nil
		}
	}

	summary := Summarize(studioID, result)
	err = s.publisher.PublishInsightsGenerated(ctx, studioID, messaging.InsightsGeneratedPayload{
		WeeklyRevenuePotential: result.WeeklyRevenuePotential,
		TopPriorityAction:      result.TopPriorityAction,
		TotalOpportunities:     summary.TotalOpportunities,
	})
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to publish insights message", err, map[string]interface{}{
			"studio_id": studioID,
		})
	}

	return result, nil
}

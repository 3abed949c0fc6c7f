package insights

import (
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine derives scheduling, capacity, room and staffing recommendations from
// a studio's imported calendar history. It keeps no state between calls.
type Engine struct {
	now      func() time.Time
	location *time.Location
}

type Option func(*Engine)

// WithClock overrides the reference time used for the recency window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone in which weekday and hour slots are derived.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WindowStart returns the earliest start time considered recent.
func (e *Engine) WindowStart() time.Time {
	return e.now().AddDate(0, -RecentWindowMonths, 0)
}

// FilterRecentEvents keeps the studio's imported events that started inside
// the trailing window. Input order is preserved.
func (e *Engine) FilterRecentEvents(events []Event, studioID string) []Event {
	since := e.WindowStart()
	recent := make([]Event, 0, len(events))
	for _, event := range events {
		if event.StudioID != studioID {
			continue
		}
		if event.StartTime.Before(since) {
			continue
		}
		if event.MigrationStatus != EligibleMigrationState {
			continue
		}
		recent = append(recent, event)
	}
	return recent
}

// GenerateStudioInsights runs every analysis over the studio's recent events.
// A studio without eligible events gets EmptyInsights.
func (e *Engine) GenerateStudioInsights(events []Event, studioID string) StudioIntelligenceInsights {
	recent := e.FilterRecentEvents(events, studioID)
	if len(recent) == 0 {
		return EmptyInsights()
	}

	var (
		timeSlots   []TimeSlotRecommendation
		rooms       []RoomEfficiencyData
		instructors []InstructorOptimization
		capacity    []CapacityRecommendation
	)

	// The analyses only read the shared slice, so they can run side by side.
	var g errgroup.Group
	g.Go(func() error {
		timeSlots = e.AnalyzeTimeSlotSuccess(recent)
		return nil
	})
	g.Go(func() error {
		rooms = e.AnalyzeRoomEfficiency(recent)
		return nil
	})
	g.Go(func() error {
		instructors = e.AnalyzeInstructorCapacity(recent)
		return nil
	})
	g.Go(func() error {
		capacity = e.AnalyzeCapacityOptimization(recent)
		return nil
	})
	g.Wait()

	return StudioIntelligenceInsights{
		TimeSlots:              timeSlots,
		RoomEfficiency:         rooms,
		InstructorOptimization: instructors,
		CapacityAdjustments:    capacity,
		WeeklyRevenuePotential: CalculateRevenuePotential(rooms, instructors, capacity),
		TopPriorityAction:      DetermineTopPriorityAction(timeSlots, rooms, instructors, capacity),
	}
}

// EmptyInsights is the result for a studio with nothing to analyse.
func EmptyInsights() StudioIntelligenceInsights {
	return StudioIntelligenceInsights{
		TimeSlots:              []TimeSlotRecommendation{},
		RoomEfficiency:         []RoomEfficiencyData{},
		InstructorOptimization: []InstructorOptimization{},
		CapacityAdjustments:    []CapacityRecommendation{},
		WeeklyRevenuePotential: 0,
		TopPriorityAction:      ActionImportCalendarData,
	}
}

// slotKey identifies a recurring weekly slot.
type slotKey struct {
	day  string
	hour int
}

func (e *Engine) slotOf(t time.Time) slotKey {
	local := t.In(e.location)
	return slotKey{day: local.Weekday().String(), hour: local.Hour()}
}

func durationHours(event Event) float64 {
	return event.EndTime.Sub(event.StartTime).Hours()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// ratio returns num/den, or 0 when den is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

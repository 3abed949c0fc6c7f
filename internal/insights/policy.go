package insights

import "time"

// Heuristic policy values. Changing any of them changes the recommendations
// dashboards display, so they are kept here rather than inlined.

// Event selection
const (
	RecentWindowMonths     = 3
	EligibleMigrationState = "imported"
)

// Field defaults for optional event data
const (
	DefaultRoom       = "Main Studio"
	DefaultInstructor = "Staff"
	DefaultCategory   = "General"
	FallbackCategory  = "pottery"
)

// Time-slot success thresholds
const (
	MaxTimeSlotRecommendations = 5

	HighSuccessRate       = 0.85
	HighSuccessMinClasses = 3
	HighSuccessConfidence = 0.9

	GoodPerformanceRate       = 0.7
	GoodPerformanceMinAvgUsed = 8.0
	GoodPerformanceConfidence = 0.75
	LowPerformanceRate        = 0.5
	LowPerformanceMinClasses  = 2
	LowPerformanceConfidence  = 0.8
	StableTimeSlotConfidence  = 0.6
)

// Room efficiency
const (
	OperatingHoursPerDay  = 12
	OperatingDaysPerWeek  = 7
	OperatingHoursPerWeek = OperatingHoursPerDay * OperatingDaysPerWeek
	RevenuePerNewClass    = 200.0
)

// Instructor capacity
const (
	InstructorHighFillRate       = 0.8
	InstructorMaxWeeklyHours     = 20.0
	InstructorMaxExtraHours      = 6.0
	RevenuePerInstructorHour     = 150.0
	MaxInstructorSlotSuggestions = 3
)

// Capacity optimisation
const (
	WaitlistThreshold     = 0.3
	HighDemandFillRate    = 0.9
	CapacityGrowthFactor  = 1.25
	LowDemandFillRate     = 0.6
	LowDemandMinClasses   = 3
	CapacityShrinkFactor  = 0.8
	MinCapacityAdjustment = 1.0
)

// Action text
const (
	ActionImportCalendarData = "Import calendar data to generate insights"
	ActionContinueMonitoring = "Continue monitoring current performance"
)

// underutilizedCandidates are the evening and weekend slots a room is
// expected to fill. Order is significant for output.
var underutilizedCandidates = []UnderutilizedSlot{
	{Day: time.Monday.String(), Hour: 18, OpportunityScore: 0.8},
	{Day: time.Tuesday.String(), Hour: 19, OpportunityScore: 0.7},
	{Day: time.Wednesday.String(), Hour: 17, OpportunityScore: 0.9},
	{Day: time.Thursday.String(), Hour: 18, OpportunityScore: 0.85},
	{Day: time.Saturday.String(), Hour: 10, OpportunityScore: 0.75},
}

// instructorSlotCandidates are offered to instructors with spare capacity.
var instructorSlotCandidates = []SlotSuggestion{
	{Day: time.Monday.String(), Hour: 18, Category: "pottery"},
	{Day: time.Tuesday.String(), Hour: 19, Category: "painting"},
	{Day: time.Wednesday.String(), Hour: 17, Category: "pottery"},
	{Day: time.Thursday.String(), Hour: 18, Category: "jewelry"},
	{Day: time.Saturday.String(), Hour: 10, Category: "pottery"},
}

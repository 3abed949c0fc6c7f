package insights

import "time"

// Event is a single imported class occurrence in the shape the engine reads.
// Empty strings and zero numbers mean the calendar did not provide the field.
type Event struct {
	StudioID            string    `json:"studio_id"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Room                string    `json:"room,omitempty"`
	InstructorName      string    `json:"instructor_name,omitempty"`
	Category            string    `json:"category,omitempty"`
	Price               float64   `json:"price,omitempty"`
	MaxParticipants     int       `json:"max_participants,omitempty"`
	CurrentParticipants int       `json:"current_participants"`
	MigrationStatus     string    `json:"migration_status"`
}

// ConfidenceLevel grades a capacity recommendation.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

type TimeSlotRecommendation struct {
	DayOfWeek          string  `json:"day_of_week"`
	Hour               int     `json:"hour"`
	SuccessRate        float64 `json:"success_rate"`
	AvgCapacityUsed    float64 `json:"avg_capacity_used"`
	RecommendedAction  string  `json:"recommended_action"`
	CategorySuggestion string  `json:"category_suggestion"`
	ConfidenceScore    float64 `json:"confidence_score"`
}

type UnderutilizedSlot struct {
	Day              string  `json:"day"`
	Hour             int     `json:"hour"`
	OpportunityScore float64 `json:"opportunity_score"`
}

type RoomEfficiencyData struct {
	RoomName                 string              `json:"room_name"`
	UtilizationRate          float64             `json:"utilization_rate"`
	UnderutilizedSlots       []UnderutilizedSlot `json:"underutilized_slots"`
	RecommendedCategory      string              `json:"recommended_category"`
	PotentialRevenueIncrease float64             `json:"potential_revenue_increase"`
}

type SlotSuggestion struct {
	Day      string `json:"day"`
	Hour     int    `json:"hour"`
	Category string `json:"category"`
}

type InstructorOptimization struct {
	InstructorName           string           `json:"instructor_name"`
	CurrentWeeklyHours       float64          `json:"current_weekly_hours"`
	AvgCapacityRate          float64          `json:"avg_capacity_rate"`
	SuggestedAdditionalHours float64          `json:"suggested_additional_hours"`
	OptimalTimeSlots         []SlotSuggestion `json:"optimal_time_slots"`
	PotentialRevenueIncrease float64          `json:"potential_revenue_increase"`
}

type CapacityRecommendation struct {
	Category          string          `json:"category"`
	CurrentAvgSize    float64         `json:"current_avg_size"`
	RecommendedSize   float64         `json:"recommended_size"`
	WaitlistIndicator float64         `json:"waitlist_indicator"`
	RevenueImpact     float64         `json:"revenue_impact"`
	ConfidenceLevel   ConfidenceLevel `json:"confidence_level"`
}

// StudioIntelligenceInsights is the aggregate handed to the admin dashboard.
// It is built once per request and never mutated afterwards.
type StudioIntelligenceInsights struct {
	TimeSlots              []TimeSlotRecommendation `json:"timeSlots"`
	RoomEfficiency         []RoomEfficiencyData     `json:"roomEfficiency"`
	InstructorOptimization []InstructorOptimization `json:"instructorOptimization"`
	CapacityAdjustments    []CapacityRecommendation `json:"capacityAdjustments"`
	WeeklyRevenuePotential float64                  `json:"weeklyRevenuePotential"`
	TopPriorityAction      string                   `json:"topPriorityAction"`
}

// Recommendation is the headline card shown by the partner portal summary.
type Recommendation struct {
	Type        string  `json:"type"` // "time_slot", "room", "instructor"
	Title       string  `json:"title"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

type InsightsSummary struct {
	StudioID                string          `json:"studio_id"`
	TotalOpportunities      int             `json:"total_opportunities"`
	WeeklyRevenuePotential  float64         `json:"weekly_revenue_potential"`
	WeeklyRevenueFormatted  string          `json:"weekly_revenue_formatted"`
	TopPriorityAction       string          `json:"top_priority_action"`
	TopRecommendation       *Recommendation `json:"top_recommendation,omitempty"`
	TimeSlotCount           int             `json:"time_slot_count"`
	RoomCount               int             `json:"room_count"`
	InstructorCount         int             `json:"instructor_count"`
	CapacityAdjustmentCount int             `json:"capacity_adjustment_count"`
}

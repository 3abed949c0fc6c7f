package insights

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CalculateRevenuePotential adds up the weekly upside of every analysis.
// Shrinking a class never subtracts from the total.
func CalculateRevenuePotential(rooms []RoomEfficiencyData, instructors []InstructorOptimization, capacity []CapacityRecommendation) float64 {
	total := 0.0
	for _, room := range rooms {
		total += room.PotentialRevenueIncrease
	}
	for _, inst := range instructors {
		total += inst.PotentialRevenueIncrease
	}
	for _, adj := range capacity {
		total += math.Max(0, adj.RevenueImpact)
	}
	return total
}

type candidateAction struct {
	action    string
	potential float64
}

// DetermineTopPriorityAction picks the headline action among the leading
// entry of each analysis, ranked by estimated revenue. Time-slot actions
// carry no revenue estimate and only win when nothing else has one.
func DetermineTopPriorityAction(timeSlots []TimeSlotRecommendation, rooms []RoomEfficiencyData, instructors []InstructorOptimization, capacity []CapacityRecommendation) string {
	candidates := make([]candidateAction, 4)
	if len(timeSlots) > 0 {
		candidates[0] = candidateAction{action: timeSlots[0].RecommendedAction}
	}
	if len(rooms) > 0 {
		candidates[1] = candidateAction{
			action:    fmt.Sprintf("Utilize %s more efficiently", rooms[0].RoomName),
			potential: rooms[0].PotentialRevenueIncrease,
		}
	}
	if len(instructors) > 0 {
		candidates[2] = candidateAction{
			action:    fmt.Sprintf("Add %s hours for %s", formatNumber(instructors[0].SuggestedAdditionalHours), instructors[0].InstructorName),
			potential: instructors[0].PotentialRevenueIncrease,
		}
	}
	if len(capacity) > 0 {
		candidates[3] = candidateAction{
			action:    fmt.Sprintf("Adjust %s class size to %s", capacity[0].Category, formatNumber(capacity[0].RecommendedSize)),
			potential: math.Abs(capacity[0].RevenueImpact),
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.potential > best.potential {
			best = c
		}
	}

	if best.action == "" {
		return ActionContinueMonitoring
	}
	return best.action
}

// formatNumber renders n in its shortest decimal form: 6, 3.5, 12.25.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Summarize condenses insights into the partner portal summary card.
func Summarize(studioID string, in StudioIntelligenceInsights) InsightsSummary {
	return InsightsSummary{
		StudioID:                studioID,
		TotalOpportunities:      len(in.TimeSlots) + len(in.RoomEfficiency) + len(in.InstructorOptimization),
		WeeklyRevenuePotential:  in.WeeklyRevenuePotential,
		WeeklyRevenueFormatted:  formatUSD(in.WeeklyRevenuePotential),
		TopPriorityAction:       in.TopPriorityAction,
		TopRecommendation:       TopRecommendation(in),
		TimeSlotCount:           len(in.TimeSlots),
		RoomCount:               len(in.RoomEfficiency),
		InstructorCount:         len(in.InstructorOptimization),
		CapacityAdjustmentCount: len(in.CapacityAdjustments),
	}
}

// revenueImpactScale maps dollar potentials onto the 0..1 range of success rates.
const revenueImpactScale = 1000.0

// TopRecommendation ranks time slots, rooms and instructors on one
// normalised impact scale and returns the strongest, or nil when there is
// nothing to recommend.
func TopRecommendation(in StudioIntelligenceInsights) *Recommendation {
	var all []Recommendation
	for _, ts := range in.TimeSlots {
		all = append(all, Recommendation{
			Type:        "time_slot",
			Title:       fmt.Sprintf("Optimize %s %d:00", ts.DayOfWeek, ts.Hour),
			Impact:      ts.SuccessRate,
			Description: ts.RecommendedAction,
		})
	}
	for _, room := range in.RoomEfficiency {
		all = append(all, Recommendation{
			Type:        "room",
			Title:       fmt.Sprintf("Improve %s utilization", room.RoomName),
			Impact:      room.PotentialRevenueIncrease / revenueImpactScale,
			Description: fmt.Sprintf("%.0f%% utilized", room.UtilizationRate*100),
		})
	}
	for _, inst := range in.InstructorOptimization {
		all = append(all, Recommendation{
			Type:        "instructor",
			Title:       fmt.Sprintf("Expand %s's schedule", inst.InstructorName),
			Impact:      inst.PotentialRevenueIncrease / revenueImpactScale,
			Description: fmt.Sprintf("+%s hours potential", formatNumber(inst.SuggestedAdditionalHours)),
		})
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Impact > all[j].Impact
	})
	top := all[0]
	return &top
}

// formatUSD formats an amount as US dollars with thousands separators, e.g. $1,234.50.
func formatUSD(amount float64) string {
	if amount < 0 {
		return "-" + usdPrinter.Sprintf("$%v", number.Decimal(-amount, number.Scale(2)))
	}
	return usdPrinter.Sprintf("$%v", number.Decimal(amount, number.Scale(2)))
}

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

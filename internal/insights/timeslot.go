package insights

import (
	"fmt"
	"sort"
)

type timeSlotStats struct {
	key           slotKey
	totalClasses  int
	totalCapacity int
	totalBooked   int
	categories    categoryCounter
}

// AnalyzeTimeSlotSuccess scores each weekly (day, hour) slot by how well it
// fills and returns the best performing slots first.
func (e *Engine) AnalyzeTimeSlotSuccess(events []Event) []TimeSlotRecommendation {
	stats := make(map[slotKey]*timeSlotStats)
	var order []slotKey

	for _, event := range events {
		key := e.slotOf(event.StartTime)
		slot, ok := stats[key]
		if !ok {
			slot = &timeSlotStats{key: key}
			stats[key] = slot
			order = append(order, key)
		}

		slot.totalClasses++
		slot.totalCapacity += event.MaxParticipants
		slot.totalBooked += event.CurrentParticipants
		if event.Category != "" {
			slot.categories.add(event.Category)
		}
	}

	recommendations := make([]TimeSlotRecommendation, 0, len(order))
	for _, key := range order {
		recommendations = append(recommendations, stats[key].recommend())
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].SuccessRate > recommendations[j].SuccessRate
	})
	if len(recommendations) > MaxTimeSlotRecommendations {
		recommendations = recommendations[:MaxTimeSlotRecommendations]
	}
	return recommendations
}

func (s *timeSlotStats) recommend() TimeSlotRecommendation {
	successRate := ratio(float64(s.totalBooked), float64(s.totalCapacity))
	avgUsed := ratio(float64(s.totalBooked), float64(s.totalClasses))
	topCategory := s.categories.top()

	var action string
	var confidence float64
	switch {
	case successRate > HighSuccessRate && s.totalClasses >= HighSuccessMinClasses:
		action = fmt.Sprintf("High-success time slot: Add more %s classes", topCategory)
		confidence = HighSuccessConfidence
	case successRate > GoodPerformanceRate && avgUsed > GoodPerformanceMinAvgUsed:
		action = "Good performance: Consider increasing capacity"
		confidence = GoodPerformanceConfidence
	case successRate < LowPerformanceRate && s.totalClasses >= LowPerformanceMinClasses:
		action = "Low performance: Review pricing or class type"
		confidence = LowPerformanceConfidence
	default:
		action = "Stable time slot: Monitor trends"
		confidence = StableTimeSlotConfidence
	}

	return TimeSlotRecommendation{
		DayOfWeek:          s.key.day,
		Hour:               s.key.hour,
		SuccessRate:        successRate,
		AvgCapacityUsed:    avgUsed,
		RecommendedAction:  action,
		CategorySuggestion: topCategory,
		ConfidenceScore:    confidence,
	}
}

// categoryCounter counts categories while remembering first-seen order, so
// ties resolve to the category that appeared earliest.
type categoryCounter struct {
	counts map[string]float64
	order  []string
}

func (c *categoryCounter) add(category string) {
	c.addWeight(category, 1)
}

func (c *categoryCounter) addWeight(category string, weight float64) {
	if c.counts == nil {
		c.counts = make(map[string]float64)
	}
	if _, seen := c.counts[category]; !seen {
		c.order = append(c.order, category)
	}
	c.counts[category] += weight
}

// top returns the highest scoring category, or "" when nothing scored above zero.
func (c *categoryCounter) top() string {
	best := ""
	bestScore := 0.0
	for _, category := range c.order {
		if score := c.counts[category]; score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best
}

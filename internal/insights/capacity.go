package insights

import (
	"math"
	"sort"
)

type categoryStats struct {
	name              string
	totalClasses      int
	totalMaxCapacity  int
	totalCurrent      int
	avgPrice          float64
	overCapacityCount int
}

// AnalyzeCapacityOptimization compares enrolment with class size per
// category and recommends growing classes that overflow or shrinking ones
// that stay half empty.
func (e *Engine) AnalyzeCapacityOptimization(events []Event) []CapacityRecommendation {
	categories := make(map[string]*categoryStats)
	var order []string

	for _, event := range events {
		name := orDefault(event.Category, DefaultCategory)
		cat, ok := categories[name]
		if !ok {
			cat = &categoryStats{name: name}
			categories[name] = cat
			order = append(order, name)
		}

		cat.totalClasses++
		cat.totalMaxCapacity += event.MaxParticipants
		cat.totalCurrent += event.CurrentParticipants
		// Pairwise running average (old+new)/2, not a true mean.
		cat.avgPrice = (cat.avgPrice + event.Price) / 2

		// Enrolment above capacity stands in for a waitlist.
		if event.CurrentParticipants > event.MaxParticipants {
			cat.overCapacityCount++
		}
	}

	recommendations := make([]CapacityRecommendation, 0, len(order))
	for _, name := range order {
		if rec, ok := categories[name].recommend(); ok {
			recommendations = append(recommendations, rec)
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return math.Abs(recommendations[i].RevenueImpact) > math.Abs(recommendations[j].RevenueImpact)
	})
	return recommendations
}

func (c *categoryStats) recommend() (CapacityRecommendation, bool) {
	currentAvgSize := ratio(float64(c.totalMaxCapacity), float64(c.totalClasses))
	fillRate := ratio(float64(c.totalCurrent), float64(c.totalMaxCapacity))
	waitlist := ratio(float64(c.overCapacityCount), float64(c.totalClasses))

	recommended := currentAvgSize
	confidence := ConfidenceLow
	switch {
	case waitlist > WaitlistThreshold && fillRate > HighDemandFillRate:
		recommended = math.Ceil(currentAvgSize * CapacityGrowthFactor)
		confidence = ConfidenceHigh
	case fillRate < LowDemandFillRate && c.totalClasses >= LowDemandMinClasses:
		recommended = math.Floor(currentAvgSize * CapacityShrinkFactor)
		confidence = ConfidenceMedium
	}

	delta := recommended - currentAvgSize
	if math.Abs(delta) < MinCapacityAdjustment {
		return CapacityRecommendation{}, false
	}

	return CapacityRecommendation{
		Category:          c.name,
		CurrentAvgSize:    currentAvgSize,
		RecommendedSize:   recommended,
		WaitlistIndicator: waitlist,
		RevenueImpact:     delta * c.avgPrice * float64(c.totalClasses),
		ConfidenceLevel:   confidence,
	}, true
}

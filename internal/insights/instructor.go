package insights

import (
	"math"
	"sort"
)

type instructorStats struct {
	name          string
	hours         float64
	totalCapacity int
	totalBooked   int
	classesTaught int
	occupied      map[slotKey]struct{}
}

// AnalyzeInstructorCapacity finds instructors whose classes fill well and who
// have room for more teaching hours. Instructors without a suggestion are
// left out; the largest revenue opportunity comes first.
func (e *Engine) AnalyzeInstructorCapacity(events []Event) []InstructorOptimization {
	instructors := make(map[string]*instructorStats)
	var order []string

	for _, event := range events {
		name := orDefault(event.InstructorName, DefaultInstructor)
		inst, ok := instructors[name]
		if !ok {
			inst = &instructorStats{name: name, occupied: make(map[slotKey]struct{})}
			instructors[name] = inst
			order = append(order, name)
		}

		inst.hours += durationHours(event)
		inst.totalCapacity += event.MaxParticipants
		inst.totalBooked += event.CurrentParticipants
		inst.classesTaught++
		inst.occupied[e.slotOf(event.StartTime)] = struct{}{}
	}

	optimizations := make([]InstructorOptimization, 0, len(order))
	for _, name := range order {
		inst := instructors[name]
		rate := ratio(float64(inst.totalBooked), float64(inst.totalCapacity))

		extraHours := 0.0
		if rate > InstructorHighFillRate && inst.hours < InstructorMaxWeeklyHours {
			extraHours = math.Min(InstructorMaxExtraHours, InstructorMaxWeeklyHours-inst.hours)
		}
		if extraHours <= 0 {
			continue
		}

		optimizations = append(optimizations, InstructorOptimization{
			InstructorName:           inst.name,
			CurrentWeeklyHours:       inst.hours,
			AvgCapacityRate:          rate,
			SuggestedAdditionalHours: extraHours,
			OptimalTimeSlots:         findOptimalNewSlots(inst.occupied),
			PotentialRevenueIncrease: extraHours * RevenuePerInstructorHour,
		})
	}

	sort.SliceStable(optimizations, func(i, j int) bool {
		return optimizations[i].PotentialRevenueIncrease > optimizations[j].PotentialRevenueIncrease
	})
	return optimizations
}

func findOptimalNewSlots(occupied map[slotKey]struct{}) []SlotSuggestion {
	slots := make([]SlotSuggestion, 0, MaxInstructorSlotSuggestions)
	for _, candidate := range instructorSlotCandidates {
		if len(slots) == MaxInstructorSlotSuggestions {
			break
		}
		if _, used := occupied[slotKey{day: candidate.Day, hour: candidate.Hour}]; used {
			continue
		}
		slots = append(slots, candidate)
	}
	return slots
}

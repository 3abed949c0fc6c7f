package insights

import "sort"

type roomStats struct {
	name       string
	totalHours float64
	occupied   map[slotKey]struct{}
}

// AnalyzeRoomEfficiency measures how much of each room's theoretical week is
// booked and lists the popular slots it leaves empty. The least used rooms
// come first.
func (e *Engine) AnalyzeRoomEfficiency(events []Event) []RoomEfficiencyData {
	rooms := make(map[string]*roomStats)
	var order []string

	for _, event := range events {
		name := orDefault(event.Room, DefaultRoom)
		room, ok := rooms[name]
		if !ok {
			room = &roomStats{name: name, occupied: make(map[slotKey]struct{})}
			rooms[name] = room
			order = append(order, name)
		}

		room.totalHours += durationHours(event)
		room.occupied[e.slotOf(event.StartTime)] = struct{}{}
	}

	// The suggestion is studio wide: every room is pointed at the category
	// that fills best across all rooms.
	recommended := MostSuccessfulCategory(events)

	efficiency := make([]RoomEfficiencyData, 0, len(order))
	for _, name := range order {
		room := rooms[name]
		slots := findUnderutilizedSlots(room.occupied)
		efficiency = append(efficiency, RoomEfficiencyData{
			RoomName:                 room.name,
			UtilizationRate:          room.totalHours / OperatingHoursPerWeek,
			UnderutilizedSlots:       slots,
			RecommendedCategory:      recommended,
			PotentialRevenueIncrease: float64(len(slots)) * RevenuePerNewClass,
		})
	}

	sort.SliceStable(efficiency, func(i, j int) bool {
		return efficiency[i].UtilizationRate < efficiency[j].UtilizationRate
	})
	return efficiency
}

func findUnderutilizedSlots(occupied map[slotKey]struct{}) []UnderutilizedSlot {
	slots := make([]UnderutilizedSlot, 0, len(underutilizedCandidates))
	for _, candidate := range underutilizedCandidates {
		if _, used := occupied[slotKey{day: candidate.Day, hour: candidate.Hour}]; used {
			continue
		}
		slots = append(slots, candidate)
	}
	return slots
}

// MostSuccessfulCategory sums per-event fill rates by category and returns
// the category with the highest total. Events without a category or a
// capacity do not count.
func MostSuccessfulCategory(events []Event) string {
	var scores categoryCounter
	for _, event := range events {
		if event.Category == "" || event.MaxParticipants <= 0 {
			continue
		}
		fill := float64(event.CurrentParticipants) / float64(event.MaxParticipants)
		scores.addWeight(event.Category, fill)
	}
	return orDefault(scores.top(), FallbackCategory)
}

package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWorkshopDetails(t *testing.T) {
	tests := []struct {
		title, description string
		category, skill    string
		maxParticipants    int
	}{
		{"Wheel Throwing Ceramics", "", "pottery", "beginner", 0},
		{"Canvas night", "Intermediate, 12 students", "painting", "intermediate", 12},
		{"Carpentry basics", "advanced joinery", "woodworking", "advanced", 0},
		{"Beading circle", "All levels welcome, max 8 people", "jewelry", "all_levels", 8},
		{"Sourdough baking", "", "cooking", "beginner", 0},
		{"Guitar jam", "", "music", "beginner", 0},
		{"Open studio", "", "general", "beginner", 0},
		// Earlier rules win when several match.
		{"Paint your pottery", "", "pottery", "beginner", 0},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := ExtractWorkshopDetails(tt.title, tt.description)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.skill, got.SkillLevel)
			if tt.maxParticipants == 0 {
				assert.Nil(t, got.MaxParticipants)
			} else {
				require.NotNil(t, got.MaxParticipants)
				assert.Equal(t, tt.maxParticipants, *got.MaxParticipants)
			}
		})
	}
}

func TestScoreMapping(t *testing.T) {
	full := ScoreMapping(&ImportedEvent{Title: "Pottery workshop", Category: "pottery", InstructorEmail: "sarah@example.com"})
	assert.Equal(t, 0.9, full.ConfidenceScore)
	assert.False(t, full.RequiresManualReview)
	assert.Len(t, full.MappingReasons, 3)

	threshold := ScoreMapping(&ImportedEvent{Title: "Thursday throw", Category: "pottery", InstructorEmail: "sarah@example.com"})
	assert.Equal(t, 0.7, threshold.ConfidenceScore)
	assert.False(t, threshold.RequiresManualReview)

	general := ScoreMapping(&ImportedEvent{Title: "Drop-in class", Category: "general"})
	assert.Equal(t, 0.2, general.ConfidenceScore)
	assert.True(t, general.RequiresManualReview)

	empty := ScoreMapping(&ImportedEvent{})
	assert.Zero(t, empty.ConfidenceScore)
	assert.NotNil(t, empty.MappingReasons)
	assert.True(t, empty.RequiresManualReview)
}

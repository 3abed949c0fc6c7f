package calendar

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultDetectedCategory = "general"
	DefaultSkillLevel       = "beginner"

	// Events scoring at least this much are imported without manual review.
	AutoImportConfidence = 0.7

	confidenceCategory     = 0.3
	confidenceInstructor   = 0.4
	confidenceClassKeyword = 0.2
)

type keywordRule struct {
	value    string
	keywords []string
}

// First matching rule wins.
var categoryRules = []keywordRule{
	{"pottery", []string{"pottery", "ceramic"}},
	{"painting", []string{"paint", "canvas"}},
	{"woodworking", []string{"wood", "carpentry"}},
	{"jewelry", []string{"jewelry", "beading"}},
	{"cooking", []string{"cook", "baking"}},
	{"music", []string{"music", "guitar", "piano"}},
}

var skillRules = []keywordRule{
	{"advanced", []string{"advanced", "expert"}},
	{"intermediate", []string{"intermediate", "level 2"}},
	{"all_levels", []string{"all levels", "any level"}},
}

var participantsPattern = regexp.MustCompile(`(\d+)\s*(people|participants|students|max)`)

// WorkshopDetails are fields inferred from free text when the calendar lacks them
type WorkshopDetails struct {
	Category        string
	SkillLevel      string
	MaxParticipants *int
}

// ExtractWorkshopDetails infers category, skill level and size from a title and description
func ExtractWorkshopDetails(title, description string) WorkshopDetails {
	text := strings.ToLower(title + " " + description)

	details := WorkshopDetails{
		Category:   matchRule(text, categoryRules, DefaultDetectedCategory),
		SkillLevel: matchRule(text, skillRules, DefaultSkillLevel),
	}

	if m := participantsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			details.MaxParticipants = &n
		}
	}

	return details
}

func matchRule(text string, rules []keywordRule, fallback string) string {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.value
			}
		}
	}
	return fallback
}

// MappingResult scores how safely an event maps onto a studio class
type MappingResult struct {
	ConfidenceScore      float64  `json:"confidence_score"`
	MappingReasons       []string `json:"mapping_reasons"`
	RequiresManualReview bool     `json:"requires_manual_review"`
}

// ScoreMapping grades an event by category, instructor email and class keywords
func ScoreMapping(e *ImportedEvent) MappingResult {
	result := MappingResult{MappingReasons: []string{}}

	if e.Category != "" && e.Category != DefaultDetectedCategory {
		result.ConfidenceScore += confidenceCategory
		result.MappingReasons = append(result.MappingReasons, "Category detected: "+e.Category)
	}
	if e.InstructorEmail != "" {
		result.ConfidenceScore += confidenceInstructor
		result.MappingReasons = append(result.MappingReasons, "Instructor email found")
	}
	title := strings.ToLower(e.Title)
	if strings.Contains(title, "workshop") || strings.Contains(title, "class") {
		result.ConfidenceScore += confidenceClassKeyword
		result.MappingReasons = append(result.MappingReasons, "Workshop/class keywords found")
	}

	// Rounded so 0.3+0.4 compares as 0.7.
	result.ConfidenceScore = math.Round(result.ConfidenceScore*100) / 100
	result.RequiresManualReview = result.ConfidenceScore < AutoImportConfidence
	return result
}

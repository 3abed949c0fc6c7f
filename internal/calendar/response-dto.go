package calendar

import (
	"encoding/json"
	"time"
)

// ImportResult reports what happened to each event of a batch
type ImportResult struct {
	TotalEvents          int            `json:"total_events"`
	SuccessfullyImported int            `json:"successfully_imported"`
	FailedImports        int            `json:"failed_imports"`
	RequiresReview       int            `json:"requires_review"`
	DuplicateEvents      int            `json:"duplicate_events"`
	ErrorDetails         []string       `json:"error_details"`
	MappingSuggestions   []EventMapping `json:"mapping_suggestions"`
}

// EventMapping pairs a stored event with its mapping score
type EventMapping struct {
	EventID    string `json:"event_id"`
	ExternalID string `json:"external_id"`
	MappingResult
}

type ImportedEventResponse struct {
	ID                  string           `json:"id"`
	IntegrationID       string           `json:"integration_id"`
	ExternalID          string           `json:"external_id"`
	Provider            CalendarProvider `json:"provider"`
	StudioID            string           `json:"studio_id"`
	Title               string           `json:"title"`
	Description         string           `json:"description,omitempty"`
	StartTime           time.Time        `json:"start_time"`
	EndTime             time.Time        `json:"end_time"`
	AllDay              bool             `json:"all_day"`
	InstructorName      string           `json:"instructor_name,omitempty"`
	InstructorEmail     string           `json:"instructor_email,omitempty"`
	Location            string           `json:"location,omitempty"`
	Room                string           `json:"room,omitempty"`
	Category            string           `json:"category,omitempty"`
	SkillLevel          string           `json:"skill_level,omitempty"`
	MaxParticipants     *int             `json:"max_participants,omitempty"`
	CurrentParticipants int              `json:"current_participants"`
	Price               *float64         `json:"price,omitempty"`
	MaterialFee         *float64         `json:"material_fee,omitempty"`
	MigrationStatus     MigrationStatus  `json:"migration_status"`
	MappingConfidence   float64          `json:"mapping_confidence"`
	RequiresReview      bool             `json:"requires_review"`
	RawData             json.RawMessage  `json:"raw_data,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

type PaginatedEventsResponse struct {
	Events     []ImportedEventResponse `json:"events"`
	Pagination Pagination              `json:"pagination"`
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	Limit       int   `json:"limit"`
}

func (e *ImportedEvent) ToResponse() ImportedEventResponse {
	resp := ImportedEventResponse{
		ID:                  e.ID.String(),
		IntegrationID:       e.IntegrationID,
		ExternalID:          e.ExternalID,
		Provider:            e.Provider,
		StudioID:            e.StudioID,
		Title:               e.Title,
		Description:         e.Description,
		StartTime:           e.StartTime,
		EndTime:             e.EndTime,
		AllDay:              e.AllDay,
		InstructorName:      e.InstructorName,
		InstructorEmail:     e.InstructorEmail,
		Location:            e.Location,
		Room:                e.Room,
		Category:            e.Category,
		SkillLevel:          e.SkillLevel,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		Price:               e.Price,
		MaterialFee:         e.MaterialFee,
		MigrationStatus:     e.MigrationStatus,
		MappingConfidence:   e.MappingConfidence,
		RequiresReview:      e.RequiresReview,
		CreatedAt:           e.CreatedAt,
	}
	if len(e.RawData) > 0 {
		resp.RawData = json.RawMessage(e.RawData)
	}
	return resp
}

package calendar

import "time"

// ImportEventsRequest is one batch pushed by a calendar integration.
// Items are validated one by one so a bad event does not reject the batch.
type ImportEventsRequest struct {
	IntegrationID string            `json:"integration_id" binding:"required,max=100"`
	Provider      CalendarProvider  `json:"provider" binding:"required,calendar_provider"`
	Events        []ImportEventItem `json:"events" binding:"required,min=1"`
}

type ImportEventItem struct {
	ExternalID          string                 `json:"external_id" validate:"required,max=255"`
	Title               string                 `json:"title" validate:"required,max=255"`
	Description         string                 `json:"description" validate:"max=5000"`
	StartTime           time.Time              `json:"start_time" validate:"required"`
	EndTime             time.Time              `json:"end_time" validate:"required,gtfield=StartTime"`
	AllDay              bool                   `json:"all_day"`
	InstructorName      string                 `json:"instructor_name" validate:"max=255"`
	InstructorEmail     string                 `json:"instructor_email" validate:"omitempty,email"`
	Location            string                 `json:"location" validate:"max=500"`
	Room                string                 `json:"room" validate:"max=255"`
	Category            string                 `json:"category" validate:"max=100"`
	SkillLevel          string                 `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced all_levels"`
	MaxParticipants     *int                   `json:"max_participants" validate:"omitempty,min=0"`
	CurrentParticipants int                    `json:"current_participants" validate:"min=0"`
	Price               *float64               `json:"price" validate:"omitempty,min=0"`
	MaterialFee         *float64               `json:"material_fee" validate:"omitempty,min=0"`
	MigrationStatus     MigrationStatus        `json:"migration_status" validate:"omitempty,migration_status"`
	RawData             map[string]interface{} `json:"raw_data"`
}

// EventListQuery pages through a studio's imported events
type EventListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,migration_status"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (q *EventListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
}

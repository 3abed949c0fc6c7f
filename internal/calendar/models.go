package calendar

import (
	"time"

	"hobbystudio/internal/insights"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportedEvent is one class occurrence pulled from an external calendar
type ImportedEvent struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	IntegrationID string           `json:"integration_id" gorm:"size:100;not null;uniqueIndex:idx_imported_events_integration_external,priority:1"`
	ExternalID    string           `json:"external_id" gorm:"size:255;not null;uniqueIndex:idx_imported_events_integration_external,priority:2"`
	Provider      CalendarProvider `json:"provider" gorm:"type:varchar(20);not null"`
	StudioID      string           `json:"studio_id" gorm:"size:100;not null;index:idx_imported_events_studio_start,priority:1"`

	Title       string    `json:"title" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	StartTime   time.Time `json:"start_time" gorm:"not null;index:idx_imported_events_studio_start,priority:2"`
	EndTime     time.Time `json:"end_time" gorm:"not null"`
	AllDay      bool      `json:"all_day" gorm:"default:false"`

	InstructorName  string `json:"instructor_name" gorm:"size:255"`
	InstructorEmail string `json:"instructor_email" gorm:"size:255"`
	Location        string `json:"location" gorm:"size:500"`
	Room            string `json:"room" gorm:"size:255"`

	Category            string   `json:"category" gorm:"size:100"`
	SkillLevel          string   `json:"skill_level" gorm:"size:50"`
	MaxParticipants     *int     `json:"max_participants" gorm:"check:max_participants >= 0"`
	CurrentParticipants int      `json:"current_participants" gorm:"not null;default:0;check:current_participants >= 0"`
	Price               *float64 `json:"price" gorm:"check:price >= 0"`
	MaterialFee         *float64 `json:"material_fee" gorm:"check:material_fee >= 0"`

	MigrationStatus   MigrationStatus `json:"migration_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	MappingConfidence float64         `json:"mapping_confidence" gorm:"default:0"`
	RequiresReview    bool            `json:"requires_review" gorm:"default:false"`
	RawData           []byte          `json:"-" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ImportedEvent) TableName() string {
	return "imported_events"
}

// BeforeCreate assigns the primary key in Go so every dialect behaves the same
func (e *ImportedEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ToInsightsEvent converts a stored row into the engine's input shape.
// Missing optional numbers become zero.
func (e *ImportedEvent) ToInsightsEvent() insights.Event {
	ev := insights.Event{
		StudioID:            e.StudioID,
		StartTime:           e.StartTime,
		EndTime:             e.EndTime,
		Room:                e.Room,
		InstructorName:      e.InstructorName,
		Category:            e.Category,
		CurrentParticipants: e.CurrentParticipants,
		MigrationStatus:     string(e.MigrationStatus),
	}
	if e.Price != nil {
		ev.Price = *e.Price
	}
	if e.MaxParticipants != nil {
		ev.MaxParticipants = *e.MaxParticipants
	}
	return ev
}

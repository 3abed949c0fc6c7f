package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	MessageTypeEventsImported    MessageType = "calendar.events.imported"
	MessageTypeInsightsGenerated MessageType = "studio.insights.generated"
)

// Message is the envelope written to every topic
type Message struct {
	ID         uuid.UUID       `json:"id"`
	Type       MessageType     `json:"type"`
	StudioID   string          `json:"studio_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventsImportedPayload is published after a calendar import batch
type EventsImportedPayload struct {
	IntegrationID        string `json:"integration_id"`
	Provider             string `json:"provider"`
	TotalEvents          int    `json:"total_events"`
	SuccessfullyImported int    `json:"successfully_imported"`
	FailedImports        int    `json:"failed_imports"`
	DuplicateEvents      int    `json:"duplicate_events"`
}

// InsightsGeneratedPayload is published after insights are recomputed
type InsightsGeneratedPayload struct {
	WeeklyRevenuePotential float64 `json:"weekly_revenue_potential"`
	TopPriorityAction      string  `json:"top_priority_action"`
	TotalOpportunities     int     `json:"total_opportunities"`
}

// NewMessage wraps payload in an envelope keyed by studio
func NewMessage(msgType MessageType, studioID string, payload interface{}) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return &Message{
		ID:         uuid.New(),
		Type:       msgType,
		StudioID:   studioID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// GetPartitionKey keeps all messages for a studio on one partition
func (m *Message) GetPartitionKey() string {
	return m.StudioID
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DecodePayload unmarshals the payload into dest
func (m *Message) DecodePayload(dest interface{}) error {
	if err := json.Unmarshal(m.Payload, dest); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	return nil
}

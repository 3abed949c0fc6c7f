package insights

import (
	"context"
	"fmt"

	"hobbystudio/internal/messaging"
)

// ImportHandler recomputes a studio's insights whenever a calendar import
// lands. Other message types are ignored.
func ImportHandler(svc Service) messaging.Handler {
	return func(ctx context.Context, msg *messaging.Message) error {
		if msg.Type != messaging.MessageTypeEventsImported {
			return nil
		}

		var payload messaging.EventsImportedPayload
		if err := msg.DecodePayload(&payload); err != nil {
			return fmt.Errorf("invalid events imported payload: %w", err)
		}
		if payload.SuccessfullyImported == 0 {
			return nil
		}

		_, err := svc.RefreshStudioInsights(ctx, msg.StudioID)
		return err
	}
}

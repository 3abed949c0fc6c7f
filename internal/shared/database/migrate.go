package database

import (
	"hobbystudio/internal/calendar"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&calendar.ImportedEvent{},
	)
}

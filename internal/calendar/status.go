package calendar

// MigrationStatus tracks an imported event through review
type MigrationStatus string

const (
	MigrationStatusPending  MigrationStatus = "pending"
	MigrationStatusMapped   MigrationStatus = "mapped"
	MigrationStatusImported MigrationStatus = "imported"
	MigrationStatusError    MigrationStatus = "error"
	MigrationStatusSkipped  MigrationStatus = "skipped"
)

func (s MigrationStatus) IsValid() bool {
	switch s {
	case MigrationStatusPending, MigrationStatusMapped, MigrationStatusImported,
		MigrationStatusError, MigrationStatusSkipped:
		return true
	}
	return false
}

// CalendarProvider is the external system an event came from
type CalendarProvider string

const (
	ProviderGoogle   CalendarProvider = "google"
	ProviderOutlook  CalendarProvider = "outlook"
	ProviderApple    CalendarProvider = "apple"
	ProviderAcuity   CalendarProvider = "acuity"
	ProviderMindbody CalendarProvider = "mindbody"
	ProviderCalendly CalendarProvider = "calendly"
	ProviderSquare   CalendarProvider = "square"
)

func (p CalendarProvider) IsValid() bool {
	switch p {
	case ProviderGoogle, ProviderOutlook, ProviderApple, ProviderAcuity,
		ProviderMindbody, ProviderCalendly, ProviderSquare:
		return true
	}
	return false
}

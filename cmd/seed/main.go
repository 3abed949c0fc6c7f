package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"hobbystudio/internal/calendar"
	"hobbystudio/internal/shared/config"
	"hobbystudio/internal/shared/constants"
	"hobbystudio/internal/shared/database"
	"hobbystudio/pkg/cache"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

const seedIntegrationID = "seed-google-calendar"

// recurringClass is one weekly slot in the demo timetable
type recurringClass struct {
	title      string
	weekday    time.Weekday
	hour       int
	hours      float64
	room       string
	instructor string
	email      string
	capacity   int
	minBooked  int
	maxBooked  int
	price      float64
}

var demoTimetable = []recurringClass{
	{"Pottery Wheel Workshop", time.Thursday, 18, 2, "Studio A", "Sarah Johnson", "sarah@example.com", 10, 8, 10, 65},
	{"Watercolor Painting Class", time.Saturday, 10, 2, "Studio B", "Michael Chen", "michael@example.com", 12, 3, 6, 45},
	{"Silver Jewelry Workshop", time.Tuesday, 19, 2.5, "Studio A", "Emma Davis", "emma@example.com", 8, 7, 9, 75},
	{"Pasta Making Class", time.Sunday, 14, 3, "Kitchen", "Tony Russo", "tony@example.com", 6, 5, 6, 85},
	{"Beginner Candle Making", time.Wednesday, 11, 1.5, "Studio B", "", "", 10, 1, 4, 35},
}

type Seeder struct {
	db       *database.DB
	calendar calendar.Service
	studioID string
	weeks    int
	rng      *rand.Rand
}

func main() {
	studioID := flag.String("studio", "demo-studio", "studio id to seed")
	weeks := flag.Int("weeks", 13, "weeks of history to generate")
	flag.Parse()

	_ = godotenv.Load()
	fmt.Println("Starting studio analytics seeder...")

	cfg := config.Load()
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := calendar.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	seeder := &Seeder{
		db:       db,
		calendar: calendar.NewService(calendar.NewRepository(db.SQL), 0),
		studioID: *studioID,
		weeks:    *weeks,
		rng:      rand.New(rand.NewPCG(42, uint64(len(*studioID)))),
	}

	ctx := context.Background()
	if err := seeder.Clean(ctx); err != nil {
		log.Fatalf("Failed to clean studio data: %v", err)
	}

	result, err := seeder.SeedEvents(ctx, time.Now().In(cfg.Insights.Location()))
	if err != nil {
		log.Fatalf("Failed to seed events: %v", err)
	}
	fmt.Printf("Imported %d of %d events (%d failed, %d duplicates)\n",
		result.SuccessfullyImported, result.TotalEvents, result.FailedImports, result.DuplicateEvents)

	if !cfg.IsProduction() {
		token, err := devToken(cfg, *studioID)
		if err != nil {
			log.Fatalf("Failed to sign dev token: %v", err)
		}
		fmt.Printf("\nStudio owner token for %s (24h):\n%s\n", *studioID, token)
	}
}

// Clean removes previously seeded rows and cached results for the studio
func (s *Seeder) Clean(ctx context.Context) error {
	err := s.db.SQL.WithContext(ctx).
		Where("studio_id = ? AND integration_id = ?", s.studioID, seedIntegrationID).
		Delete(&calendar.ImportedEvent{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete seeded events: %w", err)
	}

	if s.db.Redis != nil {
		c := cache.NewService(s.db.Redis)
		if err := c.Delete(ctx, constants.BuildInsightsKey(s.studioID)); err != nil {
			log.Printf("Warning: failed to clear insights cache: %v", err)
		}
		if err := c.DeletePattern(ctx, constants.BuildCalendarEventsPattern(s.studioID)); err != nil {
			log.Printf("Warning: failed to clear listing cache: %v", err)
		}
	}
	return nil
}

// SeedEvents generates the weekly timetable for the past weeks and pushes it
// through the regular import path.
func (s *Seeder) SeedEvents(ctx context.Context, now time.Time) (*calendar.ImportResult, error) {
	var items []calendar.ImportEventItem

	for week := 1; week <= s.weeks; week++ {
		for _, class := range demoTimetable {
			start := occurrence(now, class.weekday, class.hour, week)
			booked := class.minBooked + s.rng.IntN(class.maxBooked-class.minBooked+1)
			capacity := class.capacity
			price := class.price

			items = append(items, calendar.ImportEventItem{
				ExternalID:          fmt.Sprintf("%s-%s-w%02d", s.studioID, start.Format("Mon1504"), week),
				Title:               class.title,
				Description:         fmt.Sprintf("Weekly %s. Max %d students.", class.title, class.capacity),
				StartTime:           start,
				EndTime:             start.Add(time.Duration(class.hours * float64(time.Hour))),
				InstructorName:      class.instructor,
				InstructorEmail:     class.email,
				Room:                class.room,
				MaxParticipants:     &capacity,
				CurrentParticipants: booked,
				Price:               &price,
			})
		}
	}

	return s.calendar.ImportEvents(ctx, s.studioID, calendar.ImportEventsRequest{
		IntegrationID: seedIntegrationID,
		Provider:      calendar.ProviderGoogle,
		Events:        items,
	})
}

// occurrence returns the weekday at hour in the week weeksAgo weeks before now
func occurrence(now time.Time, day time.Weekday, hour, weeksAgo int) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	offset := int(day) - int(now.Weekday())
	return base.AddDate(0, 0, offset-7*weeksAgo)
}

func devToken(cfg *config.Config, studioID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   "seed-owner",
		"email":     "owner@" + studioID + ".example.com",
		"role":      "studio_owner",
		"studio_id": studioID,
		"type":      "access",
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	}
	if cfg.JWT.Issuer != "" {
		claims["iss"] = cfg.JWT.Issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
}

package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/jmadsen/courtline/internal/booking"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/database"
	"github.com/joho/godotenv"
)

// Simplified config loading for the script
func loadConfig() (dbName, migrationsDir string) {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "courtline.db"
	}
	migrationsDir = os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	return dbName, migrationsDir
}

func main() {
	log.Info("Starting database seeder...")
	dbName, migrationsDir := loadConfig()

	db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	defer db.Close()

	log.Info("Successfully connected to the database.")

	clubStore := club.New(db)
	bookingStore := booking.New(db)

	players := []club.Player{
		{
			ID: "anna", Name: "Anna Holm", Level: club.LevelBeginner,
			PlaysSingles: true, PlaysDoubles: true, MatchesPerWeek: 2, Member: true,
			Availability: club.Availability{Recurring: []club.RecurringSlot{
				{Weekday: "monday", From: "17:00", To: "21:00"},
				{Weekday: "wednesday", From: "17:00", To: "21:00"},
			}},
		},
		{
			ID: "bo", Name: "Bo Kristensen", Level: club.LevelBeginner,
			PlaysSingles: true, MatchesPerWeek: 1, Member: true,
			Preferred: []string{"anna"},
		},
		{
			ID: "clara", Name: "Clara Dam", Level: club.LevelIntermediate,
			PlaysSingles: true, PlaysDoubles: true, MatchesPerWeek: 3, Member: true,
			Availability: club.Availability{
				Recurring: []club.RecurringSlot{{Weekday: "saturday", From: "08:00", To: "14:00"}},
				Extra:     []club.DateSlot{{Date: "2025-07-01", From: "08:00", To: "22:00"}},
			},
		},
		{
			ID: "dennis", Name: "Dennis Friis", Level: club.LevelIntermediate,
			PlaysDoubles: true, MatchesPerWeek: 2, Member: true,
			Avoid: []string{"erik"},
		},
		{
			ID: "erik", Name: "Erik Lund", Level: club.LevelAdvanced,
			PlaysSingles: true, PlaysDoubles: true, Member: true,
		},
		{
			ID: "freja", Name: "Freja Madsen", Level: club.LevelAdvanced,
			PlaysSingles: true, PlaysDoubles: true, MatchesPerWeek: 4, Member: true,
			Preferred: []string{"erik"},
		},
		{
			ID: "gustav", Name: "Gustav Berg", Level: club.LevelCompetitive,
			PlaysSingles: true, Member: true,
		},
		{
			ID: "helle", Name: "Helle Toft", Level: club.LevelCompetitive,
			PlaysSingles: true, PlaysDoubles: true, MatchesPerWeek: 2, Member: true,
			Availability: club.Availability{Recurring: []club.RecurringSlot{
				{Weekday: "tuesday", From: "18:00", To: "22:00"},
				{Weekday: "thursday", From: "18:00", To: "22:00"},
				{Weekday: "sunday", From: "09:00", To: "17:00"},
			}},
		},
	}
	if err := clubStore.UpsertPlayers(players); err != nil {
		log.Fatalf("Failed to insert demo players: %s", err)
	}
	log.Info("Inserted demo players.", "count", len(players))

	courts := []club.Court{
		{ID: "court-1", Name: "Court 1", Season: club.SeasonSummer, Surface: "clay", Available: true},
		{ID: "court-2", Name: "Court 2", Season: club.SeasonSummer, Surface: "clay", Available: true},
		{ID: "court-3", Name: "Court 3", Season: club.SeasonSummer, Surface: "grass", Available: false},
		{ID: "hall-a", Name: "Hall A", Season: club.SeasonWinter, Surface: "carpet", CoveredInWinter: true, Available: true},
	}
	for _, c := range courts {
		if err := clubStore.UpsertCourt(c); err != nil {
			log.Fatalf("Failed to insert demo court %s: %s", c.ID, err)
		}
	}
	log.Info("Inserted demo courts.", "count", len(courts))

	reservations := []booking.Reservation{
		{
			CourtID: "court-1", Scope: booking.Weekly("monday"),
			From: "16:00", To: "17:30", Category: booking.CategoryLesson, Label: "junior training",
		},
		{
			CourtID: "court-2", Scope: booking.ExactDate("2025-07-05"),
			From: "08:00", To: "18:00", Category: booking.CategoryTournament, Label: "club open",
		},
	}
	for _, r := range reservations {
		if _, err := bookingStore.Upsert(r); err != nil {
			log.Fatalf("Failed to insert demo reservation on %s: %s", r.CourtID, err)
		}
	}
	log.Info("Inserted demo reservations.", "count", len(reservations))

	log.Info("Seeding complete.")
}

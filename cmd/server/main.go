package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "ellarises/internal/adapters/email"
	web "ellarises/internal/adapters/http"
	"ellarises/internal/adapters/storage"
	accountStore "ellarises/internal/adapters/storage/account"
	donationStore "ellarises/internal/adapters/storage/donation"
	eventStore "ellarises/internal/adapters/storage/event"
	milestoneStore "ellarises/internal/adapters/storage/milestone"
	occurrenceStore "ellarises/internal/adapters/storage/occurrence"
	participantStore "ellarises/internal/adapters/storage/participant"
	registrationStore "ellarises/internal/adapters/storage/registration"
	surveyStore "ellarises/internal/adapters/storage/survey"
	"ellarises/internal/application/orchestrators"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	// Initialize database with WAL mode, foreign keys, and busy timeout.
	// Foreign key enforcement is load-bearing: participant deletion relies
	// on the database rejecting deletes with dependent rows.
	dbPath := envOrDefault("ELLARISES_DB_PATH", "ellarises.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	acctStore := accountStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:      acctStore,
		ParticipantStore:  participantStore.NewSQLiteStore(db),
		EventStore:        eventStore.NewSQLiteStore(db),
		OccurrenceStore:   occurrenceStore.NewSQLiteStore(db),
		RegistrationStore: registrationStore.NewSQLiteStore(db),
		SurveyStore:       surveyStore.NewSQLiteStore(db),
		DonationStore:     donationStore.NewSQLiteStore(db),
		MilestoneStore:    milestoneStore.NewSQLiteStore(db),
	}

	// Seed the bootstrap admin account (idempotent)
	adminEmail := os.Getenv("ELLARISES_ADMIN_EMAIL")
	adminPassword := os.Getenv("ELLARISES_ADMIN_PASSWORD")
	seedDeps := orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), adminEmail, adminPassword, seedDeps); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender for donation receipts
	resendKey := os.Getenv("ELLARISES_RESEND_KEY")
	emailFrom := envOrDefault("ELLARISES_RESEND_FROM", "Ella Rises <noreply@ellarises.org>")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom)
		if os.Getenv("ELLARISES_ENV") == "production" {
			log.Println("WARNING: ELLARISES_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set ELLARISES_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux("static", stores)

	addr := envOrDefault("ELLARISES_ADDR", ":8080")
	log.Printf("Ella Rises %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("ELLARISES_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

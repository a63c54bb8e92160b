package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "ellarises/internal/adapters/http"
	"ellarises/internal/adapters/http/middleware"
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
	"ellarises/internal/domain/event"
	"ellarises/internal/domain/occurrence"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	evtStore := eventStore.NewSQLiteStore(db)
	occStore := occurrenceStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:      acctStore,
		ParticipantStore:  participantStore.NewSQLiteStore(db),
		EventStore:        evtStore,
		OccurrenceStore:   occStore,
		RegistrationStore: registrationStore.NewSQLiteStore(db),
		SurveyStore:       surveyStore.NewSQLiteStore(db),
		DonationStore:     donationStore.NewSQLiteStore(db),
		MilestoneStore:    milestoneStore.NewSQLiteStore(db),
	}

	// Seed the admin and one upcoming session to click through.
	ctx := context.Background()
	seedDeps := orchestrators.SeedAdminDeps{
		AccountStore: acctStore,
		GenerateID:   newID(),
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedAdmin(ctx, "admin@test.com", "TestPass123!long", seedDeps); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	ev := event.Event{ID: "ev-browser", Name: "Leadership Workshop", EventType: "workshop", Recurrence: "none", Description: "Browser test event"}
	if err := evtStore.Save(ctx, ev); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	occ := occurrence.Occurrence{ID: "occ-browser", EventID: ev.ID, StartsAt: time.Now().Add(72 * time.Hour), Location: "Main Hall", Capacity: 20}
	if err := occStore.Save(ctx, occ); err != nil {
		t.Fatalf("failed to seed occurrence: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	mux := web.NewMux("static", stores)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newID returns a generator producing unique test IDs.
func newID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("seed-%d-%d", time.Now().UnixNano(), n)
	}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// loginAdmin navigates to the login page and logs in as the seeded admin.
func (a *testApp) loginAdmin(t *testing.T, page playwright.Page) {
	t.Helper()
	a.login(t, page, "admin@test.com", "TestPass123!long")
}

func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=Email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=Password]").Fill(password); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForLoadState(); err != nil {
		t.Fatalf("login navigation did not settle: %v", err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}

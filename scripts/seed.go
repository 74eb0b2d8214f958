//go:build ignore

package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"orgnotify/internal/config"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Command-line flags
var (
	membersCount = flag.Int("members", 15, "Number of members to create")
	tenantFlag   = flag.String("tenant", "", "Tenant ID to seed (random UUID if empty)")
	clearData    = flag.Bool("clear", false, "Clear existing seed data before inserting")
	showHelp     = flag.Bool("help", false, "Show usage information")
)

var firstNames = []string{
	"Grace", "John", "Mary", "Peter", "Faith", "David", "Esther", "Samuel",
	"Ruth", "Daniel", "Joyce", "James", "Naomi", "Paul", "Mercy",
}

var lastNames = []string{
	"Mwangi", "Ochieng", "Wanjiku", "Kamau", "Akinyi", "Njoroge", "Atieno",
	"Kiprop", "Wambui", "Otieno", "Chebet", "Mutua", "Nyambura", "Omondi", "Wairimu",
}

func main() {
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	// Load .env file (ignore error if not present)
	_ = godotenv.Load()

	printInfo("=== OrgNotify Database Seeder ===\n")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}

	// Connect to database
	printInfo("Connecting to database...")
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		printError(fmt.Sprintf("Failed to open database connection: %v", err))
		os.Exit(1)
	}
	defer db.Close()

	// Test connection
	if err := db.Ping(); err != nil {
		printError(fmt.Sprintf("Failed to ping database: %v", err))
		os.Exit(1)
	}
	printSuccess("✓ Connected to database\n")

	tenantID := *tenantFlag
	if tenantID == "" {
		tenantID = uuid.NewString()
	}
	printInfo(fmt.Sprintf("Seeding tenant %s", tenantID))

	// Clear data if requested
	if *clearData {
		if err := clearSeedData(db, tenantID); err != nil {
			printError(fmt.Sprintf("Failed to clear seed data: %v", err))
			os.Exit(1)
		}
	}

	// Seed in dependency order
	membersCreated, err := seedMembers(db, tenantID, *membersCount)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed members: %v", err))
		os.Exit(1)
	}

	if err := seedProviderConfig(db, tenantID); err != nil {
		printError(fmt.Sprintf("Failed to seed provider config: %v", err))
		os.Exit(1)
	}

	templateIDs, err := seedTemplates(db, tenantID)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed templates: %v", err))
		os.Exit(1)
	}

	if err := seedSettings(db, tenantID, templateIDs); err != nil {
		printError(fmt.Sprintf("Failed to seed notification settings: %v", err))
		os.Exit(1)
	}

	categoriesCreated, err := seedCategories(db, tenantID)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed contribution categories: %v", err))
		os.Exit(1)
	}

	eventsCreated, err := seedEvents(db, tenantID)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed events: %v", err))
		os.Exit(1)
	}

	// Print summary
	printInfo("\n=== Seeding Summary ===")
	printSuccess(fmt.Sprintf("✓ Tenant:      %s", tenantID))
	printSuccess(fmt.Sprintf("✓ Members:     %d", membersCreated))
	printSuccess(fmt.Sprintf("✓ Templates:   %d", len(templateIDs)))
	printSuccess(fmt.Sprintf("✓ Categories:  %d", categoriesCreated))
	printSuccess(fmt.Sprintf("✓ Events:      %d", eventsCreated))
	printInfo("\nSeeding completed successfully!")
}

// clearSeedData removes existing data for the tenant
func clearSeedData(db *sql.DB, tenantID string) error {
	printWarning("Clearing existing seed data...")

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Reverse dependency order
	statements := []string{
		"DELETE FROM message_recipients WHERE message_id IN (SELECT id FROM messages WHERE tenant_id = $1)",
		"DELETE FROM messages WHERE tenant_id = $1",
		"DELETE FROM contributions WHERE tenant_id = $1",
		"DELETE FROM contribution_categories WHERE tenant_id = $1",
		"DELETE FROM events WHERE tenant_id = $1",
		"DELETE FROM notification_settings WHERE tenant_id = $1",
		"DELETE FROM templates WHERE tenant_id = $1",
		"DELETE FROM provider_configs WHERE tenant_id = $1",
		"DELETE FROM member_groups WHERE member_id IN (SELECT id FROM members WHERE tenant_id = $1)",
		"DELETE FROM members WHERE tenant_id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, tenantID); err != nil {
			return fmt.Errorf("failed to clear seed data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	printSuccess("✓ Seed data cleared\n")
	return nil
}

// seedMembers inserts members with spread-out birthdays, a few of them today
func seedMembers(db *sql.DB, tenantID string, count int) (int, error) {
	printInfo(fmt.Sprintf("Seeding %d members...", count))

	groupID := uuid.NewString()
	now := time.Now()
	created := 0

	for i := 0; i < count; i++ {
		memberID := uuid.NewString()
		firstName := firstNames[i%len(firstNames)]
		lastName := lastNames[i%len(lastNames)]
		phone := fmt.Sprintf("2547001001%02d", i)

		// Every fifth member has a birthday today so the birthday sweep has
		// something to pick up.
		birthDate := now.AddDate(-25-i, 1, 3)
		if i%5 == 0 {
			birthDate = now.AddDate(-30-i, 0, 0)
		}

		_, err := db.Exec(`
			INSERT INTO members (id, tenant_id, first_name, last_name, phone, birth_date, active)
			VALUES ($1, $2, $3, $4, $5, $6, true)
		`, memberID, tenantID, firstName, lastName, phone, birthDate)
		if err != nil {
			return created, fmt.Errorf("failed to insert member: %w", err)
		}

		// Alternate members join the seeded group
		if i%2 == 0 {
			_, err := db.Exec(`
				INSERT INTO member_groups (member_id, group_id) VALUES ($1, $2)
			`, memberID, groupID)
			if err != nil {
				return created, fmt.Errorf("failed to insert group membership: %w", err)
			}
		}

		created++
	}

	printSuccess(fmt.Sprintf("  ✓ %d members created (group %s)", created, groupID))
	return created, nil
}

// seedProviderConfig inserts one active gateway config for the tenant
func seedProviderConfig(db *sql.DB, tenantID string) error {
	printInfo("Seeding provider config...")

	_, err := db.Exec(`
		INSERT INTO provider_configs (tenant_id, api_key, partner_id, sender_id, active)
		VALUES ($1, $2, $3, $4, true)
	`, tenantID, "dev-api-key-000000", "10001", "ORGNOTIFY")
	if err != nil {
		return fmt.Errorf("failed to insert provider config: %w", err)
	}

	printSuccess("  ✓ Active provider config created")
	return nil
}

// seedTemplates inserts one template per trigger and returns their ids keyed
// by trigger name.
func seedTemplates(db *sql.DB, tenantID string) (map[string]int64, error) {
	printInfo("Seeding templates...")

	bodies := []struct {
		key  string
		name string
		body string
	}{
		{"birthday", "Birthday Wishes", "Happy birthday {first_name}! We celebrate you today and wish you a wonderful year ahead."},
		{"contribution", "Contribution Receipt", "Dear {name}, we have received your contribution of {currency} {amount} towards {category}. Thank you!"},
		{"event_reminder", "Event Reminder", "Hello {first_name}, a reminder that {event} takes place on {date}. We look forward to seeing you."},
	}

	ids := make(map[string]int64, len(bodies))
	for _, t := range bodies {
		var id int64
		err := db.QueryRow(`
			INSERT INTO templates (tenant_id, name, body) VALUES ($1, $2, $3) RETURNING id
		`, tenantID, t.name, t.body).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert template %s: %w", t.name, err)
		}
		ids[t.key] = id
	}

	printSuccess(fmt.Sprintf("  ✓ %d templates created", len(ids)))
	return ids, nil
}

// seedSettings enables all three triggers pointing at the seeded templates
func seedSettings(db *sql.DB, tenantID string, templateIDs map[string]int64) error {
	printInfo("Seeding notification settings...")

	_, err := db.Exec(`
		INSERT INTO notification_settings (
			tenant_id,
			birthday_enabled, birthday_template_id,
			contribution_enabled, contribution_template_id,
			event_reminder_enabled, event_reminder_template_id
		)
		VALUES ($1, true, $2, true, $3, true, $4)
		ON CONFLICT (tenant_id) DO UPDATE SET
			birthday_enabled = true, birthday_template_id = $2,
			contribution_enabled = true, contribution_template_id = $3,
			event_reminder_enabled = true, event_reminder_template_id = $4
	`, tenantID, templateIDs["birthday"], templateIDs["contribution"], templateIDs["event_reminder"])
	if err != nil {
		return fmt.Errorf("failed to insert notification settings: %w", err)
	}

	printSuccess("  ✓ All triggers enabled")
	return nil
}

// seedCategories inserts contribution categories, one of them not member-tracked
func seedCategories(db *sql.DB, tenantID string) (int, error) {
	printInfo("Seeding contribution categories...")

	categories := []struct {
		name    string
		tracked bool
	}{
		{"Tithe", true},
		{"Building Fund", true},
		{"Open Offering", false},
	}

	for _, c := range categories {
		_, err := db.Exec(`
			INSERT INTO contribution_categories (tenant_id, name, member_tracked)
			VALUES ($1, $2, $3)
		`, tenantID, c.name, c.tracked)
		if err != nil {
			return 0, fmt.Errorf("failed to insert category %s: %w", c.name, err)
		}
	}

	printSuccess(fmt.Sprintf("  ✓ %d categories created", len(categories)))
	return len(categories), nil
}

// seedEvents inserts events due for reminders today and tomorrow
func seedEvents(db *sql.DB, tenantID string) (int, error) {
	printInfo("Seeding events...")

	now := time.Now()
	events := []struct {
		title    string
		startsAt time.Time
		lead     string
	}{
		{"Sunday Service", now, "day_of"},
		{"Youth Fellowship", now.AddDate(0, 0, 1), "day_before"},
		{"Annual General Meeting", now.AddDate(0, 0, 14), "day_before"},
	}

	for _, e := range events {
		_, err := db.Exec(`
			INSERT INTO events (tenant_id, title, starts_at, reminder_enabled, reminder_lead, audience)
			VALUES ($1, $2, $3, true, $4, 'all')
		`, tenantID, e.title, e.startsAt, e.lead)
		if err != nil {
			return 0, fmt.Errorf("failed to insert event %s: %w", e.title, err)
		}
	}

	printSuccess(fmt.Sprintf("  ✓ %d events created", len(events)))
	return len(events), nil
}

// Helper functions for colored output

func printSuccess(msg string) {
	fmt.Printf("%s%s%s\n", colorGreen, msg, colorReset)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorRed, msg, colorReset)
}

func printInfo(msg string) {
	fmt.Printf("%s%s%s\n", colorCyan, msg, colorReset)
}

func printWarning(msg string) {
	fmt.Printf("%s%s%s\n", colorYellow, msg, colorReset)
}

func printUsage() {
	printInfo("=== OrgNotify Database Seeder ===\n")
	fmt.Println("Usage: go run scripts/seed.go [flags]")
	fmt.Println("\nFlags:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  go run scripts/seed.go")
	fmt.Println("  go run scripts/seed.go -members 50")
	fmt.Println("  go run scripts/seed.go -tenant 6f1c2e6a-... -clear")
}

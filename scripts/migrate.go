//go:build ignore

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"orgnotify/internal/config"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// Migration pairs a numbered SQL file with its tracking-table row
type Migration struct {
	Version   int
	Name      string
	FilePath  string
	Applied   bool
	AppliedAt *time.Time
}

// downSQL drops each migration's objects in reverse dependency order. Kept
// here rather than in paired .down.sql files so a rollback cannot drift from
// the schema the repositories expect.
var downSQL = map[int]string{
	1: "DROP TABLE IF EXISTS member_groups CASCADE; DROP TABLE IF EXISTS members CASCADE;",
	2: "DROP TABLE IF EXISTS provider_configs CASCADE;",
	3: "DROP TABLE IF EXISTS message_recipients CASCADE; DROP TABLE IF EXISTS messages CASCADE;",
	4: "DROP TABLE IF EXISTS notification_settings CASCADE; DROP TABLE IF EXISTS templates CASCADE;",
	5: "DROP TABLE IF EXISTS events CASCADE; DROP TABLE IF EXISTS contributions CASCADE; DROP TABLE IF EXISTS contribution_categories CASCADE;",
}

func main() {
	_ = godotenv.Load()

	printInfo("=== OrgNotify Migration Runner ===\n")

	command := "help"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command != "up" && command != "down" && command != "status" && command != "reset" {
		printUsage()
		if command != "help" {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	printInfo("Connecting to database...")
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		fatal(fmt.Sprintf("Failed to open database connection: %v", err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		fatal(fmt.Sprintf("Failed to ping database: %v", err))
	}
	printSuccess("✓ Connected to database\n")

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		fatal(fmt.Sprintf("Failed to create migration table: %v", err))
	}

	switch command {
	case "up":
		err = runUp(db)
	case "down":
		err = runDown(db)
	case "status":
		err = showStatus(db)
	case "reset":
		err = runReset(db)
	}
	if err != nil {
		fatal(fmt.Sprintf("%s failed: %v", command, err))
	}

	printInfo("\n✨ Operation completed successfully!")
}

func appliedMigrations(db *sql.DB) (map[int]Migration, error) {
	rows, err := db.Query(`SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		m.Applied = true
		applied[m.Version] = m
	}
	return applied, nil
}

func migrationFiles(dir string) ([]Migration, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	pattern := regexp.MustCompile(`^(\d{3})_(.+)\.sql$`)
	var migrations []Migration
	for _, file := range files {
		matches := pattern.FindStringSubmatch(file.Name())
		if file.IsDir() || len(matches) != 3 {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		migrations = append(migrations, Migration{
			Version:  version,
			Name:     matches[2],
			FilePath: filepath.Join(dir, file.Name()),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func runUp(db *sql.DB) error {
	printInfo("Running pending migrations...\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}
	migrations, err := migrationFiles("migrations")
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		printWarning("No migration files found in migrations/ directory")
		return nil
	}

	pending := 0
	for _, m := range migrations {
		if _, done := applied[m.Version]; done {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %03d_%s: %w", m.Version, m.Name, err)
		}
		pending++
	}

	if pending == 0 {
		printSuccess("✓ All migrations are up to date")
	} else {
		printSuccess(fmt.Sprintf("\n✓ Successfully applied %d migration(s)", pending))
	}
	return nil
}

func applyMigration(db *sql.DB, m Migration) error {
	printInfo(fmt.Sprintf("Applying migration %03d_%s...", m.Version, m.Name))

	content, err := os.ReadFile(m.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	return inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		printSuccess(fmt.Sprintf("  ✓ Migration %03d applied successfully", m.Version))
		return nil
	})
}

func runDown(db *sql.DB) error {
	printInfo("Rolling back last migration...\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		printWarning("No migrations to rollback")
		return nil
	}

	last := 0
	for version := range applied {
		if version > last {
			last = version
		}
	}

	if err := rollbackMigration(db, last); err != nil {
		return fmt.Errorf("failed to rollback migration %03d_%s: %w", last, applied[last].Name, err)
	}
	printSuccess(fmt.Sprintf("✓ Successfully rolled back migration %03d_%s", last, applied[last].Name))
	return nil
}

func rollbackMigration(db *sql.DB, version int) error {
	drop, ok := downSQL[version]
	if !ok {
		return fmt.Errorf("no rollback defined for migration version %d", version)
	}

	printInfo(fmt.Sprintf("Rolling back migration %03d...", version))

	return inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(drop); err != nil {
			return fmt.Errorf("failed to execute rollback SQL: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		printSuccess(fmt.Sprintf("  ✓ Migration %03d rolled back", version))
		return nil
	})
}

func runReset(db *sql.DB) error {
	printWarning("Resetting database (rollback all + reapply all)...\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	if len(applied) > 0 {
		printInfo("Rolling back all migrations...")
		versions := make([]int, 0, len(applied))
		for version := range applied {
			versions = append(versions, version)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(versions)))
		for _, version := range versions {
			if err := rollbackMigration(db, version); err != nil {
				return err
			}
		}
		printSuccess("\n✓ All migrations rolled back\n")
	}

	printInfo("Reapplying all migrations...")
	return runUp(db)
}

func showStatus(db *sql.DB) error {
	printInfo("Migration Status:\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}
	migrations, err := migrationFiles("migrations")
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		printWarning("No migration files found in migrations/ directory")
		return nil
	}

	fmt.Printf("%s%-10s %-40s %-12s %-20s%s\n",
		colorBold, "VERSION", "NAME", "STATUS", "APPLIED AT", colorReset)
	fmt.Println(strings.Repeat("-", 85))

	appliedCount := 0
	for _, m := range migrations {
		status, statusColor, appliedAt := "pending", colorYellow, "-"
		if row, ok := applied[m.Version]; ok {
			status, statusColor = "applied", colorGreen
			if row.AppliedAt != nil {
				appliedAt = row.AppliedAt.Format("2006-01-02 15:04:05")
			}
			appliedCount++
		}
		fmt.Printf("%-10s %-40s %s%-12s%s %-20s\n",
			fmt.Sprintf("%03d", m.Version), m.Name, statusColor, status, colorReset, appliedAt)
	}

	fmt.Println(strings.Repeat("-", 85))
	printInfo(fmt.Sprintf("\nSummary: %d/%d migrations applied", appliedCount, len(migrations)))
	return nil
}

func inTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func fatal(msg string) {
	printError(msg)
	os.Exit(1)
}

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
	fmt.Println("Usage: go run scripts/migrate.go [command]")
	fmt.Println("\nCommands:")
	fmt.Println("  up       - Apply all pending migrations")
	fmt.Println("  down     - Rollback the last applied migration")
	fmt.Println("  status   - Show current migration status")
	fmt.Println("  reset    - Rollback all migrations and reapply them")
	fmt.Println("  help     - Show this help message")
	fmt.Println("\nNotes:")
	fmt.Println("  - Migrations are tracked in the 'schema_migrations' table")
	fmt.Println("  - Each migration runs in a transaction")
	fmt.Println("  - Use scripts/seed.go to load development data")
}

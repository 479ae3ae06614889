package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"github.com/tpo-cell/backend/internal/auth"
	"github.com/tpo-cell/backend/internal/config"
	"github.com/tpo-cell/backend/internal/database"
	"github.com/tpo-cell/backend/internal/importer"
	"github.com/tpo-cell/backend/internal/repository"
	"github.com/tpo-cell/backend/internal/service"
)

var reader = bufio.NewReader(os.Stdin)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	for {
		printMenu()
		input := prompt("Choose: ")

		switch input {
		case "1":
			createDatabase(cfg)
		case "2":
			migrateSchema(cfg)
		case "3":
			truncateTables(cfg)
		case "4":
			seedAdmin(cfg)
		case "5":
			seedSamples(cfg)
		case "6":
			deleteDatabase(cfg)
		case "0":
			fmt.Println("Bye.")
			os.Exit(0)
		default:
			fmt.Println("Invalid choice")
		}

		fmt.Println()
		prompt("Press Enter to continue...")
	}
}

func printMenu() {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("        TPO CELL DATABASE MANAGER")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("1. Create database (if missing) + migrate schema")
	fmt.Println("2. Migrate schema")
	fmt.Println("3. Truncate tables")
	fmt.Println("4. Create or reset admin account")
	fmt.Println("5. Seed sample records from the import templates")
	fmt.Println("6. Drop database")
	fmt.Println("0. Exit")
	fmt.Println()
	fmt.Println("----------------------------------------")
}

func prompt(label string) string {
	fmt.Print(label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func getPostgresConn(cfg *config.Config) (*sql.DB, error) {
	return sql.Open("postgres", database.DSN(cfg, "postgres"))
}

func getDBConn(cfg *config.Config) (*sql.DB, error) {
	return sql.Open("postgres", database.DSN(cfg, cfg.Database.Name))
}

func databaseExists(cfg *config.Config) (bool, error) {
	db, err := getPostgresConn(cfg)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database.Name).Scan(&exists)
	return exists, err
}

func createDatabase(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Create database + migrate ---")

	exists, err := databaseExists(cfg)
	if err != nil {
		fmt.Printf("Error checking database: %v\n", err)
		return
	}

	if exists {
		fmt.Printf("Database '%s' already exists.\n", cfg.Database.Name)
		if strings.ToLower(prompt("Continue with migration? (y/n): ")) != "y" {
			fmt.Println("Cancelled.")
			return
		}
	} else {
		db, err := getPostgresConn(cfg)
		if err != nil {
			fmt.Printf("Connection error: %v\n", err)
			return
		}
		defer db.Close()

		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.Name)); err != nil {
			fmt.Printf("Error creating database: %v\n", err)
			return
		}
		fmt.Printf("Database '%s' created.\n", cfg.Database.Name)
	}

	migrateSchema(cfg)
}

func migrateSchema(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Migrate schema ---")

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.Migrate(db); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		return
	}
	fmt.Println("Schema is up to date.")
}

func truncateTables(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Truncate tables ---")
	fmt.Println("Every student, drive, event, attendance and alumni record will be DELETED,")
	fmt.Println("along with sessions. Staff accounts are kept.")
	if prompt("Type 'TRUNCATE' to confirm: ") != "TRUNCATE" {
		fmt.Println("Cancelled.")
		return
	}

	db, err := getDBConn(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	defer db.Close()

	tables := []string{
		"token_blacklist",
		"refresh_tokens",
		"attendance",
		"events",
		"drives",
		"students",
		"alumni",
	}
	for _, table := range tables {
		fmt.Printf("Truncating %s...\n", table)
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			fmt.Printf("Error truncating %s: %v\n", table, err)
		}
	}

	fmt.Println()
	fmt.Println("Truncate done.")
}

func seedAdmin(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Admin account ---")

	username := prompt("Username [admin]: ")
	if username == "" {
		username = "admin"
	}
	email := prompt("Email [admin@tpo.local]: ")
	if email == "" {
		email = "admin@tpo.local"
	}
	password := prompt("Password: ")
	if len(password) < 8 {
		fmt.Println("Password must be at least 8 characters. Cancelled.")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		return
	}

	db, err := getDBConn(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	defer db.Close()

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, username, email, password_hash, name, role, is_active, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, 'Administrator', 'admin', true, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET password_hash = $3, role = 'admin', is_active = true, updated_at = NOW()
		RETURNING id
	`, username, email, hash).Scan(&id)
	if err != nil {
		fmt.Printf("Error saving admin: %v\n", err)
		return
	}
	fmt.Printf("Admin '%s' ready (id %s).\n", username, id)
}

// seedSamples runs every import template through the import service, so
// seeded rows go through the same reconciliation as uploads.
func seedSamples(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Seed sample records ---")

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	svc := service.NewImportService(
		repository.NewStudentRepository(db),
		repository.NewAlumniRepository(db),
		repository.NewEventRepository(db),
		repository.NewAttendanceRepository(db),
	)

	// Attendance needs an event, which the events template provides.
	var eventID string
	for _, kind := range importer.Kinds {
		template, err := importer.Template(kind)
		if err != nil {
			continue
		}
		req := service.ImportRequest{Kind: kind, Reader: strings.NewReader(template), EventID: eventID}
		result, err := svc.Import(context.Background(), req)
		if err != nil {
			fmt.Printf("%-12s error: %v\n", kind, err)
			continue
		}
		fmt.Printf("%-12s %s\n", kind, result.Message)
		for _, e := range result.Errors {
			fmt.Printf("             %s\n", e)
		}

		if kind == importer.KindEvents {
			events, _, err := repository.NewEventRepository(db).List("", "", 1, 1)
			if err == nil && len(events) > 0 {
				eventID = events[0].ID.String()
			}
		}
	}
}

func deleteDatabase(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Drop database ---")
	fmt.Printf("WARNING: database '%s' will be permanently removed!\n", cfg.Database.Name)
	if prompt("Type the database name to confirm: ") != cfg.Database.Name {
		fmt.Println("Name does not match. Cancelled.")
		return
	}

	db, err := getPostgresConn(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	defer db.Close()

	// Terminate existing connections
	_, _ = db.Exec(`
		SELECT pg_terminate_backend(pg_stat_activity.pid)
		FROM pg_stat_activity
		WHERE pg_stat_activity.datname = $1
		AND pid <> pg_backend_pid()
	`, cfg.Database.Name)

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", cfg.Database.Name)); err != nil {
		fmt.Printf("Error dropping database: %v\n", err)
		return
	}
	fmt.Printf("Database '%s' dropped.\n", cfg.Database.Name)
}

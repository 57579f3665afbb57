package database

import (
	"context"
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

//go:embed schema/*.sql
var schemaFS embed.FS

var DB *sqlx.DB

// Connect opens the configured database, applies the schema and keeps the
// handle in DB.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("database.Connect: %w", err)
		}
	}

	db, err := Open(cfg.DBDriver, cfg.DBConnStr)
	if err != nil {
		return nil, err
	}
	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	DB = db
	log.Printf("INFO: connected to %s database", cfg.DBDriver)
	return db, nil
}

func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database.Open: %w", err)
	}

	if driver == config.DriverSQLite {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database.Open: ping: %w", err)
	}
	return db, nil
}

// Migrate creates the tables for the handle's dialect. Statements are
// idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	raw, err := schemaFS.ReadFile("schema/" + db.DriverName() + ".sql")
	if err != nil {
		return fmt.Errorf("database.Migrate: no schema for driver %q: %w", db.DriverName(), err)
	}

	for _, stmt := range strings.Split(string(raw), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database.Migrate: %w", err)
		}
	}
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
		log.Println("INFO: database connection closed")
	}
}

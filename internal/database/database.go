package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver resolves a database URL into a driver name and DSN.
// postgres:// and postgresql:// go to lib/pq; sqlite:// (or a bare path) to modernc sqlite.
func Driver(databaseURL string) (driver, dsn string, err error) {
	switch {
	case databaseURL == "":
		return "", "", fmt.Errorf("database URL is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres", databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return "sqlite", strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case strings.Contains(databaseURL, "://"):
		return "", "", fmt.Errorf("unsupported database URL scheme: %s", databaseURL)
	default:
		return "sqlite", databaseURL, nil
	}
}

// Connect establishes a connection to PostgreSQL or SQLite
func Connect(databaseURL string) (*sqlx.DB, error) {
	driver, dsn, err := Driver(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if driver == "sqlite" {
		// One writer; an in-memory database also only exists per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

package database

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// InitDatabase runs the embedded schema and sets performance PRAGMAs
func InitDatabase(db *sql.DB) error {
	// WAL mode keeps registry writes from blocking concurrent match lookups
	_, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA cache_size=-2000;")
	if err != nil {
		return err
	}
	_, err = db.Exec(schema)
	return err
}

// RecordMatch stores a resolved query so repeat harvests skip the search.
func RecordMatch(db *sql.DB, query, trackID string) error {
	if db == nil || query == "" || trackID == "" {
		return nil
	}

	stmt := `
	INSERT INTO match_registry (query, track_id, last_updated)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(query) DO UPDATE SET
		track_id = excluded.track_id,
		last_updated = CURRENT_TIMESTAMP;`

	_, err := db.Exec(stmt, query, trackID)
	return err
}

// LookupMatch returns the cached track id for a query, or sql.ErrNoRows.
func LookupMatch(db *sql.DB, query string) (string, error) {
	if db == nil || query == "" {
		return "", fmt.Errorf("invalid lookup")
	}

	var trackID string
	err := db.QueryRow("SELECT track_id FROM match_registry WHERE query = ?", query).Scan(&trackID)
	return trackID, err
}

package storage

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open returns the shared database handle every store is constructed with.
// A single connection keeps all statements serialized, which the stores rely
// on instead of their own locking.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = "lms.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

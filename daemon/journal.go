// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package daemon implements the settings daemon server and IPC protocol.
package daemon

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/types"
	_ "modernc.org/sqlite" // Pure-Go SQLite3 driver
)

var journalLog = logger.For("journal")

// Journal records every successful mutating call in a SQLite table.
type Journal struct {
	path  string
	limit int
	db    *sql.DB
}

// OpenJournal opens (creating if needed) the change history at path.
// At most limit records are kept; 0 keeps all.
func OpenJournal(path string, limit int) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	j := &Journal{path: path, limit: limit, db: db}
	if err := j.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	journalLog.Info("Opened change history", logger.Field{Key: "path", Value: path})
	return j, nil
}

func (j *Journal) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS changes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  TEXT NOT NULL,
			signal     TEXT NOT NULL,
			command    TEXT NOT NULL,
			detail     TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_changes_signal ON changes(signal);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create changes table: %w", err)
	}
	return nil
}

// Record appends a change and trims the table to the configured limit.
func (j *Journal) Record(signal, command, detail string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := j.db.Exec(
		`INSERT INTO changes (timestamp, signal, command, detail) VALUES (?, ?, ?, ?)`,
		timestamp, signal, command, detail); err != nil {
		return fmt.Errorf("failed to record change: %w", err)
	}

	if j.limit > 0 {
		if _, err := j.db.Exec(
			`DELETE FROM changes WHERE id <= (SELECT MAX(id) FROM changes) - ?`, j.limit); err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-empty signals
// list keeps only records with those signal names.
func (j *Journal) Recent(limit int, signals []string) ([]types.ChangeRecord, error) {
	query := "SELECT id, timestamp, signal, command, COALESCE(detail, '') FROM changes WHERE 1=1"
	args := []interface{}{}

	if len(signals) > 0 {
		query += " AND signal IN (?" + strings.Repeat(", ?", len(signals)-1) + ")"
		for _, signal := range signals {
			args = append(args, signal)
		}
	}

	query += " ORDER BY id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []types.ChangeRecord{}
	for rows.Next() {
		var r types.ChangeRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Signal, &r.Command, &r.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan change record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return records, nil
}

// Path returns the database location
func (j *Journal) Path() string { return j.path }

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

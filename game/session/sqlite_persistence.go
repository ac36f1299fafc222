package session

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/service"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLitePersistence implements SessionPersistence on a single SQLite file
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens the database at path and creates the schema
func NewSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLitePersistence{db: db, configManager: configManager}, nil
}

// Close releases the underlying connection
func (sp *SQLitePersistence) Close() error {
	if sp == nil || sp.db == nil {
		return nil
	}
	return sp.db.Close()
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := persistedData(session)
	stateJSON, err := json.Marshal(data.GameState)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	_, err = sp.db.ExecContext(
		context.Background(),
		`INSERT INTO sessions (id, config_id, created_at, last_accessed_at, state_json)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    config_id = excluded.config_id,
		    last_accessed_at = excluded.last_accessed_at,
		    state_json = excluded.state_json`,
		strings.ToLower(data.ID),
		data.ConfigName,
		data.CreatedAt.UnixMilli(),
		data.LastAccessedAt.UnixMilli(),
		string(stateJSON),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads a session row and rebuilds the session
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	row := sp.db.QueryRowContext(
		context.Background(),
		`SELECT id, config_id, created_at, last_accessed_at, state_json
		 FROM sessions
		 WHERE id = ?`,
		strings.ToLower(id),
	)

	var data PersistedSessionData
	var createdAt, accessedAt int64
	var stateJSON string
	if err := row.Scan(&data.ID, &data.ConfigName, &createdAt, &accessedAt, &stateJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	data.CreatedAt = time.UnixMilli(createdAt)
	data.LastAccessedAt = time.UnixMilli(accessedAt)

	var state engine.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	data.GameState = &state

	return restore(&data, sp.configManager)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.ExecContext(context.Background(), `DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns every stored session ID, oldest first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.QueryContext(context.Background(), `SELECT id FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRowContext(context.Background(), `SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}

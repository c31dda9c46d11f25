package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"photobooth-server/internal/models"
)

// DB wraps the database connection with performance optimizations
type DB struct {
	*sql.DB
}

// InitDB initializes the database with connection pooling
func InitDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance optimizations
	db.SetMaxOpenConns(25)           // Limit concurrent connections
	db.SetMaxIdleConns(10)           // Keep idle connections ready
	db.SetConnMaxLifetime(time.Hour) // Recycle connections

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Create tables
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		folder_name TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_group ON sessions(group_id);

	CREATE TABLE IF NOT EXISTS captures (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL,
		camera_id TEXT NOT NULL,
		session TEXT NOT NULL,
		file_path TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session) REFERENCES sessions(folder_name) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_captures_session ON captures(session);

	CREATE TABLE IF NOT EXISTS screens (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS collages (
		session TEXT NOT NULL,
		orientation TEXT NOT NULL,
		local_path TEXT NOT NULL,
		remote_url TEXT,
		generated_at DATETIME NOT NULL,
		PRIMARY KEY (session, orientation)
	);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveSession records a session folder (idempotent by folder name)
func (db *DB) SaveSession(s models.Session) error {
	query := `INSERT OR REPLACE INTO sessions (folder_name, group_id, created_at)
	          VALUES (?, ?, ?)`
	_, err := db.Exec(query, s.FolderName, s.GroupID, s.CreatedAt)
	return err
}

// SaveCapture records a stored capture
func (db *DB) SaveCapture(c *models.Capture) error {
	query := `INSERT INTO captures (id, group_id, camera_id, session, file_path, width, height, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query, c.ID, c.GroupID, c.CameraID, c.Session, c.FilePath, c.Width, c.Height, c.CreatedAt)
	return err
}

// GetCaptures retrieves all captures for a session folder
func (db *DB) GetCaptures(session string) ([]*models.Capture, error) {
	rows, err := db.Query(`SELECT id, group_id, camera_id, session, file_path, width, height, created_at
	                        FROM captures WHERE session = ? ORDER BY created_at ASC`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*models.Capture
	for rows.Next() {
		c := &models.Capture{}
		if err := rows.Scan(&c.ID, &c.GroupID, &c.CameraID, &c.Session, &c.FilePath, &c.Width, &c.Height, &c.CreatedAt); err != nil {
			log.Printf("Error scanning capture: %v", err)
			continue
		}
		captures = append(captures, c)
	}

	return captures, nil
}

// SaveScreen registers or updates a display screen
func (db *DB) SaveScreen(s *models.Screen) error {
	query := `INSERT OR REPLACE INTO screens (id, name, width, height, created_at)
	          VALUES (?, ?, ?, ?, ?)`
	_, err := db.Exec(query, s.ID, s.Name, s.Width, s.Height, s.CreatedAt)
	return err
}

// GetScreen retrieves a screen by ID
func (db *DB) GetScreen(id string) (*models.Screen, error) {
	s := &models.Screen{}
	query := `SELECT id, name, width, height, created_at FROM screens WHERE id = ?`
	err := db.QueryRow(query, id).Scan(&s.ID, &s.Name, &s.Width, &s.Height, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetAllScreens retrieves all registered screens
func (db *DB) GetAllScreens() ([]*models.Screen, error) {
	rows, err := db.Query(`SELECT id, name, width, height, created_at FROM screens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var screens []*models.Screen
	for rows.Next() {
		s := &models.Screen{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Width, &s.Height, &s.CreatedAt); err != nil {
			log.Printf("Error scanning screen: %v", err)
			continue
		}
		screens = append(screens, s)
	}

	return screens, nil
}

// SaveCollage records a generated collage artifact (one row per
// session+orientation; regeneration replaces the previous row)
func (db *DB) SaveCollage(session string, orientation models.Orientation, localPath, remoteURL string) error {
	var remote sql.NullString
	if remoteURL != "" {
		remote = sql.NullString{String: remoteURL, Valid: true}
	}
	query := `INSERT OR REPLACE INTO collages (session, orientation, local_path, remote_url, generated_at)
	          VALUES (?, ?, ?, ?, ?)`
	_, err := db.Exec(query, session, string(orientation), localPath, remote, time.Now())
	return err
}

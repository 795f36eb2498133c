package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"briefdeck/internal/core"
)

// Store represents the SQLite-backed conversion history and oracle response cache
type Store struct {
	db   *sql.DB
	path string
}

// Conversion is one uploaded document and what was produced for it.
type Conversion struct {
	ID              string                `json:"id"`
	PresentationID  string                `json:"presentationId"`
	SourceName      string                `json:"sourceName"`
	PreviewURL      string                `json:"previewUrl,omitempty"`
	DownloadURL     string                `json:"downloadUrl,omitempty"`
	SlideCount      int                   `json:"slideCount"`
	Classifications []core.Classification `json:"classifications"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "briefdeck.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	conversionsTable := `
	CREATE TABLE IF NOT EXISTS conversions (
		id TEXT PRIMARY KEY,
		presentation_id TEXT UNIQUE,
		source_name TEXT,
		preview_url TEXT,
		download_url TEXT,
		slide_count INTEGER,
		classifications TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`

	// Oracle responses keyed by a hash of kind, model and prompt
	cacheTable := `
	CREATE TABLE IF NOT EXISTS oracle_cache (
		hash TEXT PRIMARY KEY,
		kind TEXT,
		model TEXT,
		response TEXT,
		created_at DATETIME
	);`

	tables := []string{conversionsTable, cacheTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordPreview stores a freshly generated preview along with the article classifications
// used to build it.
func (s *Store) RecordPreview(presentationID, sourceName, previewURL string, classifications []core.Classification) (*Conversion, error) {
	clsJSON, err := json.Marshal(classifications)
	if err != nil {
		return nil, fmt.Errorf("failed to encode classifications: %w", err)
	}

	now := time.Now().UTC()
	conv := &Conversion{
		ID:              uuid.NewString(),
		PresentationID:  presentationID,
		SourceName:      sourceName,
		PreviewURL:      previewURL,
		Classifications: classifications,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	query := `
	INSERT OR REPLACE INTO conversions
	(id, presentation_id, source_name, preview_url, download_url, slide_count, classifications, created_at, updated_at)
	VALUES (?, ?, ?, ?, '', 0, ?, ?, ?)`

	if _, err := s.db.Exec(query, conv.ID, presentationID, sourceName, previewURL, string(clsJSON), now, now); err != nil {
		return nil, fmt.Errorf("failed to record preview: %w", err)
	}
	return conv, nil
}

// RecordDownload attaches a generated deck to a conversion, creating the record when the
// presentation was never previewed here.
func (s *Store) RecordDownload(presentationID, downloadURL string, slideCount int) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
	UPDATE conversions SET download_url = ?, slide_count = ?, updated_at = ?
	WHERE presentation_id = ?`, downloadURL, slideCount, now, presentationID)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	_, err = s.db.Exec(`
	INSERT INTO conversions
	(id, presentation_id, source_name, preview_url, download_url, slide_count, classifications, created_at, updated_at)
	VALUES (?, ?, '', '', ?, ?, '[]', ?, ?)`, uuid.NewString(), presentationID, downloadURL, slideCount, now, now)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

const conversionColumns = `id, presentation_id, source_name, preview_url, download_url, slide_count, classifications, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(row scanner) (*Conversion, error) {
	var conv Conversion
	var clsJSON string
	err := row.Scan(
		&conv.ID,
		&conv.PresentationID,
		&conv.SourceName,
		&conv.PreviewURL,
		&conv.DownloadURL,
		&conv.SlideCount,
		&clsJSON,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if clsJSON != "" {
		if err := json.Unmarshal([]byte(clsJSON), &conv.Classifications); err != nil {
			return nil, fmt.Errorf("failed to decode classifications: %w", err)
		}
	}
	return &conv, nil
}

// GetConversion retrieves a conversion by presentation id. A missing record is (nil, nil).
func (s *Store) GetConversion(presentationID string) (*Conversion, error) {
	row := s.db.QueryRow(`SELECT `+conversionColumns+` FROM conversions WHERE presentation_id = ?`, presentationID)
	conv, err := scanConversion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion: %w", err)
	}
	return conv, nil
}

// ListConversions returns the most recent conversions first.
func (s *Store) ListConversions(limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+conversionColumns+` FROM conversions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		conv, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		out = append(out, *conv)
	}
	return out, rows.Err()
}

// GetCachedResponse returns a cached oracle response for the exact prompt.
func (s *Store) GetCachedResponse(kind, model, prompt string) (string, bool, error) {
	var response string
	err := s.db.QueryRow(`SELECT response FROM oracle_cache WHERE hash = ?`, responseKey(kind, model, prompt)).Scan(&response)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached response: %w", err)
	}
	return response, true, nil
}

// CacheResponse stores an oracle response.
func (s *Store) CacheResponse(kind, model, prompt, response string) error {
	query := `
	INSERT OR REPLACE INTO oracle_cache (hash, kind, model, response, created_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, responseKey(kind, model, prompt), kind, model, response, time.Now().UTC())
	return err
}

// CacheStats represents cache statistics
type CacheStats struct {
	ConversionCount int
	ResponseCount   int
	CacheSize       int64
	LastUpdated     time.Time
}

// GetCacheStats returns statistics about the cache
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM conversions":  &stats.ConversionCount,
		"SELECT COUNT(*) FROM oracle_cache": &stats.ResponseCount,
	}

	for query, target := range queries {
		err := s.db.QueryRow(query).Scan(target)
		if err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all cached oracle responses
func (s *Store) ClearCache() error {
	if _, err := s.db.Exec("DELETE FROM oracle_cache"); err != nil {
		return fmt.Errorf("failed to clear oracle_cache table: %w", err)
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}

// CleanupOldCache removes cached responses older than maxAge
func (s *Store) CleanupOldCache(maxAge time.Duration) (int64, error) {
	res, err := s.db.Exec("DELETE FROM oracle_cache WHERE created_at < ?", time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to clean old responses: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func responseKey(kind, model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

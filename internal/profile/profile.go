// Package profile persists user profiles and shared code snippets in SQLite.
package profile

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "modernc.org/sqlite"

	"github.com/ixink/uiu-student-bot/internal/match"
)

var (
	// ErrNotFound means no profile row exists for the user.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalid wraps validation failures; the store is left untouched.
	ErrInvalid = errors.New("invalid profile")
)

// Profile describes a student for personalization. Interests and courses
// are stored as comma-separated text, matching how users type them.
type Profile struct {
	UserID          int64    `json:"user_id"`
	Department      string   `json:"department" validate:"required"`
	Year            int      `json:"year" validate:"gt=0"`
	Interests       []string `json:"interests" validate:"min=1"`
	Courses         []string `json:"courses,omitempty"`
	CommuteLocation string   `json:"commute_location,omitempty"`
}

// Terms derives the relevance terms for this profile: the first interest,
// then the department.
func (p Profile) Terms() []string {
	var terms []string
	if len(p.Interests) > 0 && p.Interests[0] != "" {
		terms = append(terms, p.Interests[0])
	}
	if p.Department != "" {
		terms = append(terms, p.Department)
	}
	return terms
}

// Snippet is a shared code snippet with free-form tags.
type Snippet struct {
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Body        string `json:"body"`
}

// Store wraps the user database. Writes go through a single connection;
// reads use a separate read-only handle.
type Store struct {
	readDB   *sql.DB
	writeDB  *sql.DB
	validate *validator.Validate
}

// Open opens (creating if needed) the user database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read connection: %w", err)
	}

	s := &Store{
		readDB:   readDB,
		writeDB:  writeDB,
		validate: validator.New(),
	}
	if err := s.init(); err != nil {
		s.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS user_profiles (
			user_id          INTEGER PRIMARY KEY,
			department       TEXT NOT NULL,
			year             INTEGER NOT NULL,
			interests        TEXT NOT NULL,
			courses          TEXT NOT NULL DEFAULT '',
			commute_location TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS code_snippets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL,
			description TEXT NOT NULL,
			tags        TEXT NOT NULL DEFAULT '',
			snippet     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_user ON code_snippets(user_id);
	`)
	return err
}

// Close closes both database handles.
func (s *Store) Close() error {
	return errors.Join(s.readDB.Close(), s.writeDB.Close())
}

// Set validates and upserts a profile. On validation failure the store is
// left unchanged and the error wraps ErrInvalid.
func (s *Store) Set(p Profile) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	_, err := s.writeDB.Exec(`
		INSERT INTO user_profiles (user_id, department, year, interests, courses, commute_location)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			department = excluded.department,
			year = excluded.year,
			interests = excluded.interests,
			courses = excluded.courses,
			commute_location = excluded.commute_location`,
		p.UserID, p.Department, p.Year, joinCSV(p.Interests), joinCSV(p.Courses), p.CommuteLocation)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get returns the profile for userID, or ErrNotFound.
func (s *Store) Get(userID int64) (Profile, error) {
	var (
		p                  Profile
		interests, courses string
	)
	err := s.readDB.QueryRow(`
		SELECT user_id, department, year, interests, courses, commute_location
		FROM user_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Department, &p.Year, &interests, &courses, &p.CommuteLocation)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	p.Interests = splitCSV(interests)
	p.Courses = splitCSV(courses)
	return p, nil
}

// AddSnippet stores a code snippet for userID.
func (s *Store) AddSnippet(userID int64, sn Snippet) error {
	if strings.TrimSpace(sn.Description) == "" || strings.TrimSpace(sn.Body) == "" {
		return fmt.Errorf("%w: snippet needs a description and a body", ErrInvalid)
	}
	_, err := s.writeDB.Exec(
		"INSERT INTO code_snippets (user_id, description, tags, snippet) VALUES (?, ?, ?, ?)",
		userID, sn.Description, sn.Tags, sn.Body)
	if err != nil {
		return fmt.Errorf("saving snippet: %w", err)
	}
	return nil
}

// Snippets returns the user's snippets, newest first. A non-empty tag keeps
// only snippets whose tags fuzzily match it.
func (s *Store) Snippets(userID int64, tag string) ([]Snippet, error) {
	rows, err := s.readDB.Query(`
		SELECT description, tags, snippet
		FROM code_snippets WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	defer rows.Close()

	terms := match.NormalizeTerms([]string{tag})
	var out []Snippet
	for rows.Next() {
		var sn Snippet
		if err := rows.Scan(&sn.Description, &sn.Tags, &sn.Body); err != nil {
			return nil, fmt.Errorf("scanning snippet: %w", err)
		}
		if len(terms) > 0 && match.Best(terms, sn.Tags, sn.Description) < match.DefaultThreshold {
			continue
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

func joinCSV(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ",")
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseList splits user-typed comma lists like "python,dsa" into terms.
func ParseList(s string) []string {
	return splitCSV(s)
}

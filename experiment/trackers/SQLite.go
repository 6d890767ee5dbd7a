package trackers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	ts "github.com/samuelfneumann/gocrawler/timestep"

	_ "modernc.org/sqlite"
)

// Episode is a single finished episode stored by the SQLite Tracker
type Episode struct {
	Episode int
	Return  float64
	Length  int
	EndType ts.EndType
}

// SQLite tracks the return, length, and ending type of each episode in
// an experiment and stores them in a SQLite database. Each SQLite
// Tracker is identified by a random run ID, so that many experiments
// may share a single database file.
type SQLite struct {
	path  string
	runID string

	current  Episode
	episodes []Episode

	mu sync.Mutex
	db *sql.DB
}

// NewSQLite returns a new SQLite Tracker which saves to the database
// at path
func NewSQLite(path string) *SQLite {
	return &SQLite{
		path:  path,
		runID: uuid.NewString(),
	}
}

// RunID returns the identifier of the run in the database
func (s *SQLite) RunID() string {
	return s.runID
}

// Init opens the database and creates its tables. Calling Init on an
// opened Tracker does nothing.
func (s *SQLite) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("init: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := openDB(ctx, s.path)
	if err != nil {
		return fmt.Errorf("init: %v", err)
	}
	s.db = db
	return nil
}

// Track accumulates the reward of step into the current episode and
// caches the episode once step is the last in its episode
func (s *SQLite) Track(step ts.TimeStep) {
	if step.First() {
		s.current = Episode{Episode: len(s.episodes)}
		return
	}

	s.current.Return += step.Reward
	s.current.Length = step.Number
	if step.Last() {
		s.current.EndType = step.EndType()
		s.episodes = append(s.episodes, s.current)
		s.current = Episode{Episode: len(s.episodes)}
	}
}

// Save writes all finished episodes to the database
func (s *SQLite) Save() error {
	return s.SaveContext(context.Background())
}

// SaveContext writes all finished episodes to the database. Episodes
// already written are overwritten, so SaveContext may be called
// repeatedly during an experiment.
func (s *SQLite) SaveContext(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return fmt.Errorf("saveContext: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saveContext: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`, s.runID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saveContext: could not save run: %v", err)
	}

	for _, ep := range s.episodes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO episodes (run_id, episode, episode_return, length, end_type)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(run_id, episode) DO UPDATE SET
				episode_return = excluded.episode_return,
				length = excluded.length,
				end_type = excluded.end_type
		`, s.runID, ep.Episode, ep.Return, ep.Length, ep.EndType.String())
		if err != nil {
			return fmt.Errorf("saveContext: could not save episode %v: %v",
				ep.Episode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saveContext: %v", err)
	}
	return nil
}

// Close closes the database
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// LoadEpisodes returns the episodes stored for runID in the database at
// path, ordered by episode number
func LoadEpisodes(ctx context.Context, path, runID string) ([]Episode,
	error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loadEpisodes: %v", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT episode, episode_return, length, end_type FROM episodes
		WHERE run_id = ?
		ORDER BY episode
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("loadEpisodes: %v", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var ep Episode
		var endType string
		if err := rows.Scan(&ep.Episode, &ep.Return, &ep.Length,
			&endType); err != nil {
			return nil, fmt.Errorf("loadEpisodes: %v", err)
		}
		ep.EndType = parseEndType(endType)
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loadEpisodes: %v", err)
	}
	return episodes, nil
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			episode INTEGER NOT NULL,
			episode_return REAL NOT NULL,
			length INTEGER NOT NULL,
			end_type TEXT NOT NULL,
			PRIMARY KEY (run_id, episode)
		);
	`)
	return err
}

func parseEndType(s string) ts.EndType {
	switch s {
	case ts.Timeout.String():
		return ts.Timeout
	case ts.TerminalStateReached.String():
		return ts.TerminalStateReached
	default:
		return ts.Nil
	}
}

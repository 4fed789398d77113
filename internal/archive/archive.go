// Package archive appends one row per completed game to a SQLite database,
// using a single async writer goroutine so a slow or failing disk never
// blocks a match-runner worker.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"tourney/internal/runner"
)

// Store is the results archive: one games table, one writer goroutine.
type Store struct {
	db           *sql.DB
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	log          zerolog.Logger
}

// Open creates or attaches to a SQLite database at dataSourceName and starts
// the async writer.
func Open(dataSourceName string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: wal mode: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:        db,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
	}
	s.healthStatus.Store(true)

	if err := s.initSchema(); err != nil {
		db.Close()
		cancel()
		return nil, err
	}

	s.wg.Add(1)
	go s.writerLoop()
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS games (
		game_no INTEGER,
		fixture_index INTEGER,
		white TEXT,
		black TEXT,
		opening_id TEXT,
		result TEXT,
		termination TEXT,
		tablebase_used INTEGER,
		ended_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("archive: init schema: %w", err)
	}
	return nil
}

// IsHealthy reports whether the writer is still accepting writes.
func (s *Store) IsHealthy() bool { return s.healthStatus.Load() }

// Record enqueues one completed game's row. It returns an error immediately
// (without touching the database) when the store is degraded or its queue
// is full, so the caller can increment its own disk-write-error counter.
func (s *Store) Record(result runner.MatchResult) error {
	if !s.healthStatus.Load() {
		return fmt.Errorf("archive: degraded, write skipped")
	}
	write := func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO games (game_no, fixture_index, white, black, opening_id, result, termination, tablebase_used, ended_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.GameNo, result.Job.FixtureIndex, result.WhiteName, result.BlackName,
			result.Job.Opening.ID, result.Result, result.Reason.String(), boolToInt(result.TablebaseUsed),
			time.Now().UTC().Format(time.RFC3339),
		)
		return err
	}
	select {
	case s.writeChan <- write:
		return nil
	default:
		return fmt.Errorf("archive: write queue full, write dropped")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) writerLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}
		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Warn().Err(err).Msg("archive degraded: failed to begin transaction")
		s.healthStatus.Store(false)
		return
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		s.log.Warn().Err(err).Msg("archive degraded: write failed")
		s.healthStatus.Store(false)
		return
	}
	if err := tx.Commit(); err != nil {
		s.log.Warn().Err(err).Msg("archive degraded: commit failed")
		s.healthStatus.Store(false)
	}
}

// Close signals the writer to drain and stop, then closes the database.
func (s *Store) Close() error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.log.Warn().Msg("archive writer shutdown timeout, some writes may be lost")
	}
	return s.db.Close()
}

package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

//go:embed sql/*.sql
var migrations embed.FS

// SQLite is the default durable ledger.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and creates if missing) the database at dsn and applies
// pending migrations.
func OpenSQLite(dsn string, log zerolog.Logger) (*SQLite, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// openDB ensures the parent directory exists, then opens with a busy
// timeout, WAL journaling and foreign keys on.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies embedded sql/*.sql files in lexical order, each inside its
// own transaction, recording applied names in _migrations.
func migrate(db *sql.DB, log zerolog.Logger) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(migrations, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, e Entry) (Record, error) {
	e, err := Validate(e)
	if err != nil {
		return Record{}, err
	}
	r := Record{ID: newID(), Entry: e, CreatedAt: s.now().UTC()}
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO scores
            (id, nickname, game_type, score, max_possible, rounds, difficulty, session_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, e.Nickname, e.GameType, e.Score, e.MaxPossible, e.Rounds, string(e.Difficulty), e.SessionID, r.CreatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert score: %w", err)
	}
	if r.Seq, err = res.LastInsertId(); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (s *SQLite) Top(ctx context.Context, gameType string, limit int) ([]Record, error) {
	limit = ClampLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
        SELECT seq, id, nickname, game_type, score, max_possible, rounds, difficulty, session_id, created_at
        FROM scores
        WHERE game_type=?
        ORDER BY score DESC, seq ASC
        LIMIT ?`, strings.TrimSpace(gameType), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var (
			r    Record
			diff string
		)
		if err := rows.Scan(&r.Seq, &r.ID, &r.Nickname, &r.GameType, &r.Score, &r.MaxPossible, &r.Rounds, &diff, &r.SessionID, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Difficulty = game.Difficulty(diff)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

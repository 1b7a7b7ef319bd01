package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"story_adventure/apperr"
)

// SQLite stores stories in a SQLite database.
type SQLite struct {
	conn *sqlx.DB
}

type storyRow struct {
	ID         string `db:"id"`
	GenresJSON string `db:"genres_json"`
	Prompt     string `db:"prompt"`
	Arc        string `db:"arc"`
	CreatedAt  int64  `db:"created_at"`
}

type stepRow struct {
	Idx            int    `db:"idx"`
	NarratorPrompt string `db:"narrator_prompt"`
	ImagePrompt    string `db:"image_prompt"`
	OptionsJSON    string `db:"options_json"`
	Choice         string `db:"choice"`
}

// dsnParams puts the database in WAL mode, waits on locks instead of failing
// and takes the write lock when a transaction begins.
const dsnParams = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stories (
		id TEXT PRIMARY KEY,
		genres_json TEXT NOT NULL,
		prompt TEXT NOT NULL,
		arc TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		story_id TEXT NOT NULL REFERENCES stories(id),
		idx INTEGER NOT NULL,
		narrator_prompt TEXT NOT NULL,
		image_prompt TEXT NOT NULL,
		options_json TEXT NOT NULL,
		choice TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (story_id, idx)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Create inserts a new story together with any steps it already has.
func (db *SQLite) Create(ctx context.Context, s Story) error {
	genres, err := json.Marshal(s.Genres)
	if err != nil {
		return apperr.Storage("encode genres", err)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stories (id, genres_json, prompt, arc, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, string(genres), s.Prompt, s.Arc, s.CreatedAt.Unix()); err != nil {
		return apperr.Storage("insert story", err)
	}
	for i, st := range s.Steps {
		st.Index = i
		if err := insertStep(ctx, tx, s.ID, st); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage("commit story", err)
	}
	return nil
}

// Get loads a story and its steps in order.
func (db *SQLite) Get(ctx context.Context, id string) (Story, error) {
	var row storyRow
	err := db.conn.GetContext(ctx, &row, `SELECT id, genres_json, prompt, arc, created_at FROM stories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Story{}, apperr.NotFound("story %q not found", id)
	}
	if err != nil {
		return Story{}, apperr.Storage("load story", err)
	}

	s := Story{ID: row.ID, Prompt: row.Prompt, Arc: row.Arc, CreatedAt: time.Unix(row.CreatedAt, 0)}
	if err := json.Unmarshal([]byte(row.GenresJSON), &s.Genres); err != nil {
		return Story{}, apperr.Storage("decode genres", err)
	}

	var steps []stepRow
	if err := db.conn.SelectContext(ctx, &steps,
		`SELECT idx, narrator_prompt, image_prompt, options_json, choice FROM steps WHERE story_id = ? ORDER BY idx`, id); err != nil {
		return Story{}, apperr.Storage("load steps", err)
	}
	for _, r := range steps {
		st := Step{Index: r.Idx, NarratorPrompt: r.NarratorPrompt, ImagePrompt: r.ImagePrompt, Choice: r.Choice}
		if err := json.Unmarshal([]byte(r.OptionsJSON), &st.Options); err != nil {
			return Story{}, apperr.Storage("decode options", err)
		}
		s.Steps = append(s.Steps, st)
	}
	return s, nil
}

// AppendStep adds a step after the last recorded one and returns its index.
func (db *SQLite) AppendStep(ctx context.Context, id string, st Step) (int, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM stories WHERE id = ?`, id); err != nil {
		return 0, apperr.Storage("check story", err)
	}
	if exists == 0 {
		return 0, apperr.NotFound("story %q not found", id)
	}

	var next int
	if err := tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(idx) + 1, 0) FROM steps WHERE story_id = ?`, id); err != nil {
		return 0, apperr.Storage("next step index", err)
	}
	st.Index = next
	if err := insertStep(ctx, tx, id, st); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, apperr.Storage("commit step", err)
	}
	return next, nil
}

// RecordChoice stores the option the reader picked on step idx.
func (db *SQLite) RecordChoice(ctx context.Context, id string, idx int, choice string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE steps SET choice = ? WHERE story_id = ? AND idx = ?`, choice, id, idx)
	if err != nil {
		return apperr.Storage("record choice", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("step %d of story %q not found", idx, id)
	}
	return nil
}

func insertStep(ctx context.Context, tx *sqlx.Tx, id string, st Step) error {
	options, err := json.Marshal(st.Options)
	if err != nil {
		return apperr.Storage("encode options", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO steps (story_id, idx, narrator_prompt, image_prompt, options_json, choice) VALUES (?, ?, ?, ?, ?, ?)`,
		id, st.Index, st.NarratorPrompt, st.ImagePrompt, string(options), st.Choice); err != nil {
		return apperr.Storage("insert step", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/yoyaku/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// Foreign keys are per connection in SQLite, so enable them in the DSN.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		id TEXT PRIMARY KEY,
		source_id TEXT,
		source_path TEXT,
		title TEXT,
		strategy TEXT NOT NULL,
		sentence_order TEXT NOT NULL,
		documents INTEGER NOT NULL,
		ranked INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at);
	CREATE INDEX IF NOT EXISTS idx_summaries_source_id ON summaries(source_id);

	CREATE TABLE IF NOT EXISTS summary_sentences (
		summary_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		doc_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		score REAL NOT NULL,
		PRIMARY KEY (summary_id, rank),
		FOREIGN KEY (summary_id) REFERENCES summaries(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSummary inserts a summary and its sentences. An empty ID is replaced
// by a new UUID.
func (s *SQLiteStorage) CreateSummary(ctx context.Context, rec *models.SummaryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertSummary(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSummary stores rec as the only summary of its source, removing any
// earlier ones in the same transaction. Records without a SourceID are
// simply created.
func (s *SQLiteStorage) ReplaceSummary(ctx context.Context, rec *models.SummaryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if rec.SourceID != "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM summaries WHERE source_id = ?`, rec.SourceID); err != nil {
			return err
		}
	}
	if err := insertSummary(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSummary(ctx context.Context, tx *sql.Tx, rec *models.SummaryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := tx.ExecContext(ctx,
		`INSERT INTO summaries (id, source_id, source_path, title, strategy, sentence_order, documents, ranked, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceID, rec.SourcePath, rec.Title, rec.Strategy, rec.Order,
		rec.Documents, rec.Ranked, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO summary_sentences (summary_id, rank, doc_id, position, text, score)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range rec.Sentences {
		sent := &rec.Sentences[i]
		sent.Rank = i + 1
		if _, err := stmt.ExecContext(ctx, rec.ID, sent.Rank, sent.DocID, sent.Position, sent.Text, sent.Score); err != nil {
			return fmt.Errorf("failed to insert sentence %d: %w", sent.Rank, err)
		}
	}
	return nil
}

const summaryColumns = `id, source_id, source_path, title, strategy, sentence_order, documents, ranked, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*models.SummaryRecord, error) {
	var rec models.SummaryRecord
	var sourceID, sourcePath, title sql.NullString
	if err := row.Scan(&rec.ID, &sourceID, &sourcePath, &title, &rec.Strategy, &rec.Order,
		&rec.Documents, &rec.Ranked, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.SourceID = sourceID.String
	rec.SourcePath = sourcePath.String
	rec.Title = title.String
	return &rec, nil
}

// GetSummary returns a summary and its sentences by ID.
func (s *SQLiteStorage) GetSummary(ctx context.Context, id string) (*models.SummaryRecord, error) {
	rec, err := scanSummary(s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM summaries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if rec.Sentences, err = s.sentences(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetSummaryBySource returns the most recent summary of a source file.
func (s *SQLiteStorage) GetSummaryBySource(ctx context.Context, sourceID string) (*models.SummaryRecord, error) {
	rec, err := scanSummary(s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM summaries WHERE source_id = ?
		 ORDER BY created_at DESC LIMIT 1`, sourceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: source %s", ErrNotFound, sourceID)
	}
	if err != nil {
		return nil, err
	}
	if rec.Sentences, err = s.sentences(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStorage) sentences(ctx context.Context, summaryID string) ([]models.SummarySentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, doc_id, position, text, score
		 FROM summary_sentences WHERE summary_id = ? ORDER BY rank`,
		summaryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SummarySentence{}
	for rows.Next() {
		var sent models.SummarySentence
		if err := rows.Scan(&sent.Rank, &sent.DocID, &sent.Position, &sent.Text, &sent.Score); err != nil {
			return nil, err
		}
		out = append(out, sent)
	}
	return out, rows.Err()
}

// ListSummaries returns summaries newest first with offset and limit.
// Sentences are not loaded; use GetSummary for them.
func (s *SQLiteStorage) ListSummaries(ctx context.Context, offset, limit int) ([]*models.SummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM summaries ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.SummaryRecord
	for rows.Next() {
		rec, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteSummary removes a summary and its sentences by ID.
func (s *SQLiteStorage) DeleteSummary(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteSummaryBySource removes every summary of a source file.
func (s *SQLiteStorage) DeleteSummaryBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE source_id = ?`, sourceID)
	return err
}

// DeleteSummariesUnder removes the summaries of every source file below dir
// and returns how many were deleted.
func (s *SQLiteStorage) DeleteSummariesUnder(ctx context.Context, dir string) (int64, error) {
	prefix := strings.TrimRight(filepath.Clean(dir), string(filepath.Separator)) + string(filepath.Separator)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM summaries WHERE source_id != '' AND substr(source_path, 1, length(?1)) = ?1`,
		prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountSummaries returns the total number of summaries.
func (s *SQLiteStorage) CountSummaries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&count)
	return count, err
}

// CountSentences returns the total number of stored summary sentences.
func (s *SQLiteStorage) CountSentences(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summary_sentences`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

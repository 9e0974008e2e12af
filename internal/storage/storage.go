// Package storage persists ranking batches in SQLite or PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
)

const (
	// Fixed width keeps lexical and chronological order the same.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrNoResults = errors.New("no stored results")

// Config selects the database.
type Config struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// BatchMeta describes a stored batch.
type BatchMeta struct {
	ID         string
	JobID      int64
	AnalyzedAt time.Time
	Results    int
}

// Store is a database backed result store. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

// Open connects to the configured database and creates missing tables.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Store, error) {
	d, ok := dialectFor(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		if d.driver != DriverSQLite {
			return nil, fmt.Errorf("storage dsn is required for driver %q", d.driver)
		}
		dsn = DefaultSQLiteDSN
	}

	if d.driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.driver, err)
	}

	if d.driver == DriverSQLite {
		// SQLite: single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", d.driver, err)
	}

	s := &Store{
		db:      db,
		dialect: d,
		logger:  logger.WithFields(log),
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	s.logger.Debug("storage opened", zap.String("driver", d.driver))
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveBatch stores the reference document and every ranked document of b in
// one transaction. The job description row is reused when the same content
// was stored before.
func (s *Store) SaveBatch(ctx context.Context, b *analysis.Batch) (*BatchMeta, error) {
	now := s.now()
	stamp := now.Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	jobID, err := s.jobID(ctx, tx, b.Reference, stamp)
	if err != nil {
		return nil, err
	}

	meta := &BatchMeta{
		ID:         uuid.NewString(),
		JobID:      jobID,
		AnalyzedAt: now,
		Results:    b.Len(),
	}

	if _, err := tx.ExecContext(ctx,
		s.dialect.bind(`INSERT INTO batches (id, job_id, analyzed_at) VALUES (?, ?, ?)`),
		meta.ID, jobID, stamp,
	); err != nil {
		return nil, fmt.Errorf("inserting batch: %w", err)
	}

	for _, doc := range b.Documents {
		if err := s.insertResult(ctx, tx, meta, doc); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}

	s.logger.Info("batch stored",
		zap.String(logger.FieldBatch, meta.ID),
		zap.Int64("job_id", jobID),
		zap.Int("results", meta.Results),
	)
	return meta, nil
}

// SaveResult appends one ranked document to an already stored batch.
func (s *Store) SaveResult(ctx context.Context, meta *BatchMeta, doc analysis.ScoredDocument) error {
	if meta == nil || meta.ID == "" {
		return errors.New("batch metadata is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertResult(ctx, tx, meta, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing result: %w", err)
	}

	meta.Results++
	return nil
}

func (s *Store) insertResult(ctx context.Context, tx *sql.Tx, meta *BatchMeta, doc analysis.ScoredDocument) error {
	stamp := meta.AnalyzedAt.UTC().Format(timeLayout)

	var resumeID int64
	err := tx.QueryRowContext(ctx,
		s.dialect.bind(`INSERT INTO resumes (filename, upload_date) VALUES (?, ?) RETURNING id`),
		doc.ID, stamp,
	).Scan(&resumeID)
	if err != nil {
		return fmt.Errorf("inserting resume %q: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		s.dialect.bind(`INSERT INTO results (batch_id, resume_id, job_id, score, matched_skills, matched_title,
				matched_education, matched_experience, matched_languages, analysis_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		meta.ID, resumeID, meta.JobID, doc.Score,
		encodeList(doc.Fields.Skills), encodeList(doc.Fields.JobTitles), encodeList(doc.Fields.Education),
		encodeList(doc.Fields.Experience), encodeList(doc.Fields.Languages), stamp,
	); err != nil {
		return fmt.Errorf("inserting result for %q: %w", doc.ID, err)
	}
	return nil
}

func (s *Store) jobID(ctx context.Context, tx *sql.Tx, content, stamp string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		s.dialect.bind(`SELECT id FROM job_descriptions WHERE content = ? ORDER BY id LIMIT 1`),
		content,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up job description: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		s.dialect.bind(`INSERT INTO job_descriptions (content, upload_date) VALUES (?, ?) RETURNING id`),
		content, stamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting job description: %w", err)
	}
	return id, nil
}

// LatestBatch returns the most recently stored batch.
func (s *Store) LatestBatch(ctx context.Context) (*BatchMeta, error) {
	var (
		meta  BatchMeta
		stamp string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, job_id, analyzed_at FROM batches ORDER BY seq DESC LIMIT 1`,
	).Scan(&meta.ID, &meta.JobID, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, fmt.Errorf("selecting latest batch: %w", err)
	}

	meta.AnalyzedAt, err = time.Parse(timeLayout, stamp)
	if err != nil {
		return nil, fmt.Errorf("parsing batch time %q: %w", stamp, err)
	}

	err = s.db.QueryRowContext(ctx,
		s.dialect.bind(`SELECT COUNT(*) FROM results WHERE batch_id = ?`), meta.ID,
	).Scan(&meta.Results)
	if err != nil {
		return nil, fmt.Errorf("counting batch results: %w", err)
	}
	return &meta, nil
}

// LatestResults returns the rows of the most recent batch, best score first.
func (s *Store) LatestResults(ctx context.Context) (*BatchMeta, []report.Row, error) {
	meta, err := s.LatestBatch(ctx)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.bind(
		`SELECT r.filename, res.score, res.matched_skills, res.matched_title, res.matched_education,
			res.matched_experience, res.matched_languages
		 FROM results res JOIN resumes r ON r.id = res.resume_id
		 WHERE res.batch_id = ?
		 ORDER BY res.score DESC, res.id ASC`),
		meta.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting results: %w", err)
	}
	defer rows.Close()

	result := make([]report.Row, 0, meta.Results)
	for rows.Next() {
		var row report.Row
		var skills, title, education, experience, languages string
		if err := rows.Scan(&row.Filename, &row.Score, &skills, &title, &education, &experience, &languages); err != nil {
			return nil, nil, fmt.Errorf("scanning result: %w", err)
		}
		for _, list := range []struct {
			raw  string
			dest *[]string
		}{
			{skills, &row.MatchedSkills},
			{title, &row.MatchedTitle},
			{education, &row.MatchedEducation},
			{experience, &row.MatchedExperience},
			{languages, &row.MatchedLanguages},
		} {
			terms, err := decodeList(list.raw)
			if err != nil {
				return nil, nil, fmt.Errorf("decoding matched terms of %q: %w", row.Filename, err)
			}
			*list.dest = terms
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading results: %w", err)
	}

	return meta, result, nil
}

// Matched lists are stored as JSON arrays so that terms may contain any
// separator.
func encodeList(terms []string) string {
	if terms == nil {
		terms = []string{}
	}
	// A []string always marshals.
	b, _ := json.Marshal(terms)
	return string(b)
}

func decodeList(raw string) ([]string, error) {
	terms := []string{}
	if raw == "" {
		return terms, nil
	}
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil, err
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

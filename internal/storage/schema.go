package storage

import (
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	DefaultSQLiteDSN = "instance/database.db"
)

type dialect struct {
	driver string
	schema []string
}

var sqliteDialect = dialect{
	driver: DriverSQLite,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS resumes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			filename    TEXT NOT NULL,
			upload_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_descriptions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			content     TEXT NOT NULL,
			upload_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batches (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			job_id      INTEGER NOT NULL REFERENCES job_descriptions(id),
			analyzed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id           TEXT NOT NULL REFERENCES batches(id),
			resume_id          INTEGER NOT NULL REFERENCES resumes(id),
			job_id             INTEGER NOT NULL REFERENCES job_descriptions(id),
			score              REAL NOT NULL,
			matched_skills     TEXT NOT NULL,
			matched_title      TEXT NOT NULL,
			matched_education  TEXT NOT NULL,
			matched_experience TEXT NOT NULL,
			matched_languages  TEXT NOT NULL,
			analysis_date      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS results_batch_id ON results (batch_id)`,
	},
}

var postgresDialect = dialect{
	driver: DriverPostgres,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS resumes (
			id          BIGSERIAL PRIMARY KEY,
			filename    TEXT NOT NULL,
			upload_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_descriptions (
			id          BIGSERIAL PRIMARY KEY,
			content     TEXT NOT NULL,
			upload_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batches (
			seq         BIGSERIAL PRIMARY KEY,
			id          TEXT NOT NULL UNIQUE,
			job_id      BIGINT NOT NULL REFERENCES job_descriptions(id),
			analyzed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id                 BIGSERIAL PRIMARY KEY,
			batch_id           TEXT NOT NULL REFERENCES batches(id),
			resume_id          BIGINT NOT NULL REFERENCES resumes(id),
			job_id             BIGINT NOT NULL REFERENCES job_descriptions(id),
			score              DOUBLE PRECISION NOT NULL,
			matched_skills     TEXT NOT NULL,
			matched_title      TEXT NOT NULL,
			matched_education  TEXT NOT NULL,
			matched_experience TEXT NOT NULL,
			matched_languages  TEXT NOT NULL,
			analysis_date      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS results_batch_id ON results (batch_id)`,
	},
}

func dialectFor(driver string) (dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite3":
		return sqliteDialect, true
	case DriverPostgres, "postgres", "postgresql":
		return postgresDialect, true
	default:
		return dialect{}, false
	}
}

// bind rewrites ? placeholders into the positional form the driver expects.
func (d dialect) bind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

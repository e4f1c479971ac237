package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/schools-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: empty database path")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS schools (
	link                 TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	venue                TEXT,
	start_date           TEXT,
	end_date             TEXT,
	application_deadline TEXT,
	registration_status  TEXT,
	description          TEXT,
	position             INTEGER NOT NULL,
	updated_at           DATETIME NOT NULL
);
`

const sqliteUpsert = `
INSERT INTO schools (link, name, venue, start_date, end_date, application_deadline,
	registration_status, description, position, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM schools), ?)
ON CONFLICT(link) DO UPDATE SET
	name = excluded.name,
	venue = excluded.venue,
	start_date = excluded.start_date,
	end_date = excluded.end_date,
	application_deadline = excluded.application_deadline,
	registration_status = excluded.registration_status,
	description = excluded.description,
	updated_at = excluded.updated_at`

const sqliteSelect = `SELECT name, link, venue, start_date, end_date, application_deadline,
	registration_status, description, updated_at FROM schools`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec model.Record) error {
	_, err := s.db.ExecContext(ctx, sqliteUpsert, s.args(rec)...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert %s", rec.Link)
	}
	return nil
}

func (s *SQLiteStore) UpsertMany(ctx context.Context, recs []model.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, s.args(rec)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert %s", rec.Link)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return len(recs), nil
}

func (s *SQLiteStore) Get(ctx context.Context, link string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE link = ?`, link)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s", link)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+` ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list rows")
	}
	return out, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schools`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}

func (s *SQLiteStore) args(rec model.Record) []any {
	return []any{
		rec.Link, rec.Name, rec.Venue, rec.StartDate, rec.EndDate,
		rec.ApplicationDeadline, rec.RegistrationStatus, rec.Description,
		s.now().UTC(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*model.Record, error) {
	var (
		rec     model.Record
		updated sql.NullTime
	)
	if err := sc.Scan(
		&rec.Name, &rec.Link, &rec.Venue, &rec.StartDate, &rec.EndDate,
		&rec.ApplicationDeadline, &rec.RegistrationStatus, &rec.Description,
		&updated,
	); err != nil {
		return nil, err
	}
	rec.UpdatedAt = updated.Time
	return &rec, nil
}

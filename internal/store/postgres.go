package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/schools-cli/internal/db"
	"github.com/sells-group/schools-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var recordColumns = []string{
	"link", "name", "venue", "start_date", "end_date", "application_deadline",
	"registration_status", "description", "updated_at",
}

var upsertConfig = db.UpsertConfig{
	Table:        "schools",
	Columns:      recordColumns,
	ConflictKeys: []string{"link"},
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS schools (
	link                 TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	venue                TEXT,
	start_date           TEXT,
	end_date             TEXT,
	application_deadline TEXT,
	registration_status  TEXT,
	description          TEXT,
	position             BIGSERIAL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const postgresSelect = `SELECT name, link, venue, start_date, end_date, application_deadline, registration_status, description, updated_at FROM schools`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec model.Record) error {
	query, err := db.UpsertSQL(upsertConfig)
	if err != nil {
		return eris.Wrap(err, "postgres: build upsert")
	}
	if _, err := s.pool.Exec(ctx, query, s.row(rec)...); err != nil {
		return eris.Wrapf(err, "postgres: upsert %s", rec.Link)
	}
	return nil
}

func (s *PostgresStore) UpsertMany(ctx context.Context, recs []model.Record) (int, error) {
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = s.row(rec)
	}
	n, err := db.BulkUpsert(ctx, s.pool, upsertConfig, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk upsert")
	}
	return int(n), nil
}

func (s *PostgresStore) Get(ctx context.Context, link string) (*model.Record, error) {
	row := s.pool.QueryRow(ctx, postgresSelect+` WHERE link = $1`, link)
	rec, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get %s", link)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]model.Record, error) {
	rows, err := s.pool.Query(ctx, postgresSelect+` ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list")
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		rec, err := scanPgRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list rows")
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM schools`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count")
	}
	return n, nil
}

func (s *PostgresStore) row(rec model.Record) []any {
	return []any{
		rec.Link, rec.Name, rec.Venue, rec.StartDate, rec.EndDate,
		rec.ApplicationDeadline, rec.RegistrationStatus, rec.Description,
		s.now().UTC(),
	}
}

func scanPgRecord(row pgx.Row) (*model.Record, error) {
	var rec model.Record
	if err := row.Scan(
		&rec.Name, &rec.Link, &rec.Venue, &rec.StartDate, &rec.EndDate,
		&rec.ApplicationDeadline, &rec.RegistrationStatus, &rec.Description,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

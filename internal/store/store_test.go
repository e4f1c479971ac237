package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/schools-cli/internal/model"
)

func record(link, name, venue string) model.Record {
	return model.Record{
		Name:        name,
		Link:        link,
		Venue:       model.Str(venue),
		StartDate:   model.Str("2026-07-01"),
		Description: model.Str("A school."),
	}
}

// openStores returns one migrated instance of every file-backed driver.
func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	out := make(map[string]Store)
	for _, opts := range []Options{
		{Driver: DriverSQLite, DatabaseURL: filepath.Join(dir, "schools.db")},
		{Driver: DriverCSV, CSVPath: filepath.Join(dir, "schools.csv")},
	} {
		s, err := Open(ctx, opts)
		require.NoError(t, err, opts.Driver)
		t.Cleanup(func() { s.Close() }) //nolint:errcheck
		out[opts.Driver] = s
	}
	return out
}

func TestStore_UpsertOverwriteKeepsCount(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Upsert(ctx, record("https://a.example/", "A", "Oxford")))
			require.NoError(t, s.Upsert(ctx, record("https://b.example/", "B", "Lisbon")))

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			updated := record("https://a.example/", "A", "Cambridge")
			updated.StartDate = nil
			require.NoError(t, s.Upsert(ctx, updated))

			n, err = s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			got, err := s.Get(ctx, "https://a.example/")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Cambridge", model.Deref(got.Venue))
			assert.Nil(t, got.StartDate)

			// First-insertion order survives the overwrite.
			all, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "https://a.example/", all[0].Link)
			assert.Equal(t, "https://b.example/", all[1].Link)
		})
	}
}

func TestStore_NewLinkIncrementsCount(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			require.NoError(t, s.Upsert(ctx, record("https://a.example/", "A", "Oxford")))
			n, err = s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			require.NoError(t, s.Upsert(ctx, record("https://c.example/", "C", "Paris")))
			n, err = s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get(context.Background(), "https://missing.example/")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_UpsertMany(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			recs := []model.Record{
				record("https://a.example/", "A", "Oxford"),
				record("https://b.example/", "B", "Lisbon"),
				record("https://a.example/", "A", "Cambridge"),
			}

			n, err := s.UpsertMany(ctx, recs)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			count, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			got, err := s.Get(ctx, "https://a.example/")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Cambridge", model.Deref(got.Venue))
		})
	}
}

func TestSQLiteStore_SetsUpdatedAt(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "schools.db"))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Upsert(context.Background(), record("https://a.example/", "A", "Oxford")))
	got, err := s.Get(context.Background(), "https://a.example/")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, fixed.Equal(got.UpdatedAt), "got %v", got.UpdatedAt)
}

func TestCSVStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.csv")
	ctx := context.Background()

	s, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, record("https://a.example/", "A", "Oxford")))
	require.NoError(t, s.Upsert(ctx, record("https://b.example/", "B", "")))

	reopened, err := NewCSV(path)
	require.NoError(t, err)
	all, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Oxford", model.Deref(all[0].Venue))
	assert.Nil(t, all[1].Venue)
	assert.Nil(t, all[1].EndDate)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestCSVStore_LoadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.csv")
	legacy := "name,link,venue,date,application_deadline\n" +
		"Oxford ML,https://www.oxfordml.school/2026,Oxford,2026-08-01,N/A\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := NewCSV(path)
	require.NoError(t, err)
	got, err := s.Get(context.Background(), "https://www.oxfordml.school/2026")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2026-08-01", model.Deref(got.StartDate))
	assert.Nil(t, got.ApplicationDeadline)
}

func TestCSVStore_UpsertKeepsRowsWrittenByAnotherInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.csv")
	ctx := context.Background()

	first, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, first.Upsert(ctx, record("https://a.example/", "A", "Oxford")))

	second, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, second.Upsert(ctx, record("https://b.example/", "B", "Paris")))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	require.NoError(t, first.Upsert(ctx, record("https://c.example/", "C", "Rome")))

	reopened, err := NewCSV(path)
	require.NoError(t, err)
	all, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://a.example/", all[0].Link)
	assert.Equal(t, "https://b.example/", all[1].Link)
	assert.Equal(t, "https://c.example/", all[2].Link)
}

func TestCSVStore_FailedWriteLeavesRowsUnchanged(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "schools.csv")
	ctx := context.Background()

	s, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, record("https://a.example/", "A", "Oxford")))

	require.NoError(t, os.RemoveAll(dir))

	updated := record("https://a.example/", "A", "Cambridge")
	require.Error(t, s.Upsert(ctx, updated))
	n, err := s.UpsertMany(ctx, []model.Record{record("https://b.example/", "B", "")})
	require.Error(t, err)
	assert.Zero(t, n)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Oxford", model.Deref(all[0].Venue))

	got, err := s.Get(ctx, "https://b.example/")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCSVStore_UnwritableDirectory(t *testing.T) {
	_, err := Open(context.Background(), Options{
		Driver:  DriverCSV,
		CSVPath: filepath.Join(t.TempDir(), "missing", "dir", "schools.csv"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not writable")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "mongo"`)
}

func TestValidDriver(t *testing.T) {
	assert.True(t, ValidDriver(DriverSQLite))
	assert.True(t, ValidDriver(DriverPostgres))
	assert.True(t, ValidDriver(DriverCSV))
	assert.False(t, ValidDriver("mysql"))
}

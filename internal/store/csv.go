package store

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/tabular"
)

// CSVStore keeps records in a single CSV file. The file is loaded at open
// and rewritten in full on every upsert through a temp file and rename, so a
// crash never leaves a partially written file behind. Rows keep the order in
// which their links were first inserted. Writes reload the file first when
// another process has replaced it, and a failed write leaves the in-memory
// rows as they were.
type CSVStore struct {
	path string

	mu      sync.Mutex
	recs    []model.Record
	index   map[string]int
	modTime time.Time
	now     func() time.Time
}

// NewCSV opens the CSV store at path. A missing file is an empty store.
func NewCSV(path string) (*CSVStore, error) {
	if path == "" {
		return nil, eris.New("csv: empty file path")
	}
	s := &CSVStore{path: path, now: time.Now}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate checks that the directory holding the file exists and is writable.
func (s *CSVStore) Migrate(_ context.Context) error {
	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, ".schools-check-*")
	if err != nil {
		return eris.Wrapf(err, "csv: store directory %s is not writable", dir)
	}
	name := f.Name()
	f.Close()       //nolint:errcheck
	os.Remove(name) //nolint:errcheck
	return nil
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) Upsert(ctx context.Context, rec model.Record) error {
	_, err := s.UpsertMany(ctx, []model.Record{rec})
	return err
}

func (s *CSVStore) UpsertMany(_ context.Context, recs []model.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return 0, err
	}
	prevRecs := append([]model.Record(nil), s.recs...)
	prevIndex := maps.Clone(s.index)

	for _, rec := range recs {
		s.put(rec)
	}
	if err := s.flush(); err != nil {
		s.recs, s.index = prevRecs, prevIndex
		return 0, err
	}
	return len(recs), nil
}

func (s *CSVStore) Get(_ context.Context, link string) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	i, ok := s.index[link]
	if !ok {
		return nil, nil
	}
	rec := s.recs[i]
	return &rec, nil
}

func (s *CSVStore) List(_ context.Context) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	out := make([]model.Record, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

func (s *CSVStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return 0, err
	}
	return len(s.recs), nil
}

func (s *CSVStore) put(rec model.Record) {
	rec.UpdatedAt = s.now().UTC()
	if i, ok := s.index[rec.Link]; ok {
		s.recs[i] = rec
		return
	}
	s.index[rec.Link] = len(s.recs)
	s.recs = append(s.recs, rec)
}

// refresh reloads the file when another process has rewritten it.
func (s *CSVStore) refresh() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "csv: stat %s", s.path)
	}
	if info.ModTime().Equal(s.modTime) {
		return nil
	}
	return s.load()
}

func (s *CSVStore) load() error {
	s.recs = nil
	s.index = make(map[string]int)

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "csv: open %s", s.path)
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return eris.Wrapf(err, "csv: stat %s", s.path)
	}

	recs, err := tabular.ReadCSV(f)
	if err != nil {
		return eris.Wrapf(err, "csv: load %s", s.path)
	}
	for _, rec := range recs {
		if i, ok := s.index[rec.Link]; ok {
			zap.L().Warn("csv: duplicate link in store file, keeping last", zap.String("link", rec.Link))
			s.recs[i] = rec
			continue
		}
		s.index[rec.Link] = len(s.recs)
		s.recs = append(s.recs, rec)
	}
	s.modTime = info.ModTime()
	return nil
}

func (s *CSVStore) flush() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".schools-*.csv")
	if err != nil {
		return eris.Wrapf(err, "csv: create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := tabular.WriteCSV(tmp, s.recs); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "csv: write records")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "csv: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "csv: close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return eris.Wrapf(err, "csv: replace %s", s.path)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

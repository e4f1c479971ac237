//go:build !integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/store"
	"github.com/sells-group/schools-cli/internal/tabular"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{
			Name:               "ESSAI 2026",
			Link:               "https://essai2026.eu/",
			Venue:              model.Str("Bratislava, Slovakia"),
			StartDate:          model.Str("2026-07-20"),
			EndDate:            model.Str("2026-07-24"),
			RegistrationStatus: model.Str(model.StatusOpen),
			Description:        model.Str("A week of courses on AI."),
		},
		{
			Name: "Probabilistic AI School",
			Link: "https://probabilistic.ai/",
		},
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	cfg = testConfig(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")

	var buf bytes.Buffer
	require.NoError(t, tabular.WriteCSV(&buf, sampleRecords()))
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0o644))

	importCmd.SetContext(context.Background())
	defer importCmd.SetContext(context.TODO())
	oldFile := importFile
	importFile = in
	defer func() { importFile = oldFile }()

	require.NoError(t, importCmd.RunE(importCmd, nil))

	out := filepath.Join(dir, "out.xlsx")
	exportCmd.SetContext(context.Background())
	defer exportCmd.SetContext(context.TODO())
	oldFormat, oldOut := exportFormat, exportOut
	exportFormat, exportOut = "xlsx", out
	defer func() { exportFormat, exportOut = oldFormat, oldOut }()

	require.NoError(t, exportCmd.RunE(exportCmd, nil))

	got, err := tabular.ReadXLSX(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ESSAI 2026", got[0].Name)
	assert.Equal(t, "2026-07-24", model.Deref(got[0].EndDate))
	assert.Nil(t, got[1].Venue)
}

func TestImportCmd_BadPath(t *testing.T) {
	cfg = testConfig(t)

	importCmd.SetContext(context.Background())
	defer importCmd.SetContext(context.TODO())

	old := importFile
	importFile = "/nonexistent/path/schools.csv"
	defer func() { importFile = old }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import: open")
}

func TestImportCmd_LegacyLayout(t *testing.T) {
	cfg = testConfig(t)
	in := filepath.Join(t.TempDir(), "legacy.csv")
	legacy := "name,link,venue,date,application_deadline\n" +
		"Oxford ML,https://www.oxfordml.school/,Oxford,2026-06-29,N/A\n" +
		"DL School,https://dl.example/,Lisbon,\"July 15-19, 2024\",\"May 31, 2024\"\n"
	require.NoError(t, os.WriteFile(in, []byte(legacy), 0o644))

	importCmd.SetContext(context.Background())
	defer importCmd.SetContext(context.TODO())
	old := importFile
	importFile = in
	defer func() { importFile = old }()

	require.NoError(t, importCmd.RunE(importCmd, nil))

	st, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, DatabaseURL: cfg.Store.DatabaseURL})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	rec, err := st.Get(context.Background(), "https://www.oxfordml.school/")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2026-06-29", model.Deref(rec.StartDate))
	assert.Nil(t, rec.ApplicationDeadline)

	rec, err = st.Get(context.Background(), "https://dl.example/")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.StartDate)
	assert.Equal(t, "2024-05-31", model.Deref(rec.ApplicationDeadline))
}

func TestExportCmd_XLSXNeedsOut(t *testing.T) {
	cfg = testConfig(t)

	exportCmd.SetContext(context.Background())
	defer exportCmd.SetContext(context.TODO())
	oldFormat, oldOut := exportFormat, exportOut
	exportFormat, exportOut = "xlsx", ""
	defer func() { exportFormat, exportOut = oldFormat, oldOut }()

	err := exportCmd.RunE(exportCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs --out")
}

func TestWriteExport(t *testing.T) {
	recs := sampleRecords()

	var csvBuf bytes.Buffer
	require.NoError(t, writeExport(&csvBuf, "csv", recs))
	assert.Contains(t, csvBuf.String(), "https://essai2026.eu/")

	var mdBuf bytes.Buffer
	require.NoError(t, writeExport(&mdBuf, "md", recs))
	assert.Contains(t, mdBuf.String(), "| ESSAI 2026")

	err := writeExport(&bytes.Buffer{}, "pdf", recs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestFormatRecords(t *testing.T) {
	var buf bytes.Buffer
	formatRecords(&buf, sampleRecords())
	out := buf.String()

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Bratislava, Slovakia")
	assert.Contains(t, out, "2026-07-20")
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "-")
}

func TestFormatSources(t *testing.T) {
	var buf bytes.Buffer
	formatSources(&buf, []model.Source{{Name: "ESSAI 2026", Link: "https://essai2026.eu/"}})
	assert.Contains(t, buf.String(), "NAME")
	assert.Contains(t, buf.String(), "https://essai2026.eu/")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(nil))
	assert.Equal(t, "-", orDash(new(string)))
	assert.Equal(t, "x", orDash(model.Str("x")))
}

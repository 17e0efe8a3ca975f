package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s22a0058-ai/FYP/internal/config"
)

const sampleCSV = `JANTINA,BANGSA,AGAMA,UMUR (BULAN),BERAT (KG),TINGGI (CM),GAJI BAPA,GAJI IBU,GAJI PENJAGA,PENDAPATAN KELUARGA,STATUS PEMAKANAN,DAERAH,PARLIMEN,DUN
LELAKI,MELAYU,ISLAM,48,15,100,RM1000,RM2000,-,RM1000-RM3999,Normal,kota bharu,KETEREH,KADOK
PEREMPUAN,MELAYU,ISLAM,36,12,95,Error,RM1500,-,MAKLUMAT SALAH,Kurang,tumpat,TUMPAT,KELABORAN
LELAKI,CINA,BUDDHA,24,10,80,RM3000,-,-,RM4000-RM7999,Normal,kota bharu,KETEREH,KADOK
`

func writeSampleCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anak.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	csvPath := writeSampleCSV(t, sampleCSV)

	out, err := runCommand(t, "validate", "--path", csvPath)
	require.NoError(t, err)

	assert.Contains(t, out, "records:         3")
	assert.Contains(t, out, "missing bmi:     0")
	assert.Contains(t, out, "filled income:   1")
}

func TestValidateCommandEmptyDataset(t *testing.T) {
	csvPath := writeSampleCSV(t, "JANTINA,BANGSA,AGAMA,UMUR (BULAN),BERAT (KG),TINGGI (CM),GAJI BAPA,GAJI IBU,GAJI PENJAGA,PENDAPATAN KELUARGA,STATUS PEMAKANAN,DAERAH,PARLIMEN,DUN\n")

	_, err := runCommand(t, "validate", "--path", csvPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}

func TestCleanCommandWritesRecords(t *testing.T) {
	csvPath := writeSampleCSV(t, sampleCSV)
	outPath := filepath.Join(t.TempDir(), "cleaned.csv")

	out, err := runCommand(t, "clean", "--path", csvPath, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cleaned 3 records")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "gender")
	// Header plus three data rows.
	assert.Len(t, strings.Split(strings.TrimSpace(content), "\n"), 4)
}

func TestSummaryCommandPrintsTables(t *testing.T) {
	csvPath := writeSampleCSV(t, sampleCSV)

	t.Run("csv format", func(t *testing.T) {
		out, err := runCommand(t, "summary", "--path", csvPath)
		require.NoError(t, err)
		assert.Contains(t, out, "# gender_distribution")
		assert.Contains(t, out, "LELAKI,2")
	})

	t.Run("json format", func(t *testing.T) {
		out, err := runCommand(t, "summary", "--path", csvPath, "--format", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"gender_distribution"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCommand(t, "summary", "--path", csvPath, "--format", "xml")
		require.Error(t, err)
	})
}

func TestValidateCommandMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")

	_, err := runCommand(t, "validate", "--path", missing)
	require.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name       string
		flags      processorFlags
		wantSource string
		wantPath   string
		wantURL    string
		wantSheet  string
	}{
		{
			name:       "no overrides keep config",
			flags:      processorFlags{},
			wantSource: config.SourceLocal,
			wantPath:   "data/anak.xlsx",
		},
		{
			name:       "path forces local source",
			flags:      processorFlags{source: config.SourceHTTP, path: "/tmp/anak.csv"},
			wantSource: config.SourceLocal,
			wantPath:   "/tmp/anak.csv",
		},
		{
			name:       "url forces http source",
			flags:      processorFlags{url: "https://example.com/anak.xlsx"},
			wantSource: config.SourceHTTP,
			wantPath:   "data/anak.xlsx",
			wantURL:    "https://example.com/anak.xlsx",
		},
		{
			name:       "sheet override",
			flags:      processorFlags{sheet: "Sheet2"},
			wantSource: config.SourceLocal,
			wantPath:   "data/anak.xlsx",
			wantSheet:  "Sheet2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DatasetConfig{Source: config.SourceLocal, Path: "data/anak.xlsx"}
			applyFlags(&cfg, &tt.flags)
			assert.Equal(t, tt.wantSource, cfg.Source)
			assert.Equal(t, tt.wantPath, cfg.Path)
			assert.Equal(t, tt.wantURL, cfg.URL)
			assert.Equal(t, tt.wantSheet, cfg.SheetName)
		})
	}
}

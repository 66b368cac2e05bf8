package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

func TestWriteJSONL_OldestFirst(t *testing.T) {
	h := New()
	t1 := time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	h.Add(testStream(2), t1)
	h.Add(testStream(4), t2)

	var buf bytes.Buffer
	n, err := WriteJSONL(&buf, h.Records(), nil)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 records written, got %d", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var first struct {
		CreatedAt string            `json:"createdAt"`
		Samples   []json.RawMessage `json:"samples"`
	}
	if err = json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Failed to decode first line: %v", err)
	}
	if first.CreatedAt != "2025-05-16T09:00:00Z" {
		t.Errorf("Expected T1 record first, got createdAt %s", first.CreatedAt)
	}
	if len(first.Samples) != 2 {
		t.Errorf("Expected 2 samples in the first line, got %d", len(first.Samples))
	}

	for _, key := range []string{`"timestamp"`, `"location":{"x"`, `"force"`, `"altitude"`, `"azimuth"`} {
		if !strings.Contains(lines[1], key) {
			t.Errorf("Expected %s in exported sample, line: %s", key, lines[1])
		}
	}
}

func TestWriteJSONL_SkipsBrokenRecords(t *testing.T) {
	broken := stroke.NewStream(stroke.Sample{Timestamp: 0, Force: math.NaN()})
	records := []Record{
		{Samples: testStream(1), CreatedAt: time.Unix(2, 0)},
		{Samples: broken, CreatedAt: time.Unix(1, 0)},
	}

	var buf bytes.Buffer
	n, err := WriteJSONL(&buf, records, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected the broken record to be skipped, got %d written", n)
	}

	_, err = WriteJSONL(&buf, records[1:], nil)
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Expected ErrNothingToExport, got %v", err)
	}
	if _, err = WriteJSONL(&buf, nil, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Expected ErrNothingToExport for an empty history, got %v", err)
	}
}

func TestExportFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	h := New()
	base := time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)
	h.Add(testStream(3), base)
	h.Add(testStream(7), base.Add(time.Second))

	path, err := ExportFile(dir, "", h, nil)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if filepath.Base(path) != DefaultExportName {
		t.Errorf("Expected default file name, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer f.Close()

	records, err := ReadJSONL(f)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Samples.Len() != 7 || !records[0].CreatedAt.Equal(base.Add(time.Second)) {
		t.Errorf("Expected newest record first, got %d samples at %s", records[0].Samples.Len(), records[0].CreatedAt)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the export file in the directory, got %d entries", len(entries))
	}
}

func TestExportFile_EmptyHistory(t *testing.T) {
	dir := t.TempDir()

	if _, err := ExportFile(dir, "out.jsonl", New(), nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Expected ErrNothingToExport, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("Failed export should leave no files behind, got %d", len(entries))
	}
}

func TestReadJSONL_Malformed(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("{\"createdAt\":\"2025-05-16T09:00:00Z\",\"samples\":[]}\nnot json\n"))
	if err == nil {
		t.Error("Expected an error for a malformed line")
	}
}

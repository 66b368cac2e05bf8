package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	// DefaultExportName is the file name used by ExportFile when none is given.
	DefaultExportName = "signatures.jsonl"

	maxLineSize = 64 << 20
)

// ErrNothingToExport is returned when no record could be written.
var ErrNothingToExport = errors.New("no data to export")

// exportRecord is the JSON line format of an exported record.
type exportRecord struct {
	CreatedAt time.Time     `json:"createdAt"`
	Samples   stroke.Stream `json:"samples"`
}

// WriteJSONL writes one JSON object per record to w, oldest created first,
// whatever the order of records. A record that cannot be encoded is logged
// and skipped. It returns the number of records written, and
// ErrNothingToExport when that number is zero.
func WriteJSONL(w io.Writer, records []Record, logger *slog.Logger) (int, error) {
	// records are expected newest first, reversing keeps creation order
	// for records sharing a timestamp
	ordered := slices.Clone(records)
	slices.Reverse(ordered)
	sortChronological(ordered)

	var buf bytes.Buffer
	var written int
	for _, r := range ordered {
		line, err := json.Marshal(exportRecord{
			CreatedAt: r.CreatedAt.UTC(),
			Samples:   r.Samples,
		})
		if err != nil {
			if logger != nil {
				logger.Error(fmt.Sprintf("encoding signature record: %s", err.Error()),
					slog.String("id", r.ID.String()))
			}
			continue
		}

		buf.Write(line)
		buf.WriteByte('\n')
		written++
	}

	if written == 0 {
		return 0, ErrNothingToExport
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("writing records: %w", err)
	}
	return written, nil
}

// ExportFile writes the history to dir/name as JSON lines. The file is
// replaced atomically; on failure the previous file, if any, is left
// untouched. It returns the path of the written file.
func ExportFile(dir, name string, h *History, logger *slog.Logger) (path string, err error) {
	if name == "" {
		name = DefaultExportName
	}
	if dir == "" {
		dir = os.TempDir()
	}
	path = filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := WriteJSONL(tmp, h.Records(), logger)
	if err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("syncing file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming file: %w", err)
	}

	if logger != nil {
		logger.Info("signatures exported", slog.String("path", path), slog.Int("records", n))
	}
	return path, nil
}

// ReadJSONL reads records written by WriteJSONL. Records get fresh IDs and
// are returned newest first, the order of a History.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var line int
	for scanner.Scan() {
		line++
		p := bytes.TrimSpace(scanner.Bytes())
		if len(p) == 0 {
			continue
		}

		var er exportRecord
		if err := json.Unmarshal(p, &er); err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", line, err)
		}
		records = append(records, Record{
			ID:        uuid.New(),
			Samples:   er.Samples,
			CreatedAt: er.CreatedAt,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	sortChronological(records)
	slices.Reverse(records)
	return records, nil
}

func sortChronological(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

package adapter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"quiz-results/internal/domain"
)

// FileExporter appends answer cache entries to files under a directory.
// Appends to the same exporter are serialized.
type FileExporter struct {
	dir string
	mu  sync.Mutex
}

// NewFileExporter creates an exporter writing into dir. The directory is
// created on first use.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

var _ domain.Exporter = (*FileExporter)(nil)

// Append writes one record per entry to <dir>/<name>.<format>. JSON files get
// one object per line; CSV files get a header only when new or empty.
func (e *FileExporter) Append(ctx context.Context, name string, format domain.ExportFormat, entries []domain.AnswerCacheEntry) (string, error) {
	if format != domain.ExportJSON && format != domain.ExportCSV {
		return "", domain.NewInvalidExportFormatError(string(format))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(e.dir, name+"."+string(format))

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return path, fmt.Errorf("create export dir %s: %w", e.dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return path, fmt.Errorf("open export file %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case domain.ExportJSON:
		err = writeJSONLines(f, entries)
	case domain.ExportCSV:
		err = writeCSV(f, entries)
	}
	if err != nil {
		return path, fmt.Errorf("write export file %s: %w", path, err)
	}
	return path, nil
}

func writeJSONLines(f *os.File, entries []domain.AnswerCacheEntry) error {
	enc := json.NewEncoder(f)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(f *os.File, entries []domain.AnswerCacheEntry) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(domain.AnswerCacheEntryFields); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		rec := []string{
			entry.UserID,
			entry.CompanyID,
			entry.QuizID,
			entry.QuestionID,
			entry.UserAnswer,
			strconv.FormatBool(entry.IsCorrect),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

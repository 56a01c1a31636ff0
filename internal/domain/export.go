package domain

import (
	"context"
	"strings"
)

// ExportFormat is the file format of an answer cache export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ParseExportFormat returns an InvalidExportFormat error for anything other than json or csv.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportJSON, ExportCSV:
		return f, nil
	default:
		return "", NewInvalidExportFormatError(s)
	}
}

// ExportSummary reports what an aggregation exported. Errors are contained:
// they never replace the statistic the aggregation computed.
type ExportSummary struct {
	Format  string
	File    string
	Records int
	Errors  []*DomainError
}

// AddError records a contained export failure.
func (s *ExportSummary) AddError(err *DomainError) {
	s.Errors = append(s.Errors, err)
}

// Exporter appends answer cache entries to a named export file.
type Exporter interface {
	// Append writes entries to <name>.<format> and returns the file path.
	Append(ctx context.Context, name string, format ExportFormat, entries []AnswerCacheEntry) (string, error)
}

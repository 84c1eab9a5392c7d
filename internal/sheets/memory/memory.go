// Package memory holds exported year reports in process. It backs
// local development and tests, where pushing to a real spreadsheet is
// unwanted.
package memory

import (
	"context"
	"sync"

	"steward/internal/services"
	ports "steward/internal/sheets"
)

type Sink struct {
	mu      sync.Mutex
	byYear  map[int]services.YearReport
	exports int
}

var _ ports.ReportSink = (*Sink)(nil)

func New() *Sink {
	return &Sink{byYear: make(map[int]services.YearReport)}
}

// ExportYear keeps the latest report per year; re-exports overwrite.
func (s *Sink) ExportYear(_ context.Context, report services.YearReport, _ ports.Naming) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byYear[report.Year] = report
	s.exports++
	return nil
}

// Year returns the last exported report for a year, if any.
func (s *Sink) Year(year int) (services.YearReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byYear[year]
	return r, ok
}

// Exports counts calls to ExportYear across all years.
func (s *Sink) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}

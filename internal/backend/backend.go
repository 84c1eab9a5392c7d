// Package backend selects a report sink implementation from
// configuration. The rest of the system only sees the sheets.ReportSink
// port.
package backend

import (
	"context"
	"fmt"
)

// Kind identifies a report sink implementation.
type Kind string

const (
	MemorySink Kind = "memory"
	SheetsSink Kind = "sheets"
)

func (k Kind) String() string { return string(k) }

// IsValid reports whether the kind names a known sink.
func (k Kind) IsValid() bool {
	switch k {
	case MemorySink, SheetsSink:
		return true
	}
	return false
}

// ParseKind maps a config string onto a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid report backend %q: must be one of [%s %s]", s, MemorySink, SheetsSink)
	}
	return k, nil
}

// Config holds what the factory needs to build a sink.
type Config struct {
	Kind Kind

	// Sheets sink only.
	GoogleSpreadsheetID string
	GoogleReportSheet   string
}

// Validate checks the sink-specific requirements.
func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid report backend: %q", c.Kind)
	}
	if c.Kind == SheetsSink {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("spreadsheet id is required for the sheets report backend")
		}
		if c.GoogleReportSheet == "" {
			return fmt.Errorf("report sheet name is required for the sheets report backend")
		}
	}
	return nil
}

// Factory creates report sinks from configuration.
type Factory interface {
	CreateSink(ctx context.Context, cfg Config) (*SinkResult, error)
}

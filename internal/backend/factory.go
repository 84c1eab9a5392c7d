package backend

import (
	"context"
	"fmt"
	"log/slog"

	"steward/internal/sheets"
	gsheet "steward/internal/sheets/google"
	"steward/internal/sheets/memory"
)

// CleanupFunc releases sink resources. May be nil.
type CleanupFunc func() error

// SinkResult pairs a sink with its cleanup.
type SinkResult struct {
	Sink    sheets.ReportSink
	Cleanup CleanupFunc
}

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateSink(ctx context.Context, cfg Config) (*SinkResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case MemorySink:
		f.logger.Info("Initialized in-memory report sink")
		return &SinkResult{Sink: memory.New()}, nil

	case SheetsSink:
		cli, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets sink: %w", err)
		}
		f.logger.Info("Initialized Google Sheets report sink",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleReportSheet)
		return &SinkResult{Sink: cli}, nil

	default:
		return nil, fmt.Errorf("unsupported report backend: %s", cfg.Kind)
	}
}

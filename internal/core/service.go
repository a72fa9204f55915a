package core

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/csvpreview/internal/config"
	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// Service exposes previews and imports with the server's configured
// defaults. Full passes and imports share one IngestLimiter.
type Service struct {
	cfg      *config.Config
	limiter  *IngestLimiter
	importer *Importer
}

// NewService creates a Service. writer may be nil, in which case imports
// fail with ErrNoItemStore.
func NewService(writer ItemWriter, cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		limiter:  NewIngestLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		importer: NewImporter(writer, cfg.Upload.BatchSize),
	}
}

// PreviewParams overrides configured defaults for one call.
// Zero values keep the defaults.
type PreviewParams struct {
	PreviewRows    int
	CollectSamples *bool
}

func (p PreviewParams) collectSamples(def bool) bool {
	if p.CollectSamples != nil {
		return *p.CollectSamples
	}
	return def
}

// Preview builds a bounded preview from the head of r.
func (s *Service) Preview(ctx context.Context, name string, r io.Reader, p PreviewParams) (*PreviewResult, error) {
	rows := s.cfg.Preview.Rows
	if p.PreviewRows > 0 {
		rows = p.PreviewRows
	}

	return ParseClient(ctx, name, r, ClientOptions{
		PreviewRows:    rows,
		CollectSamples: p.collectSamples(s.cfg.Preview.CollectSamples),
		HeadBytes:      s.cfg.Preview.HeadBytes,
	})
}

// Analyze runs a full pass over r while holding an ingestion slot.
func (s *Service) Analyze(ctx context.Context, name string, r io.Reader, p PreviewParams) (*PreviewResult, error) {
	if err := s.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	rowCap := s.cfg.Preview.FullRowCap
	if p.PreviewRows > 0 {
		rowCap = p.PreviewRows
	}

	start := time.Now()
	result, err := ParseServerStream(ctx, r, ServerOptions{
		FileName:       name,
		CollectSamples: p.collectSamples(s.cfg.Preview.CollectSamples),
		PreviewRows:    rowCap,
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("full preview built",
		"file", name,
		"rows", result.RowsRead,
		"columns", result.TotalColumns,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Import writes one dataset item per row of req.Reader while holding an
// ingestion slot. The import is bounded by the configured upload timeout.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if s.importer.Writer == nil {
		return nil, ErrNoItemStore
	}

	if err := s.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if timeout := s.cfg.Upload.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return s.importer.Import(ctx, req)
}

// acquireSlot takes an ingestion slot, waiting only when none is free.
func (s *Service) acquireSlot(ctx context.Context) error {
	if s.limiter.TryAcquire() {
		return nil
	}
	logging.FromContext(ctx).Info("waiting for ingestion slot",
		"active", s.limiter.ActiveCount(),
		"max_concurrent", s.limiter.MaxConcurrent(),
	)
	return s.limiter.Acquire(ctx)
}

// CanImport reports whether an item store is configured.
func (s *Service) CanImport() bool {
	return s.importer.Writer != nil
}

// LimiterStatus returns the ingestion limiter state for monitoring.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForIngestions blocks until in-flight full passes and imports finish
// or ctx is done. Used for graceful shutdown.
func (s *Service) WaitForIngestions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

package analytics

import (
	"context"
	"log/slog"
	"time"

	"arcadekit/core"
	"arcadekit/engine"
)

// Service bundles metrics, aggregation and export into one unit that can be
// attached to the achievement engine.
type Service struct {
	metrics    *PlatformMetrics
	aggregator *AggregationEngine
	exporter   *ExportManager
	logger     *slog.Logger
}

// Config holds configuration for the analytics service.
type Config struct {
	AggregationInterval time.Duration    `json:"aggregation_interval"`
	ExportInterval      time.Duration    `json:"export_interval"`
	Exporters           []ExporterConfig `json:"exporters"`
}

// ExporterConfig holds configuration for individual exporters.
type ExporterConfig struct {
	Type      string `json:"type"` // "http", "segment", "console"
	Endpoint  string `json:"endpoint,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// NewService creates an analytics service with a console exporter and hourly
// aggregation. Use NewServiceWithConfig for external exports.
func NewService() *Service {
	metrics := NewPlatformMetrics()
	return &Service{
		metrics:    metrics,
		aggregator: NewAggregationEngine(metrics, 1*time.Hour),
		exporter:   NewExportManager(NewConsoleExporter("[ANALYTICS]")),
		logger:     slog.Default(),
	}
}

// NewServiceWithConfig creates an analytics service with custom configuration.
func NewServiceWithConfig(cfg *Config) *Service {
	interval := cfg.AggregationInterval
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	metrics := NewPlatformMetrics()

	exporters := []Exporter{NewConsoleExporter("[ANALYTICS]")}
	for _, ec := range cfg.Exporters {
		switch ec.Type {
		case "http":
			batch := ec.BatchSize
			if batch <= 0 {
				batch = 10
			}
			exporters = append(exporters, NewHTTPExporter(ec.Endpoint, ec.APIKey, batch))
		case "segment":
			if ec.APIKey != "" {
				exporters = append(exporters, NewSegmentExporter(ec.APIKey))
			}
		}
	}

	return &Service{
		metrics:    metrics,
		aggregator: NewAggregationEngine(metrics, interval),
		exporter:   NewExportManager(exporters...),
		logger:     slog.Default(),
	}
}

// Hook returns the hook to register with the engine's event bus.
func (s *Service) Hook() Hook { return s.metrics }

// Metrics exposes the underlying platform metrics.
func (s *Service) Metrics() *PlatformMetrics { return s.metrics }

// Attach subscribes the analytics hook to every domain event on the service.
func (s *Service) Attach(svc *engine.Service) {
	hook := s.Hook()
	for _, typ := range []core.EventType{
		core.EventScoreSubmitted,
		core.EventGameCreated,
		core.EventCreditsAdded,
		core.EventAchievementProgress,
		core.EventAchievementUnlocked,
	} {
		svc.Subscribe(typ, func(_ context.Context, e core.Event) {
			hook.OnEvent(e)
		})
	}
}

// Start begins background aggregation and periodic export until ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.aggregator.Start(ctx)
	go s.startPeriodicExport(ctx)
}

func (s *Service) startPeriodicExport(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			daily := s.aggregator.GetAllAggregatedData(PeriodDaily)
			if err := s.exporter.ExportData(ctx, daily); err != nil {
				s.logger.Warn("analytics export failed", "error", err)
			}
		}
	}
}

// ForceAggregation triggers immediate aggregation (useful for testing).
func (s *Service) ForceAggregation() error {
	return s.aggregator.AggregateNow()
}

// Aggregated returns aggregated data for a period and key.
func (s *Service) Aggregated(period AggregationPeriod, key string) (*AggregatedData, bool) {
	return s.aggregator.GetAggregatedData(period, key)
}

// Close flushes and closes all exporters.
func (s *Service) Close() error {
	return s.exporter.Close()
}

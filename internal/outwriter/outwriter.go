// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API
// for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteBounds prints the resolved analysis bounds using the configured
// output format.
func (ow *OutWriter) WriteBounds(bounds core.Bounds, cfg *contract.Config) error {
	return PrintBounds(bounds, cfg)
}

// WriteTimeSeries prints a computed time series using the configured
// output format.
func (ow *OutWriter) WriteTimeSeries(result *schema.Dataset, stats core.TimeSeriesStats, cfg *contract.Config, duration time.Duration) error {
	return PrintTimeSeriesResults(result, stats, cfg, duration)
}

// WriteClimatology prints a climatology summary using the configured
// output format.
func (ow *OutWriter) WriteClimatology(result *schema.Dataset, monthSet schema.MonthSet, bounds core.Bounds, reused bool, cfg *contract.Config, duration time.Duration) error {
	return PrintClimatologyResults(result, monthSet, bounds, reused, cfg, duration)
}

// WriteCacheStatus prints the artifact cache and provenance summaries
// using the configured output format.
func (ow *OutWriter) WriteCacheStatus(cache schema.CacheStatus, prov *schema.ProvenanceStatus, cfg *contract.Config) error {
	return PrintCacheStatus(cache, prov, cfg)
}

// Package core implements the incremental climatology and time-series
// caching engine: bounds resolution over discovered model output,
// day-weighted climatological averaging with superset cache reuse,
// year-chunked time-series reduction with crash-safe extension, and
// descriptor-keyed grid remapping.
package core

import (
	"github.com/polarcap/climatol/internal/iocache"
	"go.uber.org/zap"
)

// Engine binds the cache algorithms to an artifact store and a logger.
// It holds no per-request state; one engine serves any number of
// sequential requests. Concurrent writers against one cache path are
// undefined, a documented limitation rather than a guarded race.
type Engine struct {
	store *iocache.ArtifactStore
	log   *zap.SugaredLogger
}

// NewEngine creates an engine over the given artifact store.
func NewEngine(store *iocache.ArtifactStore, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{store: store, log: log}
}

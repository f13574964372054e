package router

import (
	"github.com/freightcore/backend/internal/infrastructure/logger"
	"github.com/freightcore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig selects the global middleware of the engine
type EngineConfig struct {
	Logger         *zap.Logger
	Tracing        middleware.TracingConfig
	Metrics        middleware.HTTPMetricsConfig
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine creates a gin engine with the global middleware chain installed.
// Request ids come first so every later layer can log and tag them.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing))
		engine.Use(middleware.SpanErrorMarker())
	}
	if cfg.Metrics.Enabled {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	return engine
}

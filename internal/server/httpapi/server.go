// Package httpapi exposes the EmoTune HTTP/JSON API over gin: session
// issuance, emotion record generation, history, and deletion, plus
// liveness and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emotune/emotune/internal/logging"
	"github.com/emotune/emotune/internal/metrics"
	"github.com/emotune/emotune/internal/musicgen"
	"github.com/emotune/emotune/internal/server/config"
	"github.com/emotune/emotune/internal/server/models"
	"github.com/emotune/emotune/internal/server/services"
)

// UserService is the minimal identity surface the transport depends on.
type UserService interface {
	Upsert(ctx context.Context, patch *models.UserUpsert) error
	GetByOpenID(ctx context.Context, openID string) (*models.User, error)
}

// EmotionService is the minimal record surface the transport depends on.
type EmotionService interface {
	Generate(ctx context.Context, userID int64, emotion, color string, intensity int, notes string) (musicgen.Params, error)
	History(ctx context.Context, userID int64) ([]*services.HistoryRecord, error)
	Delete(ctx context.Context, userID, recordID int64) error
}

type Server struct {
	address       string
	logger        logging.Logger
	users         UserService
	emotions      EmotionService
	jwtSecret     []byte
	tokenValidity time.Duration
	registry      *prometheus.Registry
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, es EmotionService) *Server {
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	return &Server{
		address:       cfg.EndpointAddrHTTP,
		logger:        l.With("module", "http_server"),
		users:         us,
		emotions:      es,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.SessionTokenValidityDuration,
		registry:      reg,
	}
}

// Router builds the gin engine with all middleware and routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestIDMiddleware(), s.metricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.POST("/auth/session", s.createSession)

	authed := api.Group("/", s.authRequired())
	authed.GET("/auth/me", s.currentUser)
	authed.POST("/emotion/generate", s.generate)
	authed.GET("/emotion/history", s.history)
	authed.DELETE("/emotion/records/:id", s.deleteRecord)

	return r
}

// Run serves the API until ctx is cancelled, then drains in-flight
// requests via Shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

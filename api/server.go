// Package api exposes the forecast service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/laundry-sim/laundry-sim/sim/forecast"
)

// RetryAfterSeconds is advertised to clients while the model is not ready.
const RetryAfterSeconds = 5

// Server routes /predict, /readyz, /healthz and /metrics.
type Server struct {
	svc      *forecast.Service
	registry *prometheus.Registry
	metrics  *Metrics
	router   *gin.Engine
}

// NewServer builds the router around svc with its own metrics registry.
func NewServer(svc *forecast.Service) *Server {
	if svc == nil {
		panic("NewServer: service must not be nil")
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		svc:      svc,
		registry: reg,
		metrics:  newMetrics(reg, svc),
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery(), s.observe)
	s.router.GET("/predict", s.predict)
	s.router.GET("/readyz", s.readyz)
	s.router.GET("/healthz", s.healthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Registry returns the server's metrics registry.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logrus.Infof("HTTP server listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logrus.Infof("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	elapsed := time.Since(start)
	s.metrics.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	s.metrics.latency.WithLabelValues(route).Observe(elapsed.Seconds())
	logrus.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), elapsed)
}

func (s *Server) predict(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		s.metrics.rejected.WithLabelValues("invalid_input").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing date parameter, expected YYYY-MM-DD"})
		return
	}
	resp, err := s.svc.Forecast(date)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, forecast.ErrModelNotReady):
		s.metrics.rejected.WithLabelValues("not_ready").Inc()
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, forecast.ErrInvalidInput):
		s.metrics.rejected.WithLabelValues("invalid_input").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logrus.Errorf("forecast for %s failed: %v", date, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed"})
	}
}

func (s *Server) readyz(c *gin.Context) {
	if err := s.svc.Status(); err != nil {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"go-domino-counter/internal/config"
	"go-domino-counter/internal/detector"
	apperrors "go-domino-counter/internal/errors"
	"go-domino-counter/internal/logger"
	"go-domino-counter/internal/observer"
	"go-domino-counter/internal/service"
	"go-domino-counter/internal/ws"
)

// AnalyzeRequest carries either an inline candidate frame or a source URL to
// fetch one from. Exactly one of the two must be set.
type AnalyzeRequest struct {
	SourceURL string                    `json:"source_url,omitempty"`
	Frame     *detector.FrameCandidates `json:"frame,omitempty"`
	Overrides *DetectionOverrides       `json:"overrides,omitempty"`
}

// BatchAnalyzeRequest carries several independent candidate frames
type BatchAnalyzeRequest struct {
	Frames    []detector.FrameCandidates `json:"frames" binding:"required"`
	Overrides *DetectionOverrides        `json:"overrides,omitempty"`
}

// LiveStartRequest starts a polling live session against a source URL
type LiveStartRequest struct {
	SourceURL string              `json:"source_url,omitempty"`
	Overrides *DetectionOverrides `json:"overrides,omitempty"`
}

// DetectionOverrides are per-request tunable overrides. Nil fields keep the
// configured defaults.
type DetectionOverrides struct {
	MinArea *float64 `json:"min_area,omitempty"`
	MaxArea *float64 `json:"max_area,omitempty"`
	Eps     *float64 `json:"eps,omitempty"`
	MinPts  *int     `json:"min_pts,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHandler builds the HTTP API
func NewHandler(
	svc service.TileDetectionService,
	live *service.LiveRunner,
	hub *ws.Hub,
	metrics *observer.MetricsObserver,
	cfg *config.Config,
) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", metricsReport(metrics))
	r.POST("/analyze", analyzeFrame(svc, cfg))
	r.POST("/analyze/batch", analyzeBatch(svc, cfg))
	r.POST("/analyze/frame", analyzeImage(svc, cfg))
	r.GET("/ws", serveWebsocket(hub))
	r.POST("/live/start", liveStart(live, cfg))
	r.POST("/live/stop", liveStop(live))

	return r
}

func analyzeFrame(svc service.TileDetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing frame analysis request")

		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if (req.SourceURL == "") == (req.Frame == nil) {
			respondError(c, http.StatusBadRequest, "invalid request",
				apperrors.NewValidationError("exactly one of source_url or frame must be set", nil))
			return
		}

		opts := optionsFromConfig(cfg, req.Overrides)

		var (
			response interface{}
			err      error
		)
		if req.Frame != nil {
			response, err = svc.AnalyzeCandidates(ctx, *req.Frame, opts)
		} else {
			response, err = svc.AnalyzeSource(ctx, req.SourceURL, opts)
		}
		if err != nil {
			respondError(c, determineStatusCode(err), "frame analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"source_url":         req.SourceURL,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Frame analysis completed successfully")

		c.JSON(http.StatusOK, response)
	}
}

func analyzeBatch(svc service.TileDetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req BatchAnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if len(req.Frames) == 0 {
			respondError(c, http.StatusBadRequest, "invalid request",
				apperrors.NewValidationError("frames must not be empty", nil))
			return
		}

		opts := optionsFromConfig(cfg, req.Overrides)

		responses, err := svc.AnalyzeBatch(ctx, req.Frames, opts)
		if err != nil {
			respondError(c, determineStatusCode(err), "batch analysis failed", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": responses})
	}
}

func analyzeImage(svc service.TileDetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		image, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read image payload", err)
			return
		}

		response, err := svc.AnalyzeImage(ctx, image, optionsFromConfig(cfg, nil))
		if err != nil {
			respondError(c, determineStatusCode(err), "image analysis failed", err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

func metricsReport(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func serveWebsocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithError(err).Error("Websocket upgrade failed")
			return
		}

		hub.Register(conn)

		// Subscribers only receive; the read loop exists to notice
		// disconnects.
		go func() {
			defer hub.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func liveStart(live *service.LiveRunner, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LiveStartRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		sourceURL := req.SourceURL
		if sourceURL == "" {
			sourceURL = cfg.LiveSourceURL
		}
		if sourceURL == "" {
			respondError(c, http.StatusBadRequest, "invalid request",
				apperrors.NewValidationError("no source_url provided and no live source configured", nil))
			return
		}

		if err := live.Start(sourceURL, optionsFromConfig(cfg, req.Overrides)); err != nil {
			respondError(c, determineStatusCode(err), "failed to start live analysis", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "started", "source_url": sourceURL})
	}
}

func liveStop(live *service.LiveRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := live.Stop(); err != nil {
			respondError(c, determineStatusCode(err), "failed to stop live analysis", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// optionsFromConfig builds the detection options for one request from the
// configured defaults plus any per-request overrides
func optionsFromConfig(cfg *config.Config, overrides *DetectionOverrides) detector.DetectionOptions {
	opts := detector.DetectionOptions{
		MinArea:     cfg.MinArea,
		MaxArea:     cfg.MaxArea,
		Eps:         cfg.Eps,
		EpsAuto:     cfg.EpsAuto,
		EpsFraction: cfg.EpsFraction,
		MinPts:      cfg.MinPoints,
		BoxPadding:  cfg.BoxPadding,
	}

	if overrides == nil {
		return opts
	}
	if overrides.MinArea != nil && overrides.MaxArea != nil {
		opts = opts.WithAreaBounds(*overrides.MinArea, *overrides.MaxArea)
	} else if overrides.MinArea != nil {
		opts.MinArea = *overrides.MinArea
	} else if overrides.MaxArea != nil {
		opts.MaxArea = *overrides.MaxArea
	}
	if overrides.Eps != nil {
		opts = opts.WithEps(*overrides.Eps)
	}
	if overrides.MinPts != nil {
		opts = opts.WithMinPts(*overrides.MinPts)
	}
	return opts
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"go-domino-counter/internal/detector"
	apperrors "go-domino-counter/internal/errors"
	"go-domino-counter/internal/logger"
	"go-domino-counter/internal/observer"
	"go-domino-counter/internal/ws"
)

// LiveRunner polls a candidate source on a fixed interval and broadcasts each
// frame's analysis to websocket subscribers. At most one analysis is in
// flight at a time: ticks that arrive while one is running are dropped, not
// queued, so a slow frame never builds a backlog.
type LiveRunner struct {
	service   TileDetectionService
	hub       *ws.Hub
	publisher observer.Subject
	interval  time.Duration

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	inFlight  atomic.Bool
	sourceURL string
	opts      detector.DetectionOptions
}

// NewLiveRunner creates a new live analysis runner
func NewLiveRunner(service TileDetectionService, hub *ws.Hub, publisher observer.Subject, interval time.Duration) *LiveRunner {
	return &LiveRunner{
		service:   service,
		hub:       hub,
		publisher: publisher,
		interval:  interval,
	}
}

// Start begins polling the source URL. Returns a conflict error if a live
// session is already running.
func (r *LiveRunner) Start(sourceURL string, opts detector.DetectionOptions) error {
	if err := r.service.ValidateSourceURL(sourceURL); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return apperrors.NewConflictError("live analysis already running", nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.sourceURL = sourceURL
	r.opts = opts

	go r.run(ctx, done)

	logger.WithFields(logrus.Fields{
		"source_url": sourceURL,
		"interval":   r.interval,
	}).Info("Live analysis started")

	return nil
}

// Stop ends the current live session. Returns a not-found error if no
// session is running.
func (r *LiveRunner) Stop() error {
	r.mu.Lock()
	if r.cancel == nil {
		r.mu.Unlock()
		return apperrors.NewNotFoundError("no live analysis running", nil)
	}
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	cancel()
	<-done

	logger.Info("Live analysis stopped")
	return nil
}

// Running reports whether a live session is active
func (r *LiveRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *LiveRunner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Analyze immediately rather than waiting out the first interval.
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one analysis cycle unless one is already in flight
func (r *LiveRunner) tick(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		logger.WithField("source_url", r.sourceURL).Debug("Dropping live tick, analysis in flight")
		if r.publisher != nil {
			r.publisher.NotifyObservers(ctx, observer.DetectionEvent{
				EventType: observer.LiveTickSkipped,
				Timestamp: time.Now(),
				SourceURL: r.sourceURL,
			})
		}
		return
	}
	defer r.inFlight.Store(false)

	response, err := r.service.AnalyzeSource(ctx, r.sourceURL, r.opts)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WithError(err).WithField("source_url", r.sourceURL).Error("Live analysis cycle failed")
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		logger.WithError(err).Error("Failed to encode live frame result")
		return
	}
	r.hub.Broadcast(payload)
}

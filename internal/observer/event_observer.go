package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DetectionEvent represents one event in a frame's analysis lifecycle
type DetectionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	SourceURL      string                 `json:"source_url,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	TotalDots      int                    `json:"total_dots"`
	TileCount      int                    `json:"tile_count"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of detection event
type EventType string

const (
	// DetectionStarted when frame analysis begins
	DetectionStarted EventType = "detection_started"
	// DetectionCompleted when frame analysis finishes successfully
	DetectionCompleted EventType = "detection_completed"
	// DetectionFailed when frame analysis fails
	DetectionFailed EventType = "detection_failed"
	// CandidatesFetched when a candidate frame is successfully fetched
	CandidatesFetched EventType = "candidates_fetched"
	// CandidateFetchFailed when a candidate frame fetch fails
	CandidateFetchFailed EventType = "candidate_fetch_failed"
	// LiveTickSkipped when a live-mode tick is dropped because an analysis
	// is still in flight
	LiveTickSkipped EventType = "live_tick_skipped"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event DetectionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event DetectionEvent)
}

// LoggingObserver logs detection events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles detection events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event DetectionEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"source_url":      event.SourceURL,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	if event.Metadata != nil {
		for k, v := range event.Metadata {
			fields[k] = v
		}
	}

	switch event.EventType {
	case DetectionStarted:
		o.logger.WithFields(fields).Debug("Frame analysis started")
	case DetectionCompleted:
		fields["total_dots"] = event.TotalDots
		fields["tile_count"] = event.TileCount
		o.logger.WithFields(fields).Info("Frame analysis completed")
	case DetectionFailed:
		o.logger.WithFields(fields).Error("Frame analysis failed")
	case CandidatesFetched:
		o.logger.WithFields(fields).Debug("Candidate frame fetched")
	case CandidateFetchFailed:
		o.logger.WithFields(fields).Error("Candidate frame fetch failed")
	case LiveTickSkipped:
		o.logger.WithFields(fields).Debug("Live tick skipped, analysis in flight")
	default:
		o.logger.WithFields(fields).Info("Detection event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from detection events
type MetricsObserver struct {
	mu                   sync.RWMutex
	totalDetections      int64
	successfulDetections int64
	failedDetections     int64
	skippedLiveTicks     int64
	totalProcessingTime  time.Duration
	totalDotsSeen        int64
	totalTilesSeen       int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles detection events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event DetectionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case DetectionStarted:
		o.totalDetections++
	case DetectionCompleted:
		o.successfulDetections++
		o.totalProcessingTime += event.ProcessingTime
		o.totalDotsSeen += int64(event.TotalDots)
		o.totalTilesSeen += int64(event.TileCount)
	case DetectionFailed:
		o.failedDetections++
	case LiveTickSkipped:
		o.skippedLiveTicks++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulDetections > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulDetections)
	}

	return map[string]interface{}{
		"total_detections":      o.totalDetections,
		"successful_detections": o.successfulDetections,
		"failed_detections":     o.failedDetections,
		"skipped_live_ticks":    o.skippedLiveTicks,
		"total_dots_seen":       o.totalDotsSeen,
		"total_tiles_seen":      o.totalTilesSeen,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event DetectionEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

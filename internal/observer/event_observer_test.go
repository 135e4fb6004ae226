package observer

import (
	"context"
	"testing"
	"time"
)

func TestMetricsObserver_CollectsCounters(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, DetectionEvent{EventType: DetectionStarted})
	m.OnEvent(ctx, DetectionEvent{
		EventType:      DetectionCompleted,
		ProcessingTime: 20 * time.Millisecond,
		TotalDots:      6,
		TileCount:      2,
	})
	m.OnEvent(ctx, DetectionEvent{EventType: DetectionStarted})
	m.OnEvent(ctx, DetectionEvent{EventType: DetectionFailed})
	m.OnEvent(ctx, DetectionEvent{EventType: LiveTickSkipped})

	metrics := m.GetMetrics()

	if got := metrics["total_detections"].(int64); got != 2 {
		t.Errorf("total_detections = %d, want 2", got)
	}
	if got := metrics["successful_detections"].(int64); got != 1 {
		t.Errorf("successful_detections = %d, want 1", got)
	}
	if got := metrics["failed_detections"].(int64); got != 1 {
		t.Errorf("failed_detections = %d, want 1", got)
	}
	if got := metrics["skipped_live_ticks"].(int64); got != 1 {
		t.Errorf("skipped_live_ticks = %d, want 1", got)
	}
	if got := metrics["total_dots_seen"].(int64); got != 6 {
		t.Errorf("total_dots_seen = %d, want 6", got)
	}
	if got := metrics["avg_processing_time"].(time.Duration); got != 20*time.Millisecond {
		t.Errorf("avg_processing_time = %s, want 20ms", got)
	}
}

func TestMetricsObserver_EmptyAverage(t *testing.T) {
	m := NewMetricsObserver()

	metrics := m.GetMetrics()
	if got := metrics["avg_processing_time"].(time.Duration); got != 0 {
		t.Errorf("avg_processing_time = %s, want 0 with no completions", got)
	}
}

type recordingObserver struct {
	name   string
	events chan DetectionEvent
}

func (r *recordingObserver) OnEvent(ctx context.Context, event DetectionEvent) {
	r.events <- event
}

func (r *recordingObserver) GetObserverName() string {
	return r.name
}

func TestEventPublisher_NotifiesSubscribers(t *testing.T) {
	publisher := NewEventPublisher()
	obs := &recordingObserver{name: "recorder", events: make(chan DetectionEvent, 1)}
	publisher.Subscribe(obs)

	publisher.NotifyObservers(context.Background(), DetectionEvent{EventType: DetectionCompleted})

	select {
	case event := <-obs.events:
		if event.EventType != DetectionCompleted {
			t.Errorf("EventType = %q, want %q", event.EventType, DetectionCompleted)
		}
	case <-time.After(time.Second):
		t.Fatal("observer was not notified")
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	obs := &recordingObserver{name: "recorder", events: make(chan DetectionEvent, 1)}
	publisher.Subscribe(obs)
	publisher.Unsubscribe(obs)

	publisher.NotifyObservers(context.Background(), DetectionEvent{EventType: DetectionCompleted})

	select {
	case <-obs.events:
		t.Error("unsubscribed observer was notified")
	case <-time.After(50 * time.Millisecond):
	}
}

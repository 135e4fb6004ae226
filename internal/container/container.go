package container

import (
	"context"
	"net/http"

	"go-domino-counter/internal/config"
	"go-domino-counter/internal/detector"
	"go-domino-counter/internal/logger"
	"go-domino-counter/internal/observer"
	"go-domino-counter/internal/repository"
	"go-domino-counter/internal/segment"
	"go-domino-counter/internal/service"
	"go-domino-counter/internal/storage"
	"go-domino-counter/internal/transport"
	"go-domino-counter/internal/ws"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	candidateFetcher storage.CandidateFetcher
	tileDetector     detector.TileDetector
	repository       repository.CandidateRepository
	segmenter        segment.Segmenter
	publisher        observer.Subject
	metrics          *observer.MetricsObserver
	hub              *ws.Hub
	detectionService service.TileDetectionService
	liveRunner       *service.LiveRunner
	handler          http.Handler

	hubCancel context.CancelFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	candidateFetcher := storage.NewHTTPCandidateFetcher()
	tileDetector := detector.NewTileDetector()
	segmenter := segment.NewSegmenter()

	// Archived frames come from blob storage when credentials are
	// configured; the live collaborator is always HTTP.
	var candidateRepository repository.CandidateRepository
	if cfg.AzureAccountName != "" && cfg.AzureAccountKey != "" {
		blobs, err := storage.NewAzureStorage(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			return nil, err
		}
		candidateRepository = repository.NewBlobCandidateRepository(blobs)
	} else {
		candidateRepository = repository.NewHTTPCandidateRepository(candidateFetcher)
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	hub := ws.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	detectionService := service.NewTileDetectionService(tileDetector, candidateRepository, segmenter, publisher)
	liveRunner := service.NewLiveRunner(detectionService, hub, publisher, cfg.LiveInterval)
	handler := transport.NewHandler(detectionService, liveRunner, hub, metrics, cfg)

	return &Container{
		config:           cfg,
		candidateFetcher: candidateFetcher,
		tileDetector:     tileDetector,
		repository:       candidateRepository,
		segmenter:        segmenter,
		publisher:        publisher,
		metrics:          metrics,
		hub:              hub,
		detectionService: detectionService,
		liveRunner:       liveRunner,
		handler:          handler,
		hubCancel:        hubCancel,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases container-held resources
func (c *Container) Close() error {
	if c.liveRunner.Running() {
		if err := c.liveRunner.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to stop live runner during shutdown")
		}
	}
	c.hubCancel()
	return c.detectionService.Close()
}

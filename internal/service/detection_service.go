package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-domino-counter/internal/detector"
	apperrors "go-domino-counter/internal/errors"
	"go-domino-counter/internal/logger"
	"go-domino-counter/internal/observer"
	"go-domino-counter/internal/repository"
	"go-domino-counter/internal/segment"
	"go-domino-counter/pkg/models"
)

// TileDetectionService defines the application-facing detection operations
type TileDetectionService interface {
	// AnalyzeCandidates runs the detection pipeline over an inline candidate
	// frame
	AnalyzeCandidates(ctx context.Context, frame detector.FrameCandidates, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error)

	// AnalyzeSource fetches a candidate frame from a source URL and analyzes
	// it
	AnalyzeSource(ctx context.Context, sourceURL string, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error)

	// AnalyzeBatch analyzes several independent candidate frames concurrently
	AnalyzeBatch(ctx context.Context, frames []detector.FrameCandidates, opts detector.DetectionOptions) ([]*models.FrameAnalysisResponse, error)

	// AnalyzeImage segments an encoded image into candidates and analyzes
	// them. The segmentation collaborator is not safe for concurrent use, so
	// calls are serialized.
	AnalyzeImage(ctx context.Context, image []byte, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error)

	// ValidateSourceURL validates if the provided source URL is acceptable
	ValidateSourceURL(sourceURL string) error

	// Close releases the detection resources
	Close() error
}

type tileDetectionService struct {
	tileDetector detector.TileDetector
	candidates   repository.CandidateRepository
	segmenter    segment.Segmenter
	publisher    observer.Subject
	segMutex     sync.Mutex
}

// NewTileDetectionService creates a new tile detection service
func NewTileDetectionService(
	tileDetector detector.TileDetector,
	candidates repository.CandidateRepository,
	segmenter segment.Segmenter,
	publisher observer.Subject,
) TileDetectionService {
	return &tileDetectionService{
		tileDetector: tileDetector,
		candidates:   candidates,
		segmenter:    segmenter,
		publisher:    publisher,
	}
}

// AnalyzeCandidates runs the detection pipeline over an inline candidate frame
func (s *tileDetectionService) AnalyzeCandidates(ctx context.Context, frame detector.FrameCandidates, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error) {
	return s.analyze(ctx, "", frame, opts)
}

// AnalyzeSource fetches a candidate frame from a source URL and analyzes it
func (s *tileDetectionService) AnalyzeSource(ctx context.Context, sourceURL string, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error) {
	if err := s.ValidateSourceURL(sourceURL); err != nil {
		return nil, err
	}

	frame, err := s.candidates.FetchCandidates(ctx, sourceURL)
	if err != nil {
		s.publishEvent(ctx, observer.DetectionEvent{
			EventType:    observer.CandidateFetchFailed,
			Timestamp:    time.Now(),
			SourceURL:    sourceURL,
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, apperrors.NewNetworkError("failed to fetch candidate frame", err)
	}

	s.publishEvent(ctx, observer.DetectionEvent{
		EventType: observer.CandidatesFetched,
		Timestamp: time.Now(),
		SourceURL: sourceURL,
		Success:   true,
		Metadata: map[string]interface{}{
			"candidate_count": len(frame.Candidates),
		},
	})

	return s.analyze(ctx, sourceURL, *frame, opts)
}

// AnalyzeBatch analyzes several independent candidate frames concurrently
func (s *tileDetectionService) AnalyzeBatch(ctx context.Context, frames []detector.FrameCandidates, opts detector.DetectionOptions) ([]*models.FrameAnalysisResponse, error) {
	start := time.Now()

	results, err := s.tileDetector.DetectBatch(frames, opts)
	if err != nil {
		s.publishEvent(ctx, observer.DetectionEvent{
			EventType:    observer.DetectionFailed,
			Timestamp:    time.Now(),
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	responses := make([]*models.FrameAnalysisResponse, len(results))
	for i, result := range results {
		responses[i] = buildResponse("", result)
	}

	logger.WithFields(logrus.Fields{
		"frames":     len(frames),
		"elapsed_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
	}).Info("Batch analysis completed")

	return responses, nil
}

// AnalyzeImage segments an encoded image into candidates and analyzes them
func (s *tileDetectionService) AnalyzeImage(ctx context.Context, image []byte, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error) {
	if len(image) == 0 {
		return nil, apperrors.NewValidationError("image payload is empty", nil)
	}

	// The segmenter holds per-call scratch state and is documented as not
	// safe for concurrent use.
	s.segMutex.Lock()
	frame, err := s.segmenter.ProduceCandidates(image)
	s.segMutex.Unlock()
	if err != nil {
		return nil, err
	}

	return s.analyze(ctx, "", *frame, opts)
}

// ValidateSourceURL validates if the provided source URL is acceptable
func (s *tileDetectionService) ValidateSourceURL(sourceURL string) error {
	if err := s.candidates.ValidateSourceURL(sourceURL); err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return err
		}
		return apperrors.NewValidationError("invalid source URL", err)
	}
	return nil
}

// Close releases the detection resources
func (s *tileDetectionService) Close() error {
	return s.tileDetector.Close()
}

// analyze runs one frame through the detector and converts the result to the
// API response shape
func (s *tileDetectionService) analyze(ctx context.Context, sourceURL string, frame detector.FrameCandidates, opts detector.DetectionOptions) (*models.FrameAnalysisResponse, error) {
	s.publishEvent(ctx, observer.DetectionEvent{
		EventType: observer.DetectionStarted,
		Timestamp: time.Now(),
		SourceURL: sourceURL,
		Metadata: map[string]interface{}{
			"candidate_count": len(frame.Candidates),
		},
	})

	if opts.EpsAuto {
		opts = opts.WithFrameSize(frame.FrameWidth, frame.FrameHeight)
	}

	result, err := s.tileDetector.Detect(frame.Candidates, opts)
	if err != nil {
		s.publishEvent(ctx, observer.DetectionEvent{
			EventType:    observer.DetectionFailed,
			Timestamp:    time.Now(),
			SourceURL:    sourceURL,
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	s.publishEvent(ctx, observer.DetectionEvent{
		EventType:      observer.DetectionCompleted,
		Timestamp:      time.Now(),
		SourceURL:      sourceURL,
		ProcessingTime: time.Duration(result.Frame.ElapsedMs * float64(time.Millisecond)),
		TotalDots:      result.Frame.TotalDots,
		TileCount:      len(result.Tiles),
		Success:        true,
	})

	return buildResponse(sourceURL, result), nil
}

func (s *tileDetectionService) publishEvent(ctx context.Context, event observer.DetectionEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

// buildResponse converts a detection result into the API response shape
func buildResponse(sourceURL string, result *detector.DetectionResult) *models.FrameAnalysisResponse {
	tiles := make([]models.TileOverlay, len(result.Tiles))
	for i, tile := range result.Tiles {
		pips := make([]models.Circle, len(tile.Members))
		for j, member := range tile.Members {
			pips[j] = models.Circle{X: member.X, Y: member.Y, R: member.R}
		}
		tiles[i] = models.TileOverlay{
			Box: models.Box{
				MinX: tile.Box.MinX,
				MinY: tile.Box.MinY,
				MaxX: tile.Box.MaxX,
				MaxY: tile.Box.MaxY,
			},
			PipCount: tile.PipCount,
			Pips:     pips,
		}
	}

	return &models.FrameAnalysisResponse{
		SourceURL: sourceURL,
		Timestamp: time.Now().Format("2006-01-02T15:04:05Z07:00"),
		Summary: models.FrameSummary{
			TotalDots:  result.Frame.TotalDots,
			TileCounts: result.Frame.TileCounts,
			ElapsedMs:  result.Frame.ElapsedMs,
		},
		Tiles: tiles,
	}
}

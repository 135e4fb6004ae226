package repository

import (
	"context"

	"go-domino-counter/internal/detector"
)

// CandidateRepository defines the interface for candidate data access
// operations. It hides whether a frame's candidates come from a live
// segmentation collaborator over HTTP or from archived blob storage.
type CandidateRepository interface {
	// FetchCandidates retrieves one frame's candidate payload from a URL
	FetchCandidates(ctx context.Context, sourceURL string) (*detector.FrameCandidates, error)

	// ValidateSourceURL validates if the provided URL is acceptable
	ValidateSourceURL(sourceURL string) error
}

package repository

import (
	"context"
	"strings"

	"go-domino-counter/internal/detector"
	"go-domino-counter/internal/storage"
	"go-domino-counter/pkg/validation"
)

// HTTPCandidateRepository implements CandidateRepository over an HTTP
// candidate fetcher
type HTTPCandidateRepository struct {
	fetcher   storage.CandidateFetcher
	validator *validation.URLValidator
}

// NewHTTPCandidateRepository creates a new HTTP-backed candidate repository
func NewHTTPCandidateRepository(fetcher storage.CandidateFetcher) CandidateRepository {
	return &HTTPCandidateRepository{
		fetcher:   fetcher,
		validator: validation.NewURLValidator(),
	}
}

// FetchCandidates retrieves a candidate frame from a URL
func (r *HTTPCandidateRepository) FetchCandidates(ctx context.Context, sourceURL string) (*detector.FrameCandidates, error) {
	return r.fetcher.FetchCandidates(ctx, sourceURL)
}

// ValidateSourceURL validates if the provided URL is acceptable
func (r *HTTPCandidateRepository) ValidateSourceURL(sourceURL string) error {
	if strings.TrimSpace(sourceURL) == "" {
		return ErrInvalidSourceURL
	}
	return r.validator.ValidateSourceURL(sourceURL)
}

// BlobCandidateRepository implements CandidateRepository over Azure blob
// storage for archived frames
type BlobCandidateRepository struct {
	blobs     storage.BlobStorage
	validator *validation.URLValidator
}

// NewBlobCandidateRepository creates a new blob-backed candidate repository
func NewBlobCandidateRepository(blobs storage.BlobStorage) CandidateRepository {
	return &BlobCandidateRepository{
		blobs:     blobs,
		validator: validation.NewURLValidatorWithOptions([]string{"https"}, nil),
	}
}

// FetchCandidates retrieves an archived candidate frame from blob storage
func (r *BlobCandidateRepository) FetchCandidates(ctx context.Context, sourceURL string) (*detector.FrameCandidates, error) {
	return r.blobs.GetCandidates(ctx, sourceURL)
}

// ValidateSourceURL validates if the provided blob URL is acceptable
func (r *BlobCandidateRepository) ValidateSourceURL(sourceURL string) error {
	if strings.TrimSpace(sourceURL) == "" {
		return ErrInvalidSourceURL
	}
	return r.validator.ValidateSourceURL(sourceURL)
}

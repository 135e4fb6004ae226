package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-domino-counter/internal/detector"
	apperrors "go-domino-counter/internal/errors"
)

// mockRepository implements repository.CandidateRepository with canned
// responses
type mockRepository struct {
	frame      *detector.FrameCandidates
	fetchErr   error
	invalidURL bool
	fetchedURL string
}

func (m *mockRepository) FetchCandidates(ctx context.Context, sourceURL string) (*detector.FrameCandidates, error) {
	m.fetchedURL = sourceURL
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.frame, nil
}

func (m *mockRepository) ValidateSourceURL(sourceURL string) error {
	if m.invalidURL {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	return nil
}

// mockSegmenter implements segment.Segmenter
type mockSegmenter struct {
	frame *detector.FrameCandidates
	err   error
	calls int
}

func (m *mockSegmenter) ProduceCandidates(image []byte) (*detector.FrameCandidates, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.frame, nil
}

func pipCandidate(x, y float64) detector.Candidate {
	return detector.Candidate{Area: 100, Width: 10, Height: 10, X: x, Y: y, R: 5}
}

// twoTileFrame has two pip groups far enough apart to form separate tiles at
// eps 10: one pair and one lone pip.
func twoTileFrame() detector.FrameCandidates {
	return detector.FrameCandidates{
		FrameWidth:  640,
		FrameHeight: 480,
		Candidates: []detector.Candidate{
			pipCandidate(100, 100),
			pipCandidate(105, 100),
			pipCandidate(400, 300),
		},
	}
}

func newTestService(repo *mockRepository, seg *mockSegmenter) (TileDetectionService, func()) {
	td := detector.NewTileDetector()
	svc := NewTileDetectionService(td, repo, seg, nil)
	return svc, func() { _ = svc.Close() }
}

func TestAnalyzeCandidates(t *testing.T) {
	svc, cleanup := newTestService(&mockRepository{}, &mockSegmenter{})
	defer cleanup()

	opts := detector.DefaultOptions().WithEps(10)
	resp, err := svc.AnalyzeCandidates(context.Background(), twoTileFrame(), opts)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Summary.TotalDots)
	assert.Equal(t, []int{2, 1}, resp.Summary.TileCounts)
	assert.Len(t, resp.Tiles, 2)
	assert.Equal(t, 2, resp.Tiles[0].PipCount)
	assert.Len(t, resp.Tiles[0].Pips, 2)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Empty(t, resp.SourceURL)
}

func TestAnalyzeCandidates_AutoEpsUsesFrameDimensions(t *testing.T) {
	svc, cleanup := newTestService(&mockRepository{}, &mockSegmenter{})
	defer cleanup()

	// Default options leave eps in auto mode; the frame dimensions must be
	// picked up from the payload or validation would reject the run.
	resp, err := svc.AnalyzeCandidates(context.Background(), twoTileFrame(), detector.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Summary.TotalDots)
}

func TestAnalyzeSource(t *testing.T) {
	frame := twoTileFrame()
	repo := &mockRepository{frame: &frame}
	svc, cleanup := newTestService(repo, &mockSegmenter{})
	defer cleanup()

	opts := detector.DefaultOptions().WithEps(10)
	resp, err := svc.AnalyzeSource(context.Background(), "http://segmenter.local/frame", opts)
	require.NoError(t, err)

	assert.Equal(t, "http://segmenter.local/frame", repo.fetchedURL)
	assert.Equal(t, "http://segmenter.local/frame", resp.SourceURL)
	assert.Equal(t, []int{2, 1}, resp.Summary.TileCounts)
}

func TestAnalyzeSource_InvalidURL(t *testing.T) {
	repo := &mockRepository{invalidURL: true}
	svc, cleanup := newTestService(repo, &mockSegmenter{})
	defer cleanup()

	_, err := svc.AnalyzeSource(context.Background(), "ftp://nope", detector.DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, repo.fetchedURL, "fetch must not happen for an invalid URL")
}

func TestAnalyzeSource_FetchFailure(t *testing.T) {
	repo := &mockRepository{fetchErr: errors.New("connection refused")}
	svc, cleanup := newTestService(repo, &mockSegmenter{})
	defer cleanup()

	_, err := svc.AnalyzeSource(context.Background(), "http://segmenter.local/frame", detector.DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestAnalyzeBatch(t *testing.T) {
	svc, cleanup := newTestService(&mockRepository{}, &mockSegmenter{})
	defer cleanup()

	frames := []detector.FrameCandidates{twoTileFrame(), {FrameWidth: 640, FrameHeight: 480}, twoTileFrame()}
	opts := detector.DefaultOptions().WithEps(10)

	responses, err := svc.AnalyzeBatch(context.Background(), frames, opts)
	require.NoError(t, err)
	require.Len(t, responses, 3)

	assert.Equal(t, []int{2, 1}, responses[0].Summary.TileCounts)
	assert.Zero(t, responses[1].Summary.TotalDots)
	assert.Empty(t, responses[1].Tiles)
	assert.Equal(t, []int{2, 1}, responses[2].Summary.TileCounts)
}

func TestAnalyzeImage(t *testing.T) {
	frame := twoTileFrame()
	seg := &mockSegmenter{frame: &frame}
	svc, cleanup := newTestService(&mockRepository{}, seg)
	defer cleanup()

	opts := detector.DefaultOptions().WithEps(10)
	resp, err := svc.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, seg.calls)
	assert.Equal(t, 3, resp.Summary.TotalDots)
}

func TestAnalyzeImage_EmptyPayload(t *testing.T) {
	svc, cleanup := newTestService(&mockRepository{}, &mockSegmenter{})
	defer cleanup()

	_, err := svc.AnalyzeImage(context.Background(), nil, detector.DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestAnalyzeImage_SegmenterFailure(t *testing.T) {
	seg := &mockSegmenter{err: apperrors.NewProcessingError("decode failed", nil)}
	svc, cleanup := newTestService(&mockRepository{}, seg)
	defer cleanup()

	_, err := svc.AnalyzeImage(context.Background(), []byte{0x00}, detector.DefaultOptions())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeProcessing))
}

func TestAnalyzeCandidates_ConfigurationError(t *testing.T) {
	svc, cleanup := newTestService(&mockRepository{}, &mockSegmenter{})
	defer cleanup()

	opts := detector.DefaultOptions().WithEps(-1)
	_, err := svc.AnalyzeCandidates(context.Background(), twoTileFrame(), opts)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

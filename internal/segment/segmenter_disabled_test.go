//go:build !gocv

package segment

import (
	"testing"

	apperrors "go-domino-counter/internal/errors"
)

func TestDisabledSegmenter_ReportsUnsupported(t *testing.T) {
	segmenter := NewSegmenter()

	_, err := segmenter.ProduceCandidates([]byte{0xFF, 0xD8})
	if err == nil {
		t.Fatal("Expected an error from the disabled segmenter, got none")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Errorf("Expected a processing error, got %v", err)
	}
}

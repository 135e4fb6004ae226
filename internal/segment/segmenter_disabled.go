//go:build !gocv

package segment

import (
	"go-domino-counter/internal/detector"
	apperrors "go-domino-counter/internal/errors"
)

// disabledSegmenter stands in when the binary is built without the gocv
// tag. Candidate lists can still arrive through the HTTP and blob sources.
type disabledSegmenter struct{}

// NewSegmenter creates a segmenter for builds without OpenCV support
func NewSegmenter() Segmenter {
	return disabledSegmenter{}
}

func (disabledSegmenter) ProduceCandidates(frame []byte) (*detector.FrameCandidates, error) {
	return nil, apperrors.NewProcessingError("frame segmentation unavailable: built without gocv support", nil)
}

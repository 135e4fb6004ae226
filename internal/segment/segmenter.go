// Package segment is the boundary to the image-segmentation collaborator.
// The detection core never imports this package; candidates cross the
// boundary as plain records so the core stays testable with synthetic lists.
package segment

import "go-domino-counter/internal/detector"

// Segmenter turns an encoded frame into candidate dot observations. The
// implementation owns all low-level image work (grayscale conversion,
// blurring, thresholding, contour extraction, circle fitting).
//
// Implementations may reuse internal working buffers between calls and are
// therefore NOT safe for concurrent use; callers must serialize invocations.
type Segmenter interface {
	ProduceCandidates(frame []byte) (*detector.FrameCandidates, error)
}

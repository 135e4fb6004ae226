//go:build gocv

package segment

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"go-domino-counter/internal/detector"
)

// openCVSegmenter extracts dot candidates from an encoded frame with
// OpenCV: grayscale, Gaussian blur, adaptive threshold, morphological
// close, external contours, minimum enclosing circle per contour.
//
// Mats are allocated and released per call; the gocv bindings are not safe
// for concurrent use on shared Mats, so callers serialize invocations per
// the Segmenter contract.
type openCVSegmenter struct {
	blurKernel    int
	blockSize     int
	thresholdBias float64
	closeKernel   int
	minRadius     float64
	maxRadius     float64
}

// NewSegmenter creates the OpenCV-backed segmenter
func NewSegmenter() Segmenter {
	return &openCVSegmenter{
		blurKernel:    5,
		blockSize:     11,
		thresholdBias: 2,
		closeKernel:   3,
		minRadius:     2,
		maxRadius:     60,
	}
}

func (s *openCVSegmenter) ProduceCandidates(frame []byte) (*detector.FrameCandidates, error) {
	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("decoded frame is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(s.blurKernel, s.blurKernel), 0, 0, gocv.BorderDefault)

	thresholded := gocv.NewMat()
	defer thresholded.Close()
	gocv.AdaptiveThreshold(blurred, &thresholded, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, s.blockSize, float32(s.thresholdBias))

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(s.closeKernel, s.closeKernel))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(thresholded, &closed, gocv.MorphClose, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	result := &detector.FrameCandidates{
		FrameWidth:  mat.Cols(),
		FrameHeight: mat.Rows(),
		Candidates:  make([]detector.Candidate, 0, contours.Size()),
	}

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		x, y, radius := gocv.MinEnclosingCircle(contour)

		// Plausible pip size gate; the detector applies the configured
		// area and aspect filters on top of this.
		if float64(radius) < s.minRadius || float64(radius) > s.maxRadius {
			continue
		}

		rect := gocv.BoundingRect(contour)
		result.Candidates = append(result.Candidates, detector.Candidate{
			Area:   gocv.ContourArea(contour),
			Width:  float64(rect.Dx()),
			Height: float64(rect.Dy()),
			X:      float64(x),
			Y:      float64(y),
			R:      float64(radius),
		})
	}

	return result, nil
}

package detector

import "math"

// Aspect ratio bounds for a near-square bounding box, a cheap proxy for
// roundness. Both bounds are strict.
const (
	minAspectRatio = 0.5
	maxAspectRatio = 2.0
)

// filterCandidates drops candidates whose contour area falls outside
// [minArea, maxArea] (inclusive on both ends) or whose bounding box is not
// near-square. Malformed records with non-finite fields are dropped silently
// too: a single bad detection must not blank out the rest of the frame.
func filterCandidates(candidates []Candidate, minArea, maxArea float64) []DotObservation {
	observations := make([]DotObservation, 0, len(candidates))
	for _, c := range candidates {
		if !finiteCandidate(c) {
			continue
		}
		if c.Area < minArea || c.Area > maxArea {
			continue
		}
		if c.Height <= 0 {
			continue
		}
		aspect := c.Width / c.Height
		if aspect <= minAspectRatio || aspect >= maxAspectRatio {
			continue
		}
		observations = append(observations, DotObservation{X: c.X, Y: c.Y, R: c.R})
	}
	return observations
}

func finiteCandidate(c Candidate) bool {
	for _, v := range [...]float64{c.Area, c.Width, c.Height, c.X, c.Y, c.R} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

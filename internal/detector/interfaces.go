package detector

// TileDetector is the main interface for per-frame domino tile detection.
// Each call is stateless and purely a function of the candidate list and the
// options snapshot it receives.
type TileDetector interface {
	// Detect runs the filter, cluster and aggregate stages over one frame's
	// candidates.
	Detect(candidates []Candidate, options DetectionOptions) (*DetectionResult, error)

	// DetectBatch analyzes several independent frames concurrently with the
	// same options. Results are returned in frame order.
	DetectBatch(frames []FrameCandidates, options DetectionOptions) ([]*DetectionResult, error)

	// Lifecycle management
	Close() error
}

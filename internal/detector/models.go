package detector

// Candidate is one raw shape observation produced by an external
// segmentation collaborator: a contour's area, its bounding-box extents and
// the minimum enclosing circle fitted to it. The detector never talks to the
// collaborator itself; it only consumes these records.
type Candidate struct {
	Area   float64 `json:"area"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	R      float64 `json:"r"`
}

// FrameCandidates is the per-frame payload published by a segmentation
// collaborator. Frame dimensions are carried so the neighborhood radius can
// be auto-derived when no explicit eps is configured.
type FrameCandidates struct {
	FrameWidth  int         `json:"frame_width"`
	FrameHeight int         `json:"frame_height"`
	Candidates  []Candidate `json:"candidates"`
}

// DotObservation is a filtered pip detection: center and radius in pixel
// coordinates of the current frame. Immutable once produced and owned by the
// pipeline invocation that created it.
type DotObservation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Tile is a cluster of dot observations presumed to belong to one physical
// domino. Identity is purely its member set; tiles carry no state across
// frames. Cardinality is always >= 1.
type Tile struct {
	Members []DotObservation
}

// BoundingBox is an axis-aligned box in pixel coordinates.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// TileSummary is the reported geometry facet of one tile: the padded box
// covering every member circle, the pip count, and the member circles
// themselves so an overlay can draw a ring per dot.
type TileSummary struct {
	Box      BoundingBox      `json:"box"`
	PipCount int              `json:"pip_count"`
	Members  []DotObservation `json:"members"`
}

// FrameResult is the summary facet of one analysis cycle.
type FrameResult struct {
	TotalDots  int     `json:"total_dots"`
	TileCounts []int   `json:"tile_counts"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// DetectionResult bundles both result facets of one frame. Reporting
// consumers read Frame; rendering consumers read Tiles.
type DetectionResult struct {
	Frame FrameResult   `json:"frame"`
	Tiles []TileSummary `json:"tiles"`
}

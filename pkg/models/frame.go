package models

// FrameSummary is the reporting facet of one analysis cycle: how many pips
// each detected tile carries and how long the analysis took.
type FrameSummary struct {
	TotalDots  int     `json:"total_dots"`
	TileCounts []int   `json:"tile_counts"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// Circle is one detected pip, for overlay rendering.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Box is an axis-aligned bounding box in frame pixel coordinates.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// TileOverlay is the rendering facet of one tile: the labeled box and the
// member pip circles.
type TileOverlay struct {
	Box      Box      `json:"box"`
	PipCount int      `json:"pip_count"`
	Pips     []Circle `json:"pips"`
}

// FrameAnalysisResponse is the complete per-frame API response. Summary and
// Tiles are deliberately separate: reporting consumers read counts, overlay
// renderers read geometry.
type FrameAnalysisResponse struct {
	SourceURL string        `json:"source_url,omitempty"`
	Timestamp string        `json:"timestamp"`
	Summary   FrameSummary  `json:"summary"`
	Tiles     []TileOverlay `json:"tiles"`
}

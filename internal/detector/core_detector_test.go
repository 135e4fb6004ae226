package detector

import (
	"reflect"
	"testing"
)

// roundCandidate builds a candidate that passes the default filter.
func roundCandidate(x, y float64) Candidate {
	return Candidate{Area: 100, Width: 10, Height: 10, X: x, Y: y, R: 5}
}

func TestDetect_TwoTilesScenario(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	candidates := []Candidate{
		roundCandidate(0, 0),
		roundCandidate(5, 0),
		roundCandidate(100, 100),
	}

	result, err := detector.Detect(candidates, DefaultOptions().WithEps(10))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Frame.TotalDots != 3 {
		t.Errorf("Expected 3 total dots, got %d", result.Frame.TotalDots)
	}
	if !reflect.DeepEqual(result.Frame.TileCounts, []int{2, 1}) {
		t.Errorf("Expected tile counts [2 1], got %v", result.Frame.TileCounts)
	}
	if len(result.Tiles) != 2 {
		t.Errorf("Expected 2 tile summaries, got %d", len(result.Tiles))
	}
	if result.Frame.ElapsedMs < 0 {
		t.Errorf("Expected non-negative elapsed time, got %g", result.Frame.ElapsedMs)
	}
}

func TestDetect_EmptyFrame(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	result, err := detector.Detect(nil, DefaultOptions().WithEps(10))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Frame.TotalDots != 0 {
		t.Errorf("Expected 0 total dots, got %d", result.Frame.TotalDots)
	}
	if len(result.Frame.TileCounts) != 0 {
		t.Errorf("Expected no tile counts, got %v", result.Frame.TileCounts)
	}
	if len(result.Tiles) != 0 {
		t.Errorf("Expected no tiles, got %d", len(result.Tiles))
	}
}

func TestDetect_AutoEps(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	// Auto eps for a 1000x500 frame is 65: the pair at distance 60 joins,
	// the point at distance 70 does not.
	candidates := []Candidate{
		roundCandidate(0, 0),
		roundCandidate(60, 0),
		roundCandidate(130, 0),
	}

	result, err := detector.Detect(candidates, DefaultOptions().WithFrameSize(1000, 500))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !reflect.DeepEqual(result.Frame.TileCounts, []int{2, 1}) {
		t.Errorf("Expected tile counts [2 1] with derived eps 65, got %v", result.Frame.TileCounts)
	}
}

func TestDetect_ConfigurationErrors(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	tests := []struct {
		name    string
		options DetectionOptions
	}{
		{"Negative eps", DefaultOptions().WithEps(-5)},
		{"Auto eps without frame size", DefaultOptions()},
		{"Inverted area bounds", DefaultOptions().WithEps(10).WithAreaBounds(500, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := detector.Detect(nil, tt.options); err == nil {
				t.Error("Expected a configuration error, got none")
			}
		})
	}
}

func TestDetect_FilterFeedsClusterer(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	// The elongated candidate sits between the two pips; once the filter
	// drops it the pips are still within eps of each other directly.
	candidates := []Candidate{
		roundCandidate(0, 0),
		{Area: 100, Width: 30, Height: 10, X: 5, Y: 0, R: 5}, // aspect 3.0, rejected
		roundCandidate(8, 0),
	}

	result, err := detector.Detect(candidates, DefaultOptions().WithEps(10))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Frame.TotalDots != 2 {
		t.Errorf("Expected the elongated candidate filtered out, got %d dots", result.Frame.TotalDots)
	}
	if !reflect.DeepEqual(result.Frame.TileCounts, []int{2}) {
		t.Errorf("Expected a single tile of 2, got %v", result.Frame.TileCounts)
	}
}

func TestDetectBatch_IndependentFrames(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	frames := []FrameCandidates{
		{FrameWidth: 1000, FrameHeight: 500, Candidates: []Candidate{
			roundCandidate(0, 0), roundCandidate(5, 0), roundCandidate(500, 400),
		}},
		{FrameWidth: 1000, FrameHeight: 500, Candidates: nil},
		{FrameWidth: 1000, FrameHeight: 500, Candidates: []Candidate{
			roundCandidate(10, 10),
		}},
	}

	results, err := detector.DetectBatch(frames, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectBatch failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Frame.TotalDots != 3 || len(results[0].Frame.TileCounts) != 2 {
		t.Errorf("Frame 0: expected 3 dots in 2 tiles, got %+v", results[0].Frame)
	}
	if results[1].Frame.TotalDots != 0 {
		t.Errorf("Frame 1: expected empty result, got %+v", results[1].Frame)
	}
	if !reflect.DeepEqual(results[2].Frame.TileCounts, []int{1}) {
		t.Errorf("Frame 2: expected a single singleton tile, got %v", results[2].Frame.TileCounts)
	}
}

func TestDetectBatch_Empty(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	results, err := detector.DetectBatch(nil, DefaultOptions().WithEps(10))
	if err != nil {
		t.Fatalf("DetectBatch failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestDetect_DeterministicAcrossRuns(t *testing.T) {
	detector := NewTileDetector()
	defer detector.Close()

	candidates := []Candidate{
		roundCandidate(0, 0), roundCandidate(4, 3), roundCandidate(90, 2),
		roundCandidate(8, 6), roundCandidate(94, 2), roundCandidate(200, 200),
	}
	opts := DefaultOptions().WithEps(6)

	reference, err := detector.Detect(candidates, opts)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for run := 0; run < 10; run++ {
		result, err := detector.Detect(candidates, opts)
		if err != nil {
			t.Fatalf("Run %d failed: %v", run, err)
		}
		if !reflect.DeepEqual(result.Frame.TileCounts, reference.Frame.TileCounts) {
			t.Fatalf("Run %d: tile counts %v differ from reference %v",
				run, result.Frame.TileCounts, reference.Frame.TileCounts)
		}
		if !reflect.DeepEqual(result.Tiles, reference.Tiles) {
			t.Fatalf("Run %d: tile geometry differs from reference", run)
		}
	}
}

package detector

import (
	"sync"
	"time"
)

// coreDetector implements TileDetector by chaining the three pipeline
// stages: observation filter, spatial clusterer, tile aggregator.
type coreDetector struct {
	workerPool *WorkerPool
}

// NewTileDetector creates a detector with its batch worker pool started
func NewTileDetector() TileDetector {
	workerPool := NewWorkerPool(0) // Use default CPU count
	workerPool.Start()

	return &coreDetector{
		workerPool: workerPool,
	}
}

// Detect analyzes one frame. The whole pipeline runs to completion
// synchronously; all scratch state is local to this invocation, so
// concurrent Detect calls on the same detector are safe.
func (cd *coreDetector) Detect(candidates []Candidate, options DetectionOptions) (*DetectionResult, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	observations := filterCandidates(candidates, options.MinArea, options.MaxArea)
	tiles := clusterObservations(observations, options.resolveEps(), options.effectiveMinPts())
	summaries := summarizeTiles(tiles, options.BoxPadding)

	tileCounts := make([]int, 0, len(summaries))
	totalDots := 0
	for _, s := range summaries {
		tileCounts = append(tileCounts, s.PipCount)
		totalDots += s.PipCount
	}

	return &DetectionResult{
		Frame: FrameResult{
			TotalDots:  totalDots,
			TileCounts: tileCounts,
			ElapsedMs:  float64(time.Since(start).Nanoseconds()) / 1e6,
		},
		Tiles: summaries,
	}, nil
}

// DetectBatch fans independent frames out over the worker pool. Frames carry
// their own dimensions, so auto-eps resolves per frame.
func (cd *coreDetector) DetectBatch(frames []FrameCandidates, options DetectionOptions) ([]*DetectionResult, error) {
	// Surface configuration errors before spawning any work. Frame
	// dimensions are applied per frame below, so validate against the first
	// frame's dimensions when running in auto-eps mode.
	probe := options
	if probe.EpsAuto && len(frames) > 0 {
		probe = probe.WithFrameSize(frames[0].FrameWidth, frames[0].FrameHeight)
	}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	results := make([]*DetectionResult, len(frames))
	errs := make([]error, len(frames))

	var wg sync.WaitGroup
	for i := range frames {
		wg.Add(1)
		frame := frames[i]
		idx := i
		cd.workerPool.Submit(func() {
			defer wg.Done()
			frameOptions := options
			if frameOptions.EpsAuto {
				frameOptions = frameOptions.WithFrameSize(frame.FrameWidth, frame.FrameHeight)
			}
			results[idx], errs[idx] = cd.Detect(frame.Candidates, frameOptions)
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Close shuts down the batch worker pool
func (cd *coreDetector) Close() error {
	cd.workerPool.Close()
	return nil
}

package detector

import (
	"math"

	apperrors "go-domino-counter/internal/errors"
)

// DetectionOptions provides the tunables for one detection run. Options are
// read once at the start of an invocation and never shared mutably between
// invocations.
type DetectionOptions struct {
	// Area bounds for the observation filter, in square pixels.
	MinArea float64
	MaxArea float64

	// Neighborhood radius for clustering. When EpsAuto is set, Eps is
	// ignored and the radius is derived as round(EpsFraction * max(frame
	// width, frame height)).
	Eps         float64
	EpsAuto     bool
	EpsFraction float64

	// Minimum neighborhood size (including the point itself) for a cluster
	// core point. Values below 1 are clamped to 1.
	MinPts int

	// Padding added on every side of a tile's bounding box, in pixels.
	BoxPadding float64

	// Frame dimensions, required for auto-eps derivation.
	FrameWidth  int
	FrameHeight int
}

// DefaultOptions returns the default detection options
func DefaultOptions() DetectionOptions {
	return DetectionOptions{
		MinArea:     30,
		MaxArea:     5000,
		EpsAuto:     true,
		EpsFraction: 0.065,
		MinPts:      1,
		BoxPadding:  10,
	}
}

// WithEps returns options with an explicit neighborhood radius
func (opts DetectionOptions) WithEps(eps float64) DetectionOptions {
	opts.Eps = eps
	opts.EpsAuto = false
	return opts
}

// WithAreaBounds returns options with custom area bounds for the filter
func (opts DetectionOptions) WithAreaBounds(minArea, maxArea float64) DetectionOptions {
	opts.MinArea = minArea
	opts.MaxArea = maxArea
	return opts
}

// WithFrameSize returns options carrying the frame dimensions used for
// auto-eps derivation
func (opts DetectionOptions) WithFrameSize(width, height int) DetectionOptions {
	opts.FrameWidth = width
	opts.FrameHeight = height
	return opts
}

// WithMinPts returns options with a custom core-point neighborhood size
func (opts DetectionOptions) WithMinPts(minPts int) DetectionOptions {
	opts.MinPts = minPts
	return opts
}

// Validate rejects inconsistent tunables fail-fast. MinPts is deliberately
// not rejected here: the domain never needs fewer than one point to seed a
// tile, so sub-1 values are clamped at clustering time instead.
func (opts DetectionOptions) Validate() error {
	if opts.MinArea <= 0 {
		return apperrors.NewConfigurationError("min area must be > 0", nil)
	}
	if opts.MaxArea < opts.MinArea {
		return apperrors.NewConfigurationError("max area must be >= min area", nil)
	}
	if !opts.EpsAuto && (opts.Eps < 0 || math.IsNaN(opts.Eps) || math.IsInf(opts.Eps, 0)) {
		return apperrors.NewConfigurationError("eps must be a non-negative finite number", nil)
	}
	if opts.EpsAuto {
		if opts.EpsFraction <= 0 {
			return apperrors.NewConfigurationError("eps fraction must be > 0", nil)
		}
		if opts.FrameWidth <= 0 || opts.FrameHeight <= 0 {
			return apperrors.NewConfigurationError("auto eps requires positive frame dimensions", nil)
		}
	}
	return nil
}

// resolveEps returns the effective neighborhood radius for this run.
// Callers must have validated the options first.
func (opts DetectionOptions) resolveEps() float64 {
	if !opts.EpsAuto {
		return opts.Eps
	}
	longest := opts.FrameWidth
	if opts.FrameHeight > longest {
		longest = opts.FrameHeight
	}
	return math.Round(opts.EpsFraction * float64(longest))
}

// effectiveMinPts clamps MinPts to the domain minimum of 1.
func (opts DetectionOptions) effectiveMinPts() int {
	if opts.MinPts < 1 {
		return 1
	}
	return opts.MinPts
}

// Package geometry analyzes vector path data to decide how region number
// labels are rendered: bounding box, approximate perimeter, ring-shape
// classification and a readable font size.
package geometry

import (
	"math"
	"regexp"
	"strconv"
)

// Empirically tuned classification thresholds. A perfect circle has
// perimeter²/area = 4π ≈ 12.57; hand-traced annuli and thin bands land far
// above that. The values were tuned on ~300×300 and ~400×400 viewBox
// templates and are not normalized to the coordinate scale.
const (
	// RingRatioThreshold is the perimeter²/boundingBoxArea value above
	// which a path is classified as ring-like.
	RingRatioThreshold = 50.0

	// RingPointDensityThreshold is the pointCount/sqrt(area) value above
	// which a path is classified as ring-like. Catches thin bands with
	// many points but a modest bounding box.
	RingPointDensityThreshold = 0.5
)

// Font size bounds in viewBox units.
const (
	MinFontSize = 6
	MaxFontSize = 16
)

var numberToken = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`)

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, Width, Height float64
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.Width * r.Height }

// PathMetrics describes the measured geometry of one vector path.
type PathMetrics struct {
	BoundingBox        Rect
	PointCount         int
	Perimeter          float64
	EstimatedThickness float64
	IsRingShape        bool
}

// AnalyzePath parses all coordinate pairs out of a path string and computes
// its bounding box, approximate perimeter and shape classification. The
// parse is format-agnostic: any numeric tokens are treated as alternating
// x/y coordinates, which is good enough for label placement.
func AnalyzePath(path string) PathMetrics {
	xs, ys := extractPoints(path)
	m := PathMetrics{}
	if len(xs) == 0 {
		return m
	}
	m.PointCount = len(xs)

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	m.BoundingBox = Rect{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}

	for i := 1; i < len(xs); i++ {
		m.Perimeter += math.Hypot(xs[i]-xs[i-1], ys[i]-ys[i-1])
	}

	area := m.BoundingBox.Area()
	if area > 0 && m.Perimeter > 0 {
		ratio := m.Perimeter * m.Perimeter / area
		density := float64(m.PointCount) / math.Sqrt(area)
		m.IsRingShape = ratio > RingRatioThreshold || density > RingPointDensityThreshold

		if m.IsRingShape {
			// Band width of an annulus approximated from area and
			// perimeter, capped by the bounding box.
			m.EstimatedThickness = math.Min(
				math.Min(m.BoundingBox.Width, m.BoundingBox.Height),
				2*area/m.Perimeter,
			)
		}
	}
	return m
}

// FontSize returns the label font size for a path within a viewBox of the
// given dimensions, clamped to [MinFontSize, MaxFontSize]. Sizes move in
// coarse discrete steps so adjacent regions do not get visually jittery
// size variation. Pure and deterministic; callers cache per region.
func FontSize(path string, viewWidth, viewHeight float64) int {
	m := AnalyzePath(path)
	if m.PointCount == 0 {
		return MinFontSize
	}
	if m.IsRingShape {
		return ringFontSize(m.EstimatedThickness)
	}

	minView := math.Min(viewWidth, viewHeight)
	if minView <= 0 {
		return MinFontSize
	}
	// Relative to the viewBox so label size is resolution independent
	// across template canvas sizes.
	rel := math.Min(m.BoundingBox.Width, m.BoundingBox.Height) / minView
	switch {
	case rel < 0.04:
		return 6
	case rel < 0.07:
		return 8
	case rel < 0.11:
		return 10
	case rel < 0.17:
		return 12
	case rel < 0.26:
		return 14
	default:
		return MaxFontSize
	}
}

// ringFontSize maps the estimated band thickness of a ring shape to a font
// size. Thinner bands get smaller labels.
func ringFontSize(thickness float64) int {
	switch {
	case thickness < 5:
		return 6
	case thickness < 9:
		return 8
	case thickness < 15:
		return 10
	case thickness < 24:
		return 12
	default:
		return 14
	}
}

func extractPoints(path string) (xs, ys []float64) {
	tokens := numberToken.FindAllString(path, -1)
	for i := 0; i+1 < len(tokens); i += 2 {
		x, errX := strconv.ParseFloat(tokens[i], 64)
		y, errY := strconv.ParseFloat(tokens[i+1], 64)
		if errX != nil || errY != nil {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

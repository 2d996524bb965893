// Package trace converts a quantized raster image into closed vector
// contours, one colorable region per contour. Bitmap vectorization is done
// by the potrace port github.com/dennwc/gotrace; this package builds the
// per-color masks, filters noise contours and places the number labels.
package trace

import (
	"errors"
	"fmt"
	"image"

	"github.com/dennwc/gotrace"

	"github.com/paintbn/paintbn/internal/colorx"
	"github.com/paintbn/paintbn/internal/geometry"
	"github.com/paintbn/paintbn/internal/imaging"
	"github.com/paintbn/paintbn/internal/template"
)

// ErrTrace is returned when the underlying tracer fails on a mask.
var ErrTrace = errors.New("trace: contour tracing failed")

// Options tune the vectorization.
type Options struct {
	// TurdSize is the minimum contour area in pixels; smaller contours
	// are discarded, suppressing speckle noise.
	TurdSize int

	// OptTolerance controls curve simplification aggressiveness
	// (0 = exact, 1 = very simplified).
	OptTolerance float64
}

// DefaultOptions returns the tracer defaults for medium difficulty.
func DefaultOptions() Options {
	return Options{TurdSize: 100, OptTolerance: 0.2}
}

// Result is the traced vector template: a viewBox matching the input image
// and one region per retained contour.
type Result struct {
	ViewBox template.ViewBox
	Width   int
	Height  int
	Regions []template.Region
}

// ConvertToSVG traces one set of contours per palette color, in palette
// order. The palette index establishes the region color number
// (index + 1); region ids are "region-{colorNumber}-{contourIndex}".
func ConvertToSVG(img image.Image, palette []colorx.RGBA, opts Options) (*Result, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrTrace)
	}
	src := imaging.ToRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrTrace)
	}

	// Assign every pixel to its nearest palette color once; each color's
	// mask is then a simple equality test.
	nearest := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nearest[y*w+x] = colorx.NearestIndex(colorx.FromStdColor(src.At(x, y)), palette)
		}
	}

	params := gotrace.Params{
		TurdSize:     opts.TurdSize,
		TurnPolicy:   gotrace.TurnMinority,
		AlphaMax:     1.0,
		OptiCurve:    true,
		OptTolerance: opts.OptTolerance,
	}

	out := &Result{
		ViewBox: template.ViewBox{Width: float64(w), Height: float64(h)},
		Width:   w,
		Height:  h,
	}

	for ci := range palette {
		bm := gotrace.NewBitmap(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				bm.Set(x, y, nearest[y*w+x] == ci)
			}
		}

		paths, err := gotrace.Trace(bm, &params)
		if err != nil {
			return nil, fmt.Errorf("%w: color %d: %v", ErrTrace, ci+1, err)
		}

		colorNumber := ci + 1
		contourIndex := 0
		for _, p := range paths {
			if p.Sign <= 0 {
				// Holes are rendered by their parent contour's fill
				// rule; they are not separately fillable.
				continue
			}
			pathData := p.ToSvgPath()
			if pathData == "" {
				continue
			}
			region := template.Region{
				ID:          fmt.Sprintf("region-%d-%d", colorNumber, contourIndex),
				ColorNumber: colorNumber,
				Path:        pathData,
			}
			region.LabelX, region.LabelY = labelAnchor(pathData, w, h)
			region.FontSize = geometry.FontSize(pathData, float64(w), float64(h))
			out.Regions = append(out.Regions, region)
			contourIndex++
		}
	}
	return out, nil
}

// labelAnchor places the number glyph at the center of the contour's
// bounding box. Simpler than a geometric centroid and acceptable even for
// concave shapes since label placement tolerates minor offset. Degenerate
// paths fall back to the image center.
func labelAnchor(pathData string, w, h int) (float64, float64) {
	m := geometry.AnalyzePath(pathData)
	if m.PointCount < 2 {
		return float64(w) / 2, float64(h) / 2
	}
	bb := m.BoundingBox
	return bb.MinX + bb.Width/2, bb.MinY + bb.Height/2
}

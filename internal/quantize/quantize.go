// Package quantize reduces a raster image to a small palette of
// representative colors with per-color frequency statistics. It is the first
// stage of template generation: the resulting palette defines the numbered
// colors of a puzzle.
package quantize

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"

	"github.com/paintbn/paintbn/internal/colorx"
	"github.com/paintbn/paintbn/internal/imaging"
)

// ErrColorExtraction is returned when no palette can be produced from the
// input (zero pixels or fully transparent input).
var ErrColorExtraction = errors.New("quantize: cannot extract colors")

// workingMaxDim bounds the resolution quantization runs at. Purely a
// performance measure; output colors stay full 8-bit RGB.
const workingMaxDim = 200

// maxIterations caps the k-means refinement loop.
const maxIterations = 15

// ExtractedColor is one representative palette color with its frequency
// over the (downsampled) image.
type ExtractedColor struct {
	R, G, B    uint8
	Hex        string
	Count      int
	Percentage float64
}

// RGBA returns the color as a colorx.RGBA value.
func (c ExtractedColor) RGBA() colorx.RGBA {
	return colorx.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Extraction is the result of quantizing an image.
type Extraction struct {
	Colors        []ExtractedColor // sorted by descending frequency
	DominantColor ExtractedColor   // == Colors[0]
	TotalPixels   int
}

// Palette returns the extracted colors in order as RGBA values.
func (e *Extraction) Palette() []colorx.RGBA {
	out := make([]colorx.RGBA, len(e.Colors))
	for i, c := range e.Colors {
		out[i] = c.RGBA()
	}
	return out
}

// Extract quantizes the image down to at most colorCount representative
// colors. If the image holds fewer distinct colors than requested, the
// smaller set is returned; colors are never fabricated.
//
// Frequencies are derived by mapping every (downsampled) pixel to its
// nearest representative, so percentages always sum to ~100.
func Extract(img image.Image, colorCount int) (*Extraction, error) {
	if colorCount < 1 {
		return nil, fmt.Errorf("quantize: colorCount must be >= 1, got %d", colorCount)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrColorExtraction)
	}

	pixels := samplePixels(img)
	if len(pixels) == 0 {
		return nil, fmt.Errorf("%w: image has no opaque pixels", ErrColorExtraction)
	}

	reps := cluster(pixels, colorCount)
	if len(reps) == 0 {
		return nil, fmt.Errorf("%w: clustering produced no centroids", ErrColorExtraction)
	}

	// Remap every pixel to its nearest representative. Counts and
	// percentages come from this mapping, not from cluster internals.
	counts := countsFor(pixels, reps)

	// Clustering can merge or starve centroids. Reseed any representative
	// that claimed no pixels from the pixel farthest from the survivors,
	// so a request for k colors yields k whenever the image has at least
	// k distinct colors.
	for range reps {
		empty := -1
		for i, c := range counts {
			if c == 0 {
				empty = i
				break
			}
		}
		if empty < 0 {
			break
		}
		p, ok := farthestPixel(pixels, reps, empty)
		if !ok {
			break
		}
		reps[empty] = p
		counts = countsFor(pixels, reps)
	}

	total := len(pixels)
	var colors []ExtractedColor
	for i, rep := range reps {
		if counts[i] == 0 {
			continue
		}
		colors = append(colors, ExtractedColor{
			R:          rep.R,
			G:          rep.G,
			B:          rep.B,
			Hex:        rep.Hex(),
			Count:      counts[i],
			Percentage: 100 * float64(counts[i]) / float64(total),
		})
	}
	sort.SliceStable(colors, func(i, j int) bool { return colors[i].Count > colors[j].Count })

	return &Extraction{
		Colors:        colors,
		DominantColor: colors[0],
		TotalPixels:   total,
	}, nil
}

// samplePixels downsamples the image to the working resolution and returns
// its opaque pixels as RGBA values.
func samplePixels(img image.Image) []colorx.RGBA {
	small := imaging.ToRGBA(imaging.Downsample(img, workingMaxDim))
	b := small.Bounds()
	out := make([]colorx.RGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := colorx.FromStdColor(small.At(x, y))
			if c.A == 0 {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// cluster runs k-means with k-means++ seeding over the pixel colors.
// A fixed seed keeps extraction deterministic for identical inputs.
func cluster(pixels []colorx.RGBA, k int) []colorx.RGBA {
	distinct := distinctColors(pixels, k+1)
	if len(distinct) <= k {
		return distinct
	}

	rng := rand.New(rand.NewSource(1))
	centroids := seedCentroids(pixels, k, rng)

	assign := make([]int, len(pixels))
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range pixels {
			n := colorx.NearestIndex(p, centroids)
			if assign[i] != n {
				assign[i] = n
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		sums := make([][4]int64, k)
		for i, p := range pixels {
			s := &sums[assign[i]]
			s[0] += int64(p.R)
			s[1] += int64(p.G)
			s[2] += int64(p.B)
			s[3]++
		}
		for i := range centroids {
			if sums[i][3] == 0 {
				continue
			}
			n := sums[i][3]
			centroids[i] = colorx.RGBA{
				R: uint8(sums[i][0] / n),
				G: uint8(sums[i][1] / n),
				B: uint8(sums[i][2] / n),
				A: 255,
			}
		}
	}
	return centroids
}

// seedCentroids performs k-means++ initialization: the first centroid is
// random, each following one is chosen with probability proportional to its
// squared distance from the nearest existing centroid.
func seedCentroids(pixels []colorx.RGBA, k int, rng *rand.Rand) []colorx.RGBA {
	centroids := make([]colorx.RGBA, 0, k)
	centroids = append(centroids, pixels[rng.Intn(len(pixels))])

	for len(centroids) < k {
		dists := make([]float64, len(pixels))
		var total float64
		for i, p := range pixels {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := float64(colorx.DistanceSq(p, c)); d < minDist {
					minDist = d
				}
			}
			dists[i] = minDist
			total += minDist
		}
		if total == 0 {
			break
		}
		target := rng.Float64() * total
		var cum float64
		for i, d := range dists {
			cum += d
			if cum >= target {
				centroids = append(centroids, pixels[i])
				break
			}
		}
	}
	return centroids
}

// countsFor maps every pixel to its nearest representative and tallies the
// hits.
func countsFor(pixels, reps []colorx.RGBA) []int {
	counts := make([]int, len(reps))
	for _, p := range pixels {
		counts[colorx.NearestIndex(p, reps)]++
	}
	return counts
}

// farthestPixel returns the pixel with the largest distance to its nearest
// representative, ignoring the representative at skip. Returns false when
// every pixel coincides with a kept representative, in which case there is
// no distinct color left to reseed with.
func farthestPixel(pixels, reps []colorx.RGBA, skip int) (colorx.RGBA, bool) {
	var best colorx.RGBA
	bestDist := 0
	for _, p := range pixels {
		minDist := math.MaxInt
		for i, r := range reps {
			if i == skip {
				continue
			}
			if d := colorx.DistanceSq(p, r); d < minDist {
				minDist = d
			}
		}
		if minDist > bestDist {
			bestDist = minDist
			best = p
		}
	}
	return best, bestDist > 0
}

// distinctColors collects distinct pixel colors, stopping early once more
// than limit are seen.
func distinctColors(pixels []colorx.RGBA, limit int) []colorx.RGBA {
	seen := make(map[colorx.RGBA]struct{}, limit)
	var out []colorx.RGBA
	for _, p := range pixels {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out
}

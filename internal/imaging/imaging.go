// Package imaging handles image I/O and the raster preprocessing steps of
// template generation: bounded downsampling and the optional smoothing blur
// applied before color quantization.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Load reads an image file from disk. Supports PNG, JPEG, and WEBP.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return png.Decode(f)
	case ".jpg", ".jpeg":
		return jpeg.Decode(f)
	case ".webp":
		// Decoded via the blank import of golang.org/x/image/webp
		img, _, err := image.Decode(f)
		return img, err
	default:
		return nil, fmt.Errorf("unsupported image format %q (supported: png, jpg, jpeg, webp)", ext)
	}
}

// Decode decodes image bytes in any registered format (PNG, JPEG, WEBP).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// PNGDataURL encodes an image as a base64 PNG data URL.
func PNGDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ToRGBA converts any image to *image.RGBA with bounds anchored at (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == image.Pt(0, 0) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Downsample scales the image so neither dimension exceeds maxDim, keeping
// the aspect ratio. Images already within bounds are returned unchanged.
func Downsample(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return resize.Resize(uint(maxDim), 0, img, resize.Bilinear)
	}
	return resize.Resize(0, uint(maxDim), img, resize.Bilinear)
}

// BoxBlur applies a simple box blur of the given radius. Radius 0 returns
// the input unchanged. Used as the smoothing pass before quantization to
// merge noisy micro-regions.
func BoxBlur(img image.Image, radius int) *image.RGBA {
	src := ToRGBA(img)
	if radius <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	// Horizontal then vertical pass.
	tmp := image.NewRGBA(b)
	blurPass(src.Pix, tmp.Pix, w, h, src.Stride, radius, true)
	out := image.NewRGBA(b)
	blurPass(tmp.Pix, out.Pix, w, h, tmp.Stride, radius, false)
	return out
}

func blurPass(src, dst []uint8, w, h, stride, radius int, horizontal bool) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a, n int
			for d := -radius; d <= radius; d++ {
				sx, sy := x, y
				if horizontal {
					sx += d
				} else {
					sy += d
				}
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					continue
				}
				i := sy*stride + sx*4
				r += int(src[i])
				g += int(src[i+1])
				b += int(src[i+2])
				a += int(src[i+3])
				n++
			}
			i := y*stride + x*4
			dst[i] = uint8(r / n)
			dst[i+1] = uint8(g / n)
			dst[i+2] = uint8(b / n)
			dst[i+3] = uint8(a / n)
		}
	}
}

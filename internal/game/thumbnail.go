package game

import (
	"image"
	"image/draw"

	"github.com/paintbn/paintbn/internal/colorx"
	"github.com/paintbn/paintbn/internal/imaging"
	"github.com/paintbn/paintbn/internal/store"
	"github.com/paintbn/paintbn/internal/template"
)

// thumbSize is the longest thumbnail dimension in pixels.
const thumbSize = 128

// renderThumbnail draws a small save-list preview: a white canvas scaled
// from the template's viewBox with a colored dot at every correctly filled
// region's label anchor. Cheap, and close enough to the real artwork for a
// gallery tile.
func renderThumbnail(tpl *template.Template, content *store.RegionContent) string {
	vb := tpl.Data.ViewBox
	if vb.Width <= 0 || vb.Height <= 0 {
		return ""
	}
	scale := float64(thumbSize) / vb.Width
	if vb.Height > vb.Width {
		scale = float64(thumbSize) / vb.Height
	}
	w := int(vb.Width*scale + 0.5)
	h := int(vb.Height*scale + 0.5)
	if w < 1 || h < 1 {
		return ""
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	palette := make(map[int]colorx.RGBA, len(tpl.ColorPalette))
	for _, p := range tpl.ColorPalette {
		if c, err := colorx.ParseHex(p.Hex); err == nil {
			palette[p.Number] = c
		}
	}

	if content != nil {
		for _, rec := range content.FilledRegions {
			if !rec.IsCorrect {
				continue
			}
			region, ok := tpl.Region(rec.RegionID)
			if !ok {
				continue
			}
			c, ok := palette[rec.ColorNumber]
			if !ok {
				continue
			}
			cx := int((region.LabelX - vb.MinX) * scale)
			cy := int((region.LabelY - vb.MinY) * scale)
			fillDot(img, cx, cy, 3, c)
		}
	}

	dataURL, err := imaging.PNGDataURL(img)
	if err != nil {
		return ""
	}
	return dataURL
}

func fillDot(img *image.RGBA, cx, cy, r int, c colorx.RGBA) {
	b := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			img.SetRGBA(x, y, c.ToStdColor())
		}
	}
}

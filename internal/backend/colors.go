package backend

import (
	"image"
	"image/color"
	"slices"

	"squeeze/internal/grayscale"
)

// UniqueColors lists the distinct colors of img in a stable
// order. Fully transparent pixels are skipped.
func UniqueColors(img image.Image) []grayscale.Color {
	bounds := img.Bounds()
	seen := make(map[uint32]struct{})
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			seen[uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B)] = struct{}{}
		}
	}

	keys := make([]uint32, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	colors := make([]grayscale.Color, len(keys))
	for i, k := range keys {
		colors[i] = grayscale.Color{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k)}
	}
	return colors
}

// DetectGray decodes path and classifies its unique colors.
func (b *Imaging) DetectGray(path string) (bool, error) {
	if err := b.check(); err != nil {
		return false, err
	}
	img, err := decodeFile(path)
	if err != nil {
		return false, err
	}
	return b.cfg.Classifier.IsGrayscale(UniqueColors(img)), nil
}

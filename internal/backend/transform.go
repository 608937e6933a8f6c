package backend

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegli"
	"golang.org/x/image/draw"
)

// PNGMode selects extra PNG processing before recompression.
type PNGMode string

const (
	PNGModeDefault PNGMode = ""
	// PNGModeGray stores the image as 8-bit grayscale when its colors
	// classify as gray.
	PNGModeGray PNGMode = "gray"
)

// ParsePNGMode validates a user-supplied mode.
func ParsePNGMode(s string) (PNGMode, error) {
	switch PNGMode(s) {
	case PNGModeDefault, PNGModeGray:
		return PNGMode(s), nil
	default:
		return "", fmt.Errorf("unknown PNG mode %q", s)
	}
}

type PNGOptions struct {
	To8Bits bool
	// ReduceColors quantizes a gray-converted image to this many levels
	// when in 1..255. Zero leaves the levels untouched.
	ReduceColors int
	Mode         PNGMode
}

// OptimizeJPEG re-encodes the JPEG at path in place at the given quality.
func (b *Imaging) OptimizeJPEG(path string, quality int) error {
	if err := b.check(); err != nil {
		return err
	}
	if quality < 1 || quality > 100 {
		return fmt.Errorf("JPEG quality %d out of range 1-100", quality)
	}

	img, err := decodeFile(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch b.cfg.Encoder {
	case EncoderJPEGLI:
		err = jpegli.Encode(&buf, img, &jpegli.EncodingOptions{
			Quality:           quality,
			ChromaSubsampling: image.YCbCrSubsampleRatio420,
		})
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return codecErr("encode", path, err)
	}

	return overwrite(path, buf.Bytes())
}

// OptimizePNG re-encodes the PNG at path in place with maximum zlib
// compression, after the conversions requested in opts.
func (b *Imaging) OptimizePNG(path string, opts PNGOptions) error {
	if err := b.check(); err != nil {
		return err
	}

	img, err := decodeFile(path)
	if err != nil {
		return err
	}

	if opts.To8Bits {
		img = to8Bits(img)
	}
	if opts.Mode == PNGModeGray {
		if gray, ok := b.toGrayIfGray(img, opts.ReduceColors); ok {
			b.logger.Info("Image is grayscale", "path", path)
			img = gray
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return codecErr("encode", path, err)
	}

	return overwrite(path, buf.Bytes())
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Orientation is baked into the pixels since re-encoding drops EXIF.
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, codecErr("decode", path, err)
	}
	return img, nil
}

func overwrite(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}

func to8Bits(img image.Image) image.Image {
	bounds := img.Bounds()
	switch img.(type) {
	case *image.Gray16:
		dst := image.NewGray(bounds)
		draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
		return dst
	case *image.RGBA64, *image.NRGBA64:
		dst := image.NewNRGBA(bounds)
		draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
		return dst
	default:
		return img
	}
}

// toGrayIfGray converts img to grayscale when its unique colors classify
// as gray. Images with transparency are left alone.
func (b *Imaging) toGrayIfGray(img image.Image, reduceColors int) (image.Image, bool) {
	if o, ok := img.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		return img, false
	}
	if !b.cfg.Classifier.IsGrayscale(UniqueColors(img)) {
		return img, false
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	if reduceColors > 0 && reduceColors < 256 {
		b.logger.Info("Reducing colors", "levels", reduceColors)
		return quantizeGray(gray, reduceColors), true
	}
	return gray, true
}

func quantizeGray(gray *image.Gray, levels int) *image.Paletted {
	pal := make(color.Palette, levels)
	for i := range pal {
		v := 0
		if levels > 1 {
			v = i * 255 / (levels - 1)
		}
		pal[i] = color.Gray{Y: uint8(v)}
	}

	bounds := gray.Bounds()
	dst := image.NewPaletted(bounds, pal)
	draw.FloydSteinberg.Draw(dst, bounds, gray, bounds.Min)
	return dst
}

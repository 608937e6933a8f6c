package backend

import (
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"squeeze/pkg/imgutil"
)

// Info probes path without decoding pixel data.
func (b *Imaging) Info(path string) (imgutil.Info, error) {
	if err := b.check(); err != nil {
		return imgutil.Info{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return imgutil.Info{}, err
	}
	defer f.Close()

	kind, err := imgutil.SniffReader(f)
	if err != nil {
		return imgutil.Info{}, codecErr("probe", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return imgutil.Info{}, err
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return imgutil.Info{}, codecErr("decode", path, err)
	}

	info := imgutil.Info{
		Width:  cfg.Width,
		Height: cfg.Height,
		Type:   FileType(path),
		XRes:   imgutil.PerInchToPerMM(imgutil.DefaultDPI),
		YRes:   imgutil.PerInchToPerMM(imgutil.DefaultDPI),
	}
	info.Bands, info.Format, info.Interpretation = describeModel(cfg.ColorModel)

	switch kind {
	case imgutil.KindPNG:
		hdr, err := scanPNG(f)
		if err != nil {
			return imgutil.Info{}, codecErr("probe", path, err)
		}
		applyPNGHeader(&info, hdr)
	case imgutil.KindJPEG:
		if b.applyExifResolution(&info, f, path) {
			break
		}
		density, ok, err := scanJFIF(f)
		if err != nil {
			b.logger.Debug("ignoring unreadable JFIF header", "path", path, "err", err)
			break
		}
		if ok {
			applyJFIF(&info, density)
		}
	case imgutil.KindTIFF:
		b.applyExifResolution(&info, f, path)
	}

	return info, nil
}

// FileType is the extension of path without the leading dot.
func FileType(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func (b *Imaging) applyExifResolution(info *imgutil.Info, rs io.ReadSeeker, path string) bool {
	res, ok, err := analyzeExif(rs)
	if err != nil {
		b.logger.Debug("ignoring unreadable EXIF", "path", path, "err", err)
		return false
	}
	if !ok {
		return false
	}
	switch res.Unit {
	case exifUnitCM:
		info.XRes, info.YRes = imgutil.PerCMToPerMM(res.X), imgutil.PerCMToPerMM(res.Y)
	default:
		info.XRes, info.YRes = imgutil.PerInchToPerMM(res.X), imgutil.PerInchToPerMM(res.Y)
	}
	return true
}

func applyPNGHeader(info *imgutil.Info, hdr pngHeader) {
	if bands, ok := hdr.bands(); ok {
		info.Bands = bands
	}
	wide := hdr.BitDepth == 16
	info.Format = imgutil.FormatUChar
	if wide {
		info.Format = imgutil.FormatUShort
	}
	switch {
	case hdr.gray() && wide:
		info.Interpretation = imgutil.InterpretationGrey16
	case hdr.gray():
		info.Interpretation = imgutil.InterpretationBW
	case wide:
		info.Interpretation = imgutil.InterpretationRGB16
	default:
		info.Interpretation = imgutil.InterpretationSRGB
	}
	if hdr.HasPhys && hdr.PhysMeter && hdr.PhysX > 0 && hdr.PhysY > 0 {
		info.XRes = float64(hdr.PhysX) / 1000
		info.YRes = float64(hdr.PhysY) / 1000
	}
}

func applyJFIF(info *imgutil.Info, d jfifDensity) {
	switch d.Unit {
	case jfifPerInch:
		info.XRes, info.YRes = imgutil.PerInchToPerMM(float64(d.X)), imgutil.PerInchToPerMM(float64(d.Y))
	case jfifPerCM:
		info.XRes, info.YRes = imgutil.PerCMToPerMM(float64(d.X)), imgutil.PerCMToPerMM(float64(d.Y))
	}
}

func describeModel(m color.Model) (int, string, string) {
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4, imgutil.FormatUChar, imgutil.InterpretationSRGB
			}
		}
		return 3, imgutil.FormatUChar, imgutil.InterpretationSRGB
	}

	switch m {
	case color.GrayModel:
		return 1, imgutil.FormatUChar, imgutil.InterpretationBW
	case color.Gray16Model:
		return 1, imgutil.FormatUShort, imgutil.InterpretationGrey16
	case color.NRGBAModel, color.NYCbCrAModel:
		return 4, imgutil.FormatUChar, imgutil.InterpretationSRGB
	case color.RGBA64Model:
		return 3, imgutil.FormatUShort, imgutil.InterpretationRGB16
	case color.NRGBA64Model:
		return 4, imgutil.FormatUShort, imgutil.InterpretationRGB16
	case color.CMYKModel:
		return 4, imgutil.FormatUChar, imgutil.InterpretationCMYK
	default:
		// YCbCr, RGBA and anything unknown.
		return 3, imgutil.FormatUChar, imgutil.InterpretationSRGB
	}
}

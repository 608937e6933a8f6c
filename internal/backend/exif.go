package backend

import (
	"errors"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// EXIF ResolutionUnit values.
const (
	exifUnitNone = 1
	exifUnitInch = 2
	exifUnitCM   = 3
)

const primaryIfdPath = "IFD"

type exifResolution struct {
	X, Y float64
	Unit int
}

// analyzeExif returns the primary-image resolution tags. ok is false when
// the file carries no EXIF or no resolution.
func analyzeExif(rs io.ReadSeeker) (exifResolution, bool, error) {
	res := exifResolution{Unit: exifUnitInch}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return res, false, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return res, false, nil
		}
		return res, false, err
	}

	// IFD0 is visited before the thumbnail IFD, so the first value wins.
	var haveX, haveY, haveUnit bool
	for _, tag := range tags {
		if tag.IfdPath != primaryIfdPath {
			continue
		}
		switch {
		case tag.TagName == "XResolution" && !haveX:
			res.X, haveX = tagRational(tag)
		case tag.TagName == "YResolution" && !haveY:
			res.Y, haveY = tagRational(tag)
		case tag.TagName == "ResolutionUnit" && !haveUnit:
			if unit, ok := tagShort(tag); ok {
				res.Unit, haveUnit = unit, true
			}
		}
	}

	if !haveX || !haveY || res.X <= 0 || res.Y <= 0 || res.Unit == exifUnitNone {
		return res, false, nil
	}
	return res, true, nil
}

func tagRational(tag exif.ExifTag) (float64, bool) {
	if list, ok := tag.Value.([]exifcommon.Rational); ok && len(list) > 0 {
		if list[0].Denominator == 0 {
			return 0, false
		}
		return float64(list[0].Numerator) / float64(list[0].Denominator), true
	}
	return parseRational(firstField(tag.Formatted))
}

func tagShort(tag exif.ExifTag) (int, bool) {
	if list, ok := tag.Value.([]uint16); ok && len(list) > 0 {
		return int(list[0]), true
	}
	v, ok := parseRational(firstField(tag.Formatted))
	return int(v), ok
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

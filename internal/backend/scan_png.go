package backend

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// PNG color types from the IHDR chunk.
const (
	pngGray      = 0
	pngTrueColor = 2
	pngPaletted  = 3
	pngGrayAlpha = 4
	pngTrueAlpha = 6
)

type pngHeader struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType int
	HasTRNS   bool

	HasPhys   bool
	PhysX     uint32
	PhysY     uint32
	PhysMeter bool
}

// scanPNG reads IHDR, tRNS and pHYs without decoding image data.
func scanPNG(rs io.ReadSeeker) (pngHeader, error) {
	hdr := pngHeader{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return hdr, err
	}

	br := bufio.NewReader(rs)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return hdr, err
	}
	if !bytesEqual(sig, pngSignature) {
		return hdr, errors.New("invalid PNG signature")
	}

	sawIHDR := false
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF && sawIHDR {
				return hdr, nil
			}
			return hdr, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		chunkType := make([]byte, 4)
		if _, err := io.ReadFull(br, chunkType); err != nil {
			return hdr, err
		}
		chunkName := string(chunkType)

		if !sawIHDR && chunkName != "IHDR" {
			return hdr, fmt.Errorf("first PNG chunk is %q, want IHDR", chunkName)
		}

		switch chunkName {
		case "IHDR", "pHYs":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return hdr, err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return hdr, err
			}
			if chunkName == "IHDR" {
				if err := applyIHDR(&hdr, data); err != nil {
					return hdr, err
				}
				sawIHDR = true
			} else {
				applyPhys(&hdr, data)
			}
		case "tRNS":
			hdr.HasTRNS = true
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return hdr, err
			}
		case "IDAT", "IEND":
			// Ancillary metadata we care about precedes image data.
			return hdr, nil
		default:
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return hdr, err
			}
		}
	}
}

func applyIHDR(hdr *pngHeader, data []byte) error {
	if len(data) != 13 {
		return fmt.Errorf("invalid IHDR length %d", len(data))
	}
	hdr.Width = int(binary.BigEndian.Uint32(data[0:4]))
	hdr.Height = int(binary.BigEndian.Uint32(data[4:8]))
	hdr.BitDepth = int(data[8])
	hdr.ColorType = int(data[9])
	return nil
}

func applyPhys(hdr *pngHeader, data []byte) {
	if len(data) != 9 {
		return
	}
	hdr.HasPhys = true
	hdr.PhysX = binary.BigEndian.Uint32(data[0:4])
	hdr.PhysY = binary.BigEndian.Uint32(data[4:8])
	hdr.PhysMeter = data[8] == 1
}

// bands returns the number of channels a decoder would produce.
func (h pngHeader) bands() (int, bool) {
	switch h.ColorType {
	case pngGray:
		return 1, true
	case pngGrayAlpha:
		return 2, true
	case pngTrueColor:
		return 3, true
	case pngPaletted:
		if h.HasTRNS {
			return 4, true
		}
		return 3, true
	case pngTrueAlpha:
		return 4, true
	default:
		return 0, false
	}
}

func (h pngHeader) gray() bool {
	return h.ColorType == pngGray || h.ColorType == pngGrayAlpha
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package backend

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

var jfifHeader = []byte("JFIF\x00")

// JFIF density units.
const (
	jfifAspectOnly = 0
	jfifPerInch    = 1
	jfifPerCM      = 2
)

type jfifDensity struct {
	Unit int
	X    uint16
	Y    uint16
}

// scanJFIF walks JPEG markers up to the first scan and returns the APP0
// JFIF density, if present.
func scanJFIF(rs io.ReadSeeker) (jfifDensity, bool, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return jfifDensity{}, false, err
	}
	br := bufio.NewReader(rs)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return jfifDensity{}, false, err
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return jfifDensity{}, false, fmt.Errorf("invalid JPEG SOI")
	}

	for {
		markerPrefix, err := br.ReadByte()
		if err != nil {
			return jfifDensity{}, false, err
		}
		for markerPrefix != 0xff {
			markerPrefix, err = br.ReadByte()
			if err != nil {
				return jfifDensity{}, false, err
			}
		}

		marker, err := br.ReadByte()
		if err != nil {
			return jfifDensity{}, false, err
		}
		for marker == 0xff {
			marker, err = br.ReadByte()
			if err != nil {
				return jfifDensity{}, false, err
			}
		}

		if marker == 0xd9 || marker == 0xda { // EOI, SOS
			return jfifDensity{}, false, nil
		}
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return jfifDensity{}, false, err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return jfifDensity{}, false, fmt.Errorf("invalid JPEG segment length")
		}
		payloadLen := segLen - 2

		if marker != 0xe0 {
			if _, err := io.CopyN(io.Discard, br, int64(payloadLen)); err != nil {
				return jfifDensity{}, false, err
			}
			continue
		}

		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(br, payload); err != nil {
			return jfifDensity{}, false, err
		}
		// JFIF\0, version(2), units(1), Xdensity(2), Ydensity(2)
		if !hasPrefix(payload, jfifHeader) || len(payload) < 12 {
			continue
		}
		d := jfifDensity{
			Unit: int(payload[7]),
			X:    binary.BigEndian.Uint16(payload[8:10]),
			Y:    binary.BigEndian.Uint16(payload[10:12]),
		}
		if d.Unit == jfifAspectOnly || d.X == 0 || d.Y == 0 {
			return jfifDensity{}, false, nil
		}
		return d, true, nil
	}
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}

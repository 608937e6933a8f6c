package imgutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0}, KindJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}, KindPNG},
		{"tiff le", []byte{0x49, 0x49, 0x2a, 0x00, 8, 0, 0, 0}, KindTIFF},
		{"gif", []byte("GIF89a\x01\x00"), KindGIF},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBP"), KindWebP},
		{"riff not webp", []byte("RIFF\x10\x00\x00\x00WAVE"), KindUnknown},
		{"bmp", []byte("BM\x00\x00\x00\x00\x00\x00"), KindBMP},
		{"qoi", []byte("qoif\x00\x00\x00\x01"), KindQOI},
		{"text", []byte("hello world!"), KindUnknown},
	}

	for _, tc := range cases {
		got, err := DetectHeader(tc.header)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDetectHeaderTooShort(t *testing.T) {
	if _, err := DetectHeader([]byte{0xff}); err == nil {
		t.Fatal("expected error for one-byte header")
	}
}

func TestSniffReaderShortInput(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte{0xff, 0xd8, 0xff}))
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindJPEG {
		t.Fatalf("got %s, want jpeg", kind)
	}
}

func TestSniffFileMissing(t *testing.T) {
	if _, err := SniffFile(filepath.Join(t.TempDir(), "missing.png")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestResolutionConversions(t *testing.T) {
	if got := PerInchToPerMM(25.4); got != 1 {
		t.Errorf("PerInchToPerMM(25.4) = %v", got)
	}
	if got := PerCMToPerMM(100); got != 10 {
		t.Errorf("PerCMToPerMM(100) = %v", got)
	}
}

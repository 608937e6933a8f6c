package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func writeTestPNG(t *testing.T, path string, level png.CompressionLevel) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 48, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 5), G: uint8(y * 7), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// resetFlags puts every flag of the command tree back to its default so
// one test's arguments never leak into the next.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("reset --%s: %v", f.Name, err)
		}
		f.Changed = false
	}
	for _, c := range []*cobra.Command{rootCmd, infoCmd, optimizeCmd} {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	t.Cleanup(func() { resetFlags(t) })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInfoPrintsIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	writeTestPNG(t, path, png.DefaultCompression)

	out, err := execute(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "\n    \"width\": 48") {
		t.Fatalf("expected 4-space indented width, got:\n%s", out)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got["height"] != float64(32) || got["type"] != "png" {
		t.Fatalf("unexpected info: %v", got)
	}
	if _, ok := got["grayscale"]; ok {
		t.Fatal("grayscale should be omitted without --detect-gray")
	}
}

func TestRootWithoutSubcommandRunsInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	writeTestPNG(t, path, png.DefaultCompression)

	out, err := execute(t, path)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if !strings.Contains(out, `"format": "uchar"`) {
		t.Fatalf("expected info output, got:\n%s", out)
	}
}

func TestInfoRequiresFile(t *testing.T) {
	_, err := execute(t, "info")
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestInfoMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.jpg")
	_, err := execute(t, "info", missing)
	if err == nil || err.Error() != "file not found: "+missing {
		t.Fatalf("expected file not found, got %v", err)
	}
}

func TestOptimizeSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	writeTestPNG(t, path, png.NoCompression)
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "optimize", "--workdir", dir, path)
	if err != nil {
		t.Fatalf("optimize: %v\n%s", err, out)
	}
	if !strings.Contains(out, "replaced") {
		t.Fatalf("expected a replaced result, got:\n%s", out)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if after.Size() >= before.Size() {
		t.Fatalf("file did not shrink: %d -> %d", before.Size(), after.Size())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("work files left behind: %v", entries)
	}
}

func TestOptimizeRejectsBadQuality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	writeTestPNG(t, path, png.DefaultCompression)

	_, err := execute(t, "optimize", "--quality", "0", path)
	if err == nil || !strings.Contains(err.Error(), "--quality") {
		t.Fatalf("expected quality error, got %v", err)
	}
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	writeTestPNG(t, path, png.DefaultCompression)

	out, err := execute(t, "info", "--detect-gray", path)
	if err != nil {
		t.Fatalf("info --detect-gray: %v", err)
	}
	if !strings.Contains(out, `"grayscale": false`) {
		t.Fatalf("expected grayscale field, got:\n%s", out)
	}

	out, err = execute(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if strings.Contains(out, "grayscale") {
		t.Fatalf("--detect-gray leaked into the next run:\n%s", out)
	}
}

func TestOptimizeSingleOtherTypeIsKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anim.gif")
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.Black, color.White})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gif.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := execute(t, "optimize", "--workdir", dir, path)
	if err != nil {
		t.Fatalf("optimize: %v\n%s", err, out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "anim.gif") {
		t.Fatalf("expected the gif to be reported as kept, got:\n%s", out)
	}
}

// Package grayscale decides whether the colors sampled from an image are
// close enough to achromatic for the image to be stored as grayscale.
package grayscale

import (
	"strconv"
	"strings"
)

const (
	// DefaultDelta is the channel difference below which a pixel still
	// counts as gray.
	DefaultDelta = 30
	// DefaultBudget is how many colorful pixels are tolerated.
	DefaultBudget = 5
)

// Color is an 8-bit RGB color as enumerated from an image.
type Color struct {
	R, G, B     uint8
	Transparent bool
}

// Classifier holds the policy used by IsGrayscale. The zero value uses
// DefaultDelta and DefaultBudget; any other value is taken as given, so a
// Budget of 0 means a single colorful pixel makes the image color.
type Classifier struct {
	Delta  int
	Budget int
}

// Default returns a Classifier with the default policy.
func Default() Classifier {
	return Classifier{Delta: DefaultDelta, Budget: DefaultBudget}
}

func (c Classifier) policy() (delta, budget int) {
	if c == (Classifier{}) {
		return DefaultDelta, DefaultBudget
	}
	return c.Delta, c.Budget
}

// IsGrayscale reports whether colors contains at most Budget colorful
// entries. Transparent entries are ignored. It stops at the first entry
// past the budget.
func (c Classifier) IsGrayscale(colors []Color) bool {
	delta, budget := c.policy()
	colorful := 0
	for _, col := range colors {
		if col.Transparent || !isColorful(col, delta) {
			continue
		}
		colorful++
		if colorful > budget {
			return false
		}
	}
	return true
}

// IsGrayscaleSamples is IsGrayscale over textual samples. Samples that do
// not parse are ignored, as are fully transparent ones.
func (c Classifier) IsGrayscaleSamples(samples []string) bool {
	delta, budget := c.policy()
	colorful := 0
	for _, s := range samples {
		col, ok := ParseSample(s)
		if !ok || col.Transparent || !isColorful(col, delta) {
			continue
		}
		colorful++
		if colorful > budget {
			return false
		}
	}
	return true
}

// IsGrayscale classifies colors with the default policy.
func IsGrayscale(colors []Color) bool {
	return Default().IsGrayscale(colors)
}

func isColorful(c Color, delta int) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	if r == g && g == b {
		return false
	}
	return abs(r-g) >= delta || abs(g-b) >= delta
}

// ParseSample parses "rgb(r,g,b)", "rgba(r,g,b,a)" or a bare "r,g,b".
// Channels must be integers in 0..255. An alpha of 0 marks the color
// transparent.
func ParseSample(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, false
	}

	body := s
	wantAlpha := false
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[len("rgba(") : len(s)-1]
		wantAlpha = true
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[len("rgb(") : len(s)-1]
	}

	parts := strings.Split(body, ",")
	if wantAlpha && len(parts) != 4 || !wantAlpha && len(parts) != 3 {
		return Color{}, false
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return Color{}, false
		}
		channels[i] = uint8(v)
	}

	col := Color{R: channels[0], G: channels[1], B: channels[2]}
	if wantAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 {
			return Color{}, false
		}
		col.Transparent = a == 0
	}
	return col, true
}

// String renders c in the form accepted by ParseSample.
func (c Color) String() string {
	return "rgb(" + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B)) + ")"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package imgutil

// Info is the metadata reported for a single image. Resolution is in
// pixels per millimetre.
type Info struct {
	Bands          int     `json:"bands"`
	Format         string  `json:"format"`
	Grayscale      *bool   `json:"grayscale,omitempty"`
	Height         int     `json:"height"`
	Interpretation string  `json:"interpretation"`
	Type           string  `json:"type"`
	Width          int     `json:"width"`
	XRes           float64 `json:"xres"`
	YRes           float64 `json:"yres"`
}

// Band formats.
const (
	FormatUChar  = "uchar"
	FormatUShort = "ushort"
)

// Interpretations.
const (
	InterpretationBW     = "b-w"
	InterpretationGrey16 = "grey16"
	InterpretationSRGB   = "srgb"
	InterpretationRGB16  = "rgb16"
	InterpretationCMYK   = "cmyk"
)

const mmPerInch = 25.4

// DefaultDPI is assumed when a file carries no resolution metadata.
const DefaultDPI = 72.0

// PerInchToPerMM converts dots per inch to pixels per millimetre.
func PerInchToPerMM(v float64) float64 {
	return v / mmPerInch
}

// PerCMToPerMM converts dots per centimetre to pixels per millimetre.
func PerCMToPerMM(v float64) float64 {
	return v / 10
}

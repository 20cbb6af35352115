package lenstrace

import "fmt"

// CoatingWvl is the fixed reference wavelength, in nm, used for coating
// calculations.
const CoatingWvl = 550.0

// WvlWt pairs a wavelength in nm with its spectral weight.
type WvlWt struct {
	Wvl Real `json:"wvl"`
	Wt  Real `json:"wt"`
}

// WvlSpec defines a spectral region: parallel lists of wavelengths (nm) and
// weights, plus a reference index naming the "center" of the region. The
// wavelength and weight lists always have equal length.
//
// Render colors are derived from the wavelength count, never set directly:
// one wavelength gets a neutral color, two get red/blue, three get
// red/green/blue and anything more is mapped through the spectral RGB model.
type WvlSpec struct {
	Wavelengths  []Real `json:"wavelengths"`
	SpectralWts  []Real `json:"spectralWts"`
	ReferenceWvl int    `json:"referenceWvl"`

	RenderColors []RGB `json:"-"`
}

// NewWvlSpec builds a spectral region from wavelength/weight pairs. With no
// arguments it defaults to a single 550 nm line of unit weight.
func NewWvlSpec(wlwts ...WvlWt) *WvlSpec {
	ws := &WvlSpec{}
	if len(wlwts) == 0 {
		wlwts = []WvlWt{{550.0, 1.0}}
	}
	ws.SetFromList(wlwts)
	return ws
}

// SetFromList replaces the wavelength and weight lists and refreshes the
// render colors.
func (ws *WvlSpec) SetFromList(wlwts []WvlWt) {
	ws.Wavelengths = make([]Real, 0, len(wlwts))
	ws.SpectralWts = make([]Real, 0, len(wlwts))
	for _, ww := range wlwts {
		ws.Wavelengths = append(ws.Wavelengths, ww.Wvl)
		ws.SpectralWts = append(ws.SpectralWts, ww.Wt)
	}
	ws.CalcColors()
}

// CentralWvl returns the wavelength at the reference index.
func (ws *WvlSpec) CentralWvl() Real {
	return ws.Wavelengths[ws.ReferenceWvl]
}

// Wavelength resolves a wavelength index, returning an error when it is out
// of range.
func (ws *WvlSpec) Wavelength(wi int) (Real, error) {
	if wi < 0 || wi >= len(ws.Wavelengths) {
		return 0, fmt.Errorf("wavelength index %d out of range [0,%d)", wi, len(ws.Wavelengths))
	}
	return ws.Wavelengths[wi], nil
}

// Add appends one wavelength/weight pair, keeping the parallel lists in step.
func (ws *WvlSpec) Add(wvl, wt Real) {
	ws.Wavelengths = append(ws.Wavelengths, wvl)
	ws.SpectralWts = append(ws.SpectralWts, wt)
	ws.CalcColors()
}

// Fixed palettes for small wavelength counts.
var (
	colorNeutral = RGB{0, 0, 0}
	colorRed     = RGB{1, 0, 0}
	colorGreen   = RGB{0, 1, 0}
	colorBlue    = RGB{0, 0, 1}
)

// CalcColors rebuilds the per-wavelength display colors. The assignment
// depends only on the wavelength count; spectral weights play no part.
func (ws *WvlSpec) CalcColors() {
	ws.RenderColors = ws.RenderColors[:0]
	switch len(ws.Wavelengths) {
	case 1:
		ws.RenderColors = append(ws.RenderColors, colorNeutral)
	case 2:
		ws.RenderColors = append(ws.RenderColors, colorRed, colorBlue)
	case 3:
		ws.RenderColors = append(ws.RenderColors, colorRed, colorGreen, colorBlue)
	default:
		for _, w := range ws.Wavelengths {
			ws.RenderColors = append(ws.RenderColors, WvlToRGBFunc(w))
		}
	}
}

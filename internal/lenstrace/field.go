package lenstrace

import "fmt"

// Field is a single field point. X and Y are either angles in degrees or
// heights in system units, depending on the owning FieldSpec's type.
//
// VUX/VLX/VUY/VLY are linear vignetting fractions for the upper/lower halves
// of the pupil along each axis. Wt is the weight used for polychromatic and
// through-focus averaging.
//
// A Field also carries two derived caches written by the OpticalSpecs tracing
// operations: the chief ray traced through the pupil center and the reference
// sphere built from it. Both are valid only for the wavelength they were
// computed at and are cleared whenever the field moves or the system geometry
// changes.
type Field struct {
	X Real `json:"x"`
	Y Real `json:"y"`

	VUX Real `json:"vux,omitempty"`
	VLX Real `json:"vlx,omitempty"`
	VUY Real `json:"vuy,omitempty"`
	VLY Real `json:"vly,omitempty"`

	Wt Real `json:"wt"`

	// caches, never serialized
	chiefRay  *ChiefRayPkg
	refSphere *RefSpherePkg
}

// NewField returns a field point with unit weight and no vignetting.
func NewField(x, y Real) *Field {
	return &Field{X: x, Y: y, Wt: 1.0}
}

func (f *Field) String() string {
	return fmt.Sprintf("%g, %g", f.X, f.Y)
}

// Update invalidates the cached chief ray and reference sphere. It must be
// called whenever the field position or the geometry they were computed
// against changes.
func (f *Field) Update() {
	f.chiefRay = nil
	f.refSphere = nil
}

// ChiefRay returns the cached chief ray package, or nil if none is cached.
func (f *Field) ChiefRay() *ChiefRayPkg { return f.chiefRay }

// RefSphere returns the cached reference sphere package, or nil.
func (f *Field) RefSphere() *RefSpherePkg { return f.refSphere }

// ApplyVignetting scales a raw pupil coordinate by the per-quadrant
// vignetting factors. Each axis is handled independently: the lower factor
// applies for coordinates < 0, the upper factor for coordinates >= 0
// (the pupil center belongs to the upper half). A zero factor leaves the
// coordinate untouched. Values are not clamped, so factors outside [0,1]
// inflate rather than reduce the pupil.
func (f *Field) ApplyVignetting(p Pupil) Pupil {
	vig := p
	if p.X < 0.0 {
		if f.VLX != 0.0 {
			vig.X *= 1.0 - f.VLX
		}
	} else {
		if f.VUX != 0.0 {
			vig.X *= 1.0 - f.VUX
		}
	}
	if p.Y < 0.0 {
		if f.VLY != 0.0 {
			vig.Y *= 1.0 - f.VLY
		}
	} else {
		if f.VUY != 0.0 {
			vig.Y *= 1.0 - f.VUY
		}
	}
	return vig
}

package lenstrace

import (
	"errors"
	"fmt"
	"math"
)

// FirstOrderData is the paraxial summary of a system at one wavelength.
// Distances follow the sequential sign convention: EnpDist is measured from
// the first optical surface, ExpDist from the last one, and ObjDist is the
// object-gap thickness.
type FirstOrderData struct {
	ObjDist Real
	ImgDist Real

	EFL Real
	FNO Real

	EnpDist   Real
	EnpRadius Real
	ExpDist   Real
	ExpRadius Real

	// M is the transverse magnification between the conjugate planes.
	// Red is the image-to-object reduction, chosen so that an object point
	// equals -Red times the requested image point.
	M   Real
	Red Real

	NObj Real
	NImg Real
}

// paraxial ray state per surface: height and reduced slope n*u.
type ynuRay struct {
	y  []Real // height at each surface (index by surface)
	wk Real   // reduced slope after the last optical surface
	yk Real   // height at the last optical surface
}

// ynuTrace runs a reduced-angle paraxial trace from the first optical
// surface through the last one. y1 and w0 are the height and reduced slope
// arriving at surface 1.
func ynuTrace(sm SequenceModel, wvl, y1, w0 Real) ynuRay {
	nSurf := sm.NumSurfaces()
	r := ynuRay{y: make([]Real, nSurf)}
	y, w := y1, w0
	r.y[1] = y
	for i := 1; i <= nSurf-2; i++ {
		nBefore := sm.RIndex(wvl, i-1)
		nAfter := sm.RIndex(wvl, i)
		pwr := sm.Curvature(i) * (nAfter - nBefore)
		w -= y * pwr
		if i < nSurf-2 {
			y += sm.GapThickness(i) * w / nAfter
			r.y[i+1] = y
		}
	}
	r.yk = y
	r.wk = w
	return r
}

// ComputeFirstOrder solves the paraxial properties of the sequence for the
// given stop surface and wavelength. The pupil spec is needed to size the
// entrance pupil from whichever aperture convention it carries.
func ComputeFirstOrder(sm SequenceModel, stop int, wvl Real, pupil *PupilSpec) (*FirstOrderData, error) {
	nSurf := sm.NumSurfaces()
	if nSurf < 3 {
		return nil, errors.New("first order: model needs at least one optical surface")
	}
	if stop < 1 || stop > nSurf-2 {
		return nil, fmt.Errorf("first order: stop surface %d out of range [1,%d]", stop, nSurf-2)
	}

	n0 := sm.RIndex(wvl, 0)
	nImg := sm.RIndex(wvl, sm.NumGaps()-1)
	objDist := sm.GapThickness(0)

	// basis rays at the first surface: a = (y=1, w=0), b = (y=0, w=1)
	a := ynuTrace(sm, wvl, 1, 0)
	b := ynuTrace(sm, wvl, 0, 1)

	power := -a.wk
	if power == 0 {
		return nil, errors.New("first order: system is afocal")
	}
	efl := 1.0 / power

	// entrance pupil: axis crossing of the ray aimed at the stop center
	as, bs := a.y[stop], b.y[stop]
	if as == 0 {
		return nil, errors.New("first order: degenerate stop imaging")
	}
	enpDist := n0 * bs / as

	// marginal ray slope at the object, per aperture convention.
	// An axial object ray with slope u0 reaches surface 1 as the combination
	// objDist*u0 * a + n0*u0 * b.
	ca := objDist*a.wk + n0*b.wk
	var u0, enpRadius Real
	switch pupil.Type {
	case EPD:
		enpRadius = pupil.Value / 2
		u0 = enpRadius / (objDist + enpDist)
	case NAO:
		u0 = pupil.Value / n0
		enpRadius = u0 * (objDist + enpDist)
	case FNO:
		if pupil.Value == 0 || ca == 0 {
			return nil, errors.New("first order: cannot size pupil from FNO")
		}
		u0 = (nImg * -1 / (2 * pupil.Value)) / ca
		enpRadius = u0 * (objDist + enpDist)
	case NA:
		if ca == 0 {
			return nil, errors.New("first order: cannot size pupil from NA")
		}
		// a converging image cone of aperture NA has image slope -NA/nImg
		u0 = -pupil.Value / ca
		enpRadius = u0 * (objDist + enpDist)
	default:
		return nil, fmt.Errorf("first order: unknown pupil type %v", pupil.Type)
	}

	wkAx := u0 * ca
	ykAx := u0 * (objDist*a.yk + n0*b.yk)
	if wkAx == 0 {
		return nil, errors.New("first order: telecentric marginal ray, no image distance")
	}
	imgDist := -ykAx * nImg / wkAx
	ukImg := wkAx / nImg
	m := (n0 * u0) / wkAx

	// exit pupil: image of the stop in image space via the chief basis ray
	yr := as*b.yk - bs*a.yk
	wr := as*b.wk - bs*a.wk
	if wr == 0 {
		return nil, errors.New("first order: degenerate exit pupil")
	}
	expDist := -yr * nImg / wr
	expRadius := math.Abs(ykAx + expDist*ukImg)

	fod := &FirstOrderData{
		ObjDist:   objDist,
		ImgDist:   imgDist,
		EFL:       efl,
		FNO:       -1 / (2 * ukImg),
		EnpDist:   enpDist,
		EnpRadius: enpRadius,
		ExpDist:   expDist,
		ExpRadius: expRadius,
		M:         m,
		Red:       -1 / m,
		NObj:      n0,
		NImg:      nImg,
	}
	DebugLog("first order: efl=%.6g fno=%.4g enp=(%.6g, r=%.6g) exp=(%.6g, r=%.6g) m=%.6g",
		fod.EFL, fod.FNO, fod.EnpDist, fod.EnpRadius, fod.ExpDist, fod.ExpRadius, fod.M)
	return fod, nil
}

package lenstrace

import (
	"errors"
	"fmt"
	"math"
)

// DefaultEps is the numerical tolerance handed to the ray-trace primitive
// when the caller does not supply one.
const DefaultEps = 1.0e-12

// OpticalSpecs is the container for optical usage information: it owns the
// aperture, field of view, spectrum and focus definitions, maintains the
// cached first-order data for the current system, and exposes the model
// ray-tracing operations in terms of relative pupil and field coordinates.
type OpticalSpecs struct {
	Spectral    *WvlSpec    `json:"spectralRegion"`
	Pupil       *PupilSpec  `json:"pupil"`
	FieldOfView *FieldSpec  `json:"fieldOfView"`
	Defocus     *FocusRange `json:"defocus"`

	// ParaxData is derived from the sequence model by UpdateModel. It is
	// never serialized: it only describes the system it was computed from.
	ParaxData *FirstOrderData `json:"-"`
}

// NewOpticalSpecs returns a spec with a single 550 nm line, a unit entrance
// pupil, one on-axis field and no defocus.
func NewOpticalSpecs() *OpticalSpecs {
	return &OpticalSpecs{
		Spectral:    NewWvlSpec(),
		Pupil:       NewPupilSpec(EPD, 1.0),
		FieldOfView: NewFieldSpec(ObjectAngle, 0.0),
		Defocus:     NewFocusRange(0.0),
	}
}

// UpdateModel refreshes the derived state of the sub-specs and recomputes
// the first-order data against the given sequence model. It must run before
// any trace operation, and again after any surface or gap edit.
func (osp *OpticalSpecs) UpdateModel(sm SequenceModel) error {
	osp.Pupil.UpdateModel()
	osp.FieldOfView.UpdateModel()

	fod, err := ComputeFirstOrderFunc(sm, sm.StopSurface(), osp.Spectral.CentralWvl(), osp.Pupil)
	if err != nil {
		return fmt.Errorf("update model: %w", err)
	}
	osp.ParaxData = fod
	return nil
}

// LookupFldWvlFocus resolves symbolic indices into a concrete field,
// wavelength (nm) and absolute focus. A negative wavelength index selects
// the central wavelength; fr is the normalized focus parameter (0 for
// nominal focus). Out-of-range indices are an error.
func (osp *OpticalSpecs) LookupFldWvlFocus(fi, wi int, fr Real) (*Field, Real, Real, error) {
	if fi < 0 || fi >= len(osp.FieldOfView.Fields) {
		return nil, 0, 0, fmt.Errorf("field index %d out of range [0,%d)", fi, len(osp.FieldOfView.Fields))
	}
	wvl := osp.Spectral.CentralWvl()
	if wi >= 0 {
		var err error
		wvl, err = osp.Spectral.Wavelength(wi)
		if err != nil {
			return nil, 0, 0, err
		}
	}
	return osp.FieldOfView.Fields[fi], wvl, osp.Defocus.GetFocus(fr), nil
}

// ObjCoords converts a field point into a 3D object-space point according to
// the field-of-view convention: angles project through the entrance pupil,
// image heights map back through the paraxial reduction, object heights are
// taken directly. The angle and image-height conventions need the cached
// first-order data, so UpdateModel must have run.
func (osp *OpticalSpecs) ObjCoords(fld *Field) (Point3, error) {
	fod := osp.ParaxData
	if fod == nil {
		return Point3{}, errors.New("obj coords: no first-order data; call UpdateModel first")
	}
	switch osp.FieldOfView.Type {
	case ObjectAngle:
		d := -(fod.ObjDist + fod.EnpDist)
		return Point3{
			X: math.Tan(deg2rad(fld.X)) * d,
			Y: math.Tan(deg2rad(fld.Y)) * d,
		}, nil
	case ImageHeight:
		return Point3{X: -fod.Red * fld.X, Y: -fod.Red * fld.Y}, nil
	default: // ObjectHeight
		return Point3{X: fld.X, Y: fld.Y}, nil
	}
}

// TraceBase is the atomic trace operation every higher-level sweep bottoms
// out in. It applies the field's vignetting to the raw pupil coordinate,
// aims from the object point at the vignetted entrance-pupil point, and
// hands the resulting ray to the trace primitive.
func (osp *OpticalSpecs) TraceBase(sm SequenceModel, pupil Pupil, fld *Field, wvl, eps Real) (RayPkg, error) {
	if osp.ParaxData == nil {
		return RayPkg{}, errors.New("trace: no first-order data; call UpdateModel first")
	}
	fod := osp.ParaxData
	vig := fld.ApplyVignetting(pupil)
	pt1 := Point3{
		X: fod.EnpRadius * vig.X,
		Y: fod.EnpRadius * vig.Y,
		Z: fod.ObjDist + fod.EnpDist,
	}
	pt0, err := osp.ObjCoords(fld)
	if err != nil {
		return RayPkg{}, err
	}
	dir := pt1.Sub(pt0)
	length := dir.Len()
	if length == 0 {
		return RayPkg{}, errors.New("trace: object point coincides with entrance pupil point")
	}
	return TraceRayFunc(sm, pt0, dir.Mul(1/length), wvl, eps)
}

// Trace resolves field and wavelength indices and traces one ray at nominal
// focus.
func (osp *OpticalSpecs) Trace(sm SequenceModel, pupil Pupil, fi, wi int, eps Real) (RayPkg, error) {
	fld, wvl, _, err := osp.LookupFldWvlFocus(fi, wi, 0.0)
	if err != nil {
		return RayPkg{}, err
	}
	return osp.TraceBase(sm, pupil, fld, wvl, eps)
}

// TraceWithOPD traces one ray and evaluates its wavefront aberration against
// the field's reference sphere, refreshing the field's chief-ray and
// reference-sphere caches first when they are missing or were computed at a
// different wavelength or focus.
func (osp *OpticalSpecs) TraceWithOPD(sm SequenceModel, pupil Pupil, fld *Field, wvl, foc, eps Real) (RayPkg, Real, error) {
	ray, err := osp.TraceBase(sm, pupil, fld, wvl, eps)
	if err != nil {
		return ray, 0, err
	}
	if fld.chiefRay == nil || fld.chiefRay.Ray.Wvl != wvl ||
		fld.refSphere == nil || fld.refSphere.Wvl != wvl || fld.refSphere.Foc != foc {
		rsp, crp, err := osp.SetupPupilCoords(sm, fld, wvl, foc, fld.chiefRay, nil)
		if err != nil {
			return ray, 0, err
		}
		fld.chiefRay = crp
		fld.refSphere = rsp
	}
	opd, err := WaveAbrFunc(sm, fld, wvl, ray)
	if err != nil {
		return ray, 0, err
	}
	return ray, opd, nil
}

// TraceChiefRay traces the pupil-center ray for a field and transfers it to
// the exit pupil plane. The focus parameter is carried for callers that
// build a focus-shifted reference sphere from the result; the chief ray
// itself does not depend on it.
func (osp *OpticalSpecs) TraceChiefRay(sm SequenceModel, fld *Field, wvl, foc Real) (*ChiefRayPkg, error) {
	ray, err := osp.TraceBase(sm, Pupil{0, 0}, fld, wvl, DefaultEps)
	if err != nil {
		return nil, fmt.Errorf("chief ray: %w", err)
	}
	if len(ray.Ray) < 2 {
		return nil, errors.New("chief ray: trace returned no image-side segment")
	}
	expSeg, err := TransferToExitPupil(ray.Ray[len(ray.Ray)-2], osp.ParaxData.ExpDist)
	if err != nil {
		return nil, fmt.Errorf("chief ray: %w", err)
	}
	return &ChiefRayPkg{Ray: ray, ExpSeg: expSeg}, nil
}

// makeRefSphere builds the reference-sphere package for a chief ray. The
// sphere is centered from the chief ray's exit-pupil crossing toward the
// image point, axially shifted by the image gap plus the focus offset.
func (osp *OpticalSpecs) makeRefSphere(sm SequenceModel, crp *ChiefRayPkg, wvl, foc Real, imagePt *Point3) (*RefSpherePkg, error) {
	cr := crp.Ray
	imgPt := cr.Ray[len(cr.Ray)-1].Pt
	if imagePt != nil {
		imgPt = *imagePt
	}

	imgDist := sm.GapThickness(sm.NumGaps() - 1)
	shifted := Point3{imgPt.X, imgPt.Y, imgPt.Z + imgDist + foc}

	vec := shifted.Sub(crp.ExpSeg.Pt)
	radius := vec.Len()
	if radius == 0 {
		return nil, errors.New("reference sphere: image point coincides with exit pupil center")
	}

	return &RefSpherePkg{
		Sphere: RefSphere{
			ImagePt: imgPt,
			ExpPt:   crp.ExpSeg.Pt,
			ExpDist: crp.ExpSeg.Dist,
			RefDir:  vec.Norm(),
			Radius:  radius,
		},
		Fod:  osp.ParaxData,
		NObj: sm.RIndex(wvl, 0),
		NImg: sm.RIndex(wvl, sm.NumGaps()-1),
		ZDir: sm.ZDir(sm.NumSurfaces() - 1),
		Wvl:  wvl,
		Foc:  foc,
	}, nil
}

// SetupPupilCoords produces the reference-sphere and chief-ray pair for a
// field. A supplied chief-ray package is reused only when it was traced at
// the requested wavelength; otherwise it is silently retraced. Passing a
// non-nil imagePt overrides the chief ray's image point as the sphere
// anchor.
func (osp *OpticalSpecs) SetupPupilCoords(sm SequenceModel, fld *Field, wvl, foc Real,
	crp *ChiefRayPkg, imagePt *Point3) (*RefSpherePkg, *ChiefRayPkg, error) {

	if crp == nil || crp.Ray.Wvl != wvl {
		var err error
		crp, err = osp.TraceChiefRay(sm, fld, wvl, foc)
		if err != nil {
			return nil, nil, err
		}
	}
	rsp, err := osp.makeRefSphere(sm, crp, wvl, foc, imagePt)
	if err != nil {
		return nil, nil, err
	}
	return rsp, crp, nil
}

// SetupCanonicalCoords is the cache-backed variant of SetupPupilCoords: the
// chief ray and reference sphere are read from and written to the field
// itself, so repeated calls with unchanged geometry do not retrace.
func (osp *OpticalSpecs) SetupCanonicalCoords(sm SequenceModel, fld *Field, wvl, foc Real,
	imagePt *Point3) (*RefSpherePkg, *ChiefRayPkg, error) {

	if fld.chiefRay == nil || fld.chiefRay.Ray.Wvl != wvl {
		crp, err := osp.TraceChiefRay(sm, fld, wvl, foc)
		if err != nil {
			return nil, nil, err
		}
		fld.chiefRay = crp
	}
	rsp, err := osp.makeRefSphere(sm, fld.chiefRay, wvl, foc, imagePt)
	if err != nil {
		return nil, nil, err
	}
	fld.refSphere = rsp
	return rsp, fld.chiefRay, nil
}

package lenstrace

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// edgeAngle is the field angle whose tangent is 0.1: at a 100 unit object
// distance with the pupil at the lens it maps to a -10 object height.
var edgeAngle = math.Atan(0.1) * 180 / math.Pi

// thinLensSpecs pairs the thin lens with a two-field, single-line usage
// spec, first-order data already computed.
func thinLensSpecs(t *testing.T) (*SeqModel, *OpticalSpecs) {
	t.Helper()
	sm := thinLens()
	osp := NewOpticalSpecs()
	osp.Pupil = NewPupilSpec(EPD, 20)
	osp.FieldOfView = NewFieldSpec(ObjectAngle, 0, edgeAngle)
	require.NoError(t, osp.UpdateModel(sm))
	return sm, osp
}

// countTraces swaps the trace entry point for a counting wrapper and
// restores it when the test finishes.
func countTraces(t *testing.T) *int {
	t.Helper()
	count := 0
	orig := TraceRayFunc
	TraceRayFunc = func(sm SequenceModel, p0 Point3, d0 Vector3, wvl, eps Real) (RayPkg, error) {
		count++
		return orig(sm, p0, d0, wvl, eps)
	}
	t.Cleanup(func() { TraceRayFunc = orig })
	return &count
}

func TestUpdateModelComputesFirstOrder(t *testing.T) {
	_, osp := thinLensSpecs(t)
	require.NotNil(t, osp.ParaxData)
	assert.InDelta(t, 50.0, osp.ParaxData.EFL, 1e-12)
	assert.InDelta(t, 10.0, osp.ParaxData.EnpRadius, 1e-12)
	assert.Equal(t, []string{"axis", "edge"}, osp.FieldOfView.IndexLabels)
}

func TestLookupFldWvlFocus(t *testing.T) {
	_, osp := thinLensSpecs(t)
	osp.Spectral = NewWvlSpec(WvlWt{486.1, 0.5}, WvlWt{587.6, 1.0}, WvlWt{656.3, 0.5})
	osp.Spectral.ReferenceWvl = 1
	osp.Defocus = &FocusRange{Infocus: 0.2, Defocus: 1.0}

	fld, wvl, foc, err := osp.LookupFldWvlFocus(1, -1, 0.5)
	require.NoError(t, err)
	assert.Same(t, osp.FieldOfView.Fields[1], fld)
	assert.Equal(t, 587.6, wvl) // negative index selects the central wavelength
	assert.InDelta(t, 0.7, foc, 1e-15)

	_, wvl, _, err = osp.LookupFldWvlFocus(0, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 656.3, wvl)

	_, _, _, err = osp.LookupFldWvlFocus(2, 0, 0)
	assert.Error(t, err, "field index out of range")
	_, _, _, err = osp.LookupFldWvlFocus(0, 3, 0)
	assert.Error(t, err, "wavelength index out of range")
}

func TestObjCoordsConventions(t *testing.T) {
	_, osp := thinLensSpecs(t)

	// angles project through the entrance pupil
	pt, err := osp.ObjCoords(osp.FieldOfView.Fields[1])
	require.NoError(t, err)
	assert.InDelta(t, -10.0, pt.Y, 1e-12)
	assert.InDelta(t, 0.0, pt.X, 1e-12)

	// the on-axis field maps to the origin
	pt, err = osp.ObjCoords(osp.FieldOfView.Fields[0])
	require.NoError(t, err)
	assert.Equal(t, Point3{}, pt)

	// object heights pass through unchanged
	osp.FieldOfView.Type = ObjectHeight
	pt, err = osp.ObjCoords(NewField(3, -4))
	require.NoError(t, err)
	assert.Equal(t, Point3{X: 3, Y: -4}, pt)

	// image heights map back through the reduction (Red = 1 at 1:1)
	osp.FieldOfView.Type = ImageHeight
	pt, err = osp.ObjCoords(NewField(0, 10))
	require.NoError(t, err)
	assert.InDelta(t, -10.0, pt.Y, 1e-12)
}

func TestObjCoordsRequiresFirstOrder(t *testing.T) {
	// a freshly built spec has no first-order data yet; every convention
	// reports that instead of tracing from garbage
	for _, typ := range []FieldType{ObjectAngle, ObjectHeight, ImageHeight} {
		osp := NewOpticalSpecs()
		osp.FieldOfView.Type = typ
		_, err := osp.ObjCoords(NewField(0, 1))
		assert.ErrorContains(t, err, "first-order", "type %v", typ)
	}
}

func TestTraceBaseRequiresFirstOrder(t *testing.T) {
	sm := thinLens()
	osp := NewOpticalSpecs()
	_, err := osp.TraceBase(sm, Pupil{}, NewField(0, 0), 550, DefaultEps)
	assert.ErrorContains(t, err, "first-order")
}

func TestTraceAxialRay(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	pkg, err := osp.Trace(sm, Pupil{0, 0}, 0, -1, DefaultEps)
	require.NoError(t, err)
	require.Len(t, pkg.Ray, 4)

	img := pkg.Ray[len(pkg.Ray)-1].Pt
	assert.InDelta(t, 0.0, img.X, 1e-12)
	assert.InDelta(t, 0.0, img.Y, 1e-12)
}

func TestTraceMarginalRayConverges(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	pkg, err := osp.TraceBase(sm, Pupil{0, 1}, osp.FieldOfView.Fields[0], 550, DefaultEps)
	require.NoError(t, err)

	// the marginal ray lands near but, with spherical aberration, not
	// exactly at the paraxial image point
	img := pkg.Ray[len(pkg.Ray)-1].Pt
	assert.Less(t, math.Abs(img.Y), 2.0)
	assert.NotZero(t, img.Y)
}

func TestTraceBaseAppliesVignetting(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	fld := osp.FieldOfView.Fields[0]

	clear, err := osp.TraceBase(sm, Pupil{0, 0.5}, fld, 550, DefaultEps)
	require.NoError(t, err)

	fld.VUY = 0.5
	vig, err := osp.TraceBase(sm, Pupil{0, 1}, fld, 550, DefaultEps)
	require.NoError(t, err)

	// py=1 vignetted by 0.5 aims at the same pupil point as py=0.5 clear
	assert.InDelta(t, clear.Ray[1].Pt.Y, vig.Ray[1].Pt.Y, 1e-12)
}

func TestTraceChiefRayMatchesCenterPupil(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	fld := osp.FieldOfView.Fields[1]

	crp, err := osp.TraceChiefRay(sm, fld, 550, 0)
	require.NoError(t, err)

	ray, err := osp.TraceBase(sm, Pupil{0, 0}, fld, 550, DefaultEps)
	require.NoError(t, err)

	if diff := cmp.Diff(ray, crp.Ray, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("chief ray differs from the center-pupil trace:\n%s", diff)
	}
}

func TestSetupPupilCoords(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	fld := osp.FieldOfView.Fields[1]

	rsp, crp, err := osp.SetupPupilCoords(sm, fld, 550, 0, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, rsp)
	require.NotNil(t, crp)
	assert.Equal(t, 550.0, rsp.Wvl)
	assert.Positive(t, rsp.Sphere.Radius)
	assert.InDelta(t, 1.0, rsp.Sphere.RefDir.Len(), 1e-12)

	// the pure variant leaves the field caches alone
	assert.Nil(t, fld.ChiefRay())
	assert.Nil(t, fld.RefSphere())

	// a chief ray at the right wavelength is reused without retracing
	count := countTraces(t)
	_, crp2, err := osp.SetupPupilCoords(sm, fld, 550, 0, crp, nil)
	require.NoError(t, err)
	assert.Zero(t, *count)
	assert.Same(t, crp, crp2)

	// a wavelength mismatch forces a silent retrace
	_, crp3, err := osp.SetupPupilCoords(sm, fld, 650, 0, crp, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, *count)
	assert.NotSame(t, crp, crp3)
	assert.Equal(t, 650.0, crp3.Ray.Wvl)
}

func TestSetupCanonicalCoordsCaches(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	fld := osp.FieldOfView.Fields[1]

	count := countTraces(t)
	rsp, crp, err := osp.SetupCanonicalCoords(sm, fld, 550, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, *count)
	assert.Same(t, crp, fld.ChiefRay())
	assert.Same(t, rsp, fld.RefSphere())

	// a second call at the same wavelength reuses the cached chief ray
	_, crp2, err := osp.SetupCanonicalCoords(sm, fld, 550, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, *count)
	assert.Same(t, crp, crp2)

	// invalidating the field forces a retrace
	fld.Update()
	_, _, err = osp.SetupCanonicalCoords(sm, fld, 550, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, *count)
}

func TestTraceWithOPDChiefIsZero(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	for fi, fld := range osp.FieldOfView.Fields {
		_, opd, err := osp.TraceWithOPD(sm, Pupil{0, 0}, fld, 550, 0, DefaultEps)
		require.NoError(t, err, "field %d", fi)
		assert.InDelta(t, 0.0, opd, 1e-9, "field %d", fi)
	}
}

func TestTraceWithOPDFocusShiftRebuildsSphere(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	fld := osp.FieldOfView.Fields[0]

	_, _, err := osp.TraceWithOPD(sm, Pupil{0, 0.5}, fld, 550, 0, DefaultEps)
	require.NoError(t, err)
	first := fld.RefSphere()
	require.NotNil(t, first)
	assert.Equal(t, 0.0, first.Foc)

	// the reference sphere is focus-shifted, so a new focus invalidates it
	_, _, err = osp.TraceWithOPD(sm, Pupil{0, 0.5}, fld, 550, 1.0, DefaultEps)
	require.NoError(t, err)
	second := fld.RefSphere()
	assert.NotSame(t, first, second)
	assert.Equal(t, 1.0, second.Foc)
	assert.NotEqual(t, first.Sphere.Radius, second.Sphere.Radius)
}

func TestTraceWithOPDMarginal(t *testing.T) {
	sm, osp := thinLensSpecs(t)
	fld := osp.FieldOfView.Fields[0]
	_, opd, err := osp.TraceWithOPD(sm, Pupil{0, 0.5}, fld, 550, 0, DefaultEps)
	require.NoError(t, err)
	assert.True(t, isFinite(opd))
	// a singlet has spherical aberration
	assert.Greater(t, math.Abs(opd), 1e-9)
}

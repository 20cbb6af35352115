package lenstrace

import (
	"errors"
	"fmt"
	"math"
)

// Distinguishable trace failures. Bulk sampling operations test for these to
// degrade a single ray to a null marker instead of aborting the sweep.
var (
	ErrRayMiss = errors.New("ray missed surface")
	ErrTIR     = errors.New("total internal reflection")
)

// TraceError wraps a trace failure with the surface index it occurred at.
type TraceError struct {
	Surf int
	Err  error
}

func (e *TraceError) Error() string { return fmt.Sprintf("surface %d: %v", e.Surf, e.Err) }
func (e *TraceError) Unwrap() error { return e.Err }

// reflection & refraction (assume unit I,N)
func reflect3(I, N Vector3) Vector3 {
	return I.Sub(N.Mul(2 * I.Dot(N)))
}

// refract3 bends a unit direction I at a surface with unit normal N.
// eta must be n1/n2 for the interface being crossed. The normal may face
// either way; it is flipped so the incidence cosine is positive.
func refract3(I, N Vector3, eta Real) (Vector3, bool) {
	n := N
	cosi := I.Dot(N)
	if cosi > 0 {
		n = N.Mul(-1)
	} else {
		cosi = -cosi
	}
	if cosi > 1 {
		cosi = 1
	}
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return Vector3{}, false // total internal reflection
	}
	return I.Mul(eta).Add(n.Mul(eta*cosi - math.Sqrt(k))), true
}

// TraceRay propagates a single ray through the surface sequence. p0 is the
// start point in the object plane's frame and d0 the unit direction. It
// returns one RaySeg per surface, with positions local to each surface, plus
// the accumulated optical path.
//
// On failure the error wraps ErrRayMiss or ErrTIR with the surface index;
// the returned package holds the segments traced so far.
func TraceRay(sm SequenceModel, p0 Point3, d0 Vector3, wvl, eps Real) (RayPkg, error) {
	nSurf := sm.NumSurfaces()
	pkg := RayPkg{Ray: make([]RaySeg, 0, nSurf), Wvl: wvl}
	pkg.Ray = append(pkg.Ray, RaySeg{Pt: p0, Dir: d0})

	p := p0 // global frame: z = 0 at the object plane
	d := d0
	z := 0.0
	for i := 1; i < nSurf; i++ {
		z += sm.GapThickness(i - 1)
		local := Point3{p.X, p.Y, p.Z - z}
		t, hit, err := sm.Profile(i).Intersect(local, d, eps, sm.ZDir(i-1))
		if err != nil {
			return pkg, &TraceError{Surf: i, Err: err}
		}
		pkg.Ray[len(pkg.Ray)-1].Dst = t
		pkg.Op += math.Abs(sm.RIndex(wvl, i-1)) * t

		d2 := d
		if i < nSurf-1 { // the image plane does not bend the ray
			switch sm.InteractMode(i) {
			case Reflect:
				d2 = reflect3(d, sm.Profile(i).Normal(hit))
			default:
				n1 := math.Abs(sm.RIndex(wvl, i-1))
				n2 := math.Abs(sm.RIndex(wvl, i))
				var ok bool
				d2, ok = refract3(d, sm.Profile(i).Normal(hit), n1/n2)
				if !ok {
					pkg.Ray = append(pkg.Ray, RaySeg{Pt: hit, Dir: d})
					return pkg, &TraceError{Surf: i, Err: ErrTIR}
				}
			}
		}
		pkg.Ray = append(pkg.Ray, RaySeg{Pt: hit, Dir: d2})

		p = Point3{hit.X, hit.Y, hit.Z + z}
		d = d2
	}
	return pkg, nil
}

// TransferToExitPupil slides a ray segment (local to the last optical
// surface) to the exit pupil plane at expDist from that surface.
func TransferToExitPupil(seg RaySeg, expDist Real) (ExitPupilSeg, error) {
	if seg.Dir.Z == 0 {
		return ExitPupilSeg{}, fmt.Errorf("exit pupil transfer: %w", ErrRayMiss)
	}
	dist := (expDist - seg.Pt.Z) / seg.Dir.Z
	return ExitPupilSeg{
		Pt:   seg.Pt.Add(seg.Dir.Mul(dist)),
		Dir:  seg.Dir,
		Dist: dist,
	}, nil
}

// raySphereDist returns the distance from P along unit D to the nearer
// intersection with the sphere centered at C with radius R.
func raySphereDist(p Point3, d Vector3, c Point3, r Real) (Real, error) {
	v := c.Sub(p)
	b := d.Dot(v)
	disc := b*b - (v.Dot(v) - r*r)
	if disc < 0 {
		return 0, fmt.Errorf("reference sphere: %w", ErrRayMiss)
	}
	return b - math.Sqrt(disc), nil
}

// WaveAbr computes the optical path difference of a traced ray against the
// field's cached reference sphere: the chief ray's optical path to the
// sphere minus the ray's. The chief ray itself therefore evaluates to zero.
// SetupPupilCoords or SetupCanonicalCoords must have populated the field's
// caches for the same wavelength.
func WaveAbr(sm SequenceModel, fld *Field, wvl Real, ray RayPkg) (Real, error) {
	rsp := fld.refSphere
	crp := fld.chiefRay
	if rsp == nil || crp == nil {
		return 0, errors.New("wave abr: field has no reference sphere; set up pupil coords first")
	}
	if rsp.Wvl != wvl {
		return 0, fmt.Errorf("wave abr: reference sphere computed at %g nm, ray traced at %g nm", rsp.Wvl, wvl)
	}
	if len(ray.Ray) < 2 {
		return 0, errors.New("wave abr: ray has no image-side segment")
	}

	// sphere center, in the last optical surface's frame
	ctr := rsp.Sphere.ExpPt.Add(rsp.Sphere.RefDir.Mul(rsp.Sphere.Radius))
	nImg := math.Abs(rsp.NImg)

	pathTo := func(pkg RayPkg) (Real, error) {
		seg := pkg.Ray[len(pkg.Ray)-2]
		s, err := raySphereDist(seg.Pt, seg.Dir, ctr, rsp.Sphere.Radius)
		if err != nil {
			return 0, err
		}
		// back the final gap out of the accumulated path, then walk to the sphere
		return pkg.Op - nImg*seg.Dst + nImg*s, nil
	}

	rayPath, err := pathTo(ray)
	if err != nil {
		return 0, err
	}
	chiefPath, err := pathTo(crp.Ray)
	if err != nil {
		return 0, err
	}
	return chiefPath - rayPath, nil
}

package lenstrace

// InteractMode tags how a surface redirects rays.
type InteractMode int

const (
	// Transmit refracts rays through the surface.
	Transmit InteractMode = iota
	// Reflect mirrors rays at the surface. The gap that follows a mirror is
	// expected to carry a negative thickness and a sign-flipped index, per
	// the usual sequential convention.
	Reflect
)

// Profile is the local shape of one surface: intersection and surface normal
// in the surface's own frame (vertex at the origin, axis along +Z). zDir is
// the propagation sign of the incoming ray.
type Profile interface {
	// Intersect returns the distance along the ray from p to the surface and
	// the intersection point. It fails with ErrRayMiss when the ray cannot
	// reach the surface within the tolerance eps.
	Intersect(p Point3, d Vector3, eps Real, zDir Real) (Real, Point3, error)
	// Normal returns the surface normal at a point on the surface, oriented
	// toward +Z at the vertex.
	Normal(p Point3) Vector3
}

// OpticalMedium is the material filling a gap.
type OpticalMedium interface {
	Name() string
	// RIndex returns the refractive index at a wavelength in nm.
	RIndex(wvl Real) Real
	// Code returns the catalog glass code, or "" for unnamed media.
	Code() string
}

// SequenceModel is the surface/gap sequence consumed by the tracing and
// first-order operations. Surface 0 is the object plane and the last surface
// is the image plane; gap i follows surface i, so there is one less gap than
// surfaces.
type SequenceModel interface {
	NumSurfaces() int
	NumGaps() int
	StopSurface() int

	Profile(i int) Profile
	InteractMode(i int) InteractMode
	OuterDiameter(i int) Real
	Curvature(i int) Real

	GapThickness(i int) Real
	GapMedium(i int) OpticalMedium
	// RIndex returns the signed refractive index in gap i at a wavelength in
	// nm, negative following an odd number of reflections.
	RIndex(wvl Real, i int) Real
	// ZDir returns the propagation sign (+1 or -1) after surface i.
	ZDir(i int) Real

	SurfaceLabels() []string
}

// RaySeg is one per-surface ray sample: the intersection point in the
// surface's local frame, the ray direction after the surface interaction,
// and the geometric distance to the next surface (zero at the image plane).
type RaySeg struct {
	Pt  Point3
	Dir Vector3
	Dst Real
}

// RayPkg is a traced ray: one segment per surface (object plane first, image
// plane last), the accumulated optical path length, and the wavelength the
// ray was traced at.
type RayPkg struct {
	Ray []RaySeg
	Op  Real
	Wvl Real
}

// ExitPupilSeg locates a ray on the exit pupil plane: the intersection
// point, the direction the ray arrived with, and the distance traveled from
// the last optical surface.
type ExitPupilSeg struct {
	Pt   Point3
	Dir  Vector3
	Dist Real
}

// ChiefRayPkg bundles a chief ray with its transfer to the exit pupil plane.
type ChiefRayPkg struct {
	Ray    RayPkg
	ExpSeg ExitPupilSeg
}

// RefSphere is the ideal spherical wavefront anchored by a chief ray:
// centered toward the image point from the chief ray's exit pupil crossing.
type RefSphere struct {
	ImagePt Point3  // chief-ray image point, local to the image plane
	ExpPt   Point3  // chief-ray exit pupil point, local to the last surface
	ExpDist Real    // exit pupil distance from the last optical surface
	RefDir  Vector3 // unit direction from ExpPt toward the image point
	Radius  Real    // Euclidean distance from ExpPt to the image point
}

// RefSpherePkg bundles a reference sphere with the surrounding media data
// needed by wavefront-aberration computations. Wvl and Foc key the cache:
// the package is only valid at the wavelength and focus shift it was
// computed at.
type RefSpherePkg struct {
	Sphere RefSphere
	Fod    *FirstOrderData
	NObj   Real
	NImg   Real
	ZDir   Real
	Wvl    Real
	Foc    Real
}

package lenstrace

import (
	"fmt"
	"math"
)

// Medium is a constant-index optical medium. The glass code is carried for
// catalog round-trips but plays no part in tracing.
type Medium struct {
	Nm string `json:"name"`
	RI Real   `json:"index"`
	Gc string `json:"glassCode,omitempty"`
}

// Air is the default gap medium.
var Air = Medium{Nm: "air", RI: 1.0}

func (m Medium) Name() string         { return m.Nm }
func (m Medium) RIndex(wvl Real) Real { return m.RI }
func (m Medium) Code() string         { return m.Gc }

// Interface is one spherical (or planar, when Cv is zero) optical surface.
// It lives in its own local frame: vertex at the origin, axis along +Z.
type Interface struct {
	Cv       Real         // curvature, 1/radius; 0 means planar
	SemiDiam Real
	Mode     InteractMode
	Lbl      string
}

// Intersect solves the ray/sphere (or ray/plane) intersection in the local
// frame. Of the two sphere roots it keeps the one nearer the vertex tangent
// plane, which is the physically meaningful crossing for a lens surface.
func (ifc *Interface) Intersect(p Point3, d Vector3, eps Real, zDir Real) (Real, Point3, error) {
	if ifc.Cv == 0 {
		if math.Abs(d.Z) < eps {
			return 0, Point3{}, ErrRayMiss
		}
		t := -p.Z / d.Z
		return t, p.Add(d.Mul(t)), nil
	}
	r := 1.0 / ifc.Cv
	ctr := Point3{0, 0, r}
	v := ctr.Sub(p)
	b := d.Dot(v)
	disc := b*b - (v.Dot(v) - r*r)
	if disc < 0 {
		return 0, Point3{}, ErrRayMiss
	}
	sq := math.Sqrt(disc)
	t1, t2 := b-sq, b+sq
	h1 := p.Add(d.Mul(t1))
	h2 := p.Add(d.Mul(t2))
	if math.Abs(h1.Z) <= math.Abs(h2.Z) {
		return t1, h1, nil
	}
	return t2, h2, nil
}

// Normal returns the surface normal, oriented along +Z at the vertex. The
// same gradient form covers both the spherical and the planar case.
func (ifc *Interface) Normal(p Point3) Vector3 {
	return Vector3{-ifc.Cv * p.X, -ifc.Cv * p.Y, 1 - ifc.Cv*p.Z}.Norm()
}

// Gap is the space following a surface: a thickness and the medium that
// fills it.
type Gap struct {
	Thi Real
	Med Medium
}

// SeqModel is the default sequential surface model: an ordered surface list
// bracketed by the object and image planes, with one gap after every surface
// except the last.
type SeqModel struct {
	Ifcs []*Interface
	Gaps []*Gap
	Stop int

	zdir []Real
}

// NewSeqModel returns a model holding only the object and image planes,
// separated by an air gap of the given object distance.
func NewSeqModel(objDist Real) *SeqModel {
	return &SeqModel{
		Ifcs: []*Interface{{Lbl: "Obj"}, {Lbl: "Img"}},
		Gaps: []*Gap{{Thi: objDist, Med: Air}},
	}
}

// AddSurface appends an optical surface (immediately before the image plane)
// together with the gap that follows it.
func (sm *SeqModel) AddSurface(ifc *Interface, gap *Gap) {
	img := len(sm.Ifcs) - 1
	sm.Ifcs = append(sm.Ifcs[:img], ifc, sm.Ifcs[img])
	sm.Gaps = append(sm.Gaps, gap)
	sm.zdir = nil
}

// UpdateModel validates the sequence and recomputes the per-surface
// propagation signs. It must run after any structural edit.
func (sm *SeqModel) UpdateModel() error {
	if len(sm.Ifcs) != len(sm.Gaps)+1 {
		return fmt.Errorf("surface/gap mismatch: %d surfaces, %d gaps", len(sm.Ifcs), len(sm.Gaps))
	}
	if len(sm.Ifcs) < 3 {
		return fmt.Errorf("model needs at least one optical surface between object and image")
	}
	if sm.Stop < 1 || sm.Stop > len(sm.Ifcs)-2 {
		return fmt.Errorf("stop surface %d out of range [1,%d]", sm.Stop, len(sm.Ifcs)-2)
	}
	sm.computeZDir()
	return nil
}

func (sm *SeqModel) computeZDir() {
	sm.zdir = make([]Real, len(sm.Ifcs))
	z := 1.0
	for i, ifc := range sm.Ifcs {
		if ifc.Mode == Reflect {
			z = -z
		}
		sm.zdir[i] = z
	}
}

func (sm *SeqModel) NumSurfaces() int { return len(sm.Ifcs) }
func (sm *SeqModel) NumGaps() int     { return len(sm.Gaps) }
func (sm *SeqModel) StopSurface() int { return sm.Stop }

func (sm *SeqModel) Profile(i int) Profile           { return sm.Ifcs[i] }
func (sm *SeqModel) InteractMode(i int) InteractMode { return sm.Ifcs[i].Mode }
func (sm *SeqModel) OuterDiameter(i int) Real        { return 2 * sm.Ifcs[i].SemiDiam }
func (sm *SeqModel) Curvature(i int) Real            { return sm.Ifcs[i].Cv }

func (sm *SeqModel) GapThickness(i int) Real         { return sm.Gaps[i].Thi }
func (sm *SeqModel) GapMedium(i int) OpticalMedium   { return sm.Gaps[i].Med }

// RIndex returns the refractive index in gap i, sign-flipped after an odd
// number of reflections.
func (sm *SeqModel) RIndex(wvl Real, i int) Real {
	return sm.Gaps[i].Med.RIndex(wvl) * sm.ZDir(i)
}

// ZDir returns the propagation sign after surface i.
func (sm *SeqModel) ZDir(i int) Real {
	if sm.zdir == nil {
		sm.computeZDir()
	}
	return sm.zdir[i]
}

// SurfaceLabels returns one display label per surface: "Obj", numbered
// interior surfaces ("Stop" at the stop), and "Img".
func (sm *SeqModel) SurfaceLabels() []string {
	labels := make([]string, len(sm.Ifcs))
	for i := range sm.Ifcs {
		switch {
		case i == 0:
			labels[i] = "Obj"
		case i == len(sm.Ifcs)-1:
			labels[i] = "Img"
		case i == sm.Stop:
			labels[i] = "Stop"
		case sm.Ifcs[i].Lbl != "":
			labels[i] = sm.Ifcs[i].Lbl
		default:
			labels[i] = fmt.Sprintf("%d", i)
		}
	}
	return labels
}

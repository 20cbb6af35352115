package lenstrace

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rayFailure reports whether an error is an individual-ray failure (miss or
// TIR at some surface) rather than a setup problem. Bulk sweeps degrade such
// rays to null markers instead of aborting.
func rayFailure(err error) bool {
	var te *TraceError
	return errors.As(err, &te)
}

// FanSample is one ray of a 1D pupil fan. Pkg is nil when the ray failed to
// trace; Err then records why.
type FanSample struct {
	Pupil Pupil
	Pkg   *RayPkg
	Err   error
}

// GridSample is one cell of a 2D pupil grid. Samples outside the unit pupil
// circle are never traced: Inside is false and Pkg is nil. For traced rays
// that failed, Inside is true, Pkg is nil and Err records the failure.
type GridSample struct {
	Pupil  Pupil
	Inside bool
	Pkg    *RayPkg
	Err    error
}

// BoundarySample is one ray of the fixed boundary-ray set.
type BoundarySample struct {
	Label string
	Pupil Pupil
	Pkg   *RayPkg
	Err   error
}

// TraceFan traces rays along a line in the pupil, linearly spaced from start
// to stop inclusive. num must be at least 2. Every sample appears in the
// result; failed rays carry a nil package.
func (osp *OpticalSpecs) TraceFan(sm SequenceModel, fld *Field, wvl Real,
	start, stop Pupil, num int, eps Real) ([]FanSample, error) {

	if num < 2 {
		return nil, fmt.Errorf("fan needs at least 2 samples, got %d", num)
	}
	xs := make([]Real, num)
	ys := make([]Real, num)
	floats.Span(xs, start.X, stop.X)
	floats.Span(ys, start.Y, stop.Y)

	fan := make([]FanSample, 0, num)
	for i := 0; i < num; i++ {
		p := Pupil{xs[i], ys[i]}
		pkg, err := osp.TraceBase(sm, p, fld, wvl, eps)
		switch {
		case err == nil:
			fan = append(fan, FanSample{Pupil: p, Pkg: &pkg})
		case rayFailure(err):
			fan = append(fan, FanSample{Pupil: p, Err: err})
		default:
			return nil, err
		}
	}
	return fan, nil
}

// TraceGridList traces a square pupil grid and returns the samples as a flat
// list in row-major order (X varies slowest). Samples on or outside the unit
// pupil circle are excluded from tracing and marked, never dropped, so the
// result always holds num*num entries.
func (osp *OpticalSpecs) TraceGridList(sm SequenceModel, fld *Field, wvl Real,
	start, stop Pupil, num int, eps Real) ([]GridSample, error) {

	if num < 2 {
		return nil, fmt.Errorf("grid needs at least 2 samples per axis, got %d", num)
	}
	xs := make([]Real, num)
	ys := make([]Real, num)
	floats.Span(xs, start.X, stop.X)
	floats.Span(ys, start.Y, stop.Y)

	grid := make([]GridSample, 0, num*num)
	for i := 0; i < num; i++ {
		for j := 0; j < num; j++ {
			p := Pupil{xs[i], ys[j]}
			if p.X*p.X+p.Y*p.Y >= 1.0 {
				grid = append(grid, GridSample{Pupil: p})
				continue
			}
			pkg, err := osp.TraceBase(sm, p, fld, wvl, eps)
			switch {
			case err == nil:
				grid = append(grid, GridSample{Pupil: p, Inside: true, Pkg: &pkg})
			case rayFailure(err):
				grid = append(grid, GridSample{Pupil: p, Inside: true, Err: err})
			default:
				return nil, err
			}
		}
	}
	return grid, nil
}

// TraceGrid is the row-major 2D form of TraceGridList: one row per pupil X
// sample, each row num entries long.
func (osp *OpticalSpecs) TraceGrid(sm SequenceModel, fld *Field, wvl Real,
	start, stop Pupil, num int, eps Real) ([][]GridSample, error) {

	flat, err := osp.TraceGridList(sm, fld, wvl, start, stop, num, eps)
	if err != nil {
		return nil, err
	}
	rows := make([][]GridSample, num)
	for i := 0; i < num; i++ {
		rows[i] = flat[i*num : (i+1)*num]
	}
	return rows, nil
}

// WavefrontMap samples the optical path difference over the unit pupil on a
// num x num grid and returns it as a dense matrix. Cells outside the pupil
// or belonging to failed rays hold NaN. The field's chief-ray and
// reference-sphere caches are refreshed for the requested wavelength first.
func (osp *OpticalSpecs) WavefrontMap(sm SequenceModel, fld *Field, wvl, foc Real,
	num int, eps Real) (*mat.Dense, error) {

	if _, _, err := osp.SetupCanonicalCoords(sm, fld, wvl, foc, nil); err != nil {
		return nil, err
	}
	grid, err := osp.TraceGridList(sm, fld, wvl, Pupil{-1, -1}, Pupil{1, 1}, num, eps)
	if err != nil {
		return nil, err
	}

	m := mat.NewDense(num, num, nil)
	for i := 0; i < num; i++ {
		for j := 0; j < num; j++ {
			s := grid[i*num+j]
			if s.Pkg == nil {
				m.Set(i, j, math.NaN())
				continue
			}
			opd, err := WaveAbrFunc(sm, fld, wvl, *s.Pkg)
			if err != nil {
				m.Set(i, j, math.NaN())
				continue
			}
			m.Set(i, j, opd)
		}
	}
	return m, nil
}

// RMSWavefront computes the weighted RMS optical path difference across the
// spectral region for one field: a wavefront map per wavelength, mean-square
// over the valid pupil samples, combined with the spectral weights.
func (osp *OpticalSpecs) RMSWavefront(sm SequenceModel, fld *Field, foc Real,
	num int, eps Real) (Real, error) {

	ms := make([]Real, 0, len(osp.Spectral.Wavelengths))
	wts := make([]Real, 0, len(osp.Spectral.Wavelengths))
	for wi, wvl := range osp.Spectral.Wavelengths {
		wf, err := osp.WavefrontMap(sm, fld, wvl, foc, num, eps)
		if err != nil {
			return 0, fmt.Errorf("wavelength %g nm: %w", wvl, err)
		}
		var sq []Real
		r, c := wf.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if v := wf.At(i, j); isFinite(v) {
					sq = append(sq, v*v)
				}
			}
		}
		if len(sq) == 0 {
			return 0, fmt.Errorf("wavelength %g nm: no valid pupil samples", wvl)
		}
		ms = append(ms, stat.Mean(sq, nil))
		wts = append(wts, osp.Spectral.SpectralWts[wi])
	}
	return math.Sqrt(stat.Mean(ms, wts)), nil
}

// TraceBoundaryRaysAtField traces the pupil spec's fixed sample set (center
// plus rim points) at one field and wavelength.
func (osp *OpticalSpecs) TraceBoundaryRaysAtField(sm SequenceModel, fld *Field, wvl, eps Real) ([]BoundarySample, error) {
	rays := make([]BoundarySample, 0, len(osp.Pupil.PupilRays))
	for i, p := range osp.Pupil.PupilRays {
		label := ""
		if i < len(osp.Pupil.RayLabels) {
			label = osp.Pupil.RayLabels[i]
		}
		pkg, err := osp.TraceBase(sm, p, fld, wvl, eps)
		switch {
		case err == nil:
			rays = append(rays, BoundarySample{Label: label, Pupil: p, Pkg: &pkg})
		case rayFailure(err):
			rays = append(rays, BoundarySample{Label: label, Pupil: p, Err: err})
		default:
			return nil, err
		}
	}
	return rays, nil
}

// TraceBoundaryRays traces the boundary-ray set at the central wavelength
// for every field, in field order.
func (osp *OpticalSpecs) TraceBoundaryRays(sm SequenceModel, eps Real) ([][]BoundarySample, error) {
	wvl := osp.Spectral.CentralWvl()
	raySet := make([][]BoundarySample, 0, len(osp.FieldOfView.Fields))
	for _, fld := range osp.FieldOfView.Fields {
		rays, err := osp.TraceBoundaryRaysAtField(sm, fld, wvl, eps)
		if err != nil {
			return nil, err
		}
		raySet = append(raySet, rays)
	}
	return raySet, nil
}

// RayTableRow is one per-surface sample of one boundary ray, labeled by the
// field, pupil sample and surface it belongs to.
type RayTableRow struct {
	Field   string
	Pupil   string
	Surface string

	Pt  Point3
	Dir Vector3
	Dst Real
}

// RayTable is the labeled boundary-ray set, keyed by field x pupil x
// surface. Rays that failed mid-trace contribute the surfaces they reached.
type RayTable struct {
	Rows []RayTableRow
}

// String renders the table as aligned text.
func (rt *RayTable) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, "field\tpupil\tsurf\tx\ty\tz\tL\tM\tN\tdist")
	for _, r := range rt.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6g\t%.6g\t%.6g\t%.6f\t%.6f\t%.6f\t%.6g\n",
			r.Field, r.Pupil, r.Surface, r.Pt.X, r.Pt.Y, r.Pt.Z,
			r.Dir.X, r.Dir.Y, r.Dir.Z, r.Dst)
	}
	w.Flush()
	return b.String()
}

// TraceBoundaryRayTable traces the boundary-ray set at every field and
// assembles the labeled table. Labels come from the field spec's index
// labels, the pupil spec's ray labels and the sequence model's surface
// labels.
func (osp *OpticalSpecs) TraceBoundaryRayTable(sm SequenceModel, eps Real) (*RayTable, error) {
	raySet, err := osp.TraceBoundaryRays(sm, eps)
	if err != nil {
		return nil, err
	}
	surfLabels := sm.SurfaceLabels()
	table := &RayTable{}
	for fi, rays := range raySet {
		fldLabel := fmt.Sprintf("F%d", fi)
		if fi < len(osp.FieldOfView.IndexLabels) {
			fldLabel = osp.FieldOfView.IndexLabels[fi]
		}
		for _, s := range rays {
			if s.Pkg == nil {
				continue
			}
			for si, seg := range s.Pkg.Ray {
				surfLabel := fmt.Sprintf("%d", si)
				if si < len(surfLabels) {
					surfLabel = surfLabels[si]
				}
				table.Rows = append(table.Rows, RayTableRow{
					Field:   fldLabel,
					Pupil:   s.Label,
					Surface: surfLabel,
					Pt:      seg.Pt,
					Dir:     seg.Dir,
					Dst:     seg.Dst,
				})
			}
		}
	}
	return table, nil
}

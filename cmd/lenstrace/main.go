// Package main provides the CLI entry point for lenstrace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opticalab/lenstrace/internal/lenstrace"
)

var (
	traceMode string
	fieldIdx  int
	wvlIdx    int
	focusFr   float64
	samples   int
	debug     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lenstrace [model.json]",
		Short: "Trace ray bundles through a sequential optical model",
		Long: `lenstrace loads a JSON lens system together with its optical usage
specification (aperture, fields, wavelengths, focus) and traces ray sets
through it: boundary rays, pupil fans, or a wavefront-error grid.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVar(&traceMode, "trace", "boundary", "Trace set: boundary, fan, grid, rms")
	rootCmd.Flags().IntVar(&fieldIdx, "field", 0, "Field index")
	rootCmd.Flags().IntVar(&wvlIdx, "wvl", -1, "Wavelength index (-1 for the central wavelength)")
	rootCmd.Flags().Float64Var(&focusFr, "focus", 0, "Normalized focus parameter in [-1,1]")
	rootCmd.Flags().IntVar(&samples, "samples", 11, "Samples per pupil axis for fan/grid traces")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Verbose debug output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	lenstrace.Debug = debug

	om, err := lenstrace.LoadModel(args[0])
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	fod := om.Spec.ParaxData
	fmt.Printf("%s\n", om.System.Title)
	fmt.Printf("efl: %.6g  fno: %.4g  m: %.6g\n", fod.EFL, fod.FNO, fod.M)
	fmt.Printf("enp: dist %.6g radius %.6g   exp: dist %.6g radius %.6g\n",
		fod.EnpDist, fod.EnpRadius, fod.ExpDist, fod.ExpRadius)

	fld, wvl, foc, err := om.Spec.LookupFldWvlFocus(fieldIdx, wvlIdx, focusFr)
	if err != nil {
		return err
	}

	switch traceMode {
	case "boundary":
		table, err := om.Spec.TraceBoundaryRayTable(om.Seq, lenstrace.DefaultEps)
		if err != nil {
			return fmt.Errorf("boundary rays: %w", err)
		}
		fmt.Print(table.String())

	case "fan":
		fan, err := om.Spec.TraceFan(om.Seq, fld, wvl,
			lenstrace.Pupil{Y: -1}, lenstrace.Pupil{Y: 1}, samples, lenstrace.DefaultEps)
		if err != nil {
			return fmt.Errorf("fan: %w", err)
		}
		for _, s := range fan {
			if s.Pkg == nil {
				fmt.Printf("py %+.4f  <no ray: %v>\n", s.Pupil.Y, s.Err)
				continue
			}
			img := s.Pkg.Ray[len(s.Pkg.Ray)-1].Pt
			fmt.Printf("py %+.4f  image (%.6g, %.6g)  op %.9g\n", s.Pupil.Y, img.X, img.Y, s.Pkg.Op)
		}

	case "grid":
		wf, err := om.Spec.WavefrontMap(om.Seq, fld, wvl, foc, samples, lenstrace.DefaultEps)
		if err != nil {
			return fmt.Errorf("wavefront grid: %w", err)
		}
		r, c := wf.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				fmt.Printf("%12.5g", wf.At(i, j))
			}
			fmt.Println()
		}

	case "rms":
		rms, err := om.Spec.RMSWavefront(om.Seq, fld, foc, samples, lenstrace.DefaultEps)
		if err != nil {
			return fmt.Errorf("rms wavefront: %w", err)
		}
		fmt.Printf("rms wavefront error: %.6g (%.4g waves at %g nm)\n",
			rms, rms/om.System.NmToSysUnits(wvl), wvl)

	default:
		return fmt.Errorf("invalid trace mode: %s (must be boundary, fan, grid, or rms)", traceMode)
	}
	return nil
}

package lenstrace

import (
	"encoding/json"
	"fmt"
	"os"
)

// SurfaceCfg describes one optical surface in a model file. Radius is the
// radius of curvature; zero means planar.
type SurfaceCfg struct {
	Radius   Real   `json:"radius,omitempty"`
	SemiDiam Real   `json:"semiDiam,omitempty"`
	Mode     string `json:"mode,omitempty"` // "transmit" (default) or "reflect"
	Label    string `json:"label,omitempty"`

	// gap following the surface
	Thickness Real   `json:"thickness"`
	Medium    string `json:"medium,omitempty"` // medium name, "air" when empty
	Index     Real   `json:"index,omitempty"`  // refractive index, 1.0 when zero
	GlassCode string `json:"glassCode,omitempty"`
}

// PupilCfg mirrors PupilSpec in model files, with a textual type tag.
type PupilCfg struct {
	Type  string `json:"type"`
	Value Real   `json:"value"`
}

// FieldsCfg mirrors FieldSpec in model files.
type FieldsCfg struct {
	Type      string   `json:"type"`
	Fields    []*Field `json:"fields"`
	WideAngle bool     `json:"wideAngle,omitempty"`
}

// ModelCfg is the on-disk form of a complete optical model.
type ModelCfg struct {
	Title   string `json:"title,omitempty"`
	Units   string `json:"units,omitempty"`
	ObjDist Real   `json:"objDist"`
	Stop    int    `json:"stop"`

	Surfaces []SurfaceCfg `json:"surfaces"`

	Pupil       PupilCfg   `json:"pupil"`
	FieldOfView FieldsCfg  `json:"fieldOfView"`
	Wavelengths []WvlWt    `json:"wavelengths"`
	RefWvl      int        `json:"refWvl,omitempty"`
	Defocus     FocusRange `json:"defocus,omitempty"`
}

// Build validates the configuration and assembles an OpticalModel from it.
func (cfg *ModelCfg) Build() (*OpticalModel, error) {
	if len(cfg.Surfaces) == 0 {
		return nil, fmt.Errorf("model %q has no surfaces", cfg.Title)
	}
	if len(cfg.Wavelengths) == 0 {
		return nil, fmt.Errorf("model %q has no wavelengths", cfg.Title)
	}
	if cfg.RefWvl < 0 || cfg.RefWvl >= len(cfg.Wavelengths) {
		return nil, fmt.Errorf("reference wavelength index %d out of range [0,%d)", cfg.RefWvl, len(cfg.Wavelengths))
	}

	om := NewOpticalModel(cfg.ObjDist)
	if cfg.Title != "" {
		om.System.Title = cfg.Title
	}
	if cfg.Units != "" {
		om.System.Dimensions = cfg.Units
	}

	for i, sc := range cfg.Surfaces {
		ifc := &Interface{SemiDiam: sc.SemiDiam, Lbl: sc.Label}
		if sc.Radius != 0 {
			ifc.Cv = 1.0 / sc.Radius
		}
		switch sc.Mode {
		case "", "transmit":
			ifc.Mode = Transmit
		case "reflect":
			ifc.Mode = Reflect
		default:
			return nil, fmt.Errorf("surface %d: unknown mode %q", i+1, sc.Mode)
		}

		med := Air
		if sc.Medium != "" || sc.Index != 0 {
			med = Medium{Nm: sc.Medium, RI: sc.Index, Gc: sc.GlassCode}
			if med.Nm == "" {
				med.Nm = "glass"
			}
			if med.RI == 0 {
				med.RI = 1.0
			}
		}
		om.Seq.AddSurface(ifc, &Gap{Thi: sc.Thickness, Med: med})
	}
	om.Seq.Stop = cfg.Stop

	pt, err := ParsePupilType(cfg.Pupil.Type)
	if err != nil {
		return nil, err
	}
	om.Spec.Pupil = NewPupilSpec(pt, cfg.Pupil.Value)

	ft, err := ParseFieldType(cfg.FieldOfView.Type)
	if err != nil {
		return nil, err
	}
	fs := &FieldSpec{Type: ft, WideAngle: cfg.FieldOfView.WideAngle}
	if len(cfg.FieldOfView.Fields) == 0 {
		fs.SetFromList([]Real{0})
	} else {
		fs.Fields = cfg.FieldOfView.Fields
	}
	om.Spec.FieldOfView = fs

	ws := NewWvlSpec(cfg.Wavelengths...)
	ws.ReferenceWvl = cfg.RefWvl
	om.Spec.Spectral = ws
	om.Spec.Defocus = &FocusRange{Infocus: cfg.Defocus.Infocus, Defocus: cfg.Defocus.Defocus}

	return om, nil
}

// LoadModel reads a JSON model file, validates it and returns the built
// optical model with all derived properties updated.
func LoadModel(path string) (*OpticalModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ModelCfg
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	om, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if err := om.UpdateModel(); err != nil {
		return nil, err
	}
	DebugLog("Loaded model %q: %d surfaces, stop=%d", cfg.Title, om.Seq.NumSurfaces(), om.Seq.Stop)
	return om, nil
}

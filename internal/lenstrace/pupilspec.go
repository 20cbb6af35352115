package lenstrace

import "fmt"

// PupilType identifies how the system aperture is specified.
type PupilType int

const (
	// EPD is the entrance pupil diameter, in system units.
	EPD PupilType = iota
	// NA is the image-space numerical aperture.
	NA
	// NAO is the object-space numerical aperture.
	NAO
	// FNO is the image-space f-number.
	FNO
)

func (t PupilType) String() string {
	switch t {
	case EPD:
		return "EPD"
	case NA:
		return "NA"
	case NAO:
		return "NAO"
	case FNO:
		return "FNO"
	}
	return fmt.Sprintf("PupilType(%d)", int(t))
}

// ParsePupilType maps the textual tags used in model files back to PupilType.
func ParsePupilType(s string) (PupilType, error) {
	switch s {
	case "EPD":
		return EPD, nil
	case "NA":
		return NA, nil
	case "NAO":
		return NAO, nil
	case "FNO":
		return FNO, nil
	}
	return 0, fmt.Errorf("unknown pupil type %q", s)
}

// Default boundary-ray sample set: pupil center plus the four rim points.
func defaultPupilRays() []Pupil {
	return []Pupil{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}
}

func defaultRayLabels() []string {
	return []string{"00", "+X", "-X", "+Y", "-Y"}
}

// PupilSpec defines the system aperture: a specification type and value plus
// the fixed set of pupil coordinates ("rim rays") used for boundary-ray
// tracing, with matching display labels.
type PupilSpec struct {
	Type  PupilType `json:"type"`
	Value Real      `json:"value"`

	PupilRays []Pupil  `json:"-"`
	RayLabels []string `json:"-"`
}

// NewPupilSpec returns a pupil spec with the default rim-ray sample set.
func NewPupilSpec(typ PupilType, value Real) *PupilSpec {
	return &PupilSpec{
		Type:      typ,
		Value:     value,
		PupilRays: defaultPupilRays(),
		RayLabels: defaultRayLabels(),
	}
}

// UpdateModel restores the default sample set if it was never populated
// (e.g. after decoding from a model file).
func (ps *PupilSpec) UpdateModel() {
	if len(ps.PupilRays) == 0 {
		ps.PupilRays = defaultPupilRays()
		ps.RayLabels = defaultRayLabels()
	}
}

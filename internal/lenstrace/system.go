package lenstrace

// SystemSpec carries units and other system-level constants.
type SystemSpec struct {
	Title       string `json:"title,omitempty"`
	Initials    string `json:"initials,omitempty"`
	Dimensions  string `json:"dimensions,omitempty"`  // "mm", "cm", "m", "in", "ft"
	Temperature Real   `json:"temperature,omitempty"` // degrees Celsius
	Pressure    Real   `json:"pressure,omitempty"`    // mm/Hg
}

// NewSystemSpec returns the default system constants: millimeters at room
// temperature and one atmosphere.
func NewSystemSpec() *SystemSpec {
	return &SystemSpec{
		Dimensions:  "mm",
		Temperature: 20.0,
		Pressure:    760.0,
	}
}

// NmToSysUnits converts a length in nanometers to the model's linear units.
func (s *SystemSpec) NmToSysUnits(nm Real) Real {
	switch s.Dimensions {
	case "m":
		return 1e-9 * nm
	case "cm":
		return 1e-7 * nm
	case "mm":
		return 1e-6 * nm
	case "in":
		return 1e-6 * nm / 25.4
	case "ft":
		return 1e-6 * nm / 304.8
	default:
		return nm
	}
}

// OpticalModel is the top-level container: system constants, the sequential
// surface model and the optical usage spec, updated together.
type OpticalModel struct {
	System *SystemSpec
	Seq    *SeqModel
	Spec   *OpticalSpecs
}

// NewOpticalModel returns an empty model with default system constants and
// spec values; the sequential model holds only object and image planes.
func NewOpticalModel(objDist Real) *OpticalModel {
	return &OpticalModel{
		System: NewSystemSpec(),
		Seq:    NewSeqModel(objDist),
		Spec:   NewOpticalSpecs(),
	}
}

// UpdateModel revalidates the surface sequence and refreshes all derived
// optical properties. Call after any edit and before tracing.
func (om *OpticalModel) UpdateModel() error {
	if err := om.Seq.UpdateModel(); err != nil {
		return err
	}
	return om.Spec.UpdateModel(om.Seq)
}

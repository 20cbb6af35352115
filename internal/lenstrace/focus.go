package lenstrace

// FocusRange maps a normalized focus parameter in [-1,1] onto an absolute
// focus shift around a nominal in-focus position.
type FocusRange struct {
	Infocus Real `json:"infocus"`
	Defocus Real `json:"defocus"`
}

// NewFocusRange returns a focus range with the given defocus half-range
// around nominal focus zero.
func NewFocusRange(defocus Real) *FocusRange {
	return &FocusRange{Defocus: defocus}
}

// GetFocus returns the focus position for a focus range parameter fr in
// [-1.0, 1.0]: fr=-1 is the near end, 0 nominal focus, +1 the far end.
func (fd *FocusRange) GetFocus(fr Real) Real {
	return fd.Infocus + fr*fd.Defocus
}

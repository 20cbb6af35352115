package lenstrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNmToSysUnits(t *testing.T) {
	s := NewSystemSpec()
	assert.Equal(t, "mm", s.Dimensions)
	assert.InDelta(t, 550e-6, s.NmToSysUnits(550), 1e-18)

	s.Dimensions = "m"
	assert.InDelta(t, 550e-9, s.NmToSysUnits(550), 1e-21)

	s.Dimensions = "cm"
	assert.InDelta(t, 550e-7, s.NmToSysUnits(550), 1e-19)

	s.Dimensions = "in"
	assert.InDelta(t, 550e-6/25.4, s.NmToSysUnits(550), 1e-18)

	s.Dimensions = "ft"
	assert.InDelta(t, 550e-6/304.8, s.NmToSysUnits(550), 1e-18)

	// unknown units pass the value through
	s.Dimensions = "furlong"
	assert.Equal(t, 550.0, s.NmToSysUnits(550))
}

func TestNewSystemSpecDefaults(t *testing.T) {
	s := NewSystemSpec()
	assert.Equal(t, 20.0, s.Temperature)
	assert.Equal(t, 760.0, s.Pressure)
}

func TestNewOpticalModel(t *testing.T) {
	om := NewOpticalModel(100)
	require.NotNil(t, om.System)
	require.NotNil(t, om.Seq)
	require.NotNil(t, om.Spec)
	assert.Equal(t, 100.0, om.Seq.GapThickness(0))

	// an empty sequence cannot be updated yet
	assert.Error(t, om.UpdateModel())
}

func TestOpticalModelUpdate(t *testing.T) {
	om := NewOpticalModel(100)
	glass := Medium{Nm: "glass", RI: 1.5}
	om.Seq.AddSurface(&Interface{Cv: 1.0 / 50, SemiDiam: 12}, &Gap{Thi: 0, Med: glass})
	om.Seq.AddSurface(&Interface{Cv: -1.0 / 50, SemiDiam: 12}, &Gap{Thi: 100, Med: Air})
	om.Seq.Stop = 1
	om.Spec.Pupil = NewPupilSpec(EPD, 20)

	require.NoError(t, om.UpdateModel())
	require.NotNil(t, om.Spec.ParaxData)
	assert.InDelta(t, 50.0, om.Spec.ParaxData.EFL, 1e-12)
}

package lenstrace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thinLensCfg() *ModelCfg {
	return &ModelCfg{
		Title:   "thin lens",
		ObjDist: 100,
		Stop:    1,
		Surfaces: []SurfaceCfg{
			{Radius: 50, SemiDiam: 12, Thickness: 0, Medium: "glass", Index: 1.5},
			{Radius: -50, SemiDiam: 12, Thickness: 100},
		},
		Pupil:       PupilCfg{Type: "EPD", Value: 20},
		FieldOfView: FieldsCfg{Type: "OBJ_ANG", Fields: []*Field{NewField(0, 0), NewField(0, 5)}},
		Wavelengths: []WvlWt{{550, 1}},
	}
}

func TestModelCfgBuild(t *testing.T) {
	om, err := thinLensCfg().Build()
	require.NoError(t, err)
	require.NoError(t, om.UpdateModel())

	assert.Equal(t, "thin lens", om.System.Title)
	assert.Equal(t, 4, om.Seq.NumSurfaces())
	assert.Equal(t, 1, om.Seq.StopSurface())
	assert.Equal(t, EPD, om.Spec.Pupil.Type)
	assert.Equal(t, ObjectAngle, om.Spec.FieldOfView.Type)
	assert.InDelta(t, 50.0, om.Spec.ParaxData.EFL, 1e-12)

	// the second gap carries the glass
	assert.Equal(t, 1.5, om.Seq.GapMedium(1).RIndex(550))
	assert.Equal(t, "glass", om.Seq.GapMedium(1).Name())
	// the last gap defaults to air
	assert.Equal(t, "air", om.Seq.GapMedium(2).Name())
}

func TestModelCfgBuildErrors(t *testing.T) {
	cfg := thinLensCfg()
	cfg.Surfaces = nil
	_, err := cfg.Build()
	assert.ErrorContains(t, err, "no surfaces")

	cfg = thinLensCfg()
	cfg.Wavelengths = nil
	_, err = cfg.Build()
	assert.ErrorContains(t, err, "no wavelengths")

	cfg = thinLensCfg()
	cfg.RefWvl = 1
	_, err = cfg.Build()
	assert.ErrorContains(t, err, "reference wavelength")

	cfg = thinLensCfg()
	cfg.Pupil.Type = "DIAMETER"
	_, err = cfg.Build()
	assert.ErrorContains(t, err, "unknown pupil type")

	cfg = thinLensCfg()
	cfg.FieldOfView.Type = "ANGLE"
	_, err = cfg.Build()
	assert.ErrorContains(t, err, "unknown field type")

	cfg = thinLensCfg()
	cfg.Surfaces[0].Mode = "absorb"
	_, err = cfg.Build()
	assert.ErrorContains(t, err, "unknown mode")
}

func TestModelCfgBuildDefaultField(t *testing.T) {
	cfg := thinLensCfg()
	cfg.FieldOfView.Fields = nil
	om, err := cfg.Build()
	require.NoError(t, err)
	require.Len(t, om.Spec.FieldOfView.Fields, 1)

	// before UpdateModel there is no first-order data to project through
	_, err = om.Spec.ObjCoords(om.Spec.FieldOfView.Fields[0])
	assert.ErrorContains(t, err, "first-order")

	require.NoError(t, om.UpdateModel())
	pt, err := om.Spec.ObjCoords(om.Spec.FieldOfView.Fields[0])
	require.NoError(t, err)
	assert.Equal(t, Point3{}, pt)
}

func TestLoadModel(t *testing.T) {
	data := `{
		"title": "thin lens",
		"objDist": 100,
		"stop": 1,
		"surfaces": [
			{"radius": 50, "semiDiam": 12, "thickness": 0, "medium": "glass", "index": 1.5},
			{"radius": -50, "semiDiam": 12, "thickness": 100}
		],
		"pupil": {"type": "EPD", "value": 20},
		"fieldOfView": {"type": "OBJ_ANG", "fields": [{"x": 0, "y": 0, "wt": 1}, {"x": 0, "y": 5, "wt": 1}]},
		"wavelengths": [{"wvl": 550, "wt": 1}]
	}`
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	om, err := LoadModel(path)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, om.Spec.ParaxData.EFL, 1e-12)
	assert.Len(t, om.Spec.FieldOfView.Fields, 2)
	assert.Equal(t, 5.0, om.Spec.FieldOfView.Fields[1].Y)
	assert.Equal(t, []string{"axis", "edge"}, om.Spec.FieldOfView.IndexLabels)
}

func TestLoadModelErrors(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadModel(path)
	assert.ErrorContains(t, err, "parse")
}

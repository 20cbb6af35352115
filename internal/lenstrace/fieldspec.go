package lenstrace

import (
	"fmt"
	"math"
)

// FieldType identifies the convention used to interpret Field coordinates.
type FieldType int

const (
	// ObjectAngle treats field coordinates as object-space angles in degrees.
	ObjectAngle FieldType = iota
	// ObjectHeight treats field coordinates as object heights.
	ObjectHeight
	// ImageHeight treats field coordinates as image heights; the object point
	// is recovered through the paraxial reduction ratio.
	ImageHeight
)

func (t FieldType) String() string {
	switch t {
	case ObjectAngle:
		return "OBJ_ANG"
	case ObjectHeight:
		return "OBJ_HT"
	case ImageHeight:
		return "IMG_HT"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseFieldType maps the textual tags used in model files back to FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "OBJ_ANG":
		return ObjectAngle, nil
	case "OBJ_HT":
		return ObjectHeight, nil
	case "IMG_HT":
		return ImageHeight, nil
	}
	return 0, fmt.Errorf("unknown field type %q", s)
}

// FieldSpec is the ordered set of field points for a system. Index 0 is
// conventionally the on-axis field.
type FieldSpec struct {
	Type      FieldType `json:"type"`
	Fields    []*Field  `json:"fields"`
	WideAngle bool      `json:"wideAngle,omitempty"`

	// IndexLabels holds one display label per field, derived by UpdateModel.
	IndexLabels []string `json:"-"`
}

// NewFieldSpec builds a field spec from Y field values (the common
// rotationally symmetric case).
func NewFieldSpec(typ FieldType, flds ...Real) *FieldSpec {
	fs := &FieldSpec{Type: typ}
	fs.SetFromList(flds)
	return fs
}

// SetFromList replaces the field set with fresh fields at the given Y values.
func (fs *FieldSpec) SetFromList(flds []Real) {
	fs.Fields = make([]*Field, len(flds))
	for i, y := range flds {
		fs.Fields[i] = NewField(0, y)
	}
}

// UpdateModel clears every field's cached chief ray and reference sphere and
// rebuilds the index labels. Labels are the field Y values normalized by the
// maximum field magnitude; label 0 is forced to "axis" and the last to "edge"
// when more than one field exists. A zero maximum field leaves the values
// unscaled.
func (fs *FieldSpec) UpdateModel() {
	for _, f := range fs.Fields {
		f.Update()
	}

	maxField, _ := fs.MaxField()
	fieldNorm := 1.0
	if maxField != 0 {
		fieldNorm = 1.0 / maxField
	}
	fs.IndexLabels = make([]string, len(fs.Fields))
	for i, f := range fs.Fields {
		fs.IndexLabels[i] = fmt.Sprintf("%gF", fieldNorm*f.Y)
	}
	if len(fs.IndexLabels) > 0 {
		fs.IndexLabels[0] = "axis"
	}
	if len(fs.IndexLabels) > 1 {
		fs.IndexLabels[len(fs.IndexLabels)-1] = "edge"
	}
}

// MaxField returns the largest field radius sqrt(x²+y²) and the index of the
// field that attains it. Ties keep the first occurrence.
func (fs *FieldSpec) MaxField() (Real, int) {
	maxIdx := 0
	maxSqrd := 0.0
	for i, f := range fs.Fields {
		fldSqrd := f.X*f.X + f.Y*f.Y
		if fldSqrd > maxSqrd {
			maxSqrd = fldSqrd
			maxIdx = i
		}
	}
	return math.Sqrt(maxSqrd), maxIdx
}

// fieldSetter assigns one imported value to one attribute of a field.
type fieldSetter func(f *Field, v Real)

// fieldCodes is the closed set of short-code tokens accepted by ApplyCode,
// mapped to explicit setters. The X/Y position codes also pin the field type.
var fieldCodes = map[string]struct {
	typ FieldType
	has bool
	set fieldSetter
}{
	"XOB": {ObjectHeight, true, func(f *Field, v Real) { f.X = v }},
	"YOB": {ObjectHeight, true, func(f *Field, v Real) { f.Y = v }},
	"XAN": {ObjectAngle, true, func(f *Field, v Real) { f.X = v }},
	"YAN": {ObjectAngle, true, func(f *Field, v Real) { f.Y = v }},
	"XIM": {ImageHeight, true, func(f *Field, v Real) { f.X = v }},
	"YIM": {ImageHeight, true, func(f *Field, v Real) { f.Y = v }},
	"VUX": {0, false, func(f *Field, v Real) { f.VUX = v }},
	"VLX": {0, false, func(f *Field, v Real) { f.VLX = v }},
	"VUY": {0, false, func(f *Field, v Real) { f.VUY = v }},
	"VLY": {0, false, func(f *Field, v Real) { f.VLY = v }},
	"WTF": {0, false, func(f *Field, v Real) { f.Wt = v }},
}

// ApplyCode applies one imported field-definition code (e.g. "YAN", "VUX",
// "WTF") with one value per field. The field list is resized to match the
// value list. Unknown codes are rejected.
func (fs *FieldSpec) ApplyCode(code string, values []Real) error {
	entry, ok := fieldCodes[code]
	if !ok {
		return fmt.Errorf("unknown field code %q", code)
	}
	if entry.has {
		fs.Type = entry.typ
	}
	if len(fs.Fields) != len(values) {
		fields := make([]*Field, len(values))
		for i := range fields {
			fields[i] = NewField(0, 0)
		}
		fs.Fields = fields
	}
	for i, f := range fs.Fields {
		entry.set(f, values[i])
	}
	return nil
}

// Package pipeline extracts stage declarations from dvc.yaml documents and
// expands parameterized stages into the addresses the dvc CLI accepts.
//
// Every function in this package is a pure function of its arguments and is
// safe for concurrent use.
package pipeline

// StageType classifies how a stage declaration is parameterized.
type StageType string

const (
	// TypeSimple is a stage with a single command.
	TypeSimple StageType = "simple"
	// TypeMatrix is a stage templated over the cross-product of named axes.
	TypeMatrix StageType = "matrix"
	// TypeForeach is a stage templated over a list or the keys of a mapping.
	TypeForeach StageType = "foreach"
)

// String returns the string representation of the StageType.
func (t StageType) String() string {
	return string(t)
}

// IsGroup reports whether stages of this type expand into several sub-stages.
func (t StageType) IsGroup() bool {
	return t == TypeMatrix || t == TypeForeach
}

// Axis is one named dimension of a matrix stage.
type Axis struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Axes keeps matrix axes in declaration order.
type Axes []Axis

// Names returns the axis names in declaration order.
func (a Axes) Names() []string {
	out := make([]string, 0, len(a))
	for _, axis := range a {
		out = append(out, axis.Name)
	}
	return out
}

// Lookup returns the values of the named axis.
func (a Axes) Lookup(name string) ([]string, bool) {
	for _, axis := range a {
		if axis.Name == name {
			return axis.Values, true
		}
	}
	return nil, false
}

// Stage is a single entry of the top-level stages mapping.
//
// Cmd is empty when the declaration carries no command. Matrix is non-nil only
// for matrix stages with at least one sequence-valued axis; Foreach is non-nil
// only for foreach stages. A foreach stage with no items encodes "foreach": []
// and every other stage "foreach": null.
type Stage struct {
	Name    string    `json:"name"`
	Type    StageType `json:"type"`
	Line    int       `json:"line"`
	Cmd     string    `json:"cmd,omitempty"`
	Matrix  Axes      `json:"matrix,omitempty"`
	Foreach []string  `json:"foreach"`
}

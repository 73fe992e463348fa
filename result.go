package calcmv

import (
	"fmt"
	"strings"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

// Kind names the computation that produced a Result.
type Kind string

const (
	KindTriple     Kind = "triple"
	KindGreen      Kind = "green"
	KindDivergence Kind = "divergence"
	KindStokes     Kind = "stokes"
)

// FieldPath records which branch evaluated the domain integral.
type FieldPath string

const (
	// ConstantFieldPath multiplies a constant field by the region's measure.
	ConstantFieldPath FieldPath = "constant"
	// GeneralFieldPath integrates over the region's natural limits.
	GeneralFieldPath FieldPath = "general"
)

// Shape is a region or surface tag with its named parameters.
type Shape struct {
	Tag    string            `json:"tag" yaml:"tag"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Verification compares the two sides of a theorem.
type Verification struct {
	Checked  bool
	Verified bool
	Residual sym.Expr
}

// Result is the record every evaluator returns. It is built once and not
// modified afterwards.
type Result struct {
	Kind   Kind
	Shape  string
	Params map[string]string
	// Field echoes the parsed input components.
	Field []string
	// Scalar is the curl (Green), the divergence, the curl·n integrand
	// (Stokes) or the integrand actually integrated (triple).
	Scalar sym.Expr
	// Vector is the 3-D curl for Stokes.
	Vector []sym.Expr
	Path   FieldPath

	Domain           sym.Expr
	Boundary         sym.Expr
	BoundaryComputed bool
	Approximate      bool
	Verification     Verification
	Numeric          sym.NumericValue

	Steps     []string
	Statement []string
	Notes     []string
}

// Mismatch reports a checked theorem whose sides disagree.
func (r *Result) Mismatch() bool {
	return r.Verification.Checked && !r.Verification.Verified
}

// View is the plain-data form of a Result used by the tool protocol and the
// history store.
type View struct {
	Kind             Kind              `json:"kind"`
	Shape            string            `json:"shape,omitempty"`
	Params           map[string]string `json:"params,omitempty"`
	Field            []string          `json:"field,omitempty"`
	Scalar           string            `json:"scalar,omitempty"`
	Vector           []string          `json:"vector,omitempty"`
	Path             FieldPath         `json:"path,omitempty"`
	Domain           string            `json:"domain,omitempty"`
	DomainLaTeX      string            `json:"domain_latex,omitempty"`
	Boundary         string            `json:"boundary,omitempty"`
	BoundaryComputed bool              `json:"boundary_computed"`
	Approximate      bool              `json:"approximate,omitempty"`
	Checked          bool              `json:"checked"`
	Verified         bool              `json:"verified"`
	Residual         string            `json:"residual,omitempty"`
	Numeric          sym.NumericValue  `json:"numeric"`
	Steps            []string          `json:"steps"`
	Statement        []string          `json:"statement,omitempty"`
	Notes            []string          `json:"notes,omitempty"`
}

// View flattens the record into strings.
func (r *Result) View() View {
	v := View{
		Kind:             r.Kind,
		Shape:            r.Shape,
		Params:           r.Params,
		Field:            r.Field,
		Scalar:           exprString(r.Scalar),
		Path:             r.Path,
		Domain:           exprString(r.Domain),
		Boundary:         exprString(r.Boundary),
		BoundaryComputed: r.BoundaryComputed,
		Approximate:      r.Approximate,
		Checked:          r.Verification.Checked,
		Verified:         r.Verification.Verified,
		Residual:         exprString(r.Verification.Residual),
		Numeric:          r.Numeric,
		Steps:            r.Steps,
		Statement:        r.Statement,
		Notes:            r.Notes,
	}
	if r.Domain != nil {
		v.DomainLaTeX = r.Domain.LaTeX()
	}
	for _, c := range r.Vector {
		v.Vector = append(v.Vector, exprString(c))
	}
	return v
}

// Title is a one-line description used by the history store.
func (r *Result) Title() string {
	switch r.Kind {
	case KindTriple:
		return fmt.Sprintf("Triple integral of %s", exprString(r.Scalar))
	case KindGreen:
		return fmt.Sprintf("Green's theorem on %s: F = (%s)", r.Shape, strings.Join(r.Field, ", "))
	case KindDivergence:
		return fmt.Sprintf("Divergence theorem on %s: F = (%s)", r.Shape, strings.Join(r.Field, ", "))
	case KindStokes:
		return fmt.Sprintf("Stokes' theorem on %s: F = (%s)", r.Shape, strings.Join(r.Field, ", "))
	}
	return string(r.Kind)
}

func exprString(e sym.Expr) string {
	if e == nil {
		return ""
	}
	return e.String()
}

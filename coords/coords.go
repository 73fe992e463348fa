// Package coords holds the coordinate systems and region transforms used by
// the integral solvers: the substitution of Cartesian variables and the
// Jacobian multiplier of each change of variables.
package coords

import (
	"errors"
	"fmt"
	"strings"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var (
	ErrUnsupportedSystem    = errors.New("unsupported coordinate system")
	ErrUnsupportedTransform = errors.New("unsupported transform")
)

// System is one of the coordinate systems of the triple integral solver.
type System int

const (
	Rectangular System = iota
	Cylindrical
	Spherical
)

func (s System) String() string {
	switch s {
	case Rectangular:
		return "rectangular"
	case Cylindrical:
		return "cylindrical"
	case Spherical:
		return "spherical"
	}
	return fmt.Sprintf("System(%d)", int(s))
}

var systemNames = map[string]System{
	"rectangular":   Rectangular,
	"rectangulares": Rectangular,
	"cartesian":     Rectangular,
	"cartesianas":   Rectangular,
	"cylindrical":   Cylindrical,
	"cilindrica":    Cylindrical,
	"cilindricas":   Cylindrical,
	"cilíndrica":    Cylindrical,
	"cilíndricas":   Cylindrical,
	"spherical":     Spherical,
	"esferica":      Spherical,
	"esfericas":     Spherical,
	"esférica":      Spherical,
	"esféricas":     Spherical,
}

// ParseSystem resolves a system name. The empty string means rectangular.
func ParseSystem(name string) (System, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Rectangular, nil
	}
	if s, ok := systemNames[key]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: %q (use rectangular, cylindrical or spherical)", ErrUnsupportedSystem, name)
}

// Transform maps natural coordinates onto Cartesian ones.
type Transform struct {
	Name string
	// Vars are the natural coordinates, in the order used by JacobianMatrix.
	Vars []string
	// Substitution rewrites each Cartesian variable in natural coordinates.
	Substitution []sym.Binding
	Jacobian     sym.Expr
	Bindings     sym.Bindings
}

// Apply rewrites e in natural coordinates.
func (t Transform) Apply(e sym.Expr) sym.Expr {
	return sym.SubAll(e, t.Substitution)
}

// Pullback rewrites e in natural coordinates and multiplies by the Jacobian.
func (t Transform) Pullback(e sym.Expr) sym.Expr {
	return sym.MulOf(t.Apply(e), t.Jacobian)
}

// Identity reports whether the transform leaves every variable unchanged.
func (t Transform) Identity() bool {
	for _, b := range t.Substitution {
		if !b.Value.Equal(sym.S(b.Var)) {
			return false
		}
	}
	return true
}

// SubstitutionString renders the substitution as "x = ..., y = ...".
func (t Transform) SubstitutionString() string {
	parts := make([]string, 0, len(t.Substitution))
	for _, b := range t.Substitution {
		parts = append(parts, b.Var+" = "+b.Value.String())
	}
	return strings.Join(parts, ", ")
}

var (
	r, theta          = sym.S("r"), sym.S("theta")
	rho, phi          = sym.S("rho"), sym.S("phi")
	cosTheta          = sym.CosOf(theta)
	sinTheta          = sym.SinOf(theta)
	cosPhi, sinPhi    = sym.CosOf(phi), sym.SinOf(phi)
	sphericalJacobian = sym.MulOf(sym.PowOf(rho, sym.N(2)), sinPhi)
)

// ForSystem returns the transform of a triple integral system.
func ForSystem(s System) (Transform, error) {
	switch s {
	case Rectangular:
		return Transform{
			Name:         "rectangular",
			Vars:         []string{"x", "y", "z"},
			Substitution: nil,
			Jacobian:     sym.N(1),
			Bindings:     sym.Cartesian3,
		}, nil
	case Cylindrical:
		return CylindricalShell(), nil
	case Spherical:
		return Transform{
			Name: "spherical",
			Vars: []string{"rho", "phi", "theta"},
			Substitution: []sym.Binding{
				{Var: "x", Value: sym.MulOf(rho, sinPhi, cosTheta)},
				{Var: "y", Value: sym.MulOf(rho, sinPhi, sinTheta)},
				{Var: "z", Value: sym.MulOf(rho, cosPhi)},
			},
			Jacobian: sphericalJacobian,
			Bindings: sym.Spherical,
		}, nil
	}
	return Transform{}, fmt.Errorf("%w: %s", ErrUnsupportedSystem, s)
}

// CylindricalShell is the cylindrical change of variables used for full
// cylinders, cones and shells.
func CylindricalShell() Transform {
	return Transform{
		Name: "cylindrical",
		Vars: []string{"r", "theta", "z"},
		Substitution: []sym.Binding{
			{Var: "x", Value: sym.MulOf(r, cosTheta)},
			{Var: "y", Value: sym.MulOf(r, sinTheta)},
		},
		Jacobian: r,
		Bindings: sym.Cylindrical,
	}
}

// Polar is the plane polar transform centred at (cx, cy).
func Polar(cx, cy sym.Expr) Transform {
	return Transform{
		Name: "polar",
		Vars: []string{"r", "theta"},
		Substitution: []sym.Binding{
			{Var: "x", Value: sym.AddOf(cx, sym.MulOf(r, cosTheta))},
			{Var: "y", Value: sym.AddOf(cy, sym.MulOf(r, sinTheta))},
		},
		Jacobian: r,
		Bindings: sym.NewBindings("polar", "r", "theta").WithAlias("θ", "theta"),
	}
}

// Elliptical maps the unit disk onto the ellipse with semi-axes a, b centred at (cx, cy).
func Elliptical(a, b, cx, cy sym.Expr) Transform {
	return Transform{
		Name: "elliptical",
		Vars: []string{"r", "theta"},
		Substitution: []sym.Binding{
			{Var: "x", Value: sym.AddOf(cx, sym.MulOf(a, r, cosTheta))},
			{Var: "y", Value: sym.AddOf(cy, sym.MulOf(b, r, sinTheta))},
		},
		Jacobian: sym.MulOf(a, b, r),
		Bindings: sym.NewBindings("elliptical", "r", "theta").WithAlias("θ", "theta"),
	}
}

// Ellipsoidal maps the unit ball onto the ellipsoid with semi-axes a, b, c.
func Ellipsoidal(a, b, c sym.Expr) Transform {
	return Transform{
		Name: "ellipsoidal",
		Vars: []string{"rho", "phi", "theta"},
		Substitution: []sym.Binding{
			{Var: "x", Value: sym.MulOf(a, rho, sinPhi, cosTheta)},
			{Var: "y", Value: sym.MulOf(b, rho, sinPhi, sinTheta)},
			{Var: "z", Value: sym.MulOf(c, rho, cosPhi)},
		},
		Jacobian: sym.MulOf(a, b, c, sphericalJacobian),
		Bindings: sym.Spherical,
	}
}

// Named resolves a region transform by name. params supplies the centre and
// semi-axes; missing entries default to 0 for centres and 1 for axes.
func Named(name string, params map[string]sym.Expr) (Transform, error) {
	get := func(key string, def int64) sym.Expr {
		if v, ok := params[key]; ok && v != nil {
			return v
		}
		return sym.N(def)
	}
	switch strings.ToLower(name) {
	case "rectangular", "identity":
		return ForSystem(Rectangular)
	case "cylindrical", "cylindrical-shell":
		return CylindricalShell(), nil
	case "spherical":
		return ForSystem(Spherical)
	case "polar":
		return Polar(get("cx", 0), get("cy", 0)), nil
	case "elliptical":
		return Elliptical(get("a", 1), get("b", 1), get("cx", 0), get("cy", 0)), nil
	case "ellipsoidal":
		return Ellipsoidal(get("a", 1), get("b", 1), get("c", 1)), nil
	}
	return Transform{}, fmt.Errorf("%w: %q", ErrUnsupportedTransform, name)
}

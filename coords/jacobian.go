package coords

import (
	"strings"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var cartesianNames = []string{"x", "y", "z"}

// JacobianMatrix returns ∂(x, y[, z]) / ∂(Vars), row per Cartesian variable.
func (t Transform) JacobianMatrix() [][]sym.Expr {
	n := len(t.Vars)
	rows := make([][]sym.Expr, n)
	for i := 0; i < n; i++ {
		image := t.image(cartesianNames[i])
		rows[i] = make([]sym.Expr, n)
		for j, v := range t.Vars {
			rows[i][j] = sym.Diff(image, v)
		}
	}
	return rows
}

// DerivedJacobian is the determinant of JacobianMatrix in canonical form.
// It agrees with Jacobian for every transform of the package.
func (t Transform) DerivedJacobian() sym.Expr {
	return sym.Canonicalize(Determinant(t.JacobianMatrix()))
}

func (t Transform) image(name string) sym.Expr {
	for _, b := range t.Substitution {
		if b.Var == name {
			return b.Value
		}
	}
	return sym.S(name)
}

// Determinant expands along the first row.
func Determinant(m [][]sym.Expr) sym.Expr {
	n := len(m)
	switch n {
	case 0:
		return sym.N(1)
	case 1:
		return m[0][0]
	case 2:
		return sym.SubOf(sym.MulOf(m[0][0], m[1][1]), sym.MulOf(m[0][1], m[1][0]))
	}
	terms := make([]sym.Expr, n)
	for j := 0; j < n; j++ {
		term := sym.MulOf(m[0][j], Determinant(minor(m, 0, j)))
		if j%2 == 1 {
			term = sym.Negate(term)
		}
		terms[j] = term
	}
	return sym.AddOf(terms...)
}

func minor(m [][]sym.Expr, skipRow, skipCol int) [][]sym.Expr {
	out := make([][]sym.Expr, 0, len(m)-1)
	for i, row := range m {
		if i == skipRow {
			continue
		}
		r := make([]sym.Expr, 0, len(row)-1)
		for j, e := range row {
			if j != skipCol {
				r = append(r, e)
			}
		}
		out = append(out, r)
	}
	return out
}

// ============================================================
// Jacobian-already-applied detection
// ============================================================

// JacobianIncluded guesses from the raw integrand text whether the user has
// already multiplied in the Jacobian of s. It only ever answers true for
// cylindrical and spherical integrands. The rules are textual and can misfire
// on equivalent rewrites such as "2*r+1".
func JacobianIncluded(text string, s System) bool {
	clean := strings.ToLower(strings.ReplaceAll(text, " ", ""))
	switch s {
	case Cylindrical:
		switch clean {
		case "r", "r+z", "r-z", "r+theta", "r-theta":
			return true
		}
		for _, prefix := range []string{"r+", "r-", "r*", "r/", "r**"} {
			if strings.HasPrefix(clean, prefix) {
				return true
			}
		}
		return strings.Contains(clean, "r*z") || strings.Contains(clean, "r*theta")
	case Spherical:
		switch clean {
		case "rho**2", "r**2":
			return true
		}
		for _, full := range []string{"rho**2*sin(phi)", "r**2*sin(phi)", "ρ**2*sin(φ)", "ρ²*sin(φ)"} {
			if strings.Contains(clean, full) {
				return true
			}
		}
		if strings.Contains(clean, "sin(phi)") &&
			(strings.Contains(clean, "rho**2*") || strings.Contains(clean, "r**2*")) {
			return true
		}
	}
	return false
}

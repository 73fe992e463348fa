package coords_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalcmv/coords"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

func TestParseSystem(t *testing.T) {
	cases := map[string]coords.System{
		"":              coords.Rectangular,
		"rectangular":   coords.Rectangular,
		"Cartesian":     coords.Rectangular,
		"cilindricas":   coords.Cylindrical,
		" cylindrical ": coords.Cylindrical,
		"esférica":      coords.Spherical,
		"spherical":     coords.Spherical,
	}
	for name, want := range cases {
		got, err := coords.ParseSystem(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := coords.ParseSystem("toroidal")
	assert.ErrorIs(t, err, coords.ErrUnsupportedSystem)
}

func TestForSystem_Jacobians(t *testing.T) {
	rect, err := coords.ForSystem(coords.Rectangular)
	require.NoError(t, err)
	assert.True(t, rect.Jacobian.Equal(sym.N(1)))
	assert.True(t, rect.Identity())

	cyl, err := coords.ForSystem(coords.Cylindrical)
	require.NoError(t, err)
	assert.Equal(t, "r", cyl.Jacobian.String())
	assert.Equal(t, sym.Cylindrical.Name(), cyl.Bindings.Name())

	sph, err := coords.ForSystem(coords.Spherical)
	require.NoError(t, err)
	want := sym.MulOf(sym.PowOf(sym.S("rho"), sym.N(2)), sym.SinOf(sym.S("phi")))
	assert.True(t, sph.Jacobian.Equal(want), "got %s", sph.Jacobian)

	_, err = coords.ForSystem(coords.System(9))
	assert.ErrorIs(t, err, coords.ErrUnsupportedSystem)
}

func TestPullback_Cylindrical(t *testing.T) {
	cyl := coords.CylindricalShell()
	x, y := sym.S("x"), sym.S("y")
	e := sym.AddOf(sym.PowOf(x, sym.N(2)), sym.PowOf(y, sym.N(2)))

	assert.True(t, sym.Equivalent(cyl.Apply(e), sym.PowOf(sym.S("r"), sym.N(2))))
	assert.True(t, sym.Equivalent(cyl.Pullback(e), sym.PowOf(sym.S("r"), sym.N(3))))
}

func TestPolar_Centred(t *testing.T) {
	p := coords.Polar(sym.N(1), sym.N(-2))
	got := p.Apply(sym.S("x"))
	want := sym.AddOf(sym.N(1), sym.MulOf(sym.S("r"), sym.CosOf(sym.S("theta"))))
	assert.True(t, got.Equal(want), "got %s", got)
	assert.Equal(t, "x = cos(theta)*r + 1, y = sin(theta)*r - 2", p.SubstitutionString())
}

func TestDerivedJacobian_MatchesTable(t *testing.T) {
	transforms := []coords.Transform{
		coords.Polar(sym.S("cx"), sym.S("cy")),
		coords.Elliptical(sym.N(2), sym.N(3), sym.N(0), sym.N(0)),
		coords.CylindricalShell(),
	}
	for _, tr := range transforms {
		got := tr.DerivedJacobian()
		assert.True(t, sym.Equivalent(got, tr.Jacobian), "%s: want %s, got %s", tr.Name, tr.Jacobian, got)
	}
}

func TestDeterminant_Numeric(t *testing.T) {
	m := [][]sym.Expr{
		{sym.N(2), sym.N(0), sym.N(1)},
		{sym.N(1), sym.N(3), sym.N(2)},
		{sym.N(1), sym.N(1), sym.N(1)},
	}
	// 2(3-2) - 0 + 1(1-3) = 0
	assert.True(t, coords.Determinant(m).Equal(sym.N(0)))
}

func TestNamed(t *testing.T) {
	tr, err := coords.Named("elliptical", map[string]sym.Expr{"a": sym.N(2)})
	require.NoError(t, err)
	assert.True(t, tr.Jacobian.Equal(sym.MulOf(sym.N(2), sym.S("r"))), "got %s", tr.Jacobian)

	_, err = coords.Named("toroidal", nil)
	assert.ErrorIs(t, err, coords.ErrUnsupportedTransform)
}

func TestJacobianIncluded(t *testing.T) {
	cases := []struct {
		text string
		sys  coords.System
		want bool
	}{
		{"r", coords.Cylindrical, true},
		{"R", coords.Cylindrical, true},
		{"1", coords.Cylindrical, false},
		{"r * z", coords.Cylindrical, true},
		{"r**2", coords.Cylindrical, true},
		{"z*r*theta", coords.Cylindrical, true},
		{"2*r+1", coords.Cylindrical, false},
		{"z*r", coords.Cylindrical, false},
		{"rho**2*sin(phi)", coords.Spherical, true},
		{"rho**2 * cos(theta) * sin(phi)", coords.Spherical, true},
		{"rho**2", coords.Spherical, true},
		{"sin(phi)", coords.Spherical, false},
		{"1", coords.Spherical, false},
		{"r", coords.Rectangular, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, coords.JacobianIncluded(c.text, c.sys), "%q in %s", c.text, c.sys)
	}
}

package calcmv_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

func TestStokes_RotationOnUnitDisk(t *testing.T) {
	res, err := calcmv.New().ApplyStokes("-y", "x", "0", calcmv.Shape{Tag: "disco"})
	require.NoError(t, err)

	twoPi := sym.MulOf(sym.N(2), sym.Pi)
	require.Len(t, res.Vector, 3)
	assert.Equal(t, "0", res.Vector[0].String())
	assert.Equal(t, "0", res.Vector[1].String())
	assert.Equal(t, "2", res.Vector[2].String())
	assert.True(t, sym.Equivalent(res.Domain, twoPi), "domain = %s", res.Domain)
	assert.True(t, sym.Equivalent(res.Boundary, twoPi), "boundary = %s", res.Boundary)
	assert.True(t, res.BoundaryComputed)
	assert.True(t, res.Verification.Verified)
	assert.InDelta(t, 2*math.Pi, res.Numeric.Value, 1e-9)
}

func TestStokes_SurfacesWithSameRim(t *testing.T) {
	e := calcmv.New()
	for _, tag := range []string{"disco", "plano", "paraboloide"} {
		t.Run(tag, func(t *testing.T) {
			res, err := e.ApplyStokes("-y", "x", "0", calcmv.Shape{Tag: tag})
			require.NoError(t, err)
			assert.InDelta(t, 2*math.Pi, value(t, res.Domain), 1e-9)
		})
	}
}

func TestStokes_SurfaceOnly(t *testing.T) {
	e := calcmv.New()
	for _, tag := range []string{"plano", "paraboloide", "cilindro"} {
		t.Run(tag, func(t *testing.T) {
			res, err := e.ApplyStokes("y", "z", "x", calcmv.Shape{Tag: tag})
			require.NoError(t, err)
			assert.False(t, res.BoundaryComputed)
			assert.False(t, res.Verification.Checked)
			assert.Equal(t, res.Domain, res.Boundary)
		})
	}
}

func TestStokes_CylinderWall(t *testing.T) {
	res, err := calcmv.New().ApplyStokes("y*z", "-x*z", "0", calcmv.Shape{Tag: "cilindro"})
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi, value(t, res.Domain), 1e-9)
}

func TestStokes_TiltedPlane(t *testing.T) {
	// curl F = (1, 1, 1); the normal (-a, -b, 1) = (-1, 0, 1) makes the
	// integrand vanish.
	res, err := calcmv.New().ApplyStokes("z", "x", "y", calcmv.Shape{
		Tag:    "plano",
		Params: map[string]string{"a": "1", "c": "3"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0, value(t, res.Domain), 1e-12)
}

func TestStokes_AreaElementSteps(t *testing.T) {
	tests := []struct {
		tag    string
		params map[string]string
		want   []string
	}{
		{"disco", nil, []string{"n̂ = (0, 0, 1)", "dS = r dr dθ", "(∇×F)·n̂ dS = (∇×F)·N r dr dθ"}},
		{"plano", map[string]string{"a": "1"}, []string{
			"N = (-1, 0, 1)",
			"n̂ = (-1, 0, 1)/√(2)",
			"dS = √(2)·r dr dθ",
			"(∇×F)·n̂ dS = (∇×F)·N r dr dθ",
		}},
		{"plano", nil, []string{"n̂ = (0, 0, 1)", "dS = r dr dθ"}},
		{"paraboloide", nil, []string{
			"N = (2*x, 2*y, 1)",
			"n̂ = (2x, 2y, 1)/√(4x² + 4y² + 1)",
			"dS = √(4x² + 4y² + 1)·r dr dθ",
			"(∇×F)·n̂ dS = (∇×F)·N r dr dθ",
		}},
		{"cilindro", map[string]string{"R": "2"}, []string{
			"n̂ = (cos θ, sin θ, 0)",
			"dS = 2 dθ dz",
			"(∇×F)·n̂ dS = (∇×F)·N 2 dθ dz",
		}},
	}
	e := calcmv.New()
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			res, err := e.ApplyStokes("-y", "x", "0", calcmv.Shape{Tag: tt.tag, Params: tt.params})
			require.NoError(t, err)
			steps := strings.Join(res.Steps, "\n")
			for _, w := range tt.want {
				assert.Contains(t, steps, w)
			}
			assert.Less(t, strings.Index(steps, "dS = "), strings.Index(steps, "Integrand: "))
		})
	}
}

func TestStokes_Deterministic(t *testing.T) {
	e := calcmv.New()
	shape := calcmv.Shape{Tag: "paraboloide", Params: map[string]string{"a": "2", "R": "1"}}
	first, err := e.ApplyStokes("y*z", "x**2", "x*y", shape)
	require.NoError(t, err)
	second, err := e.ApplyStokes("y*z", "x**2", "x*y", shape)
	require.NoError(t, err)
	assert.Equal(t, first.View(), second.View())
}

func TestStokes_IrrotationalField(t *testing.T) {
	res, err := calcmv.New().ApplyStokes("2*x", "2*y", "2*z", calcmv.Shape{Tag: "disco", Params: map[string]string{"R": "3"}})
	require.NoError(t, err)
	assert.True(t, sym.ZeroEquivalent(res.Domain))
	assert.True(t, res.Verification.Verified)
	assert.Contains(t, res.Notes[1], "irrotational")
}

func TestStokes_Errors(t *testing.T) {
	e := calcmv.New()
	_, err := e.ApplyStokes("x", "y", "z", calcmv.Shape{Tag: "esfera"})
	assert.ErrorIs(t, err, calcmv.ErrUnsupportedRegion)

	_, err = e.ApplyStokes("x", "y", "sqrt(", calcmv.Shape{Tag: "disco"})
	assert.ErrorIs(t, err, calcmv.ErrParse)
	var pe *sym.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = e.ApplyStokes("x", "y", "z", calcmv.Shape{Tag: "cilindro", Params: map[string]string{"h": "0"}})
	assert.ErrorIs(t, err, calcmv.ErrValidation)
}

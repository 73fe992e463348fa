package calcmv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

func TestDivergence_Regions(t *testing.T) {
	tests := []struct {
		name       string
		fx, fy, fz string
		shape      calcmv.Shape
		path       calcmv.FieldPath
		want       float64
	}{
		{"unit sphere radial field", "x", "y", "z", calcmv.Shape{Tag: "esfera"}, calcmv.ConstantFieldPath, 4 * math.Pi},
		{"sphere cubic field", "0", "0", "z**3", calcmv.Shape{Tag: "esfera"}, calcmv.GeneralFieldPath, 4 * math.Pi / 5},
		{"cylinder radial field", "x", "y", "z", calcmv.Shape{Tag: "cilindro"}, calcmv.ConstantFieldPath, 6 * math.Pi},
		{"cube", "x**3", "0", "0", calcmv.Shape{Tag: "cubo"}, calcmv.GeneralFieldPath, 8},
		{"ellipsoid", "x", "0", "0", calcmv.Shape{Tag: "elipsoide"}, calcmv.GeneralFieldPath, 8 * math.Pi / 3},
		{"cone", "0", "0", "z", calcmv.Shape{Tag: "cono"}, calcmv.GeneralFieldPath, 2 * math.Pi / 3},
		{"shell", "x", "y", "0", calcmv.Shape{Tag: "entre_superficies"}, calcmv.GeneralFieldPath, 12 * math.Pi},
	}
	e := calcmv.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.ApplyDivergence(tt.fx, tt.fy, tt.fz, tt.shape)
			require.NoError(t, err)
			assert.Equal(t, tt.path, res.Path)
			assert.InDelta(t, tt.want, value(t, res.Domain), 1e-9)
			assert.Equal(t, res.Domain, res.Boundary)
			assert.False(t, res.BoundaryComputed)
			assert.False(t, res.Verification.Checked)
			require.True(t, res.Numeric.Evaluable)
			assert.InDelta(t, tt.want, res.Numeric.Value, 1e-9)
		})
	}
}

func TestDivergence_UnitSphereIsExact(t *testing.T) {
	res, err := calcmv.New().ApplyDivergence("x", "y", "z", calcmv.Shape{Tag: "esfera"})
	require.NoError(t, err)
	assert.Equal(t, "3", res.Scalar.String())
	assert.True(t, sym.Equivalent(res.Domain, sym.MulOf(sym.N(4), sym.Pi)), "domain = %s", res.Domain)
}

func TestDivergence_CylinderRadiusAlias(t *testing.T) {
	res, err := calcmv.New().ApplyDivergence("x", "0", "0", calcmv.Shape{
		Tag:    "cilindro",
		Params: map[string]string{"a": "2", "h": "1"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 4*math.Pi, value(t, res.Domain), 1e-9)
	assert.Equal(t, "2", res.Params["R"])
}

func TestDivergence_SymbolicRadius(t *testing.T) {
	res, err := calcmv.New().ApplyDivergence("x", "y", "z", calcmv.Shape{
		Tag:    "esfera",
		Params: map[string]string{"R": "a"},
	})
	require.NoError(t, err)
	want := sym.MulOf(sym.N(4), sym.Pi, sym.PowOf(sym.S("a"), sym.N(3)))
	assert.True(t, sym.Equivalent(res.Domain, want), "domain = %s", res.Domain)
	assert.False(t, res.Numeric.Evaluable)
	assert.Contains(t, res.Numeric.Reason, "a")
}

func TestDivergence_Errors(t *testing.T) {
	e := calcmv.New()
	_, err := e.ApplyDivergence("x", "y", "z", calcmv.Shape{Tag: "toro"})
	assert.ErrorIs(t, err, calcmv.ErrUnsupportedRegion)

	_, err = e.ApplyDivergence("x", "y", "w", calcmv.Shape{Tag: "esfera"})
	assert.ErrorIs(t, err, calcmv.ErrParse)

	_, err = e.ApplyDivergence("x", "y", "z", calcmv.Shape{Tag: "entre_superficies", Params: map[string]string{"R_int": "5"}})
	assert.ErrorIs(t, err, calcmv.ErrValidation)
}

func TestDivergence_SourceNote(t *testing.T) {
	res, err := calcmv.New().ApplyDivergence("x", "y", "z", calcmv.Shape{Tag: "esfera"})
	require.NoError(t, err)
	assert.Contains(t, res.Notes[1], "source")
}

func TestDivergence_Deterministic(t *testing.T) {
	e := calcmv.New()
	shape := calcmv.Shape{Tag: "cilindro", Params: map[string]string{"R": "2", "h": "3"}}
	first, err := e.ApplyDivergence("x*y", "y*z", "z**2", shape)
	require.NoError(t, err)
	second, err := e.ApplyDivergence("x*y", "y*z", "z**2", shape)
	require.NoError(t, err)
	assert.Equal(t, first.View(), second.View())
}

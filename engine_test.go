package calcmv_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

func TestVerify(t *testing.T) {
	x := sym.S("x")
	lhs := sym.AddOf(sym.PowOf(sym.SinOf(x), sym.N(2)), sym.PowOf(sym.CosOf(x), sym.N(2)))

	v := calcmv.Verify(lhs, sym.N(1))
	assert.True(t, v.Checked)
	assert.True(t, v.Verified)
	assert.Equal(t, "0", v.Residual.String())

	v = calcmv.Verify(sym.N(3), sym.N(1))
	assert.True(t, v.Checked)
	assert.False(t, v.Verified)
	assert.Equal(t, "2", v.Residual.String())
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&calcmv.StageError{Stage: "boundary integral", Err: cause})
	assert.EqualError(t, err, "boundary integral: boom")
	assert.ErrorIs(t, err, calcmv.ErrIntegration)
	assert.ErrorIs(t, err, cause)
}

func TestResultView(t *testing.T) {
	res, err := calcmv.New().ApplyGreen("-y", "x", calcmv.Shape{Tag: "disco"})
	require.NoError(t, err)

	v := res.View()
	assert.Equal(t, calcmv.KindGreen, v.Kind)
	assert.Equal(t, "disco", v.Shape)
	assert.Equal(t, []string{"-y", "x"}, v.Field)
	assert.Equal(t, "2", v.Scalar)
	assert.Equal(t, calcmv.ConstantFieldPath, v.Path)
	assert.True(t, v.Verified)
	assert.NotEmpty(t, v.DomainLaTeX)
	assert.Equal(t, "0", v.Residual)
	assert.Equal(t, "Green's theorem on disco: F = (-y, x)", res.Title())
}

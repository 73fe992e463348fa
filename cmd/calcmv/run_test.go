package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
)

const batchYAML = `
problems:
  - title: unit disk rotation
    kind: green
    field: ["-y", "x"]
    shape: {tag: disco}
  - kind: triple
    integrand: "1"
    limits:
      - {var: x, lower: "0", upper: "1"}
      - {var: y, lower: "0", upper: "2"}
      - {var: z, lower: "0", upper: "3"}
  - kind: gauss
    field: [x, y, z]
    shape:
      tag: cubo
      params: {a: "2", b: "2", c: "2"}
`

func TestRunCmd(t *testing.T) {
	sandbox(t)
	require.NoError(t, os.WriteFile("problems.yaml", []byte(batchYAML), 0o644))

	out, err := execute(t, "run", "problems.yaml", "-j", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/3] unit disk rotation")
	assert.Contains(t, out, "[2/3] triple")
	assert.Contains(t, out, "[3/3] divergence")
	assert.Contains(t, out, "3 of 3 problems solved")
	assert.Contains(t, out, "6.000000")
	assert.Contains(t, out, "24.000000")
}

func TestRunCmd_FailedProblem(t *testing.T) {
	sandbox(t)
	require.NoError(t, os.WriteFile("problems.yaml", []byte(`
problems:
  - kind: green
    field: [x, y]
    shape: {tag: toro}
  - kind: green
    field: ["-y", "x"]
    shape: {tag: disco}
`), 0o644))

	out, err := execute(t, "run", "problems.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, calcmv.ErrUnsupportedRegion)
	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, "1 of 2 problems solved")

	_, err = execute(t, "run", "problems.yaml", "--fail-fast")
	assert.ErrorIs(t, err, calcmv.ErrUnsupportedRegion)
}

func TestLoadProblems(t *testing.T) {
	sandbox(t)

	_, err := loadProblems("missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile("empty.yaml", []byte("problems: []\n"), 0o644))
	_, err = loadProblems("empty.yaml")
	assert.ErrorIs(t, err, calcmv.ErrValidation)

	require.NoError(t, os.WriteFile("typo.yaml", []byte("problem:\n  - kind: green\n"), 0o644))
	_, err = loadProblems("typo.yaml")
	assert.ErrorIs(t, err, calcmv.ErrValidation)

	require.NoError(t, os.WriteFile("ok.yaml", []byte(batchYAML), 0o644))
	problems, err := loadProblems("ok.yaml")
	require.NoError(t, err)
	require.Len(t, problems, 3)
	assert.Equal(t, "2", problems[2].Shape.Params["a"])
	assert.Equal(t, []string{"x", "y", "z"}, problems[2].Field)
}

func TestSolveAll_Order(t *testing.T) {
	sandbox(t)
	a := &app{}
	require.NoError(t, a.setup(&discard{}))

	problems := make([]calcmv.Problem, 8)
	for i := range problems {
		problems[i] = calcmv.Problem{
			Kind:  calcmv.KindGreen,
			Field: []string{"-y", "x"},
			Shape: calcmv.Shape{Tag: "rectangulo", Params: map[string]string{"a": "1", "b": string(rune('1' + i))}},
		}
	}
	outcomes, err := a.solveAll(context.Background(), problems, 3, false)
	require.NoError(t, err)
	require.Len(t, outcomes, len(problems))
	for i, o := range outcomes {
		require.NoError(t, o.err)
		assert.Equal(t, string(rune('1'+i)), o.res.Params["b"])
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

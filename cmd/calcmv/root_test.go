package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
	"github.com/njchilds90/gocalcmv/history"
	"github.com/njchilds90/gocalcmv/internal/config"
)

// sandbox isolates configuration and history in a temporary directory and
// returns the history file path.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	hist := filepath.Join(dir, "historial_mv.json")
	t.Setenv("CALCMV_CONFIG", "")
	t.Setenv("CALCMV_COLOR", "never")
	t.Setenv("CALCMV_HISTORY", hist)
	return hist
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTripleCmd(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "triple", "1", "-l", "x=0:1", "-l", "y=0:2", "-l", "z=0:3")
	require.NoError(t, err)
	assert.Contains(t, out, "Triple integral of 1")
	assert.Contains(t, out, "6.000000")

	out, err = execute(t, "triple", "r", "--system", "cylindrical", "--jacobian-included",
		"-l", "r=0:1", "-l", "theta=0:2*pi", "-l", "z=0:1")
	require.NoError(t, err)
	assert.Contains(t, out, "3.141593")

	_, err = execute(t, "triple", "1", "-l", "x0:1")
	assert.ErrorIs(t, err, calcmv.ErrValidation)

	_, err = execute(t, "triple", "1", "--system", "toroidal", "-l", "x=0:1")
	assert.ErrorIs(t, err, calcmv.ErrUnsupportedCoordinateSystem)
}

func TestTheoremCmds(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "green", "--", "-y", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "Green's theorem on disco")
	assert.Contains(t, out, "✔ verified")
	assert.Contains(t, out, "6.283185")

	out, err = execute(t, "green", "--shape", "rectangulo", "-p", "a=2", "-p", "b=3", "--", "-y", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "12.000000")

	out, err = execute(t, "gauss", "x", "y", "z")
	require.NoError(t, err)
	assert.Contains(t, out, "12.566371")
	assert.Contains(t, out, "(not computed)")

	out, err = execute(t, "stokes", "--shape", "plano", "--", "-y", "x", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "(0, 0, 2)")
}

func TestTheoremCmd_Errors(t *testing.T) {
	sandbox(t)

	_, err := execute(t, "green", "--shape", "estrella", "x", "y")
	assert.ErrorIs(t, err, calcmv.ErrUnsupportedRegion)

	_, err = execute(t, "green", "-p", "R", "x", "y")
	assert.ErrorIs(t, err, calcmv.ErrValidation)

	_, err = execute(t, "green", "-p", "R=1", "-p", "R=2", "x", "y")
	assert.ErrorIs(t, err, calcmv.ErrValidation)

	_, err = execute(t, "green", "x**", "y")
	assert.ErrorIs(t, err, calcmv.ErrParse)

	_, err = execute(t, "stokes", "x", "y")
	assert.Error(t, err)
}

func TestPartialResultIsPrinted(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "green", "0", "exp(x**2)")
	require.Error(t, err)
	assert.ErrorIs(t, err, calcmv.ErrIntegration)
	assert.Contains(t, out, "Green's theorem on disco")
}

func TestCatalogCmd(t *testing.T) {
	sandbox(t)

	out, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "entre_superficies")
	assert.Contains(t, out, "paraboloide")
}

func TestConfigErrors(t *testing.T) {
	sandbox(t)
	t.Setenv("CALCMV_PRECISION", "many")

	_, err := execute(t, "catalog")
	assert.ErrorIs(t, err, config.ErrConfigValidation)

	t.Setenv("CALCMV_PRECISION", "2")
	out, err := execute(t, "triple", "1", "-l", "x=0:1", "-l", "y=0:2", "-l", "z=0:3")
	require.NoError(t, err)
	assert.Contains(t, out, "6.00")
	assert.NotContains(t, out, "6.000")
}

func TestConfigFileFlag(t *testing.T) {
	sandbox(t)
	require.NoError(t, os.WriteFile("custom.yaml", []byte("precision: 1\n"), 0o644))

	out, err := execute(t, "--config", "custom.yaml", "gauss", "x", "y", "z")
	require.NoError(t, err)
	assert.Contains(t, out, "12.6")
	assert.NotContains(t, out, "12.56")

	_, err = execute(t, "--config", "missing.yaml", "catalog")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAndHistory(t *testing.T) {
	hist := sandbox(t)

	out, err := execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "history is empty")

	out, err = execute(t, "--save", "green", "--", "-y", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "saved as ")

	records, err := history.NewStore(hist).Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	id := records[0].ID

	out, err = execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, shortID(id))
	assert.Contains(t, out, "Green's theorem on disco")

	out, err = execute(t, "history", "show", id[:8])
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "LaTeX: ")

	_, err = execute(t, "history", "show", "zzz")
	assert.ErrorIs(t, err, history.ErrNotFound)

	out, err = execute(t, "history", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Calculation history</h1>")

	out, err = execute(t, "history", "export", "-o", "history.html")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 records to history.html")
	html, err := os.ReadFile("history.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h2>")

	_, err = execute(t, "history", "clear")
	assert.Error(t, err)

	out, err = execute(t, "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "history cleared")

	out, err = execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "history is empty")
}

func TestParseLimit(t *testing.T) {
	lim, err := parseLimit(" theta = 0 : 2*pi ")
	require.NoError(t, err)
	assert.Equal(t, calcmv.Limit{Var: "theta", Lower: "0", Upper: "2*pi"}, lim)

	for _, bad := range []string{"x", "x=0", "=0:1", "x0:1"} {
		_, err := parseLimit(bad)
		assert.ErrorIs(t, err, calcmv.ErrValidation, bad)
	}
}

func TestParseParams(t *testing.T) {
	p, err := parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = parseParams([]string{"R=2", " cx = 1 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"R": "2", "cx": "1"}, p)
}

func TestUseColor(t *testing.T) {
	assert.True(t, useColor("always", &bytes.Buffer{}))
	assert.False(t, useColor("never", os.Stdout))
	assert.False(t, useColor("auto", &bytes.Buffer{}))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

package symbolic_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

func TestIntegrate_PowerRule(t *testing.T) {
	x := sym.S("x")
	got, err := sym.Integrate(sym.PowOf(x, sym.N(2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := sym.MulOf(sym.F(1, 3), sym.PowOf(x, sym.N(3)))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestIntegrate_Reciprocal(t *testing.T) {
	got, err := sym.Integrate(sym.PowOf(sym.S("x"), sym.N(-1)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "ln(abs(x))" {
		t.Errorf("want ln(abs(x)), got %s", got)
	}
}

func TestIntegrate_ConstantFactor(t *testing.T) {
	a, x := sym.S("a"), sym.S("x")
	got, err := sym.Integrate(sym.MulOf(a, x), "x")
	if err != nil {
		t.Fatal(err)
	}
	want := sym.MulOf(sym.F(1, 2), a, sym.PowOf(x, sym.N(2)))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDefiniteIntegral_SinSquaredFullTurn(t *testing.T) {
	th := sym.S("t")
	got, err := sym.DefiniteIntegral(sym.PowOf(sym.SinOf(th), sym.N(2)), "t", sym.N(0), sym.MulOf(sym.N(2), sym.Pi))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sym.Pi) {
		t.Errorf("want pi, got %s", got)
	}
}

func TestDefiniteIntegral_ByParts(t *testing.T) {
	x := sym.S("x")
	got, err := sym.DefiniteIntegral(sym.MulOf(x, sym.ExpOf(x)), "x", sym.N(0), sym.N(1))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sym.N(1)) {
		t.Errorf("want 1, got %s", got)
	}
}

func TestDefiniteIntegral_PolynomialTimesCos(t *testing.T) {
	x := sym.S("x")
	// ∫_0^π x cos(x) dx = -2
	got, err := sym.DefiniteIntegral(sym.MulOf(x, sym.CosOf(x)), "x", sym.N(0), sym.Pi)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sym.N(-2)) {
		t.Errorf("want -2, got %s", got)
	}
}

func TestDefiniteIntegral_Substitution(t *testing.T) {
	x := sym.S("x")
	integrand := sym.MulOf(x, sym.SqrtOf(sym.AddOf(sym.PowOf(x, sym.N(2)), sym.N(1))))
	got, err := sym.DefiniteIntegral(integrand, "x", sym.N(0), sym.N(1))
	if err != nil {
		t.Fatal(err)
	}
	want := (2*math.Sqrt2 - 1) / 3
	n := sym.Numeric(got)
	if !n.Evaluable || math.Abs(n.Value-want) > 1e-12 {
		t.Errorf("want %v, got %s (%v)", want, got, n)
	}
}

func TestDefiniteIntegral_SymbolicBounds(t *testing.T) {
	x := sym.S("x")
	R := sym.S("R")
	got, err := sym.DefiniteIntegral(x, "x", sym.N(0), R)
	if err != nil {
		t.Fatal(err)
	}
	want := sym.MulOf(sym.F(1, 2), sym.PowOf(R, sym.N(2)))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestIntegrate_NoClosedForm(t *testing.T) {
	x := sym.S("x")
	_, err := sym.Integrate(sym.ExpOf(sym.PowOf(x, sym.N(2))), "x")
	if !errors.Is(err, sym.ErrNoClosedForm) {
		t.Fatalf("want ErrNoClosedForm, got %v", err)
	}
	if !strings.Contains(err.Error(), "exp(x^2)") {
		t.Errorf("error should name the term, got %v", err)
	}
}

func TestNumeric_Outcomes(t *testing.T) {
	n := sym.Numeric(sym.MulOf(sym.N(2), sym.Pi))
	if !n.Evaluable || math.Abs(n.Value-2*math.Pi) > 1e-12 {
		t.Errorf("want 2pi, got %v", n)
	}
	n = sym.Numeric(sym.MulOf(sym.N(2), sym.S("a")))
	if n.Evaluable {
		t.Errorf("2*a should not be evaluable")
	}
	if !strings.Contains(n.Reason, "a") {
		t.Errorf("reason should name the free symbol, got %q", n.Reason)
	}
	n = sym.Numeric(sym.LnOf(sym.N(0)))
	if n.Evaluable {
		t.Errorf("ln(0) should not be evaluable")
	}
}

func TestNumeric_TanPoles(t *testing.T) {
	for _, k := range []int64{1, 3, -1} {
		e := sym.TanOf(sym.MulOf(sym.F(k, 2), sym.Pi))
		if n := sym.Numeric(e); n.Evaluable {
			t.Errorf("%s should not be evaluable, got %v", e, n.Value)
		}
	}
	n := sym.Numeric(sym.TanOf(sym.N(1)))
	if !n.Evaluable || math.Abs(n.Value-math.Tan(1)) > 1e-12 {
		t.Errorf("want tan(1), got %v", n)
	}
	if got := sym.TanOf(sym.DivOf(sym.Pi, sym.N(4))); !got.Equal(sym.N(1)) {
		t.Errorf("want 1, got %s", got)
	}
}

func TestDefiniteIntegral_SingularInside(t *testing.T) {
	x := sym.S("x")
	tests := []struct {
		name     string
		expr     sym.Expr
		lo, hi   sym.Expr
		singular bool
	}{
		{"reciprocal across zero", sym.PowOf(x, sym.N(-1)), sym.N(-1), sym.N(1), true},
		{"reversed bounds", sym.PowOf(x, sym.N(-2)), sym.N(2), sym.N(-1), true},
		{"shifted linear pole", sym.PowOf(sym.SubOf(sym.MulOf(sym.N(2), x), sym.N(1)), sym.N(-1)), sym.N(0), sym.N(1), true},
		{"reciprocal away from zero", sym.PowOf(x, sym.N(-1)), sym.N(1), sym.N(2), false},
		{"positive quadratic", sym.PowOf(sym.AddOf(sym.PowOf(x, sym.N(2)), sym.N(1)), sym.N(-1)), sym.N(-3), sym.N(3), false},
		{"log from zero", sym.LnOf(x), sym.N(0), sym.N(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sym.DefiniteIntegral(tt.expr, "x", tt.lo, tt.hi)
			if got := errors.Is(err, sym.ErrSingular); got != tt.singular {
				t.Errorf("want singular %v, got err %v", tt.singular, err)
			}
		})
	}

	v, err := sym.DefiniteIntegral(sym.PowOf(x, sym.N(-1)), "x", sym.N(1), sym.N(2))
	if err != nil {
		t.Fatal(err)
	}
	if n := sym.Numeric(v); !n.Evaluable || math.Abs(n.Value-math.Ln2) > 1e-12 {
		t.Errorf("want ln 2, got %v", n)
	}
}

package symbolic

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoClosedForm reports an integrand outside the supported rule set.
	ErrNoClosedForm = errors.New("no closed-form antiderivative")
	// ErrSingular reports an integrand that blows up strictly inside the
	// interval, where F(upper) - F(lower) has no meaning.
	ErrSingular = errors.New("integrand singular inside the interval")
)

// ============================================================
// Integration (rule-based symbolic)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName.
//
// The integrand is expanded and trig-linearised first, so every term is a
// constant times varName^n times at most one of sin/cos/exp of a linear
// argument, ln(varName), (a·v+b)^p or (c·v²+d)^p.
func Integrate(expr Expr, varName string) (Expr, error) {
	terms := termsOf(TrigReduce(expr))
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		r, err := integrateTerm(t, varName)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return AddOf(out...), nil
}

// DefiniteIntegral evaluates ∫_lower^upper expr d(varName) as F(upper) - F(lower).
func DefiniteIntegral(expr Expr, varName string, lower, upper Expr) (Expr, error) {
	anti, err := Integrate(expr, varName)
	if err != nil {
		return nil, err
	}
	if u, ok := singularInside(expr, anti, varName, lower, upper); ok {
		return nil, fmt.Errorf("%w: %s = 0 for some %s in (%s, %s)", ErrSingular, u, varName, lower, upper)
	}
	hi := anti.Sub(varName, upper)
	lo := anti.Sub(varName, lower)
	return Canonicalize(SubOf(hi, lo)), nil
}

const singularSamples = 128

// singularInside looks for a denominator or logarithm argument of the
// integrand or its antiderivative that vanishes or changes sign strictly
// between numeric bounds. Zeros at the bounds themselves are left to the
// evaluation.
func singularInside(expr, anti Expr, varName string, lower, upper Expr) (Expr, bool) {
	l, ok1 := lower.Eval()
	h, ok2 := upper.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	a, b := l.Float64(), h.Float64()
	if a > b {
		a, b = b, a
	}
	if a == b {
		return nil, false
	}
	var bases []Expr
	poles(expr, varName, true, &bases)
	poles(anti, varName, false, &bases)
	for _, u := range bases {
		if changesSign(u, varName, a, b) {
			return u, true
		}
	}
	return nil, false
}

// poles collects the subexpressions of e whose zeros make e blow up:
// bases raised to negative powers and, with logs, arguments of ln.
func poles(e Expr, varName string, negPowers bool, out *[]Expr) {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			poles(t, varName, negPowers, out)
		}
	case *Mul:
		for _, f := range v.factors {
			poles(f, varName, negPowers, out)
		}
	case *Pow:
		if n, ok := v.exp.(*Num); ok && negPowers && n.IsNegative() && Depends(v.base, varName) {
			*out = append(*out, v.base)
		}
		poles(v.base, varName, negPowers, out)
		poles(v.exp, varName, negPowers, out)
	case *Func:
		if v.name == "ln" && Depends(v.arg, varName) {
			arg := v.arg
			if abs, ok := arg.(*Func); ok && abs.name == "abs" {
				arg = abs.arg
			}
			*out = append(*out, arg)
		}
		poles(v.arg, varName, negPowers, out)
	}
}

// changesSign samples u on [a, b] and reports a zero or a sign flip in the
// open interval. Expressions with other free symbols are skipped.
func changesSign(u Expr, varName string, a, b float64) bool {
	if len(FreeSymbols(u)) != 1 {
		return false
	}
	at := func(x float64) (float64, bool) {
		n, ok := floatNum(x)
		if !ok {
			return 0, false
		}
		r, ok := u.Sub(varName, n).Eval()
		if !ok {
			return 0, false
		}
		return r.Float64(), true
	}
	prev := 0.0
	for k := 0; k <= singularSamples; k++ {
		x := a + (b-a)*float64(k)/singularSamples
		y, ok := at(x)
		if !ok {
			if k > 0 && k < singularSamples {
				return true
			}
			continue
		}
		interior := k > 0 && k < singularSamples
		if interior && math.Abs(y) < 1e-12 {
			return true
		}
		if prev != 0 && y != 0 && (prev < 0) != (y < 0) {
			return true
		}
		prev = y
	}
	return false
}

func integrateTerm(t Expr, varName string) (Expr, error) {
	x := S(varName)
	if !Depends(t, varName) {
		return MulOf(t, x), nil
	}
	var consts []Expr
	n := N(0)
	var special Expr
	for _, f := range factorsOf(t) {
		if !Depends(f, varName) {
			consts = append(consts, f)
			continue
		}
		if s, ok := f.(*Sym); ok && s.name == varName {
			n = numAdd(n, N(1))
			continue
		}
		if p, ok := f.(*Pow); ok {
			s, isVar := p.base.(*Sym)
			en, isNum := p.exp.(*Num)
			if isVar && isNum && s.name == varName {
				n = numAdd(n, en)
				continue
			}
		}
		if special != nil {
			return nil, noClosedForm(t, varName)
		}
		special = f
	}
	anti, ok := antiderivative(n, special, varName)
	if !ok {
		return nil, noClosedForm(t, varName)
	}
	return MulOf(append(consts, anti)...), nil
}

func noClosedForm(t Expr, varName string) error {
	return fmt.Errorf("%w: ∫ %s d%s", ErrNoClosedForm, t.String(), varName)
}

// antiderivative integrates varName^n * special, special being nil or a single factor.
func antiderivative(n *Num, special Expr, varName string) (Expr, bool) {
	x := S(varName)
	if special == nil {
		if n.IsNegOne() {
			return LnOf(AbsOf(x)), true
		}
		m := numAdd(n, N(1))
		return MulOf(numRecip(m), PowOf(x, m)), true
	}

	switch f := special.(type) {
	case *Func:
		switch f.name {
		case "sin", "cos", "exp":
			a, _, ok := linearIn(f.arg, varName)
			k, isInt := n.Int64()
			if !ok || !isInt || k < 0 || k > 12 {
				return nil, false
			}
			return powTimesElementary(k, f.name, f.arg, a, x), true
		case "ln":
			if !isVarOrAbs(f.arg, varName) {
				return nil, false
			}
			lnx := LnOf(f.arg)
			if n.IsNegOne() {
				return MulOf(F(1, 2), PowOf(lnx, N(2))), true
			}
			m := numAdd(n, N(1))
			return SubOf(
				MulOf(numRecip(m), PowOf(x, m), lnx),
				MulOf(numRecip(numMul(m, m)), PowOf(x, m)),
			), true
		}
	case *Pow:
		p, ok := f.exp.(*Num)
		if !ok {
			return nil, false
		}
		if a, _, ok := linearIn(f.base, varName); ok && n.IsZero() {
			if p.IsNegOne() {
				return MulOf(PowOf(a, N(-1)), LnOf(AbsOf(f.base))), true
			}
			m := numAdd(p, N(1))
			return MulOf(PowOf(MulOf(a, m), N(-1)), PowOf(f.base, m)), true
		}
		if c, ok := quadraticNoLinear(f.base, varName); ok && n.IsOne() {
			if p.IsNegOne() {
				return MulOf(PowOf(MulOf(N(2), c), N(-1)), LnOf(AbsOf(f.base))), true
			}
			m := numAdd(p, N(1))
			return MulOf(PowOf(MulOf(N(2), c, m), N(-1)), PowOf(f.base, m)), true
		}
	}
	return nil, false
}

// powTimesElementary integrates x^n·g(arg), g ∈ {sin, cos, exp}, arg = a·x + b,
// by repeated integration by parts.
func powTimesElementary(n int64, name string, arg, a Expr, x *Sym) Expr {
	inv := PowOf(a, N(-1))
	var first Expr
	var next string
	sign := N(-1)
	switch name {
	case "sin":
		first = MulOf(N(-1), inv, CosOf(arg))
		next = "cos"
		sign = N(1)
	case "cos":
		first = MulOf(inv, SinOf(arg))
		next = "sin"
	default:
		first = MulOf(inv, ExpOf(arg))
		next = "exp"
	}
	if n == 0 {
		return first
	}
	rest := powTimesElementary(n-1, next, arg, a, x)
	return AddOf(
		MulOf(PowOf(x, N(n)), first),
		MulOf(sign, N(n), inv, rest),
	)
}

// linearIn reports e = a·v + b with a, b free of v and a non-zero.
func linearIn(e Expr, varName string) (Expr, Expr, bool) {
	if !Depends(e, varName) {
		return nil, nil, false
	}
	a := Diff(e, varName)
	if Depends(a, varName) || isNumEqual(a, 0) {
		return nil, nil, false
	}
	return a, Sub(e, varName, N(0)), true
}

// quadraticNoLinear reports e = c·v² + d and returns c.
func quadraticNoLinear(e Expr, varName string) (Expr, bool) {
	d1 := Diff(e, varName)
	d2 := Diff(d1, varName)
	if Depends(d2, varName) || isNumEqual(d2, 0) {
		return nil, false
	}
	if !isNumEqual(Canonicalize(Sub(d1, varName, N(0))), 0) {
		return nil, false
	}
	return MulOf(F(1, 2), d2), true
}

func isVarOrAbs(e Expr, varName string) bool {
	if s, ok := e.(*Sym); ok {
		return s.name == varName
	}
	if f, ok := e.(*Func); ok && f.name == "abs" {
		return isVarOrAbs(f.arg, varName)
	}
	return false
}

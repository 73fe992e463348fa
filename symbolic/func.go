package symbolic

import (
	"math"
	"strings"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "cosh": true}
)

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if m, ok := arg.(*Mul); ok && hasAddFactor(m) {
		arg = Expand(arg)
	}

	switch f.name {
	case "sin", "cos", "tan":
		if v, ok := trigExact(f.name, arg); ok {
			return v
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "abs":
		return absSimplify(arg)
	case "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "acos":
		if isNumEqual(arg, 1) {
			return N(0)
		}
	}

	if isNegativeForm(arg) {
		switch {
		case oddFuncs[f.name]:
			return MulOf(N(-1), funcOf(f.name, Negate(arg)).Simplify())
		case evenFuncs[f.name]:
			return funcOf(f.name, Negate(arg)).Simplify()
		}
	}
	return &Func{name: f.name, arg: arg}
}

// trigExact handles rational multiples of π and shifts by multiples of π/2.
func trigExact(name string, arg Expr) (Expr, bool) {
	if q, ok := piCoefficient(arg); ok {
		switch name {
		case "sin":
			return sinRational(q)
		case "cos":
			return sinRational(numAdd(q, F(1, 2)))
		case "tan":
			s, ok1 := sinRational(q)
			c, ok2 := sinRational(numAdd(q, F(1, 2)))
			if ok1 && ok2 && !isNumEqual(c, 0) {
				return DivOf(s, c), true
			}
		}
		return nil, false
	}
	add, ok := arg.(*Add)
	if !ok {
		return nil, false
	}
	q, rest, ok := splitPiTerm(add)
	if !ok {
		return nil, false
	}
	r := numMod(q, N(2))
	half := numMod(r, F(1, 2))
	if !half.IsZero() {
		if r.Equal(q) {
			return nil, false
		}
		return &Func{name: name, arg: AddOf(rest, MulOf(r, Pi))}, true
	}
	quarter, _ := numMul(r, N(2)).Int64()
	if name == "tan" {
		if quarter%2 == 0 {
			return TanOf(rest), true
		}
		return MulOf(N(-1), PowOf(TanOf(rest), N(-1))), true
	}
	if name == "cos" {
		quarter++
	}
	switch quarter % 4 {
	case 0:
		return SinOf(rest), true
	case 1:
		return CosOf(rest), true
	case 2:
		return MulOf(N(-1), SinOf(rest)), true
	default:
		return MulOf(N(-1), CosOf(rest)), true
	}
}

// sinRational returns sin(q·π) for q with denominator 1, 2, 3, 4 or 6.
func sinRational(q *Num) (Expr, bool) {
	r := numMod(q, N(2))
	if !numSub(r, N(1)).IsNegative() {
		v, ok := sinRational(numSub(r, N(1)))
		if !ok {
			return nil, false
		}
		return Negate(v), true
	}
	if numSub(r, F(1, 2)).IsPositive() {
		r = numSub(N(1), r)
	}
	switch r.String() {
	case "0":
		return N(0), true
	case "1/6":
		return F(1, 2), true
	case "1/4":
		return MulOf(F(1, 2), SqrtOf(N(2))), true
	case "1/3":
		return MulOf(F(1, 2), SqrtOf(N(3))), true
	case "1/2":
		return N(1), true
	}
	return nil, false
}

func piCoefficient(e Expr) (*Num, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsZero() {
			return v, true
		}
	case *Const:
		if v.Equal(Pi) {
			return N(1), true
		}
	case *Mul:
		if len(v.factors) == 2 {
			c, ok1 := v.factors[0].(*Num)
			if ok1 && v.factors[1].Equal(Pi) {
				return c, true
			}
		}
	}
	return nil, false
}

func splitPiTerm(a *Add) (*Num, Expr, bool) {
	for i, t := range a.terms {
		q, ok := piCoefficient(t)
		if !ok || q.IsZero() {
			continue
		}
		rest := make([]Expr, 0, len(a.terms)-1)
		rest = append(rest, a.terms[:i]...)
		rest = append(rest, a.terms[i+1:]...)
		return q, AddOf(rest...), true
	}
	return nil, nil, false
}

func absSimplify(arg Expr) Expr {
	switch v := arg.(type) {
	case *Num:
		return numAbs(v)
	case *Const:
		if v.value >= 0 {
			return v
		}
	case *Func:
		if v.name == "abs" || v.name == "exp" || v.name == "cosh" {
			return v
		}
	case *Pow:
		if en, ok := v.exp.(*Num); ok && en.IsInteger() {
			if k, _ := en.Int64(); k%2 == 0 {
				return v
			}
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			_, rest := extractCoefficient(v)
			return MulOf(numAbs(c), AbsOf(rest))
		}
	}
	return &Func{name: "abs", arg: arg}
}

// isNegativeForm reports whether e prints with a leading minus sign.
func isNegativeForm(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		c, ok := v.factors[0].(*Num)
		return ok && c.IsNegative()
	case *Add:
		return isNegativeForm(v.terms[0])
	}
	return false
}

func hasAddFactor(m *Mul) bool {
	for _, f := range m.factors {
		if _, ok := f.(*Add); ok {
			return true
		}
	}
	return false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin", "acos", "atan":
		return "\\arc" + strings.TrimPrefix(f.name, "a") + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if isNumEqual(du, 0) {
		return N(0)
	}
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

const poleTolerance = 1e-12

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	switch f.name {
	case "sin":
		return floatNum(math.Sin(v))
	case "cos":
		return floatNum(math.Cos(v))
	case "tan":
		// Poles at odd multiples of π/2 only miss +Inf by rounding.
		if math.Abs(math.Cos(v)) < poleTolerance {
			return nil, false
		}
		return floatNum(math.Tan(v))
	case "exp":
		return floatNum(math.Exp(v))
	case "ln":
		return floatNum(math.Log(v))
	case "abs":
		return numAbs(n), true
	case "asin":
		return floatNum(math.Asin(v))
	case "acos":
		return floatNum(math.Acos(v))
	case "atan":
		return floatNum(math.Atan(v))
	case "sinh":
		return floatNum(math.Sinh(v))
	case "cosh":
		return floatNum(math.Cosh(v))
	case "tanh":
		return floatNum(math.Tanh(v))
	}
	return nil, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Negate(b)) }

// Simplify collects like terms: every term is split into a rational
// coefficient and a rest keyed by its printed form.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	sort.Strings(order)
	result := []Expr{}
	for _, key := range order {
		coeff := coeffs[key]
		if coeff.IsZero() {
			continue
		}
		result = append(result, scaled(coeff, rests[key]))
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if neg, ok := negatedTerm(t); ok {
			sb.WriteString(" - ")
			sb.WriteString(neg.String())
			continue
		}
		sb.WriteString(" + ")
		sb.WriteString(t.String())
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.LaTeX())
			continue
		}
		if neg, ok := negatedTerm(t); ok {
			sb.WriteString(" - ")
			sb.WriteString(neg.LaTeX())
			continue
		}
		sb.WriteString(" + ")
		sb.WriteString(t.LaTeX())
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf returns a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// Simplify folds the rational coefficient, merges powers of the same base
// and products of exponentials, then orders the remaining factors.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	order := []string{}
	var expArgs []Expr
	for _, f := range flat {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Func:
			if v.name == "exp" {
				expArgs = append(expArgs, v.arg)
				continue
			}
		}
		base, exp := powParts(f)
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := []Expr{}
	refold := false
	absorb := func(p Expr) {
		switch v := p.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			refold = true
			others = append(others, v.factors...)
		default:
			others = append(others, p)
		}
	}
	if len(expArgs) == 1 {
		absorb(&Func{name: "exp", arg: expArgs[0]})
	} else if len(expArgs) > 1 {
		absorb(ExpOf(AddOf(expArgs...)))
	}
	for _, key := range order {
		g := groups[key]
		if len(g.exps) == 1 && isNumEqual(g.exps[0], 1) {
			others = append(others, g.base)
			continue
		}
		absorb(PowOf(g.base, AddOf(g.exps...)))
	}
	if refold {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(sorted) == 1 {
			return sorted[0]
		}
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	prefix := ""
	parts := make([]string, 0, len(m.factors))
	for i, f := range m.factors {
		if c, ok := f.(*Num); ok && i == 0 {
			switch {
			case c.IsNegOne():
				prefix = "-"
			case !c.IsInteger():
				parts = append(parts, "("+c.String()+")")
			default:
				parts = append(parts, c.String())
			}
			continue
		}
		if _, isAdd := f.(*Add); isAdd {
			parts = append(parts, "("+f.String()+")")
		} else {
			parts = append(parts, f.String())
		}
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	prefix := ""
	parts := make([]string, 0, len(m.factors))
	for i, f := range m.factors {
		if c, ok := f.(*Num); ok && i == 0 && c.IsNegOne() {
			prefix = "-"
			continue
		}
		if _, isAdd := f.(*Add); isAdd {
			parts = append(parts, "\\left("+f.LaTeX()+"\\right)")
		} else {
			parts = append(parts, f.LaTeX())
		}
	}
	return prefix + strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(append([]Expr{dfi}, others...)...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// extractCoefficient splits a canonical term into its rational coefficient and the rest.
func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// scaled rebuilds coeff*rest for an already canonical rest.
func scaled(coeff *Num, rest Expr) Expr {
	if coeff.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{coeff}, m.factors...)}
	}
	return &Mul{factors: []Expr{coeff, rest}}
}

func negatedTerm(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := &Mul{factors: v.factors[1:]}
			if len(rest.factors) == 1 {
				return scaled(numNeg(c), rest.factors[0]), true
			}
			return scaled(numNeg(c), rest), true
		}
	}
	return nil, false
}

func powParts(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		switch {
		case bn.IsZero():
			// 0^0 is indeterminate; 0^negative is division by zero.
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		case bn.IsOne():
			return N(1)
		}
		if expIsNum {
			if r, ok := numPow(bn, en); ok {
				return r
			}
		}
		return &Pow{base: base, exp: exp}
	}

	if inner, ok := base.(*Pow); ok && expIsNum {
		if en.IsInteger() || isPositiveConstant(inner.base) {
			return PowOf(inner.base, MulOf(inner.exp, exp))
		}
	}
	if m, ok := base.(*Mul); ok && expIsNum {
		if en.IsInteger() {
			factors := make([]Expr, len(m.factors))
			for i, f := range m.factors {
				factors[i] = PowOf(f, exp)
			}
			return MulOf(factors...)
		}
		if c, ok := m.factors[0].(*Num); ok && c.IsPositive() {
			_, rest := extractCoefficient(m)
			return MulOf(PowOf(c, exp), &Pow{base: rest, exp: exp})
		}
	}
	if f, ok := base.(*Func); ok && f.name == "exp" && expIsNum && en.IsInteger() {
		return ExpOf(MulOf(f.arg, en))
	}
	return &Pow{base: base, exp: exp}
}

// numPow evaluates b^e exactly when the result is rational, and otherwise
// normalises positive bases to c * n^f with integer n and 0 < f < 1.
func numPow(b, e *Num) (Expr, bool) {
	if k, ok := e.Int64(); ok {
		if k > 4096 || k < -4096 {
			return nil, false
		}
		return numPowInt(b, k), true
	}
	if !b.IsPositive() {
		return nil, false
	}
	whole := numFloor(e)
	frac := numSub(e, whole)
	if !whole.IsZero() {
		k, ok := whole.Int64()
		if !ok || k > 4096 || k < -4096 {
			return nil, false
		}
		return MulOf(numPowInt(b, k), PowOf(b, frac)), true
	}
	if !b.IsInteger() {
		num := Q(new(big.Rat).SetInt(b.val.Num()))
		den := Q(new(big.Rat).SetInt(b.val.Denom()))
		return MulOf(PowOf(num, frac), PowOf(den, numNeg(frac))), true
	}
	p := frac.val.Num().Int64()
	q := frac.val.Denom().Int64()
	outside, inside := extractPowerFactor(b.val.Num(), q)
	if outside.Cmp(big.NewInt(1)) == 0 {
		return nil, false
	}
	out := numPowInt(Q(new(big.Rat).SetInt(outside)), p)
	if inside.Cmp(big.NewInt(1)) == 0 {
		return out, true
	}
	return MulOf(out, &Pow{base: Q(new(big.Rat).SetInt(inside)), exp: frac}), true
}

// extractPowerFactor writes n = outside^q * inside using small trial divisors.
func extractPowerFactor(n *big.Int, q int64) (*big.Int, *big.Int) {
	outside := big.NewInt(1)
	inside := new(big.Int).Set(n)
	if r, ok := exactRoot(inside, q); ok {
		return r, big.NewInt(1)
	}
	for d := int64(2); d <= 1000; d++ {
		dq := new(big.Int).Exp(big.NewInt(d), big.NewInt(q), nil)
		if dq.Cmp(inside) > 0 {
			break
		}
		for new(big.Int).Mod(inside, dq).Sign() == 0 {
			inside.Quo(inside, dq)
			outside.Mul(outside, big.NewInt(d))
		}
	}
	return outside, inside
}

func exactRoot(n *big.Int, q int64) (*big.Int, bool) {
	if !n.IsInt64() || n.Sign() <= 0 {
		return nil, false
	}
	guess := int64(math.Round(math.Pow(float64(n.Int64()), 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c <= 0 {
			continue
		}
		if new(big.Int).Exp(big.NewInt(c), big.NewInt(q), nil).Cmp(n) == 0 {
			return big.NewInt(c), true
		}
	}
	return nil, false
}

func isPositiveConstant(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsPositive()
	case *Const:
		return v.value > 0
	}
	return false
}

func (p *Pow) String() string {
	return wrapBase(p.base, p.base.String(), "(", ")") + "^" + wrapExp(p.exp, p.exp.String(), "(", ")")
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.Equal(F(1, 2)) {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	return wrapBase(p.base, p.base.LaTeX(), "\\left(", "\\right)") + "^{" + p.exp.LaTeX() + "}"
}

func wrapBase(base Expr, s, open, close string) string {
	switch v := base.(type) {
	case *Add, *Mul, *Pow:
		return open + s + close
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return open + s + close
		}
	}
	return s
}

func wrapExp(exp Expr, s, open, close string) string {
	switch v := exp.(type) {
	case *Sym, *Const:
		return s
	case *Num:
		if v.IsInteger() && !v.IsNegative() {
			return s
		}
	}
	return open + s + close
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if _, baseIsNum := p.base.(*Num); baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	return floatNum(math.Pow(b.Float64(), e.Float64()))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

package symbolic

import "sort"

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

// Negate returns -e, distributing over sums so the result stays canonical.
func Negate(e Expr) Expr {
	if a, ok := e.(*Add); ok {
		terms := make([]Expr, len(a.terms))
		for i, t := range a.terms {
			terms[i] = MulOf(N(-1), t)
		}
		return AddOf(terms...)
	}
	return MulOf(N(-1), e)
}

// Binding is one entry of a substitution map.
type Binding struct {
	Var   string
	Value Expr
}

// SubAll applies the bindings in order.
func SubAll(e Expr, bindings []Binding) Expr {
	for _, b := range bindings {
		e = e.Sub(b.Var, b.Value)
	}
	return e.Simplify()
}

// ============================================================
// Expansion and trig linearisation
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp, _ := n.Int64()
			if _, baseIsAdd := v.base.(*Add); baseIsAdd && exp >= 0 && exp <= 12 {
				result := Expr(N(1))
				base := expandExpr(v.base)
				for i := int64(0); i < exp; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(expandExpr(v.base), v.exp)
	}
	return e
}

// distribute multiplies two expanded sums term by term. Building the product
// with MulOf would fold equal sums back into a power.
func distribute(a, b Expr) Expr {
	out := make([]Expr, 0, len(termsOf(a))*len(termsOf(b)))
	for _, ta := range termsOf(a) {
		for _, tb := range termsOf(b) {
			out = append(out, expandExpr(MulOf(ta, tb)))
		}
	}
	return AddOf(out...)
}

// TrigReduce expands e and rewrites every product or positive integer power
// of sin/cos into a sum of single sin/cos terms (product-to-sum).
func TrigReduce(e Expr) Expr {
	expanded := Expand(e)
	terms := termsOf(expanded)
	out := make([]Expr, len(terms))
	changed := false
	for i, t := range terms {
		out[i] = linearizeTerm(t)
		if out[i] != t {
			changed = true
		}
	}
	if !changed {
		return expanded
	}
	return AddOf(out...)
}

// Canonicalize is the normal form used for results and comparisons.
func Canonicalize(e Expr) Expr { return TrigReduce(e) }

// ZeroEquivalent reports whether e reduces to exactly zero.
func ZeroEquivalent(e Expr) bool { return isNumEqual(TrigReduce(e), 0) }

// Equivalent reports whether a and b share a normal form.
func Equivalent(a, b Expr) bool { return ZeroEquivalent(SubOf(a, b)) }

func linearizeTerm(t Expr) Expr {
	var rest []Expr
	var trig []*Func
	for _, f := range factorsOf(t) {
		if fn, ok := f.(*Func); ok && isSinCos(fn) {
			trig = append(trig, fn)
			continue
		}
		if p, ok := f.(*Pow); ok {
			fn, isFn := p.base.(*Func)
			n, isNum := p.exp.(*Num)
			if isFn && isSinCos(fn) && isNum {
				if k, ok := n.Int64(); ok && k > 0 && k <= 12 {
					for i := int64(0); i < k; i++ {
						trig = append(trig, fn)
					}
					continue
				}
			}
		}
		rest = append(rest, f)
	}
	if len(trig) < 2 {
		return t
	}
	acc := Expr(trig[0])
	for _, fn := range trig[1:] {
		acc = productToSum(acc, fn)
	}
	return Expand(MulOf(append(rest, acc)...))
}

// productToSum multiplies a sum of single-trig terms by fn and linearises each product.
func productToSum(acc Expr, fn *Func) Expr {
	terms := termsOf(acc)
	out := make([]Expr, 0, 2*len(terms))
	for _, t := range terms {
		var other *Func
		var coeff []Expr
		for _, f := range factorsOf(t) {
			if g, ok := f.(*Func); ok && isSinCos(g) && other == nil {
				other = g
				continue
			}
			coeff = append(coeff, f)
		}
		if other == nil {
			out = append(out, MulOf(t, fn))
			continue
		}
		out = append(out, MulOf(append(coeff, trigProduct(other, fn))...))
	}
	return Expand(AddOf(out...))
}

func trigProduct(a, b *Func) Expr {
	sum := AddOf(a.arg, b.arg)
	diff := SubOf(a.arg, b.arg)
	half := F(1, 2)
	switch {
	case a.name == "sin" && b.name == "sin":
		return MulOf(half, SubOf(CosOf(diff), CosOf(sum)))
	case a.name == "cos" && b.name == "cos":
		return MulOf(half, AddOf(CosOf(diff), CosOf(sum)))
	case a.name == "sin":
		return MulOf(half, AddOf(SinOf(sum), SinOf(diff)))
	default:
		return MulOf(half, SubOf(SinOf(sum), SinOf(diff)))
	}
}

func isSinCos(f *Func) bool { return f.name == "sin" || f.name == "cos" }

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

func factorsOf(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedSymbols lists the free symbols of e in lexical order.
func SortedSymbols(e Expr) []string {
	set := FreeSymbols(e)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// Depends reports whether varName occurs in e.
func Depends(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// IsConstant reports whether e has no free symbols.
func IsConstant(e Expr) bool { return len(FreeSymbols(e)) == 0 }

// ============================================================
// Partial Derivatives and Vector Calculus
// ============================================================

// Divergence returns ∇·F for a vector field.
func Divergence(field [3]Expr, vars [3]string) Expr {
	return AddOf(Diff(field[0], vars[0]), Diff(field[1], vars[1]), Diff(field[2], vars[2]))
}

// Curl returns ∇×F for a 3D vector field.
func Curl(field [3]Expr, vars [3]string) [3]Expr {
	return [3]Expr{
		SubOf(Diff(field[2], vars[1]), Diff(field[1], vars[2])),
		SubOf(Diff(field[0], vars[2]), Diff(field[2], vars[0])),
		SubOf(Diff(field[1], vars[0]), Diff(field[0], vars[1])),
	}
}

// Curl2D returns the scalar ∂Q/∂x - ∂P/∂y.
func Curl2D(p, q Expr, x, y string) Expr {
	return SubOf(Diff(q, x), Diff(p, y))
}

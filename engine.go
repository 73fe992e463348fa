// Package calcmv evaluates multivariable-calculus problems symbolically:
// triple integrals in rectangular, cylindrical and spherical coordinates,
// and the theorems of Green, Stokes and Gauss over a fixed catalog of
// regions, each with an ordered step trace.
//
// Every evaluator is a pure function of its inputs. Domain and boundary
// sides of a theorem are computed independently and compared exactly; a
// disagreement is reported in the result, never raised.
package calcmv

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

// Engine evaluates problems. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	log       *slog.Logger
	heuristic bool
}

type Option func(*Engine)

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithJacobianHeuristic controls the legacy text heuristic used when a
// triple integral request does not say whether the Jacobian is included.
// It is on by default; when off such integrands are always multiplied.
func WithJacobianHeuristic(on bool) Option {
	return func(e *Engine) { e.heuristic = on }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		heuristic: true,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ============================================================
// Trace
// ============================================================

type trace struct{ lines []string }

func (t *trace) add(format string, args ...interface{}) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

func (t *trace) blank() { t.lines = append(t.lines, "") }

// ============================================================
// Stages
// ============================================================

// stage runs fn, converting errors and panics into a *StageError.
func (e *Engine) stage(name string, fn func() (sym.Expr, error)) (out sym.Expr, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("stage panicked", "stage", name, "panic", rec, "stack", string(debug.Stack()))
			out, err = nil, &StageError{Stage: name, Err: fmt.Errorf("internal error: %v", rec)}
		}
	}()
	out, err = fn()
	if err != nil {
		e.log.Debug("stage failed", "stage", name, "err", err)
		return nil, &StageError{Stage: name, Err: err}
	}
	return out, nil
}

// guard turns a panic outside any stage into an error return.
func (e *Engine) guard(op string, err *error) {
	if rec := recover(); rec != nil {
		e.log.Error("evaluation panicked", "op", op, "panic", rec, "stack", string(debug.Stack()))
		*err = &StageError{Stage: op, Err: fmt.Errorf("internal error: %v", rec)}
	}
}

// limit is one definite integration: v from lo to hi.
type limit struct {
	v      string
	lo, hi sym.Expr
}

// symbolFor prints a variable the way the trace shows it.
func symbolFor(v string) string {
	switch v {
	case "theta":
		return "θ"
	case "phi":
		return "φ"
	case "rho":
		return "ρ"
	}
	return v
}

// iterate integrates e over each limit in turn, innermost first, tracing
// every sub-result.
func iterate(t *trace, e sym.Expr, limits []limit) (sym.Expr, error) {
	cur := e
	for _, l := range limits {
		next, err := sym.DefiniteIntegral(cur, l.v, l.lo, l.hi)
		if err != nil {
			return nil, fmt.Errorf("∫ d%s: %w", l.v, err)
		}
		t.add("∫ from %s to %s of [%s] d%s = %s", l.lo, l.hi, cur, symbolFor(l.v), next)
		cur = next
	}
	return cur, nil
}

// numeric attempts the final numeric evaluation and traces the outcome.
func numeric(t *trace, e sym.Expr) sym.NumericValue {
	n := sym.Numeric(e)
	if n.Evaluable {
		t.add("Numeric value ≈ %.10g", n.Value)
	} else {
		t.add("Numeric evaluation skipped: %s", n.Reason)
	}
	return n
}

// Verify compares a domain integral with its boundary counterpart.
func Verify(domain, boundary sym.Expr) Verification {
	residual := sym.Canonicalize(sym.SubOf(domain, boundary))
	return Verification{
		Checked:  true,
		Verified: sym.ZeroEquivalent(residual),
		Residual: residual,
	}
}

func traceVerification(t *trace, v Verification, lhs, rhs string) {
	if v.Verified {
		t.add("Verified: %s = %s", lhs, rhs)
		return
	}
	t.add("Mismatch: %s - %s = %s", lhs, rhs, v.Residual)
	if n := sym.Numeric(v.Residual); n.Evaluable && n.Value > -1e-9 && n.Value < 1e-9 {
		t.add("The residual evaluates to ≈ 0; the two closed forms differ only symbolically")
	}
}

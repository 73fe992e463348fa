package calcmv

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gocalcmv/coords"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

// Limit bounds one integration variable. Bounds may reference the
// variables integrated after it.
type Limit struct {
	Var   string `json:"var" yaml:"var"`
	Lower string `json:"lower" yaml:"lower"`
	Upper string `json:"upper" yaml:"upper"`
}

// TripleRequest describes an iterated integral. Order lists the variables
// innermost first and defaults to the order of Limits. JacobianIncluded
// states whether Integrand already carries the Jacobian; nil falls back to
// the engine's text heuristic.
type TripleRequest struct {
	Integrand        string   `json:"integrand" yaml:"integrand"`
	System           string   `json:"system,omitempty" yaml:"system,omitempty"`
	Order            []string `json:"order,omitempty" yaml:"order,omitempty"`
	Limits           []Limit  `json:"limits" yaml:"limits"`
	JacobianIncluded *bool    `json:"jacobian_included,omitempty" yaml:"jacobian_included,omitempty"`
}

// SolveTriple integrates req.Integrand over its limits in the requested
// coordinate system.
func (e *Engine) SolveTriple(req TripleRequest) (res *Result, err error) {
	defer e.guard("triple", &err)

	sys, err := coords.ParseSystem(req.System)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCoordinateSystem, req.System)
	}
	tf, err := coords.ForSystem(sys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCoordinateSystem, err)
	}
	f, err := sym.Parse(req.Integrand, tf.Bindings)
	if err != nil {
		return nil, fmt.Errorf("integrand: %w", err)
	}
	limits, err := resolveLimits(req, tf)
	if err != nil {
		return nil, err
	}

	tr := &trace{}
	res = &Result{
		Kind:      KindTriple,
		Field:     []string{f.String()},
		Params:    map[string]string{"system": sys.String()},
		Statement: tripleStatement,
		Path:      GeneralFieldPath,
	}
	tr.add("Coordinate system: %s", sys)
	if !tf.Identity() {
		tr.add("Substitution: %s", tf.SubstitutionString())
	}
	tr.add("Integrand: %s", f)

	integrand := f
	switch {
	case sys == coords.Rectangular:
		tr.add("Jacobian: 1")
	case e.jacobianIncluded(req, sys):
		tr.add("Jacobian %s already included in the integrand", tf.Jacobian)
	default:
		integrand = sym.MulOf(f, tf.Jacobian)
		tr.add("Jacobian: %s, integrand becomes %s", tf.Jacobian, integrand)
	}
	res.Scalar = integrand

	order := make([]string, len(limits))
	for i, l := range limits {
		order[i] = symbolFor(l.v)
	}
	tr.blank()
	tr.add("Integration order: %s", strings.Join(order, ", "))

	value, serr := e.stage("triple integral", func() (sym.Expr, error) {
		return iterate(tr, integrand, limits)
	})
	if serr != nil {
		tr.add("Integration failed: %v", serr)
		res.Steps = tr.lines
		return res, serr
	}
	tr.blank()
	tr.add("Result: %s", value)
	res.Domain, res.Boundary = value, value
	res.Numeric = numeric(tr, value)
	res.Steps = tr.lines
	return res, nil
}

func (e *Engine) jacobianIncluded(req TripleRequest, sys coords.System) bool {
	if req.JacobianIncluded != nil {
		return *req.JacobianIncluded
	}
	if !e.heuristic {
		return false
	}
	included := coords.JacobianIncluded(req.Integrand, sys)
	e.log.Warn("jacobian heuristic applied", "integrand", req.Integrand, "system", sys.String(), "included", included)
	return included
}

// resolveLimits canonicalises variable names and orders the limits
// innermost first.
func resolveLimits(req TripleRequest, tf coords.Transform) ([]limit, error) {
	canonical := func(name string) (string, error) {
		s, ok := tf.Bindings.Symbol(strings.TrimSpace(name))
		if !ok {
			return "", fmt.Errorf("%w: %q is not a %s variable (use %s)", ErrParse, name, tf.Name, strings.Join(tf.Vars, ", "))
		}
		return s.Name(), nil
	}

	byVar := make(map[string]limit, len(req.Limits))
	var declared []string
	for _, l := range req.Limits {
		v, err := canonical(l.Var)
		if err != nil {
			return nil, err
		}
		if _, dup := byVar[v]; dup {
			return nil, validationf("limits for %s given twice", v)
		}
		lo, err := sym.Parse(l.Lower, tf.Bindings)
		if err != nil {
			return nil, fmt.Errorf("lower limit of %s: %w", v, err)
		}
		hi, err := sym.Parse(l.Upper, tf.Bindings)
		if err != nil {
			return nil, fmt.Errorf("upper limit of %s: %w", v, err)
		}
		byVar[v] = limit{v, lo, hi}
		declared = append(declared, v)
	}

	order := declared
	if len(req.Order) > 0 {
		order = make([]string, 0, len(req.Order))
		seen := map[string]bool{}
		for _, name := range req.Order {
			v, err := canonical(name)
			if err != nil {
				return nil, err
			}
			if seen[v] {
				return nil, validationf("%s appears twice in the integration order", v)
			}
			if _, ok := byVar[v]; !ok {
				return nil, fmt.Errorf("%w: no limits for %s", ErrMissingLimit, v)
			}
			seen[v] = true
			order = append(order, v)
		}
		for _, v := range declared {
			if !seen[v] {
				return nil, validationf("limits given for %s, which is not in the integration order", v)
			}
		}
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no integration variables", ErrMissingLimit)
	}

	out := make([]limit, len(order))
	for i, v := range order {
		out[i] = byVar[v]
	}
	return out, nil
}

package calcmv

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/njchilds90/gocalcmv/coords"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var (
	tVar     = sym.S("t")
	twoPi    = sym.MulOf(sym.N(2), sym.Pi)
	cosT     = sym.CosOf(tVar)
	sinT     = sym.SinOf(tVar)
	cartesXY = []string{"x", "y"}
)

// segment is one oriented piece of a boundary curve, parametrised by t.
type segment struct {
	label    string
	path     []sym.Expr
	from, to sym.Expr
}

// plan describes the general-path integral over a region's natural limits.
type plan struct {
	transform *coords.Transform
	limits    []limit
}

type greenRegion struct {
	params   []paramSpec
	validate func(params) error
	describe func(params) string
	// measure is the area used on the constant-field path; nil when the
	// region always integrates.
	measure func(params) (sym.Expr, string)
	// plan is nil when the region has no closed-form general path.
	plan     func(params) plan
	boundary func(params) []segment
	notes    [2]string
}

func polarPlan(cx, cy, r0, r1, th0, th1 sym.Expr) plan {
	tr := coords.Polar(cx, cy)
	return plan{
		transform: &tr,
		limits:    []limit{{"r", r0, r1}, {"theta", th0, th1}},
	}
}

func arc(label string, cx, cy, radius, from, to sym.Expr) segment {
	return segment{
		label: label,
		path: []sym.Expr{
			sym.AddOf(cx, sym.MulOf(radius, cosT)),
			sym.AddOf(cy, sym.MulOf(radius, sinT)),
		},
		from: from, to: to,
	}
}

// horizontal runs along y = y0 with x = t.
func horizontal(label string, y0, from, to sym.Expr) segment {
	return segment{label: label, path: []sym.Expr{tVar, y0}, from: from, to: to}
}

// vertical runs along x = x0 with y = t.
func vertical(label string, x0, from, to sym.Expr) segment {
	return segment{label: label, path: []sym.Expr{x0, tVar}, from: from, to: to}
}

var greenRegions = map[string]greenRegion{
	"disco": {
		params: []paramSpec{
			{name: "R", def: "1", positive: true},
			{name: "cx", def: "0", aliases: []string{"centro_x"}},
			{name: "cy", def: "0", aliases: []string{"centro_y"}},
		},
		describe: func(p params) string {
			return fmt.Sprintf("disk of radius R = %s centred at (%s, %s)", p.str("R"), p.str("cx"), p.str("cy"))
		},
		measure: func(p params) (sym.Expr, string) {
			return sym.MulOf(sym.Pi, sym.PowOf(p.get("R"), sym.N(2))), "πR²"
		},
		plan: func(p params) plan {
			return polarPlan(p.get("cx"), p.get("cy"), sym.N(0), p.get("R"), sym.N(0), twoPi)
		},
		boundary: func(p params) []segment {
			return []segment{arc("circle", p.get("cx"), p.get("cy"), p.get("R"), sym.N(0), twoPi)}
		},
		notes: [2]string{
			"The line integral measures the circulation around the circumference",
			"On a disk all interior rotation shows up as circulation around the rim",
		},
	},
	"corona": {
		params: []paramSpec{
			{name: "R_int", def: "1", positive: true},
			{name: "R_ext", def: "2", positive: true},
			{name: "cx", def: "0", aliases: []string{"centro_x"}},
			{name: "cy", def: "0", aliases: []string{"centro_y"}},
		},
		validate: func(p params) error { return ordered(p, "R_int", "R_ext") },
		describe: func(p params) string {
			return fmt.Sprintf("annulus %s ≤ r ≤ %s centred at (%s, %s)", p.str("R_int"), p.str("R_ext"), p.str("cx"), p.str("cy"))
		},
		plan: func(p params) plan {
			return polarPlan(p.get("cx"), p.get("cy"), p.get("R_int"), p.get("R_ext"), sym.N(0), twoPi)
		},
		boundary: func(p params) []segment {
			cx, cy := p.get("cx"), p.get("cy")
			return []segment{
				arc("outer circle", cx, cy, p.get("R_ext"), sym.N(0), twoPi),
				arc("inner circle, clockwise", cx, cy, p.get("R_int"), twoPi, sym.N(0)),
			}
		},
		notes: [2]string{
			"The line integral is the outer circulation minus the inner one",
			"On an annulus the interior rotation equals the difference between both rims",
		},
	},
	"rectangulo": {
		params: []paramSpec{
			{name: "a", def: "1", positive: true},
			{name: "b", def: "1", positive: true},
			{name: "x0", def: "0"},
			{name: "y0", def: "0"},
		},
		describe: func(p params) string {
			return fmt.Sprintf("rectangle %s × %s with lower-left corner (%s, %s)", p.str("a"), p.str("b"), p.str("x0"), p.str("y0"))
		},
		plan: func(p params) plan {
			x0, y0 := p.get("x0"), p.get("y0")
			return plan{limits: []limit{
				{"x", x0, sym.AddOf(x0, p.get("a"))},
				{"y", y0, sym.AddOf(y0, p.get("b"))},
			}}
		},
		boundary: func(p params) []segment {
			x0, y0 := p.get("x0"), p.get("y0")
			x1, y1 := sym.AddOf(x0, p.get("a")), sym.AddOf(y0, p.get("b"))
			return []segment{
				horizontal("bottom", y0, x0, x1),
				vertical("right", x1, y0, y1),
				horizontal("top", y1, x1, x0),
				vertical("left", x0, y1, y0),
			}
		},
		notes: [2]string{
			"The line integral adds the flow along the four sides",
			"On a rectangle the flow through the four sides always matches the interior rotation",
		},
	},
	"elipse": {
		params: []paramSpec{
			{name: "a", def: "2", positive: true},
			{name: "b", def: "1", positive: true},
			{name: "cx", def: "0", aliases: []string{"centro_x"}},
			{name: "cy", def: "0", aliases: []string{"centro_y"}},
		},
		describe: func(p params) string {
			return fmt.Sprintf("ellipse (x - %s)²/%s² + (y - %s)²/%s² ≤ 1", p.str("cx"), p.str("a"), p.str("cy"), p.str("b"))
		},
		plan: func(p params) plan {
			tr := coords.Elliptical(p.get("a"), p.get("b"), p.get("cx"), p.get("cy"))
			return plan{transform: &tr, limits: []limit{{"r", sym.N(0), sym.N(1)}, {"theta", sym.N(0), twoPi}}}
		},
		boundary: func(p params) []segment {
			return []segment{{
				label: "ellipse",
				path: []sym.Expr{
					sym.AddOf(p.get("cx"), sym.MulOf(p.get("a"), cosT)),
					sym.AddOf(p.get("cy"), sym.MulOf(p.get("b"), sinT)),
				},
				from: sym.N(0), to: twoPi,
			}}
		},
		notes: [2]string{
			"The line integral follows the elliptical parametrisation",
			"The theorem holds for any smooth closed shape, not only circles",
		},
	},
	"triangulo": {
		params: []paramSpec{
			{name: "base", def: "2", positive: true},
			{name: "altura", def: "3", positive: true},
			{name: "x0", def: "0"},
			{name: "y0", def: "0"},
		},
		describe: func(p params) string {
			return fmt.Sprintf("right triangle with base %s, height %s and right-angle vertex (%s, %s)", p.str("base"), p.str("altura"), p.str("x0"), p.str("y0"))
		},
		plan: func(p params) plan {
			x0, y0 := p.get("x0"), p.get("y0")
			base, h := p.get("base"), p.get("altura")
			top := sym.AddOf(y0, sym.MulOf(h, sym.SubOf(sym.N(1), sym.DivOf(sym.SubOf(sym.S("x"), x0), base))))
			return plan{limits: []limit{
				{"y", y0, top},
				{"x", x0, sym.AddOf(x0, base)},
			}}
		},
		boundary: func(p params) []segment {
			x0, y0 := p.get("x0"), p.get("y0")
			base, h := p.get("base"), p.get("altura")
			return []segment{
				horizontal("base", y0, x0, sym.AddOf(x0, base)),
				{
					label: "hypotenuse",
					path: []sym.Expr{
						sym.AddOf(x0, sym.MulOf(base, sym.SubOf(sym.N(1), tVar))),
						sym.AddOf(y0, sym.MulOf(h, tVar)),
					},
					from: sym.N(0), to: sym.N(1),
				},
				vertical("vertical side", x0, sym.AddOf(y0, h), y0),
			}
		},
		notes: [2]string{
			"The line integral adds the base, the hypotenuse and the vertical side",
			"Three straight sides are enough for the boundary circulation to match the interior",
		},
	},
	"semicirculo": {
		params: []paramSpec{
			{name: "R", def: "2", positive: true},
			{name: "tipo", def: "superior", kind: choiceParam, choices: []string{"superior", "inferior"}},
			{name: "cx", def: "0", aliases: []string{"centro_x"}},
			{name: "cy", def: "0", aliases: []string{"centro_y"}},
		},
		describe: func(p params) string {
			half := "upper"
			if p.str("tipo") == "inferior" {
				half = "lower"
			}
			return fmt.Sprintf("%s half-disk of radius %s centred at (%s, %s)", half, p.str("R"), p.str("cx"), p.str("cy"))
		},
		plan: func(p params) plan {
			th0, th1 := semicircleAngles(p)
			return polarPlan(p.get("cx"), p.get("cy"), sym.N(0), p.get("R"), th0, th1)
		},
		boundary: func(p params) []segment {
			cx, cy, R := p.get("cx"), p.get("cy"), p.get("R")
			th0, th1 := semicircleAngles(p)
			left, right := sym.SubOf(cx, R), sym.AddOf(cx, R)
			diameter := horizontal("diameter", cy, left, right)
			if p.str("tipo") == "inferior" {
				diameter = horizontal("diameter", cy, right, left)
			}
			return []segment{arc("arc", cx, cy, R, th0, th1), diameter}
		},
		notes: [2]string{
			"The line integral adds the arc and the diameter",
			"Half a disk keeps the balance between interior rotation and boundary flow",
		},
	},
	"entre_curvas": {
		params: []paramSpec{
			{name: "f1", def: "x**2", kind: curveParam},
			{name: "f2", def: "4", kind: curveParam},
			{name: "x_min", def: "0"},
			{name: "x_max", def: "2"},
		},
		validate: func(p params) error { return ordered(p, "x_min", "x_max") },
		describe: func(p params) string {
			return fmt.Sprintf("region between y = %s and y = %s for %s ≤ x ≤ %s", p.str("f1"), p.str("f2"), p.str("x_min"), p.str("x_max"))
		},
		plan: func(p params) plan {
			return plan{limits: []limit{
				{"y", p.get("f1"), p.get("f2")},
				{"x", p.get("x_min"), p.get("x_max")},
			}}
		},
		boundary: func(p params) []segment {
			f1, f2 := p.get("f1"), p.get("f2")
			x0, x1 := p.get("x_min"), p.get("x_max")
			return []segment{
				{label: "lower curve", path: []sym.Expr{tVar, sym.Sub(f1, "x", tVar)}, from: x0, to: x1},
				vertical("right side", x1, sym.Sub(f1, "x", x1), sym.Sub(f2, "x", x1)),
				{label: "upper curve, reversed", path: []sym.Expr{tVar, sym.Sub(f2, "x", tVar)}, from: x1, to: x0},
				vertical("left side, reversed", x0, sym.Sub(f2, "x", x0), sym.Sub(f1, "x", x0)),
			}
		},
		notes: [2]string{
			"The line integral adds the lower curve, the right side, the upper curve and the left side",
			"Between two curves the balance of upper and lower flow sets the total circulation",
		},
	},
	"sector_polar": {
		params: []paramSpec{
			{name: "R", def: "2", positive: true},
			{name: "theta_min", def: "0"},
			{name: "theta_max", def: "pi/2"},
		},
		validate: func(p params) error { return ordered(p, "theta_min", "theta_max") },
		describe: func(p params) string {
			return fmt.Sprintf("polar sector of radius %s for %s ≤ θ ≤ %s", p.str("R"), p.str("theta_min"), p.str("theta_max"))
		},
		plan: func(p params) plan {
			return polarPlan(sym.N(0), sym.N(0), sym.N(0), p.get("R"), p.get("theta_min"), p.get("theta_max"))
		},
		boundary: func(p params) []segment {
			R, th0, th1 := p.get("R"), p.get("theta_min"), p.get("theta_max")
			ray := func(label string, th, from, to sym.Expr) segment {
				return segment{
					label: label,
					path:  []sym.Expr{sym.MulOf(tVar, sym.CosOf(th)), sym.MulOf(tVar, sym.SinOf(th))},
					from:  from, to: to,
				}
			}
			return []segment{
				ray("radius at θ_min, outward", th0, sym.N(0), R),
				arc("arc", sym.N(0), sym.N(0), R, th0, th1),
				ray("radius at θ_max, inward", th1, R, sym.N(0)),
			}
		},
		notes: [2]string{
			"The line integral adds the two radii and the arc",
			"A sector is traversed counter-clockwise: out along θ_min, around the arc, back along θ_max",
		},
	},
	"poligono": {
		params: []paramSpec{
			{name: "lados", def: "5", kind: countParam, min: 3},
			{name: "radio", def: "2", positive: true},
			{name: "cx", def: "0", aliases: []string{"centro_x"}},
			{name: "cy", def: "0", aliases: []string{"centro_y"}},
		},
		describe: func(p params) string {
			return fmt.Sprintf("regular polygon with %s sides and circumradius %s centred at (%s, %s)", p.str("lados"), p.str("radio"), p.str("cx"), p.str("cy"))
		},
		measure: func(p params) (sym.Expr, string) {
			n := p.get("lados")
			angle := sym.DivOf(sym.Pi, n)
			side := sym.MulOf(sym.N(2), p.get("radio"), sym.SinOf(angle))
			area := sym.DivOf(sym.MulOf(n, sym.PowOf(side, sym.N(2))), sym.MulOf(sym.N(4), sym.TanOf(angle)))
			return area, "n·s²/(4·tan(π/n)), s = 2·radio·sin(π/n)"
		},
		notes: [2]string{
			"The boundary integral is not computed for polygons",
			"Only the double integral is reported for a polygon",
		},
	},
}

func semicircleAngles(p params) (sym.Expr, sym.Expr) {
	if p.str("tipo") == "inferior" {
		return sym.Pi, twoPi
	}
	return sym.N(0), sym.Pi
}

// GreenRegions lists the region tags accepted by ApplyGreen.
func GreenRegions() []string { return sortedKeys(greenRegions) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyGreen evaluates both sides of Green's theorem for the field (P, Q)
// over shape. A failure in one side is returned as a *StageError together
// with the partial result.
func (e *Engine) ApplyGreen(pText, qText string, shape Shape) (res *Result, err error) {
	defer e.guard("green", &err)

	p, err := sym.Parse(pText, sym.Cartesian2)
	if err != nil {
		return nil, fmt.Errorf("P: %w", err)
	}
	q, err := sym.Parse(qText, sym.Cartesian2)
	if err != nil {
		return nil, fmt.Errorf("Q: %w", err)
	}
	region, ok := greenRegions[shape.Tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q for Green's theorem (use %s)", ErrUnsupportedRegion, shape.Tag, strings.Join(GreenRegions(), ", "))
	}
	prm, err := resolveParams(region.params, shape.Params)
	if err != nil {
		return nil, err
	}
	if region.validate != nil {
		if err := region.validate(prm); err != nil {
			return nil, err
		}
	}
	e.log.Debug("green", "region", shape.Tag, "P", p.String(), "Q", q.String())

	tr := &trace{}
	res = &Result{
		Kind:      KindGreen,
		Shape:     shape.Tag,
		Params:    prm.raw,
		Field:     []string{p.String(), q.String()},
		Statement: greenStatement,
	}
	tr.add("Field F = (P, Q) = (%s, %s)", p, q)
	tr.blank()
	tr.add("Partial derivatives:")
	dq, dp := sym.Diff(q, "x"), sym.Diff(p, "y")
	tr.add("∂Q/∂x = %s", dq)
	tr.add("∂P/∂y = %s", dp)
	curl := sym.Curl2D(p, q, "x", "y")
	tr.add("curl F = ∂Q/∂x - ∂P/∂y = %s", curl)
	res.Scalar = curl
	tr.blank()
	tr.add("Region: %s", region.describe(prm))

	tr.blank()
	tr.add("Double integral:")
	domain, derr := e.stage("domain integral", func() (sym.Expr, error) {
		return e.greenDomain(tr, region, prm, curl, res)
	})
	if derr != nil {
		tr.add("Domain integral failed: %v", derr)
	} else {
		tr.add("Double integral over D = %s", domain)
		res.Domain = domain
	}

	tr.blank()
	var berr error
	if region.boundary == nil {
		tr.add("Line integral: not computed for this region; the domain value fills both slots")
		res.Boundary = res.Domain
	} else {
		tr.add("Line integral (counter-clockwise):")
		boundary, err := e.stage("boundary integral", func() (sym.Expr, error) {
			return lineIntegral(tr, []sym.Expr{p, q}, cartesXY, region.boundary(prm))
		})
		berr = err
		if berr != nil {
			tr.add("Boundary integral failed: %v", berr)
		} else {
			tr.add("Line integral over C = %s", boundary)
			res.Boundary = boundary
			res.BoundaryComputed = true
		}
	}

	if derr == nil && berr == nil && res.BoundaryComputed {
		tr.blank()
		tr.add("Verification of Green's theorem:")
		res.Verification = Verify(res.Domain, res.Boundary)
		traceVerification(tr, res.Verification, "∬_D curl F dA", "∮_C F·dr")
	}
	if res.Domain != nil {
		tr.blank()
		res.Numeric = numeric(tr, res.Domain)
	}
	res.Steps = tr.lines
	res.Notes = greenNotes(region, prm, res)
	return res, errors.Join(derr, berr)
}

func (e *Engine) greenDomain(tr *trace, region greenRegion, prm params, curl sym.Expr, res *Result) (sym.Expr, error) {
	if region.measure != nil && sym.IsConstant(curl) {
		area, formula := region.measure(prm)
		res.Path = ConstantFieldPath
		tr.add("curl F = %s is constant, so the integral is curl F × area", curl)
		tr.add("Area = %s = %s", formula, area)
		out := sym.Canonicalize(sym.MulOf(curl, area))
		tr.add("Result = %s × %s = %s", curl, area, out)
		return out, nil
	}
	res.Path = GeneralFieldPath
	if region.plan == nil {
		// Only regions with a measure lack a plan.
		area, formula := region.measure(prm)
		centre := sym.SubAll(curl, []sym.Binding{{Var: "x", Value: prm.get("cx")}, {Var: "y", Value: prm.get("cy")}})
		res.Approximate = true
		tr.add("curl F is not constant: approximating with its value at the centre")
		tr.add("curl F(centre) ≈ %s", centre)
		tr.add("Area = %s = %s", formula, area)
		out := sym.Canonicalize(sym.MulOf(centre, area))
		tr.add("Double integral ≈ %s × %s = %s", centre, area, out)
		return out, nil
	}
	pl := region.plan(prm)
	integrand := curl
	if pl.transform != nil {
		tr.add("Substitution: %s", pl.transform.SubstitutionString())
		tr.add("Jacobian: %s", pl.transform.Jacobian)
		integrand = pl.transform.Pullback(curl)
		tr.add("Integrand: curl F × Jacobian = %s", integrand)
	}
	return iterate(tr, integrand, pl.limits)
}

// lineIntegral sums ∫ F(r(t))·r'(t) dt over the segments.
func lineIntegral(tr *trace, field []sym.Expr, vars []string, segs []segment) (sym.Expr, error) {
	parts := make([]sym.Expr, 0, len(segs))
	for _, s := range segs {
		bind := make([]sym.Binding, len(vars))
		for i, v := range vars {
			bind[i] = sym.Binding{Var: v, Value: s.path[i]}
		}
		terms := make([]sym.Expr, len(vars))
		for i := range vars {
			terms[i] = sym.MulOf(sym.SubAll(field[i], bind), sym.Diff(s.path[i], "t"))
		}
		integrand := sym.AddOf(terms...)
		val, err := sym.DefiniteIntegral(integrand, "t", s.from, s.to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.label, err)
		}
		tr.add("%s: r(t) = (%s), t from %s to %s: ∫ [%s] dt = %s", s.label, joinExprs(s.path), s.from, s.to, integrand, val)
		parts = append(parts, val)
	}
	return sym.Canonicalize(sym.AddOf(parts...)), nil
}

func joinExprs(es []sym.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

package calcmv

import (
	"errors"
	"fmt"
	"strings"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var (
	rv       = sym.S("r")
	thetaV   = sym.S("theta")
	rCos     = sym.MulOf(rv, sym.CosOf(thetaV))
	rSin     = sym.MulOf(rv, sym.SinOf(thetaV))
	cartesX3 = cartesXYZ[:]
)

// stokesSurface parametrises an oriented surface. The flux integrand is
// (weight · curl F) evaluated on the surface, times jacobian.
type stokesSurface struct {
	params   []paramSpec
	describe func(params) string
	// weight is the unnormalised normal, expressed in x, y, z.
	weight       func(params) [3]sym.Expr
	substitution func(params) []sym.Binding
	jacobian     func(params) sym.Expr
	limits       func(params) []limit
	// area describes n̂ and dS for the trace.
	area     func(params) areaElement
	boundary func(params) []segment
	note     string
}

// areaElement is the oriented area element n̂ dS written out. element is the
// parameter-space measure left after n̂ dS = N element.
type areaElement struct {
	normal, dS, element string
}

const polarElement = "r dr dθ"

// tiltedArea writes the area element of a graph surface whose unnormalised
// normal n has squared length norm2.
func tiltedArea(n [3]sym.Expr, norm2 sym.Expr) areaElement {
	normal := fmt.Sprintf("(%s, %s, %s)", n[0], n[1], n[2])
	if norm2.Equal(sym.N(1)) {
		return areaElement{normal: normal, dS: polarElement, element: polarElement}
	}
	mag := "√(" + norm2.String() + ")"
	return areaElement{
		normal:  fmt.Sprintf("%s/%s", normal, mag),
		dS:      fmt.Sprintf("%s·%s", mag, polarElement),
		element: polarElement,
	}
}

func fullTurn() limit { return limit{"theta", sym.N(0), twoPi} }

var upward = func(params) [3]sym.Expr { return [3]sym.Expr{sym.N(0), sym.N(0), sym.N(1)} }

var stokesSurfaces = map[string]stokesSurface{
	"disco": {
		params: []paramSpec{{name: "R", def: "1", positive: true}},
		describe: func(p params) string {
			return fmt.Sprintf("disk of radius %s in the plane z = 0, normal +z", p.str("R"))
		},
		weight: upward,
		substitution: func(params) []sym.Binding {
			return []sym.Binding{{Var: "x", Value: rCos}, {Var: "y", Value: rSin}, {Var: "z", Value: sym.N(0)}}
		},
		jacobian: func(params) sym.Expr { return rv },
		limits: func(p params) []limit {
			return []limit{fullTurn(), {"r", sym.N(0), p.get("R")}}
		},
		area: func(params) areaElement {
			return areaElement{normal: "(0, 0, 1)", dS: polarElement, element: polarElement}
		},
		boundary: func(p params) []segment {
			R := p.get("R")
			return []segment{{
				label: "circle",
				path:  []sym.Expr{sym.MulOf(R, cosT), sym.MulOf(R, sinT), sym.N(0)},
				from:  sym.N(0), to: twoPi,
			}}
		},
		note: "A flat disk: the circulation around the rim equals the flux of the curl through it",
	},
	"plano": {
		params: []paramSpec{
			{name: "a", def: "0"},
			{name: "b", def: "0"},
			{name: "c", def: "0"},
			{name: "R", def: "1", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("plane z = %s·x + %s·y + %s over the disk of radius %s", p.str("a"), p.str("b"), p.str("c"), p.str("R"))
		},
		weight: func(p params) [3]sym.Expr {
			return [3]sym.Expr{sym.Negate(p.get("a")), sym.Negate(p.get("b")), sym.N(1)}
		},
		substitution: func(p params) []sym.Binding {
			z := sym.AddOf(sym.MulOf(p.get("a"), rCos), sym.MulOf(p.get("b"), rSin), p.get("c"))
			return []sym.Binding{{Var: "z", Value: z}, {Var: "x", Value: rCos}, {Var: "y", Value: rSin}}
		},
		jacobian: func(params) sym.Expr { return rv },
		limits: func(p params) []limit {
			return []limit{{"r", sym.N(0), p.get("R")}, fullTurn()}
		},
		area: func(p params) areaElement {
			a, b := p.get("a"), p.get("b")
			norm2 := sym.AddOf(sym.PowOf(a, sym.N(2)), sym.PowOf(b, sym.N(2)), sym.N(1))
			return tiltedArea([3]sym.Expr{sym.Negate(a), sym.Negate(b), sym.N(1)}, norm2)
		},
		note: "The normal (-a, -b, 1) tilts with the plane; dS carries the matching √(a²+b²+1) factor, which cancels",
	},
	"paraboloide": {
		params: []paramSpec{
			{name: "a", def: "1"},
			{name: "R", def: "1", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("paraboloid z = %s - x² - y² over the disk of radius %s, normal upward", p.str("a"), p.str("R"))
		},
		weight: func(params) [3]sym.Expr {
			return [3]sym.Expr{sym.MulOf(sym.N(2), sym.S("x")), sym.MulOf(sym.N(2), sym.S("y")), sym.N(1)}
		},
		substitution: func(p params) []sym.Binding {
			z := sym.SubOf(p.get("a"), sym.PowOf(rv, sym.N(2)))
			return []sym.Binding{{Var: "z", Value: z}, {Var: "x", Value: rCos}, {Var: "y", Value: rSin}}
		},
		jacobian: func(params) sym.Expr { return rv },
		limits: func(p params) []limit {
			return []limit{{"r", sym.N(0), p.get("R")}, fullTurn()}
		},
		area: func(params) areaElement {
			return areaElement{
				normal:  "(2x, 2y, 1)/√(4x² + 4y² + 1)",
				dS:      "√(4x² + 4y² + 1)·" + polarElement,
				element: polarElement,
			}
		},
		note: "Every surface sharing the same rim has the same curl flux; the paraboloid and the flat disk agree",
	},
	"cilindro": {
		params: []paramSpec{
			{name: "R", def: "1", positive: true, aliases: []string{"a"}},
			{name: "h", def: "1", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("lateral surface of the cylinder x² + y² = %s², 0 ≤ z ≤ %s, outward normal", p.str("R"), p.str("h"))
		},
		weight: func(params) [3]sym.Expr {
			return [3]sym.Expr{sym.CosOf(thetaV), sym.SinOf(thetaV), sym.N(0)}
		},
		substitution: func(p params) []sym.Binding {
			R := p.get("R")
			return []sym.Binding{
				{Var: "x", Value: sym.MulOf(R, sym.CosOf(thetaV))},
				{Var: "y", Value: sym.MulOf(R, sym.SinOf(thetaV))},
			}
		},
		jacobian: func(p params) sym.Expr { return p.get("R") },
		limits: func(p params) []limit {
			return []limit{fullTurn(), {"z", sym.N(0), p.get("h")}}
		},
		area: func(p params) areaElement {
			el := p.str("R") + " dθ dz"
			return areaElement{normal: "(cos θ, sin θ, 0)", dS: el, element: el}
		},
		note: "An open tube has two rims; the flux of the curl through the wall balances the circulations around both",
	},
}

// StokesSurfaces lists the surface tags accepted by ApplyStokes.
func StokesSurfaces() []string { return sortedKeys(stokesSurfaces) }

// ApplyStokes evaluates the flux of curl F through shape and, for surfaces
// with a computed boundary, the circulation of F around it.
func (e *Engine) ApplyStokes(fxText, fyText, fzText string, shape Shape) (res *Result, err error) {
	defer e.guard("stokes", &err)

	field, err := parseField3(fxText, fyText, fzText)
	if err != nil {
		return nil, err
	}
	surface, ok := stokesSurfaces[shape.Tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q for Stokes' theorem (use %s)", ErrUnsupportedRegion, shape.Tag, strings.Join(StokesSurfaces(), ", "))
	}
	prm, err := resolveParams(surface.params, shape.Params)
	if err != nil {
		return nil, err
	}
	e.log.Debug("stokes", "surface", shape.Tag, "F", joinExprs(field[:]))

	tr := &trace{}
	res = &Result{
		Kind:      KindStokes,
		Shape:     shape.Tag,
		Params:    prm.raw,
		Field:     []string{field[0].String(), field[1].String(), field[2].String()},
		Statement: stokesStatement,
	}
	tr.add("Field F = (%s, %s, %s)", field[0], field[1], field[2])
	tr.blank()
	tr.add("Curl:")
	curl := sym.Curl(field, cartesXYZ)
	tr.add("(∇×F)x = ∂Fz/∂y - ∂Fy/∂z = %s", curl[0])
	tr.add("(∇×F)y = ∂Fx/∂z - ∂Fz/∂x = %s", curl[1])
	tr.add("(∇×F)z = ∂Fy/∂x - ∂Fx/∂y = %s", curl[2])
	res.Vector = curl[:]
	tr.blank()
	tr.add("Surface: %s", surface.describe(prm))

	w := surface.weight(prm)
	dot := sym.AddOf(sym.MulOf(w[0], curl[0]), sym.MulOf(w[1], curl[1]), sym.MulOf(w[2], curl[2]))
	area := surface.area(prm)
	tr.add("Normal (unnormalised): N = (%s, %s, %s)", w[0], w[1], w[2])
	tr.add("n̂ = %s", area.normal)
	tr.add("dS = %s", area.dS)
	tr.add("(∇×F)·n̂ dS = (∇×F)·N %s", area.element)
	tr.add("(∇×F)·N = %s", dot)
	res.Scalar = dot
	res.Path = GeneralFieldPath

	tr.blank()
	tr.add("Surface integral:")
	domain, derr := e.stage("surface integral", func() (sym.Expr, error) {
		subst := surface.substitution(prm)
		integrand := sym.MulOf(sym.SubAll(dot, subst), surface.jacobian(prm))
		tr.add("On the surface: %s", substitutionString(subst))
		tr.add("Integrand: %s", integrand)
		return iterate(tr, integrand, surface.limits(prm))
	})
	if derr != nil {
		tr.add("Surface integral failed: %v", derr)
	} else {
		tr.add("∬_S (∇×F)·dS = %s", domain)
		res.Domain = domain
	}

	tr.blank()
	var berr error
	if surface.boundary == nil {
		tr.add("Line integral: not computed for this surface; the surface integral fills both slots")
		res.Boundary = res.Domain
	} else {
		tr.add("Line integral (counter-clockwise seen from +z):")
		boundary, err := e.stage("boundary integral", func() (sym.Expr, error) {
			return lineIntegral(tr, field[:], cartesX3, surface.boundary(prm))
		})
		berr = err
		if berr != nil {
			tr.add("Boundary integral failed: %v", berr)
		} else {
			tr.add("∮_C F·dr = %s", boundary)
			res.Boundary = boundary
			res.BoundaryComputed = true
		}
	}

	if derr == nil && berr == nil && res.BoundaryComputed {
		tr.blank()
		tr.add("Verification of Stokes' theorem:")
		res.Verification = Verify(res.Domain, res.Boundary)
		traceVerification(tr, res.Verification, "∬_S (∇×F)·dS", "∮_C F·dr")
	}
	if res.Domain != nil {
		tr.blank()
		res.Numeric = numeric(tr, res.Domain)
	}
	res.Steps = tr.lines
	res.Notes = stokesNotes(surface, prm, res)
	return res, errors.Join(derr, berr)
}

func substitutionString(bs []sym.Binding) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.Var + " = " + b.Value.String()
	}
	return strings.Join(parts, ", ")
}

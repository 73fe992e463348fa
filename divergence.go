package calcmv

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gocalcmv/coords"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var cartesXYZ = [3]string{"x", "y", "z"}

type volumeRegion struct {
	params   []paramSpec
	validate func(params) error
	describe func(params) string
	measure  func(params) (sym.Expr, string)
	plan     func(params) plan
	note     string
}

func cylindricalPlan(r0, r1, z0, z1 sym.Expr, radialFirst bool) plan {
	tr := coords.CylindricalShell()
	r := limit{"r", r0, r1}
	th := limit{"theta", sym.N(0), twoPi}
	z := limit{"z", z0, z1}
	if radialFirst {
		return plan{transform: &tr, limits: []limit{r, th, z}}
	}
	return plan{transform: &tr, limits: []limit{z, th, r}}
}

func ballPlan(tr coords.Transform, radius sym.Expr) plan {
	return plan{transform: &tr, limits: []limit{
		{"theta", sym.N(0), twoPi},
		{"phi", sym.N(0), sym.Pi},
		{"rho", sym.N(0), radius},
	}}
}

func half(e sym.Expr) sym.Expr { return sym.DivOf(e, sym.N(2)) }

var volumeRegions = map[string]volumeRegion{
	"esfera": {
		params: []paramSpec{{name: "R", def: "1", positive: true}},
		describe: func(p params) string {
			return fmt.Sprintf("ball of radius %s centred at the origin", p.str("R"))
		},
		measure: func(p params) (sym.Expr, string) {
			return sym.MulOf(sym.F(4, 3), sym.Pi, sym.PowOf(p.get("R"), sym.N(3))), "(4/3)πR³"
		},
		plan: func(p params) plan {
			tr, _ := coords.ForSystem(coords.Spherical)
			return ballPlan(tr, p.get("R"))
		},
		note: "On a sphere the flux through the surface equals the total source strength inside",
	},
	"cilindro": {
		params: []paramSpec{
			{name: "R", def: "1", positive: true, aliases: []string{"a"}},
			{name: "h", def: "2", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("solid cylinder of radius %s for 0 ≤ z ≤ %s", p.str("R"), p.str("h"))
		},
		measure: func(p params) (sym.Expr, string) {
			return sym.MulOf(sym.Pi, sym.PowOf(p.get("R"), sym.N(2)), p.get("h")), "πR²h"
		},
		plan: func(p params) plan {
			return cylindricalPlan(sym.N(0), p.get("R"), sym.N(0), p.get("h"), false)
		},
		note: "The flux leaves through the lateral wall and both caps",
	},
	"cubo": {
		params: []paramSpec{
			{name: "a", def: "2", positive: true},
			{name: "b", def: "2", positive: true},
			{name: "c", def: "2", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("box %s × %s × %s centred at the origin", p.str("a"), p.str("b"), p.str("c"))
		},
		plan: func(p params) plan {
			a, b, c := half(p.get("a")), half(p.get("b")), half(p.get("c"))
			return plan{limits: []limit{
				{"z", sym.Negate(c), c},
				{"y", sym.Negate(b), b},
				{"x", sym.Negate(a), a},
			}}
		},
		note: "Each of the six faces contributes its own flux; their sum matches the interior divergence",
	},
	"elipsoide": {
		params: []paramSpec{
			{name: "a", def: "2", positive: true},
			{name: "b", def: "1", positive: true},
			{name: "c", def: "1", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("ellipsoid x²/%s² + y²/%s² + z²/%s² ≤ 1", p.str("a"), p.str("b"), p.str("c"))
		},
		plan: func(p params) plan {
			return ballPlan(coords.Ellipsoidal(p.get("a"), p.get("b"), p.get("c")), sym.N(1))
		},
		note: "The ellipsoid is the unit ball stretched along each axis; the Jacobian abc·ρ²·sin φ accounts for it",
	},
	"cono": {
		params: []paramSpec{
			{name: "R", def: "1", positive: true},
			{name: "h", def: "2", positive: true},
		},
		describe: func(p params) string {
			return fmt.Sprintf("solid cone of base radius %s and height %s, apex on the z-axis", p.str("R"), p.str("h"))
		},
		plan: func(p params) plan {
			R, h := p.get("R"), p.get("h")
			top := sym.MulOf(R, sym.SubOf(sym.N(1), sym.DivOf(sym.S("z"), h)))
			return cylindricalPlan(sym.N(0), top, sym.N(0), h, true)
		},
		note: "The radius shrinks linearly with height, so upper slices hold less of the source",
	},
	"entre_superficies": {
		params: []paramSpec{
			{name: "R_int", def: "1", positive: true},
			{name: "R_ext", def: "2", positive: true},
			{name: "h", def: "2", positive: true},
		},
		validate: func(p params) error { return ordered(p, "R_int", "R_ext") },
		describe: func(p params) string {
			return fmt.Sprintf("cylindrical shell %s ≤ r ≤ %s for -%s/2 ≤ z ≤ %s/2", p.str("R_int"), p.str("R_ext"), p.str("h"), p.str("h"))
		},
		plan: func(p params) plan {
			h := half(p.get("h"))
			return cylindricalPlan(p.get("R_int"), p.get("R_ext"), sym.Negate(h), h, false)
		},
		note: "The net flux is what leaves through the outer wall minus what enters through the inner one",
	},
}

// DivergenceRegions lists the region tags accepted by ApplyDivergence.
func DivergenceRegions() []string { return sortedKeys(volumeRegions) }

// ApplyDivergence evaluates the volume side of the divergence theorem for
// F = (Fx, Fy, Fz) over shape. The flux side is not computed, so Boundary
// equals Domain and no verification takes place.
func (e *Engine) ApplyDivergence(fxText, fyText, fzText string, shape Shape) (res *Result, err error) {
	defer e.guard("divergence", &err)

	field, err := parseField3(fxText, fyText, fzText)
	if err != nil {
		return nil, err
	}
	region, ok := volumeRegions[shape.Tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q for the divergence theorem (use %s)", ErrUnsupportedRegion, shape.Tag, strings.Join(DivergenceRegions(), ", "))
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
	e.log.Debug("divergence", "region", shape.Tag, "F", joinExprs(field[:]))

	tr := &trace{}
	res = &Result{
		Kind:      KindDivergence,
		Shape:     shape.Tag,
		Params:    prm.raw,
		Field:     []string{field[0].String(), field[1].String(), field[2].String()},
		Statement: divergenceStatement,
	}
	tr.add("Field F = (%s, %s, %s)", field[0], field[1], field[2])
	tr.blank()
	tr.add("Divergence:")
	for i, v := range cartesXYZ {
		tr.add("∂F%s/∂%s = %s", v, v, sym.Diff(field[i], v))
	}
	div := sym.Divergence(field, cartesXYZ)
	tr.add("∇·F = %s", div)
	res.Scalar = div
	tr.blank()
	tr.add("Region: %s", region.describe(prm))
	tr.blank()
	tr.add("Triple integral:")

	domain, derr := e.stage("domain integral", func() (sym.Expr, error) {
		if region.measure != nil && sym.IsConstant(div) {
			vol, formula := region.measure(prm)
			res.Path = ConstantFieldPath
			tr.add("∇·F = %s is constant, so the integral is ∇·F × volume", div)
			tr.add("Volume = %s = %s", formula, vol)
			out := sym.Canonicalize(sym.MulOf(div, vol))
			tr.add("Result = %s × %s = %s", div, vol, out)
			return out, nil
		}
		res.Path = GeneralFieldPath
		pl := region.plan(prm)
		integrand := div
		if pl.transform != nil {
			tr.add("Substitution: %s", pl.transform.SubstitutionString())
			tr.add("Jacobian: %s", pl.transform.Jacobian)
			integrand = pl.transform.Pullback(div)
			tr.add("Integrand: ∇·F × Jacobian = %s", integrand)
		}
		return iterate(tr, integrand, pl.limits)
	})
	if derr != nil {
		tr.add("Volume integral failed: %v", derr)
		res.Steps = tr.lines
		return res, derr
	}
	tr.add("∭_V ∇·F dV = %s", domain)
	res.Domain, res.Boundary = domain, domain
	tr.blank()
	tr.add("Flux integral: not computed; the volume integral fills both slots")
	tr.blank()
	res.Numeric = numeric(tr, domain)
	res.Steps = tr.lines
	res.Notes = divergenceNotes(region, prm, res)
	return res, nil
}

func parseField3(fx, fy, fz string) ([3]sym.Expr, error) {
	var field [3]sym.Expr
	for i, text := range []string{fx, fy, fz} {
		c, err := sym.Parse(text, sym.Cartesian3)
		if err != nil {
			return field, fmt.Errorf("F%s: %w", cartesXYZ[i], err)
		}
		field[i] = c
	}
	return field, nil
}

package calcmv

import (
	"fmt"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var greenStatement = []string{
	"Green's theorem",
	"∮_C (P dx + Q dy) = ∬_D (∂Q/∂x - ∂P/∂y) dA",
	"P(x, y), Q(x, y): components of the field",
	"C: positively oriented closed curve bounding D",
	"D: region of the xy-plane",
}

var divergenceStatement = []string{
	"Divergence theorem (Gauss)",
	"∯_S F·dS = ∭_V (∇·F) dV",
	"F = (Fx, Fy, Fz): vector field",
	"S: closed surface enclosing V, outward normal",
	"∇·F = ∂Fx/∂x + ∂Fy/∂y + ∂Fz/∂z",
}

var stokesStatement = []string{
	"Stokes' theorem",
	"∮_C F·dr = ∬_S (∇×F)·dS",
	"F = (Fx, Fy, Fz): vector field",
	"S: oriented surface whose boundary is C",
	"∇×F = (∂Fz/∂y - ∂Fy/∂z, ∂Fx/∂z - ∂Fz/∂x, ∂Fy/∂x - ∂Fx/∂y)",
}

var tripleStatement = []string{
	"Iterated triple integral",
	"∭_V f dV, integrated innermost variable first",
	"dV = dx dy dz (rectangular), r dr dθ dz (cylindrical), ρ² sin φ dρ dφ dθ (spherical)",
}

// curlReading describes the local rotation of a planar field.
func curlReading(curl sym.Expr) string {
	switch {
	case sym.ZeroEquivalent(curl):
		return "curl F = 0: the field is irrotational on this region and carries no net circulation"
	case sym.IsConstant(curl):
		return fmt.Sprintf("curl F = %s everywhere: uniform rotation, so the circulation is proportional to the area", curl)
	}
	return fmt.Sprintf("curl F = %s varies over the region: the double integral sums the local rotation point by point", curl)
}

// sourceReading describes the divergence of a spatial field.
func sourceReading(div sym.Expr) string {
	n := sym.Numeric(div)
	switch {
	case sym.ZeroEquivalent(div):
		return "∇·F = 0: the field is solenoidal, whatever enters the surface also leaves it"
	case n.Evaluable && n.Value > 0:
		return fmt.Sprintf("∇·F = %s > 0: every point acts as a source and the net flux is outward", div)
	case n.Evaluable:
		return fmt.Sprintf("∇·F = %s < 0: every point acts as a sink and the net flux is inward", div)
	}
	return fmt.Sprintf("∇·F = %s varies: sources and sinks are weighted by their position", div)
}

// outcome summarises the comparison between the two sides.
func outcome(res *Result, domainName, boundaryName string) []string {
	var out []string
	if res.Domain != nil {
		out = append(out, fmt.Sprintf("%s: %s", domainName, res.Domain))
	}
	switch {
	case res.Verification.Verified:
		out = append(out, fmt.Sprintf("%s: %s", boundaryName, res.Boundary))
		out = append(out, "Both sides agree")
	case res.Verification.Checked:
		out = append(out, fmt.Sprintf("%s: %s", boundaryName, res.Boundary))
		out = append(out, fmt.Sprintf("The sides differ by %s", res.Verification.Residual))
	case res.Domain != nil && !res.BoundaryComputed:
		out = append(out, fmt.Sprintf("%s was not computed; it is reported equal to the %s", boundaryName, domainName))
	}
	if res.Approximate {
		out = append(out, "The value is an approximation: curl F was evaluated at the centre and multiplied by the area")
	}
	return out
}

func greenNotes(region greenRegion, prm params, res *Result) []string {
	notes := []string{"Region: " + region.describe(prm), curlReading(res.Scalar)}
	notes = append(notes, "The double integral sums the interior rotation")
	notes = append(notes, region.notes[0])
	notes = append(notes, outcome(res, "Interior rotation", "Boundary circulation")...)
	return append(notes, region.notes[1])
}

func divergenceNotes(region volumeRegion, prm params, res *Result) []string {
	notes := []string{"Region: " + region.describe(prm), sourceReading(res.Scalar)}
	notes = append(notes, outcome(res, "Volume integral", "Outward flux")...)
	return append(notes, region.note)
}

func stokesNotes(surface stokesSurface, prm params, res *Result) []string {
	notes := []string{"Surface: " + surface.describe(prm)}
	if len(res.Vector) == 3 && sym.ZeroEquivalent(res.Vector[0]) && sym.ZeroEquivalent(res.Vector[1]) && sym.ZeroEquivalent(res.Vector[2]) {
		notes = append(notes, "∇×F = 0: the field is irrotational and every closed circulation vanishes")
	}
	notes = append(notes, outcome(res, "Flux of the curl", "Boundary circulation")...)
	return append(notes, surface.note)
}

package calcmv

import (
	"fmt"
	"strings"
)

// Problem is a serialisable request for any of the four evaluators. Triple
// problems use Integrand, System, Order, Limits and JacobianIncluded; theorem
// problems use Field and Shape.
type Problem struct {
	Title            string   `json:"title,omitempty" yaml:"title,omitempty"`
	Kind             Kind     `json:"kind" yaml:"kind"`
	Integrand        string   `json:"integrand,omitempty" yaml:"integrand,omitempty"`
	System           string   `json:"system,omitempty" yaml:"system,omitempty"`
	Order            []string `json:"order,omitempty" yaml:"order,omitempty"`
	Limits           []Limit  `json:"limits,omitempty" yaml:"limits,omitempty"`
	JacobianIncluded *bool    `json:"jacobian_included,omitempty" yaml:"jacobian_included,omitempty"`
	Field            []string `json:"field,omitempty" yaml:"field,omitempty"`
	Shape            Shape    `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// ParseKind accepts the kind names and their common spellings.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "triple", "triple_integral", "integral":
		return KindTriple, nil
	case "green":
		return KindGreen, nil
	case "divergence", "divergencia", "gauss":
		return KindDivergence, nil
	case "stokes":
		return KindStokes, nil
	}
	return "", validationf("unknown problem kind %q", s)
}

// Solve dispatches p to its evaluator.
func (e *Engine) Solve(p Problem) (*Result, error) {
	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return nil, err
	}
	if kind == KindTriple {
		return e.SolveTriple(TripleRequest{
			Integrand:        p.Integrand,
			System:           p.System,
			Order:            p.Order,
			Limits:           p.Limits,
			JacobianIncluded: p.JacobianIncluded,
		})
	}

	want := 3
	if kind == KindGreen {
		want = 2
	}
	if len(p.Field) != want {
		return nil, validationf("%s needs %d field components, got %d", kind, want, len(p.Field))
	}
	switch kind {
	case KindGreen:
		return e.ApplyGreen(p.Field[0], p.Field[1], p.Shape)
	case KindDivergence:
		return e.ApplyDivergence(p.Field[0], p.Field[1], p.Field[2], p.Shape)
	default:
		return e.ApplyStokes(p.Field[0], p.Field[1], p.Field[2], p.Shape)
	}
}

// ShapeInfo describes one catalog entry.
type ShapeInfo struct {
	Kind   Kind        `json:"kind"`
	Tag    string      `json:"tag"`
	Params []ParamInfo `json:"params"`
	// Boundary reports whether the second side of the theorem is computed.
	Boundary bool `json:"boundary"`
}

// Catalog lists every supported shape, grouped by theorem and sorted by tag.
func Catalog() []ShapeInfo {
	var out []ShapeInfo
	for _, tag := range GreenRegions() {
		r := greenRegions[tag]
		out = append(out, ShapeInfo{Kind: KindGreen, Tag: tag, Params: paramInfo(r.params), Boundary: r.boundary != nil})
	}
	for _, tag := range DivergenceRegions() {
		out = append(out, ShapeInfo{Kind: KindDivergence, Tag: tag, Params: paramInfo(volumeRegions[tag].params)})
	}
	for _, tag := range StokesSurfaces() {
		s := stokesSurfaces[tag]
		out = append(out, ShapeInfo{Kind: KindStokes, Tag: tag, Params: paramInfo(s.params), Boundary: s.boundary != nil})
	}
	return out
}

// String renders p as a single line for logs and listings.
func (p Problem) String() string {
	if p.Title != "" {
		return p.Title
	}
	kind := p.Kind
	if k, err := ParseKind(string(p.Kind)); err == nil {
		kind = k
	}
	if kind == KindTriple {
		return fmt.Sprintf("triple: %s", p.Integrand)
	}
	return fmt.Sprintf("%s on %s: (%s)", kind, p.Shape.Tag, strings.Join(p.Field, ", "))
}

package calcmv

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	sym "github.com/njchilds90/gocalcmv/symbolic"
)

type paramKind int

const (
	exprParam paramKind = iota
	curveParam
	choiceParam
	countParam
)

// paramSpec declares one shape parameter.
type paramSpec struct {
	name     string
	def      string
	kind     paramKind
	aliases  []string
	positive bool
	choices  []string
	min      int64
}

// reserved names cannot appear in parameters: they are integration variables.
var reserved = map[string]bool{
	"x": true, "y": true, "z": true, "r": true, "t": true,
	"theta": true, "rho": true, "phi": true,
}

// params is a resolved parameter set.
type params struct {
	raw   map[string]string
	exprs map[string]sym.Expr
}

func (p params) get(name string) sym.Expr { return p.exprs[name] }
func (p params) str(name string) string   { return p.raw[name] }

func (p params) count(name string) int64 {
	n, _ := strconv.ParseInt(p.raw[name], 10, 64)
	return n
}

// resolveParams applies defaults and aliases, parses every value and checks
// the per-parameter constraints.
func resolveParams(specs []paramSpec, given map[string]string) (params, error) {
	byName := make(map[string]*paramSpec, len(specs))
	for i := range specs {
		s := &specs[i]
		byName[s.name] = s
		for _, a := range s.aliases {
			byName[a] = s
		}
	}
	supplied := map[string]string{}
	keys := make([]string, 0, len(given))
	for k := range given {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s, ok := byName[k]
		if !ok {
			return params{}, validationf("unknown parameter %q (accepts %s)", k, specNames(specs))
		}
		if _, dup := supplied[s.name]; dup {
			return params{}, validationf("parameter %s given twice", s.name)
		}
		supplied[s.name] = given[k]
	}

	p := params{raw: map[string]string{}, exprs: map[string]sym.Expr{}}
	for _, s := range specs {
		text := strings.TrimSpace(supplied[s.name])
		if text == "" {
			text = s.def
		}
		p.raw[s.name] = text
		switch s.kind {
		case choiceParam:
			text = strings.ToLower(text)
			if !contains(s.choices, text) {
				return params{}, validationf("%s must be one of %s, got %q", s.name, strings.Join(s.choices, ", "), text)
			}
			p.raw[s.name] = text
		case countParam:
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil || n < s.min {
				return params{}, validationf("%s must be an integer ≥ %d, got %q", s.name, s.min, text)
			}
			p.exprs[s.name] = sym.N(n)
		case curveParam:
			e, err := sym.Parse(text, sym.Curve)
			if err != nil {
				return params{}, fmt.Errorf("parameter %s: %w", s.name, err)
			}
			p.exprs[s.name] = e
		default:
			e, err := sym.Parse(text, sym.Open)
			if err != nil {
				return params{}, fmt.Errorf("parameter %s: %w", s.name, err)
			}
			for _, name := range sym.SortedSymbols(e) {
				if reserved[name] {
					return params{}, validationf("%s may not reference the integration variable %s", s.name, name)
				}
			}
			if s.positive {
				if n := sym.Numeric(e); n.Evaluable && n.Value <= 0 {
					return params{}, validationf("%s must be positive, got %s", s.name, text)
				}
			}
			p.exprs[s.name] = e
		}
	}
	return p, nil
}

// ordered checks lo < hi when both evaluate numerically.
func ordered(p params, lo, hi string) error {
	a, b := sym.Numeric(p.get(lo)), sym.Numeric(p.get(hi))
	if a.Evaluable && b.Evaluable && a.Value >= b.Value {
		return validationf("%s must be less than %s", lo, hi)
	}
	return nil
}

func specNames(specs []paramSpec) string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.name
	}
	return strings.Join(names, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParamInfo describes one parameter in the catalog.
type ParamInfo struct {
	Name    string   `json:"name"`
	Default string   `json:"default"`
	Aliases []string `json:"aliases,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

func paramInfo(specs []paramSpec) []ParamInfo {
	out := make([]ParamInfo, len(specs))
	for i, s := range specs {
		out[i] = ParamInfo{Name: s.name, Default: s.def, Aliases: s.aliases, Choices: s.choices}
	}
	return out
}

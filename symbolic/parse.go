package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("parse error")

// ParseError describes text that is not a well-formed expression over a binding set.
type ParseError struct {
	Input string
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Msg)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

// ============================================================
// Binding sets
// ============================================================

// Bindings maps the bare names a user may write to the symbols they denote.
// Values are immutable after construction and are passed by value.
type Bindings struct {
	name    string
	symbols map[string]Expr
	open    bool
}

// NewBindings binds each variable to the symbol of the same name, plus pi / π.
func NewBindings(name string, vars ...string) Bindings {
	symbols := map[string]Expr{"pi": Pi, "π": Pi}
	for _, v := range vars {
		symbols[v] = S(v)
	}
	return Bindings{name: name, symbols: symbols}
}

// WithAlias returns a copy in which alias resolves to the same symbol as target.
func (b Bindings) WithAlias(alias, target string) Bindings {
	symbols := make(map[string]Expr, len(b.symbols)+1)
	for k, v := range b.symbols {
		symbols[k] = v
	}
	symbols[alias] = b.symbols[target]
	return Bindings{name: b.name, symbols: symbols, open: b.open}
}

func (b Bindings) Name() string { return b.name }

// Variables lists the canonical variable names of the set.
func (b Bindings) Variables() []string {
	var out []string
	for k, v := range b.symbols {
		if s, ok := v.(*Sym); ok && s.name == k {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Has reports whether name is a variable or alias of the set.
func (b Bindings) Has(name string) bool {
	e, ok := b.symbols[name]
	if !ok {
		return false
	}
	_, isSym := e.(*Sym)
	return isSym
}

// Symbol returns the symbol bound to name.
func (b Bindings) Symbol(name string) (*Sym, bool) {
	s, ok := b.symbols[name].(*Sym)
	return s, ok
}

func (b Bindings) resolve(id string) (Expr, bool) {
	if e, ok := b.symbols[id]; ok {
		return e, true
	}
	if b.open {
		if _, isFunc := functions[id]; !isFunc {
			return S(id), true
		}
	}
	return nil, false
}

var (
	// Cartesian2 is the plane {x, y} used by Green fields.
	Cartesian2 = NewBindings("cartesian-2d", "x", "y")
	// Cartesian3 is {x, y, z}.
	Cartesian3 = NewBindings("cartesian-3d", "x", "y", "z")
	// Curve is {x}, for y = f(x) boundaries.
	Curve = NewBindings("curve", "x")
	// Cylindrical is {r, theta, z}.
	Cylindrical = NewBindings("cylindrical", "r", "theta", "z").
			WithAlias("θ", "theta")
	// Spherical is {rho, theta, phi}; r is accepted as a spelling of rho.
	Spherical = NewBindings("spherical", "rho", "theta", "phi").
			WithAlias("ρ", "rho").
			WithAlias("θ", "theta").
			WithAlias("φ", "phi").
			WithAlias("r", "rho")
	// Open accepts any identifier as a free symbol. Shape parameters use it.
	Open = Bindings{name: "open", symbols: map[string]Expr{"pi": Pi, "π": Pi}, open: true}
)

var functions = map[string]func(Expr) Expr{
	"sin":  SinOf,
	"cos":  CosOf,
	"tan":  TanOf,
	"exp":  ExpOf,
	"log":  LnOf,
	"ln":   LnOf,
	"sqrt": SqrtOf,
	"abs":  AbsOf,
	"asin": AsinOf,
	"acos": AcosOf,
	"atan": AtanOf,
	"sinh": SinhOf,
	"cosh": CoshOf,
	"tanh": TanhOf,
}

// ============================================================
// Parser
// ============================================================

// Parse reads text as an expression over the binding set b.
//
// Accepted syntax: + - * / ** ^, unary minus, parentheses, integer and
// decimal literals and one-argument calls of sin cos tan exp log ln sqrt
// abs asin acos atan sinh cosh tanh.
func Parse(text string, b Bindings) (Expr, error) {
	src := strings.TrimSpace(text)
	if src == "" {
		return nil, &ParseError{Input: text, Msg: "empty expression"}
	}
	tree, err := parser.Parse(src)
	if err != nil {
		msg := err.Error()
		var fe *file.Error
		if errors.As(err, &fe) {
			msg = fe.Message
		}
		return nil, &ParseError{Input: text, Msg: msg, Err: err}
	}
	c := converter{bindings: b, input: text}
	return c.expr(tree.Node)
}

// MustParse is Parse for trusted literals; it panics on error.
func MustParse(text string, b Bindings) Expr {
	e, err := Parse(text, b)
	if err != nil {
		panic(err)
	}
	return e
}

type converter struct {
	bindings Bindings
	input    string
}

func (c converter) fail(format string, args ...interface{}) error {
	return &ParseError{Input: c.input, Msg: fmt.Sprintf(format, args...)}
}

func (c converter) expr(node ast.Node) (Expr, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return N(int64(n.Value)), nil
	case *ast.FloatNode:
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		if !ok {
			return nil, c.fail("invalid number %v", n.Value)
		}
		return Q(r), nil
	case *ast.IdentifierNode:
		if e, ok := c.bindings.resolve(n.Value); ok {
			return e, nil
		}
		return nil, c.fail("unknown symbol %q for %s variables (%s)",
			n.Value, c.bindings.name, strings.Join(c.bindings.Variables(), ", "))
	case *ast.UnaryNode:
		operand, err := c.expr(n.Node)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "-":
			return Negate(operand), nil
		case "+":
			return operand, nil
		}
		return nil, c.fail("unsupported operator %q", n.Operator)
	case *ast.BinaryNode:
		left, err := c.expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.expr(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "+":
			return AddOf(left, right), nil
		case "-":
			return SubOf(left, right), nil
		case "*":
			return MulOf(left, right), nil
		case "/":
			if isNumEqual(right, 0) {
				return nil, c.fail("division by zero")
			}
			return DivOf(left, right), nil
		case "**", "^":
			return PowOf(left, right), nil
		}
		return nil, c.fail("unsupported operator %q", n.Operator)
	case *ast.CallNode:
		id, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, c.fail("unsupported call")
		}
		return c.call(id.Value, n.Arguments)
	case *ast.BuiltinNode:
		return c.call(n.Name, n.Arguments)
	}
	return nil, c.fail("unsupported syntax %T", node)
}

func (c converter) call(name string, args []ast.Node) (Expr, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, c.fail("unknown function %q", name)
	}
	if len(args) != 1 {
		return nil, c.fail("%s takes one argument, got %d", name, len(args))
	}
	arg, err := c.expr(args[0])
	if err != nil {
		return nil, err
	}
	return fn(arg), nil
}

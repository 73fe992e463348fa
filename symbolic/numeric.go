package symbolic

import (
	"fmt"
	"strings"
)

// NumericValue is the outcome of a numeric evaluation: either a finite
// value or a reason why the expression has none.
type NumericValue struct {
	Value     float64 `json:"value"`
	Evaluable bool    `json:"evaluable"`
	Reason    string  `json:"reason,omitempty"`
}

func (n NumericValue) String() string {
	if !n.Evaluable {
		return "not evaluable: " + n.Reason
	}
	return fmt.Sprintf("%.10g", n.Value)
}

// Numeric evaluates e to a float64.
func Numeric(e Expr) NumericValue {
	if syms := SortedSymbols(e); len(syms) > 0 {
		return NumericValue{Reason: "free symbols " + strings.Join(syms, ", ")}
	}
	v, ok := e.Eval()
	if !ok {
		return NumericValue{Reason: "no finite value for " + e.String()}
	}
	return NumericValue{Value: v.Float64(), Evaluable: true}
}

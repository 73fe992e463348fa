package calcmv

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/njchilds90/gocalcmv/coords"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCallJSON decodes a ToolRequest, dispatches it and encodes the
// response. Malformed input yields an error response, never a Go error.
func (e *Engine) HandleToolCallJSON(data []byte) []byte {
	var req ToolRequest
	var resp ToolResponse
	if err := json.Unmarshal(data, &req); err != nil {
		resp = ToolResponse{Error: fmt.Sprintf("invalid request: %v", err)}
	} else {
		resp = e.HandleToolCall(req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		out, _ = json.Marshal(ToolResponse{Error: err.Error()})
	}
	return out
}

func (e *Engine) HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	optString := func(key string) string {
		s, _ := req.Params[key].(string)
		return s
	}
	getStrings := func(key string, required bool) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			if required {
				return nil, fmt.Errorf("missing param: %s", key)
			}
			return nil, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	getShape := func() (Shape, error) {
		tag, err := getString("shape")
		if err != nil {
			return Shape{}, err
		}
		shape := Shape{Tag: tag, Params: map[string]string{}}
		raw, ok := req.Params["params"]
		if !ok {
			return shape, nil
		}
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return Shape{}, fmt.Errorf("param params must be an object")
		}
		for k, v := range obj {
			switch val := v.(type) {
			case string:
				shape.Params[k] = val
			case float64:
				shape.Params[k] = strconv.FormatFloat(val, 'f', -1, 64)
			default:
				return Shape{}, fmt.Errorf("params.%s must be a string or number", k)
			}
		}
		return shape, nil
	}
	getLimits := func() ([]Limit, error) {
		raw, ok := req.Params["limits"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("missing param: limits")
		}
		limits := make([]Limit, len(raw))
		for i, r := range raw {
			obj, ok := r.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param limits[%d] must be an object", i)
			}
			for _, key := range []string{"var", "lower", "upper"} {
				switch obj[key].(type) {
				case string, float64:
				default:
					return nil, fmt.Errorf("param limits[%d].%s must be a string or number", i, key)
				}
			}
			limits[i] = Limit{Var: fmt.Sprint(obj["var"]), Lower: fmt.Sprint(obj["lower"]), Upper: fmt.Sprint(obj["upper"])}
		}
		return limits, nil
	}
	respond := func(res *Result, err error) ToolResponse {
		if res == nil {
			return ToolResponse{Error: err.Error()}
		}
		resp := ToolResponse{Result: res.View(), String: exprString(res.Domain)}
		if res.Domain != nil {
			resp.LaTeX = res.Domain.LaTeX()
		}
		if err != nil {
			resp.Error = err.Error()
		}
		return resp
	}
	field := func(n int) ([]string, error) {
		f, err := getStrings("field", true)
		if err != nil {
			return nil, err
		}
		if len(f) != n {
			return nil, fmt.Errorf("param field must have %d components, got %d", n, len(f))
		}
		return f, nil
	}

	e.log.Debug("tool call", "tool", req.Tool)
	switch req.Tool {
	case "triple_integral":
		integrand, err := getString("integrand")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		limits, err := getLimits()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		order, err := getStrings("order", false)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		tr := TripleRequest{Integrand: integrand, System: optString("system"), Order: order, Limits: limits}
		if v, ok := req.Params["jacobian_included"]; ok {
			b, ok := v.(bool)
			if !ok {
				return ToolResponse{Error: "param jacobian_included must be a boolean"}
			}
			tr.JacobianIncluded = &b
		}
		return respond(e.SolveTriple(tr))

	case "green":
		f, err := field(2)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		shape, err := getShape()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e.ApplyGreen(f[0], f[1], shape))

	case "divergence":
		f, err := field(3)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		shape, err := getShape()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e.ApplyDivergence(f[0], f[1], f[2], shape))

	case "stokes":
		f, err := field(3)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		shape, err := getShape()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e.ApplyStokes(f[0], f[1], f[2], shape))

	case "jacobian":
		name, err := getString("transform")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		tf, err := namedTransform(name)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		rows := tf.JacobianMatrix()
		matrix := make([][]string, len(rows))
		for i, row := range rows {
			matrix[i] = make([]string, len(row))
			for j, c := range row {
				matrix[i][j] = c.String()
			}
		}
		det := tf.DerivedJacobian()
		return ToolResponse{
			Result: map[string]interface{}{"vars": tf.Vars, "matrix": matrix, "determinant": det.String()},
			LaTeX:  det.LaTeX(),
			String: det.String(),
		}

	case "equivalent":
		a, err := getString("a")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		b, err := getString("b")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ea, err := sym.Parse(a, sym.Open)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		eb, err := sym.Parse(b, sym.Open)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v := Verify(ea, eb)
		return ToolResponse{
			Result: map[string]interface{}{"equivalent": v.Verified, "residual": v.Residual.String()},
			String: strconv.FormatBool(v.Verified),
		}

	case "catalog":
		return ToolResponse{Result: Catalog(), String: "supported shapes"}

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// namedTransform resolves the transforms of a triple-integral system or a
// region by name.
func namedTransform(name string) (coords.Transform, error) {
	if s, err := coords.ParseSystem(name); err == nil && name != "" {
		return coords.ForSystem(s)
	}
	tf, err := coords.Named(name, nil)
	if err != nil {
		return coords.Transform{}, fmt.Errorf("%w: %v", ErrUnsupportedRegion, err)
	}
	return tf, nil
}

// ============================================================
// Tool spec
// ============================================================

func ToolSpec() string {
	shapeProps := map[string]string{"field": "array", "shape": "string", "params": "object"}
	tools := []map[string]interface{}{
		ts("triple_integral", "Iterated triple integral. limits=[{var,lower,upper}], innermost first; system=rectangular|cylindrical|spherical", []string{"integrand", "limits"},
			map[string]string{"integrand": "string", "system": "string", "order": "array", "limits": "array", "jacobian_included": "boolean"}),
		ts("green", "Green's theorem on a plane region. field=[P,Q]", []string{"field", "shape"}, shapeProps),
		ts("divergence", "Divergence theorem on a solid region. field=[Fx,Fy,Fz]", []string{"field", "shape"}, shapeProps),
		ts("stokes", "Stokes' theorem on a surface. field=[Fx,Fy,Fz]", []string{"field", "shape"}, shapeProps),
		ts("jacobian", "Jacobian matrix and determinant of a named transform", []string{"transform"}, map[string]string{"transform": "string"}),
		ts("equivalent", "Check whether two expressions are symbolically equal", []string{"a", "b"}, map[string]string{"a": "string", "b": "string"}),
		ts("catalog", "List the supported shapes and their parameters", []string{}, map[string]string{}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

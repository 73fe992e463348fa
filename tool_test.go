package calcmv_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
)

type toolReply struct {
	Result json.RawMessage `json:"result"`
	LaTeX  string          `json:"latex"`
	String string          `json:"string"`
	Error  string          `json:"error"`
}

func call(t *testing.T, body string) toolReply {
	t.Helper()
	var reply toolReply
	require.NoError(t, json.Unmarshal(calcmv.New().HandleToolCallJSON([]byte(body)), &reply))
	return reply
}

func TestTool_Green(t *testing.T) {
	reply := call(t, `{"tool":"green","params":{"field":["-y","x"],"shape":"disco","params":{"R":2}}}`)
	require.Empty(t, reply.Error)

	var view calcmv.View
	require.NoError(t, json.Unmarshal(reply.Result, &view))
	assert.Equal(t, calcmv.KindGreen, view.Kind)
	assert.Equal(t, "2", view.Params["R"])
	assert.True(t, view.Checked)
	assert.True(t, view.Verified)
	assert.True(t, view.Numeric.Evaluable)
	assert.NotEmpty(t, view.Steps)
	assert.Contains(t, reply.LaTeX, `\pi`)
}

func TestTool_TripleIntegral(t *testing.T) {
	reply := call(t, `{"tool":"triple_integral","params":{
		"integrand":"1",
		"limits":[{"var":"z","lower":0,"upper":2},{"var":"y","lower":"0","upper":"1"},{"var":"x","lower":0,"upper":3}]}}`)
	require.Empty(t, reply.Error)
	assert.Equal(t, "6", reply.String)
}

func TestTool_DivergenceAndStokes(t *testing.T) {
	reply := call(t, `{"tool":"divergence","params":{"field":["x","y","z"],"shape":"esfera"}}`)
	require.Empty(t, reply.Error)

	reply = call(t, `{"tool":"stokes","params":{"field":["-y","x","0"],"shape":"disco"}}`)
	require.Empty(t, reply.Error)
	var view calcmv.View
	require.NoError(t, json.Unmarshal(reply.Result, &view))
	assert.True(t, view.Verified)
	assert.Len(t, view.Vector, 3)
}

func TestTool_Jacobian(t *testing.T) {
	reply := call(t, `{"tool":"jacobian","params":{"transform":"polar"}}`)
	require.Empty(t, reply.Error)
	assert.Equal(t, "r", reply.String)

	reply = call(t, `{"tool":"jacobian","params":{"transform":"toroidal"}}`)
	assert.Contains(t, reply.Error, "unsupported region")
}

func TestTool_Equivalent(t *testing.T) {
	reply := call(t, `{"tool":"equivalent","params":{"a":"sin(u)**2 + cos(u)**2","b":"1"}}`)
	require.Empty(t, reply.Error)
	assert.Equal(t, "true", reply.String)
}

func TestTool_Errors(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"malformed json", `{"tool":`, "invalid request"},
		{"unknown tool", `{"tool":"laplace","params":{}}`, "unknown tool: laplace"},
		{"missing field", `{"tool":"green","params":{"shape":"disco"}}`, "missing param: field"},
		{"short field", `{"tool":"stokes","params":{"field":["x","y"],"shape":"disco"}}`, "3 components"},
		{"bad params", `{"tool":"green","params":{"field":["x","y"],"shape":"disco","params":{"R":true}}}`, "params.R"},
		{"unsupported region", `{"tool":"green","params":{"field":["x","y"],"shape":"toro"}}`, "unsupported region"},
		{"validation", `{"tool":"green","params":{"field":["x","y"],"shape":"poligono","params":{"lados":2}}}`, "lados"},
		{"jacobian flag type", `{"tool":"triple_integral","params":{"integrand":"1","limits":[],"jacobian_included":"yes"}}`, "jacobian_included"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := call(t, tt.body)
			assert.Contains(t, reply.Error, tt.want)
			assert.Empty(t, reply.Result)
		})
	}
}

func TestTool_PartialResultCarriesError(t *testing.T) {
	reply := call(t, `{"tool":"green","params":{"field":["0","exp(x**2)"],"shape":"disco"}}`)
	assert.Contains(t, reply.Error, "domain integral")
	assert.NotEmpty(t, reply.Result)
}

func TestTool_CatalogAndSpec(t *testing.T) {
	reply := call(t, `{"tool":"catalog"}`)
	require.Empty(t, reply.Error)
	var shapes []calcmv.ShapeInfo
	require.NoError(t, json.Unmarshal(reply.Result, &shapes))
	assert.Len(t, shapes, 19)

	reply = call(t, `{"tool":"tool_spec"}`)
	require.Empty(t, reply.Error)
	var spec string
	require.NoError(t, json.Unmarshal(reply.Result, &spec))
	var parsed struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(spec), &parsed))
	assert.Len(t, parsed.Tools, 8)
}

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcmv "github.com/njchilds90/gocalcmv"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newToolHandler(calcmv.New(), slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestToolHandler_Call(t *testing.T) {
	srv := testServer(t)

	status, out := post(t, srv, `{"tool":"green","params":{"field":["-y","x"],"shape":"disco"}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, out["error"])
	result, ok := out["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, result["verified"])

	status, out = post(t, srv, `{"tool":"triple_integral","params":{"integrand":"1","limits":[{"var":"x","lower":"0","upper":"2"}]}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2", out["string"])

	status, out = post(t, srv, `{"tool":"nope","params":{}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "unknown tool: nope", out["error"])
}

func TestToolHandler_BadRequests(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"tool":`, ""},
		{"unknown field", `{"tool":"catalog","extra":1}`, "unknown field"},
		{"trailing data", `{"tool":"catalog"} {}`, "trailing data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := post(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			msg, _ := out["error"].(string)
			assert.NotEmpty(t, msg)
			assert.Contains(t, msg, tt.want)
		})
	}

	resp, err := http.Get(srv.URL + "/tool")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestToolHandler_SchemaAndHealth(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"triple_integral"`)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
}

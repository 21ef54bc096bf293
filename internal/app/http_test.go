package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractview/internal/render"
)

type httpClient struct {
	t      *testing.T
	server http.Handler
}

func (c httpClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	c.server.ServeHTTP(rr, req)
	return rr
}

func (c httpClient) login(key string) string {
	c.t.Helper()
	rr := c.do(http.MethodPost, "/api/session/login", "", map[string]string{"key": key})
	require.Equal(c.t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type renderResponse struct {
	Name     string         `json:"name"`
	Revision string         `json:"revision"`
	Tree     render.Element `json:"tree"`
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	rr := client.do(http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}

func TestReadyEndpoint(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	rr := client.do(http.MethodGet, "/api/ready", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	env.store.pingErr = errors.New("database unavailable")
	rr = client.do(http.MethodGet, "/api/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decodeJSON[map[string]any](t, rr)
	assert.Equal(t, "not_ready", resp["status"])
}

func TestContractLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	rr := client.do(http.MethodPost, "/api/contracts/import", "", nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	editor := client.login("editor-key")
	rr = client.do(http.MethodPost, "/api/contracts/import", editor, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	admin := client.login("admin-key")
	rr = client.do(http.MethodPost, "/api/contracts/import", admin, map[string]string{"name": "supply"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	imported := decodeJSON[struct {
		Imported []ImportResult `json:"imported"`
	}](t, rr)
	require.Len(t, imported.Imported, 1)
	assert.True(t, imported.Imported[0].Changed)

	rr = client.do(http.MethodGet, "/api/contracts", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"supply"`)

	rr = client.do(http.MethodGet, "/api/contracts/supply", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decodeJSON[ContractDetail](t, rr)
	assert.Equal(t, "Supply Agreement", detail.Title)
	require.Len(t, detail.Mentions, 1)
	assert.Equal(t, "Acme", detail.Mentions[0].DefaultValue)

	rr = client.do(http.MethodGet, "/api/contracts/supply/render", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rendered := decodeJSON[renderResponse](t, rr)
	assert.Equal(t, imported.Imported[0].Revision, rendered.Revision)
	assert.Contains(t, render.PlainText(&rendered.Tree), "means Acme")

	rr = client.do(http.MethodPut, "/api/sessions/viewer-1/mentions/supplier", "", map[string]string{"value": "Globex"})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = client.do(http.MethodPut, "/api/sessions/viewer-1/mentions/supplier", editor, map[string]string{"value": "Globex"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = client.do(http.MethodGet, "/api/sessions/viewer-1/mentions", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"sessionId":"viewer-1","values":{"supplier":"Globex"}}`, rr.Body.String())

	rr = client.do(http.MethodGet, "/api/contracts/supply/render?session=viewer-1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rendered = decodeJSON[renderResponse](t, rr)
	assert.Contains(t, render.PlainText(&rendered.Tree), "means Globex")

	rr = client.do(http.MethodGet, "/api/contracts/supply/export?format=text&session=viewer-1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Supply-Agreement.txt")
	assert.Contains(t, rr.Body.String(), `(a) "Supplier" means Globex`)

	rr = client.do(http.MethodDelete, "/api/sessions/viewer-1/mentions/supplier", editor, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = client.do(http.MethodGet, "/api/contracts/supply/render?session=viewer-1", "", nil)
	rendered = decodeJSON[renderResponse](t, rr)
	assert.Contains(t, render.PlainText(&rendered.Tree), "means Acme")

	rr = client.do(http.MethodGet, "/api/contracts/supply/history", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decodeJSON[struct {
		History []map[string]any `json:"history"`
	}](t, rr)
	require.Len(t, history.History, 1)
	assert.Equal(t, "admin", history.History[0]["author"])

	rr = client.do(http.MethodGet, "/api/search?q=Payment", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"supply"`)
}

func TestRenderEndpointIsStateless(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	rr := client.do(http.MethodPost, "/api/render", "", map[string]any{
		"data":   json.RawMessage(supplyAgreement),
		"values": map[string]string{"supplier": "Initech"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeJSON[struct {
		Tree  render.Element `json:"tree"`
		Stats render.Stats   `json:"stats"`
	}](t, rr)
	assert.Contains(t, render.PlainText(&resp.Tree), "means Initech")
	assert.Equal(t, 2, resp.Stats.Clauses)

	rr = client.do(http.MethodPost, "/api/render", "", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{name: "unknown contract", method: http.MethodGet, path: "/api/contracts/missing", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown route", method: http.MethodGet, path: "/api/nothing", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "bad token", method: http.MethodGet, path: "/api/contracts", token: "garbage", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "bad format", method: http.MethodGet, path: "/api/contracts/supply/export?format=rtf", status: http.StatusBadRequest, code: "UNSUPPORTED_FORMAT"},
		{name: "bad session id", method: http.MethodGet, path: "/api/sessions/a:b/mentions", status: http.StatusBadRequest, code: "INVALID_SESSION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := client.do(tc.method, tc.path, tc.token, nil)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
			resp := decodeJSON[map[string]any](t, rr)
			assert.Equal(t, tc.code, resp["code"])
		})
	}
}

func TestLoginRejectsWrongKey(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	rr := client.do(http.MethodPost, "/api/session/login", "", map[string]string{"key": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := client.login("editor-key")
	rr = client.do(http.MethodGet, "/api/session", token, nil)
	assert.JSONEq(t, `{"authenticated":true,"role":"editor"}`, rr.Body.String())

	rr = client.do(http.MethodGet, "/api/session", "", nil)
	assert.JSONEq(t, `{"authenticated":false,"role":"viewer"}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	client := httpClient{t: t, server: NewHTTPServer(env.service, "*").Handler()}

	client.do(http.MethodGet, "/api/health", "", nil)
	rr := client.do(http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "contractview_http_requests_total"))
}

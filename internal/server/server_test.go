package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/foundation/term"
	"github.com/msto63/termcore/foundation/term/command"
	"github.com/msto63/termcore/internal/commands"
	"github.com/msto63/termcore/pkg/core/logging"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	catalog, err := commands.NewCatalog()
	require.NoError(t, err)
	engine, err := term.New(catalog, term.Options{Logger: mdwlog.NewNop(), DefaultMode: commands.ModeGeneralPurpose})
	require.NoError(t, err)

	cfg.Logger = logging.Wrap(mdwlog.NewNop(), "test")
	srv, err := New(cfg, engine)
	require.NoError(t, err)
	return srv
}

func postExecute(t *testing.T, url string, body string) (*http.Response, command.Result) {
	t.Helper()
	resp, err := http.Post(url+"/api/v1/terminal/execute", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result command.Result
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}
	return resp, result
}

func TestNew_RequiresExecutor(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestHandler_Execute(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, DefaultConfig()).Handler())
	defer ts.Close()

	tests := []struct {
		name       string
		body       string
		wantStatus command.Status
		contains   string
	}{
		{"base command", `{"line":"echo hello world"}`, command.StatusSuccess, "hello world"},
		{"mode command", `{"line":"hash --algo sha256 abc","mode":"security-assessment"}`, command.StatusSuccess, ""},
		{"unknown command", `{"line":"frobnicate"}`, command.StatusError, "Command not found: frobnicate"},
		{"empty line", `{"line":"   "}`, command.StatusSuccess, ""},
		{"mode report", `{"line":"mode","mode":"web-engineering"}`, command.StatusInfo, "web-engineering"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, result := postExecute(t, ts.URL, tt.body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Contains(t, result.Output, tt.contains)
		})
	}
}

func TestHandler_ExecuteRejectsBadRequests(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, DefaultConfig()).Handler())
	defer ts.Close()

	resp, _ := postExecute(t, ts.URL, `{"line":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := http.Get(ts.URL + "/api/v1/terminal/execute")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	big := `{"line":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	resp, _ = postExecute(t, ts.URL, big)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Modes(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, DefaultConfig()).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/terminal/modes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body ModesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, len(commands.Modes()), body.Total)
	assert.ElementsMatch(t, []string{"help", "clear", "mode"}, body.Builtins)

	byName := map[string]ModeListing{}
	for _, m := range body.Modes {
		byName[m.Name] = m
	}
	assert.Contains(t, byName[commands.ModeSecurityAssessment].Commands, "scan")
	assert.Contains(t, byName[commands.ModeSecurityAssessment].Commands, "echo")
	assert.NotContains(t, byName[commands.ModeGeneralPurpose].Commands, "scan")
}

func TestHandler_HealthAndNotFound(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, DefaultConfig()).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", report["status"])
	assert.Equal(t, "termcore", report["service"])

	for _, path := range []string{"/nope", "/api/v1/terminal/nope"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestHandler_CORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"https://console.example"}
	ts := httptest.NewServer(newTestServer(t, cfg).Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/terminal/execute", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://console.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://console.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/terminal/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocket_ExecuteAndPing(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, DefaultConfig()).Handler())
	defer ts.Close()
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "ping", "id": "p1"}))
	var pong WSResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Type)
	assert.Equal(t, "p1", pong.ID)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "execute",
		"id":      "e1",
		"payload": map[string]string{"line": "echo hi --upper", "mode": "general-purpose"},
	}))

	var raw struct {
		Type    string         `json:"type"`
		ID      string         `json:"id"`
		Payload command.Result `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&raw))
	assert.Equal(t, "result", raw.Type)
	assert.Equal(t, "e1", raw.ID)
	assert.Equal(t, "HI", raw.Payload.Output)
	assert.Equal(t, command.StatusSuccess, raw.Payload.Status)
}

func TestWebSocket_Errors(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, DefaultConfig()).Handler())
	defer ts.Close()
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "teleport"}))
	var resp struct {
		Type    string         `json:"type"`
		Payload WSErrorPayload `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "unknown_type", resp.Payload.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"execute","payload":"nope"}`)))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid_payload", resp.Payload.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GRPCAddress = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	srv := newTestServer(t, cfg)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	url := "http://" + lis.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Post(url+"/api/v1/terminal/execute", "application/json",
			bytes.NewBufferString(`{"line":"echo up"}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	assert.NotEmpty(t, srv.GRPCAddress())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

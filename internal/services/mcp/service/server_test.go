package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/questline/internal/services/mcp/domain"
	"github.com/louisbranch/questline/internal/services/narrative/app"
	"github.com/louisbranch/questline/internal/services/narrative/domain/catalog"
	"github.com/louisbranch/questline/internal/services/narrative/domain/engine"
	"github.com/louisbranch/questline/internal/services/narrative/domain/entity"
	"github.com/louisbranch/questline/internal/services/narrative/domain/runtime"
	"github.com/louisbranch/questline/internal/services/narrative/storage"
)

func newTestNarrative(t *testing.T) *app.Service {
	t.Helper()
	cat := catalog.New([]catalog.Definition{{
		ID: "trade-haggle", EntityType: entity.Trade, FromState: "Open", Trigger: "haggle",
		ToState: "Countered", RuleRef: "trade.haggle", LoreAnchors: []string{"market", "spice"},
	}})
	svc, err := app.NewService(storage.NewMemory(), runtime.New(engine.New(cat)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func connectClient(t *testing.T, server *Server) (*mcp.ClientSession, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	return session, func() {
		_ = session.Close()
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
	}
}

func decodeStructuredContent[T any](t *testing.T, content any) T {
	t.Helper()
	raw, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func TestNewRequiresNarrative(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil narrative")
	}
}

func TestServerListsNarrativeTools(t *testing.T) {
	server, err := New(newTestNarrative(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	session, stop := connectClient(t, server)
	defer stop()

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"narrative_apply", "narrative_candidates", "narrative_history", "narrative_state", "narrative_tick"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("tools = %v, want %v", names, want)
	}
}

func TestServerTickRoundTrip(t *testing.T) {
	narrative := newTestNarrative(t)
	server, err := New(narrative)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	session, stop := connectClient(t, server)
	defer stop()

	ctx := context.Background()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "narrative_tick",
		Arguments: map[string]any{
			"commands": []map[string]any{
				{"entity_type": "trade", "entity_id": "spice", "trigger": "haggle"},
			},
		},
	})
	if err != nil {
		t.Fatalf("call narrative_tick: %v", err)
	}
	if result == nil || result.IsError {
		t.Fatalf("narrative_tick failed: %+v", result)
	}
	tick := decodeStructuredContent[domain.TickResult](t, result.StructuredContent)
	if tick.Status != app.TickApplied {
		t.Fatalf("status = %q, want %q", tick.Status, app.TickApplied)
	}

	st, err := narrative.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if st.Trades["spice"] != "Countered" {
		t.Fatalf("trade = %q, want Countered", st.Trades["spice"])
	}

	resource, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "narrative://state"})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(resource.Contents) != 1 || !strings.Contains(resource.Contents[0].Text, "Countered") {
		t.Fatalf("resource = %+v", resource.Contents)
	}
}

func TestServerApplyErrorIsToolError(t *testing.T) {
	server, err := New(newTestNarrative(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	session, stop := connectClient(t, server)
	defer stop()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "narrative_apply",
		Arguments: map[string]any{"entity_type": "dragon", "entity_id": "x", "trigger": "roar"},
	})
	if err != nil {
		t.Fatalf("call narrative_apply: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatalf("expected tool error, got %+v", result)
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "websocket"}, newTestNarrative(t))
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("expected 'not supported' in error, got: %v", err)
	}
}

func TestHTTPTransportHostValidation(t *testing.T) {
	server, err := New(newTestNarrative(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{name: "localhost by default", host: "localhost:8081", want: http.StatusOK},
		{name: "loopback ip by default", host: "127.0.0.1:8081", want: http.StatusOK},
		{name: "remote host rejected by default", host: "evil.example:8081", want: http.StatusForbidden},
		{name: "configured host", allowed: []string{"mcp.example"}, host: "mcp.example", want: http.StatusOK},
		{name: "localhost not implied when configured", allowed: []string{"mcp.example"}, host: "localhost", want: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transport := NewHTTPTransport(Config{AllowedHosts: tc.allowed}, server.mcpServer)
			req := httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
			req.Host = tc.host
			rec := httptest.NewRecorder()
			transport.Handler().ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHTTPTransportStopsOnCancel(t *testing.T) {
	server, err := New(newTestNarrative(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewHTTPTransport(Config{HTTPAddr: "127.0.0.1:0"}, server.mcpServer).Start(ctx)
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("http transport did not stop")
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/questline/internal/platform/timeouts"
)

var listenTCP = net.Listen

const defaultHTTPAddr = "localhost:8081"

// HTTPTransport serves an MCP server over streamable HTTP on /mcp.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	handler      http.Handler
}

// NewHTTPTransport builds an HTTP transport for server.
func NewHTTPTransport(cfg Config, server *mcp.Server) *HTTPTransport {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = defaultHTTPAddr
	}
	t := &HTTPTransport{addr: addr, allowedHosts: allowedHostSet(cfg.AllowedHosts)}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil))
	mux.HandleFunc("/mcp/health", handleHealth)
	t.handler = t.validateHost(mux)
	return t
}

// Handler returns the HTTP handler, host validation included.
func (t *HTTPTransport) Handler() http.Handler {
	return t.handler
}

// Start listens on the configured address and serves until ctx is cancelled.
func (t *HTTPTransport) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              t.addr,
		Handler:           t.handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	log.Printf("Starting MCP HTTP server on %s", listener.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func (t *HTTPTransport) validateHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.hostAllowed(r.Host) {
			http.Error(w, "Forbidden host", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *HTTPTransport) hostAllowed(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))
	if len(t.allowedHosts) == 0 {
		return isLoopbackHost(host)
	}
	_, ok := t.allowedHosts[host]
	return ok
}

func allowedHostSet(hosts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

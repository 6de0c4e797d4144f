// server is the steve-mcp binary: an MCP protocol adapter that exposes the
// Steve backend to AI agent clients over stdio or HTTP transports.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fredcamaral/gomcp-sdk/protocol"
	"github.com/fredcamaral/gomcp-sdk/transport"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"steve-mcp/internal/auth"
	"steve-mcp/internal/config"
	"steve-mcp/internal/health"
	"steve-mcp/internal/logging"
	stevemcp "steve-mcp/internal/mcp"
)

func main() {
	var (
		mode = flag.String("mode", "", "Server mode: stdio or http (overrides MCP_SERVER_MODE)")
		addr = flag.String("addr", "", "HTTP listen address (overrides HOST/PORT)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			os.Exit(1)
		}
	}

	logging.SetDefaultLogger(logging.NewLogger(
		logging.ParseLogLevel(cfg.Logging.Level), cfg.Logging.JSON))
	logger := logging.WithComponent("server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := stevemcp.NewServer(ctx, cfg)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	switch cfg.Server.Mode {
	case "stdio":
		logger.Info("starting steve-mcp in stdio mode")
		mcpServer := srv.MCPServer()
		mcpServer.SetTransport(transport.NewStdioTransport())
		if err := mcpServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP server failed", "error", err)
		}

	case "http":
		listenAddr := *addr
		if listenAddr == "" {
			listenAddr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		}
		logger.Info("starting steve-mcp in http mode", "addr", listenAddr)
		if err := runHTTPServer(ctx, cfg, srv, listenAddr); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Close(shutdownCtx); err != nil {
		logger.Warn("error during shutdown", "error", err)
	}
}

// runHTTPServer serves the MCP endpoint, SSE stream and health probe
func runHTTPServer(ctx context.Context, cfg *config.Config, srv *stevemcp.SteveServer, addr string) error {
	router := newRouter(srv)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", addr,
			"mcp", "/mcp", "sse", "/sse", "health", "/health")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Fresh context for shutdown: the parent is already cancelled
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx) //nolint:contextcheck
}

// newRouter builds the HTTP surface around the MCP server
func newRouter(srv *stevemcp.SteveServer) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestSize(1 * 1024 * 1024))
	router.Use(chimiddleware.Heartbeat("/ping"))
	router.Use(authorizationContext)

	var pinger health.StorePinger
	if mirror := srv.Mirror(); mirror != nil {
		pinger = mirror
	}
	checker := health.NewChecker(pinger, srv.APIClient(), logging.WithComponent("health"))
	router.Get("/health", checker.Handler())

	router.Post("/mcp", handleJSONRPC(srv))
	router.Post("/sse", handleJSONRPC(srv))
	router.Get("/sse", handleSSEStream)

	return router
}

// authorizationContext copies the Authorization header into the request
// context so the credential resolver can reach it from tool handlers.
func authorizationContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); header != "" {
			r = r.WithContext(auth.WithAuthorization(r.Context(), header))
		}
		next.ServeHTTP(w, r)
	})
}

// handleJSONRPC dispatches a single JSON-RPC request through the MCP server
func handleJSONRPC(srv *stevemcp.SteveServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON-RPC request", http.StatusBadRequest)
			return
		}

		resp := srv.MCPServer().HandleRequest(r.Context(), &req)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.Error("encoding JSON-RPC response", "error", err)
		}
	}
}

// handleSSEStream keeps a streamed connection open with periodic heartbeats
func handleSSEStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, _ = fmt.Fprintf(w, "data: {\"type\":\"connected\",\"server\":\"steve-mcp\"}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, "data: {\"type\":\"heartbeat\",\"timestamp\":\"%s\"}\n\n",
				time.Now().UTC().Format(time.RFC3339))
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

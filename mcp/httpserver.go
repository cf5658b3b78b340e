package mcp

import (
	"encoding/json"
	"net/http"

	"github.com/foomo/portfolio-mcp/service"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewMcpHTTPSSEServer creates a handler serving the streamable MCP endpoint
// and the SSE change stream below it
func NewMcpHTTPSSEServer(logger *zap.Logger, s *server.MCPServer, serviceInstance service.Service, endpoint string, config *SSEServerConfig) *McpHTTPSSEServer {
	sseServer := NewMCPSSEServer(logger, serviceInstance, config)

	r := chi.NewRouter()

	mcpHandler := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
	)
	r.Handle(endpoint, mcpHandler)

	r.Get(endpoint+"/sse", sseServer.HandleSSE)
	r.Post(endpoint+"/sse/navigate", sseServer.HandleNavigateSSE)
	r.Get(endpoint+"/sse/clients", func(w http.ResponseWriter, r *http.Request) {
		clients := sseServer.GetConnectedClients()
		writeJSON(w, logger, map[string]any{
			"connectedClients": len(clients),
			"clients":          clients,
		})
	})
	r.Get(endpoint+"/sse/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, sseServer.GetStats())
	})

	return &McpHTTPSSEServer{
		router:    r,
		sseServer: sseServer,
	}
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// McpHTTPSSEServer combines MCP HTTP server with SSE capabilities
type McpHTTPSSEServer struct {
	router    chi.Router
	sseServer *MCPSSEServer
}

// ServeHTTP implements http.Handler
func (s *McpHTTPSSEServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// GetSSEServer returns the underlying SSE server for direct access
func (s *McpHTTPSSEServer) GetSSEServer() *MCPSSEServer {
	return s.sseServer
}

func (s *McpHTTPSSEServer) Close() {
	s.sseServer.Close()
}

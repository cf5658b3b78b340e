package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/portfolio-mcp/service"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/foomo/portfolio-mcp/window"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func newSSEEvent(event string, data any) SSEEvent {
	return SSEEvent{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time

	mu sync.Mutex
}

// MCPSSEServer streams page changes of the session to connected clients
type MCPSSEServer struct {
	logger       *zap.Logger
	service      service.Service
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
	unsubscribe  func()
	closeOnce    sync.Once
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewMCPSSEServer creates a new SSE server fed by the changes of serviceInstance
func NewMCPSSEServer(logger *zap.Logger, serviceInstance service.Service, config *SSEServerConfig) *MCPSSEServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sseServer := &MCPSSEServer{
		logger:    logger.Named("sse"),
		service:   serviceInstance,
		config:    config,
		clients:   make(map[string]*SSEClient),
		broadcast: make(chan SSEEvent, config.BufferSize),
	}
	sseServer.unsubscribe = serviceInstance.Subscribe(func(c window.Change) {
		sseServer.broadcastEvent(SSEEvent{
			ID:        c.ID,
			Event:     c.Kind,
			Data:      c.Data,
			Timestamp: c.At,
		})
	})

	go sseServer.broadcastLoop()

	return sseServer
}

// Close stops forwarding page changes and disconnects all clients
func (s *MCPSSEServer) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.broadcast)

		s.clientsMutex.Lock()
		defer s.clientsMutex.Unlock()
		for id, client := range s.clients {
			close(client.Done)
			delete(s.clients, id)
		}
	})
}

// broadcastLoop handles broadcasting events to all connected clients
func (s *MCPSSEServer) broadcastLoop() {
	for event := range s.broadcast {
		s.clientsMutex.RLock()
		var failed []string
		for clientID, client := range s.clients {
			if err := s.sendEventToClient(client, event); err != nil {
				s.logger.Error("failed to send event to client", zap.String("clientID", clientID), zap.Error(err))
				failed = append(failed, clientID)
			}
		}
		s.clientsMutex.RUnlock()

		for _, clientID := range failed {
			s.removeClient(clientID)
		}
	}
}

// sendEventToClient sends an SSE event to a specific client
func (s *MCPSSEServer) sendEventToClient(client *SSEClient, event SSEEvent) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	if err := writeEvent(client.Writer, event); err != nil {
		return err
	}
	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

func writeEvent(w http.ResponseWriter, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// addClient adds a new SSE client
func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := &SSEClient{
		ID:       uuid.NewString(),
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	// the client is not yet visible to the broadcast loop
	connectEvent := newSSEEvent("connected", map[string]string{"clientID": client.ID, "message": "Connected to portfolio SSE server"})
	if err := s.sendEventToClient(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		return nil
	}

	s.clientsMutex.Lock()
	s.clients[client.ID] = client
	s.clientsMutex.Unlock()

	s.logger.Info("SSE client connected", zap.String("clientID", client.ID))
	return client
}

// removeClient removes a client from the server
func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	if client, exists := s.clients[clientID]; exists {
		close(client.Done)
		delete(s.clients, clientID)
		s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
	}
}

// broadcastEvent queues an event for all connected clients without blocking
func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

// HandleSSE streams page changes until the client goes away
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	client := s.addClient(w)
	if client == nil {
		return
	}

	ctx := r.Context()
	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.removeClient(client.ID)
			return
		case <-client.Done:
			return
		case <-ticker.C:
			keepaliveEvent := newSSEEvent("keepalive", map[string]any{"timestamp": time.Now()})
			if err := s.sendEventToClient(client, keepaliveEvent); err != nil {
				s.removeClient(client.ID)
				return
			}
		}
	}
}

// HandleNavigateSSE navigates the session and streams the progress of that
// one navigation
func (s *MCPSSEServer) HandleNavigateSSE(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Section string `json:"section"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.Section == "" {
		http.Error(w, "section is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	var mu sync.Mutex
	send := func(event SSEEvent) {
		mu.Lock()
		defer mu.Unlock()
		if err := writeEvent(w, event); err != nil {
			s.logger.Debug("failed to write navigate event", zap.Error(err))
			return
		}
		flusher.Flush()
	}

	send(newSSEEvent("navigate_start", map[string]string{"section": request.Section}))

	// forward the changes caused by this navigation as they happen
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	changes := make(chan window.Change, s.config.BufferSize)
	unsubscribe := s.service.Subscribe(func(c window.Change) {
		select {
		case changes <- c:
		default:
		}
	})
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for {
			select {
			case c := <-changes:
				send(SSEEvent{ID: c.ID, Event: c.Kind, Data: c.Data, Timestamp: c.At})
			case <-ctx.Done():
				return
			}
		}
	}()

	snapshot, err := s.service.Navigate(ctx, vo.Section(request.Section))
	unsubscribe()
	// flush what is left before reporting the result
	for drained := false; !drained; {
		select {
		case c := <-changes:
			send(SSEEvent{ID: c.ID, Event: c.Kind, Data: c.Data, Timestamp: c.At})
		default:
			drained = true
		}
	}
	cancel()
	<-forwarded

	if snapshot == nil {
		send(newSSEEvent("navigate_error", map[string]string{"error": err.Error()}))
		return
	}
	result := SnapshotResponse{Snapshot: snapshot}
	if err != nil {
		result.Error = err.Error()
	}
	send(newSSEEvent("navigate_result", result))
	send(newSSEEvent("navigate_complete", map[string]string{"status": "completed"}))
}

// GetConnectedClients returns information about connected clients
func (s *MCPSSEServer) GetConnectedClients() []map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	clients := make([]map[string]any, 0, len(s.clients))
	for _, client := range s.clients {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		clients = append(clients, map[string]any{
			"id":        client.ID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats returns server statistics
func (s *MCPSSEServer) GetStats() map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]any{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}

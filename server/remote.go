package server

import (
	"encoding/json"
	"net/http"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	RemoteNavigate = "navigate"
	RemoteClick    = "click"
	RemoteScroll   = "scroll"
	RemoteSnapshot = "snapshot"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// remoteRequest is the incoming websocket message format.
type remoteRequest struct {
	Type         string `json:"type"`
	Section      string `json:"section,omitempty"`
	Selector     string `json:"selector,omitempty"`
	Index        int    `json:"index,omitempty"`
	Top          int    `json:"top,omitempty"`
	ClientHeight int    `json:"clientHeight,omitempty"`
	ScrollHeight int    `json:"scrollHeight,omitempty"`
}

// remoteResponse is the outgoing websocket message format.
type remoteResponse struct {
	Type     string       `json:"type"` // "snapshot" or "error"
	Snapshot *vo.Snapshot `json:"snapshot,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Remote lets a websocket peer drive the page session.
type Remote struct {
	service service.Service
	logger  *zap.Logger
}

func NewRemote(serviceInstance service.Service, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{
		service: serviceInstance,
		logger:  logger.Named("remote"),
	}
}

func (rm *Remote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		rm.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				rm.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req remoteRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			rm.send(conn, remoteResponse{Type: "error", Error: "invalid message format"})
			continue
		}
		rm.send(conn, rm.handle(r, req))
	}
}

func (rm *Remote) handle(r *http.Request, req remoteRequest) remoteResponse {
	ctx := r.Context()
	var (
		snapshot *vo.Snapshot
		err      error
	)
	switch req.Type {
	case RemoteNavigate:
		if req.Section == "" {
			return remoteResponse{Type: "error", Error: "section is required"}
		}
		snapshot, err = rm.service.Navigate(ctx, vo.Section(req.Section))
	case RemoteClick:
		if req.Selector == "" {
			return remoteResponse{Type: "error", Error: "selector is required"}
		}
		snapshot, err = rm.service.Click(ctx, req.Selector, req.Index)
	case RemoteScroll:
		snapshot, err = rm.service.Scroll(ctx, dom.Scroll{
			Top:          req.Top,
			ClientHeight: req.ClientHeight,
			ScrollHeight: req.ScrollHeight,
		})
	case RemoteSnapshot:
		snapshot, err = rm.service.Snapshot(ctx)
	default:
		return remoteResponse{Type: "error", Error: "unknown message type: " + req.Type}
	}

	resp := remoteResponse{Type: "snapshot", Snapshot: snapshot}
	if err != nil {
		resp.Error = err.Error()
		if snapshot == nil {
			resp.Type = "error"
		}
	}
	return resp
}

func (rm *Remote) send(conn *websocket.Conn, resp remoteResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		rm.logger.Warn("websocket write", zap.Error(err))
	}
}

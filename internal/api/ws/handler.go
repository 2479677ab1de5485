package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/coraldesk/studio/backend/internal/domain/workspace"
	"github.com/coraldesk/studio/backend/internal/infrastructure/logging"
	"github.com/coraldesk/studio/backend/internal/infrastructure/monitoring"
	"github.com/coraldesk/studio/backend/internal/shared/events"
	"github.com/coraldesk/studio/backend/internal/shared/utils"
)

// outBuffer bounds the per-connection event queue. A client that cannot
// keep up loses events rather than blocking mutations.
const outBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Same trust model as the CORS layer
	},
}

// Handler streams workspace state events to dashboard clients
type Handler struct {
	workspaces *workspace.Manager
	logger     *logging.Logger
	metrics    *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(workspaces *workspace.Manager, logger *logging.Logger) *Handler {
	return &Handler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// envelope is the wire frame for every server-to-client message
type envelope struct {
	Type         string `json:"type"`
	Workspace    string `json:"workspace,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Op           string `json:"op,omitempty"`
	TabID        string `json:"tabId,omitempty"`
	Message      string `json:"message,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
}

type inbound struct {
	Type string `json:"type"`
}

// HandleConnection upgrades the request and streams mutation events for
// the workspace named in the query string until the client disconnects
func (h *Handler) HandleConnection(c *gin.Context) {
	ref := c.Query("workspace")
	if err := utils.ValidateID(ref, "workspace", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	h.logger.Info("WebSocket connected",
		zap.String("connection_id", connID),
		zap.String("workspace", ref),
	)

	ws := h.workspaces.Bind(ref)

	out := make(chan envelope, outBuffer)
	done := make(chan struct{})

	unsubscribe := ws.Subscribe(func(ev events.Event) {
		env := envelope{
			Type:      "event",
			Workspace: ev.Workspace,
			Kind:      string(ev.Kind),
			Op:        ev.Op,
			TabID:     ev.TabID,
		}
		select {
		case out <- env:
		default:
			// Slow consumer: drop, the client can refetch state
		}
	})
	defer unsubscribe()

	// Single writer goroutine; gorilla connections do not allow
	// concurrent writes
	go func() {
		for {
			select {
			case env := <-out:
				if err := conn.WriteJSON(env); err != nil {
					return
				}
				if h.metrics != nil {
					h.metrics.RecordWSMessage("out", env.Type)
				}
			case <-done:
				return
			}
		}
	}()

	out <- envelope{
		Type:         "system",
		Message:      "Connected to studio state stream",
		Workspace:    ref,
		ConnectionID: connID,
	}

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "ping":
			out <- envelope{Type: "pong"}
		default:
			out <- envelope{Type: "error", Message: "unknown message type"}
		}
	}

	close(done)
	h.logger.Info("WebSocket disconnected", zap.String("connection_id", connID))
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/response"
	"github.com/taskdeck/taskdeck/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ProjectReader checks that a caller may watch a project.
type ProjectReader interface {
	Detail(ctx context.Context, caller policy.Caller, id uint) (models.Project, error)
}

type RefreshMessage struct {
	Type      string `json:"type"`
	ProjectID uint   `json:"projectId"`
}

// sendBuffer bounds pending refreshes per connection. A refresh already queued
// covers any later one, so overflow is dropped.
const sendBuffer = 4

type client struct {
	conn *websocket.Conn
	send chan RefreshMessage
}

// Hub keeps the open refresh channels per project. It holds no project data.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*client]bool
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Hub{
		clients: make(map[uint]map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// ProjectChanged queues a refresh for every client watching projectID. It never
// blocks on a slow peer.
func (h *Hub) ProjectChanged(projectID uint) {
	message := RefreshMessage{Type: "refresh", ProjectID: projectID}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[projectID] {
		select {
		case c.send <- message:
		default:
			slog.Debug("Refresh already pending, skipping", slog.Uint64("project_id", uint64(projectID)))
		}
	}
}

// Watchers returns the number of open channels for a project.
func (h *Hub) Watchers(projectID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[projectID])
}

func (h *Hub) register(projectID uint, conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan RefreshMessage, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*client]bool)
	}
	h.clients[projectID][c] = true

	return c
}

func (h *Hub) drop(projectID uint, c *client) {
	h.mu.Lock()
	if clients, exists := h.clients[projectID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
	h.mu.Unlock()

	c.conn.Close()
}

// Serve upgrades the request after checking the caller may read the project.
func (h *Hub) Serve(projects ProjectReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := utils.GetCurrentUser(c)

		if err != nil {
			response.Error(c, apperr.Auth("User not authenticated"), "")
			return
		}

		projectID, err := utils.ParseID(c, "id")

		if err != nil {
			response.Error(c, err, "")
			return
		}

		if _, err := projects.Detail(c.Request.Context(), caller, projectID); err != nil {
			response.Error(c, err, "Failed to fetch project details")
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)

		if err != nil {
			slog.Warn("WebSocket upgrade failed", slog.Any("error", err))
			return
		}

		registered := h.register(projectID, conn)
		defer h.drop(projectID, registered)

		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		done := make(chan struct{})
		defer close(done)

		go h.writePump(projectID, registered, done)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Debug("WebSocket closed", slog.Uint64("project_id", uint64(projectID)), slog.Any("error", err))
				}
				return
			}
		}
	}
}

// writePump is the only writer on the connection.
func (h *Hub) writePump(projectID uint, c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteJSON(message); err != nil {
				slog.Debug("Failed to broadcast refresh", slog.Uint64("project_id", uint64(projectID)), slog.Any("error", err))
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

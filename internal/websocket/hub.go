package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"lexio-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans session events out to teacher dashboards. Connections are
// keyed by the student being watched, not by the viewer.
type Hub struct {
	mu          sync.RWMutex
	watchers    map[uuid.UUID][]*websocket.Conn
	redisClient *redis.Client
	jwtSecret   []byte
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		watchers:    make(map[uuid.UUID][]*websocket.Conn),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Only teachers may watch the live session feed
	role, _ := claims["role"].(string)
	if role != models.RoleTeacher {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	studentID, err := uuid.Parse(r.URL.Query().Get("student_id"))
	if err != nil {
		http.Error(w, "Invalid student_id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerWatcher(studentID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterWatcher(studentID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerWatcher(studentID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.watchers[studentID] = append(h.watchers[studentID], conn)

	// Start pub/sub subscription if this is the first watcher for this student
	if len(h.watchers[studentID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[studentID] = cancel
		go h.subscribeToSessionEvents(ctx, studentID)
	}

	log.Printf("WebSocket watcher connected: student %s (total: %d)", studentID, len(h.watchers[studentID]))
}

func (h *Hub) unregisterWatcher(studentID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.watchers[studentID]
	for i, c := range conns {
		if c == conn {
			h.watchers[studentID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more watchers, cancel pub/sub
	if len(h.watchers[studentID]) == 0 {
		delete(h.watchers, studentID)
		if cancel, ok := h.cancelFuncs[studentID]; ok {
			cancel()
			delete(h.cancelFuncs, studentID)
		}
	}

	log.Printf("WebSocket watcher disconnected: student %s", studentID)
}

func (h *Hub) subscribeToSessionEvents(ctx context.Context, studentID uuid.UUID) {
	channel := "session_events:" + studentID.String()
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(studentID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(studentID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.watchers[studentID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultOutboundBuffer = 10
	defaultHeartbeat      = 15 * time.Second
)

// Message es la unidad que viaja por el hub y por el bus de redis.
type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// Client es una conexion SSE abierta. Outbound se cierra al desconectar.
type Client struct {
	ID           uuid.UUID
	SubscriberID string
	Channels     map[string]bool
	Outbound     chan Message
	done         chan struct{}
	closeOnce    sync.Once
}

// Hub reparte mensajes a los clientes suscriptos a cada canal de esta instancia.
type Hub struct {
	mu            sync.RWMutex
	logger        *zap.Logger
	subscriptions map[string]map[*Client]bool
	heartbeat     time.Duration
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:        logger.With(zap.String("component", "sse_hub")),
		subscriptions: make(map[string]map[*Client]bool),
		heartbeat:     defaultHeartbeat,
	}
}

func (h *Hub) NewClient(subscriberID string) *Client {
	return &Client{
		ID:           uuid.New(),
		SubscriberID: strings.TrimSpace(subscriberID),
		Channels:     make(map[string]bool),
		Outbound:     make(chan Message, defaultOutboundBuffer),
		done:         make(chan struct{}),
	}
}

func (h *Hub) AddChannel(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	client.Channels[channel] = true
	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[client] = true
	h.logger.Debug("sse client subscribed", zap.String("client_id", client.ID.String()), zap.String("channel", channel))
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range client.Channels {
		if clients, ok := h.subscriptions[ch]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
}

// Subscribers devuelve cuantos clientes escuchan el canal.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[channel])
}

// Broadcast nunca bloquea: si el buffer de un cliente esta lleno el mensaje se descarta.
func (h *Hub) Broadcast(msg Message) {
	if msg.Channel == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			h.logger.Warn("dropping sse message, outbound buffer full",
				zap.String("client_id", c.ID.String()),
				zap.String("event", msg.Event),
			)
		}
	}
}

// ServeHTTP mantiene el stream abierto hasta que el request termina o el cliente se cierra.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("sse client context done", zap.String("client_id", client.ID.String()))
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			payload, err := json.Marshal(msg.Data)
			if err != nil {
				h.logger.Warn("failed to marshal sse message", zap.Error(err))
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, payload)
			flusher.Flush()
		}
	}
}

// CloseClient desuscribe al cliente y cierra sus canales; es seguro llamarlo mas de una vez.
func (h *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		close(client.done)
		h.RemoveClient(client)
		// RemoveClient toma el lock de escritura, asi que ningun Broadcast sigue enviando.
		close(client.Outbound)
	})
}

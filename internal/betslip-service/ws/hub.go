package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

const allMarkets = "*"

const writeWait = 5 * time.Second

type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex // gorilla aceita um único escritor por conexão
}

func (c *client) send(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub gerencia conexões WebSocket e assinaturas de mercados
// subs: marketID ("*" = todos) -> conjunto de clientes
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
	last     *events.MarketSnapshot
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket. Toda conexão nasce
// inscrita em todos os mercados e recebe o último snapshot conhecido.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	defer conn.Close()

	h.subscribe(c, allMarkets)
	h.mu.RLock()
	last := h.last
	h.mu.RUnlock()
	if last != nil {
		_ = c.send(ServerMsg{Type: "markets", Markets: last})
	}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		key := msg.MarketID
		if key == "" {
			key = allMarkets
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(c, key)
			_ = c.send(ServerMsg{Type: "subscribed", MarketID: msg.MarketID})
		case "unsubscribe":
			h.unsubscribe(c, key)
			_ = c.send(ServerMsg{Type: "unsubscribed", MarketID: msg.MarketID})
		case "ping":
			_ = c.send(ServerMsg{Type: "pong"})
		}
	}

	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for key, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(c *client, key string) {
	h.mu.Lock()
	if _, ok := h.subs[key]; !ok {
		h.subs[key] = make(map[*client]struct{})
	}
	h.subs[key][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(c *client, key string) {
	h.mu.Lock()
	if set, ok := h.subs[key]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, key)
		}
	}
	h.mu.Unlock()
}

// Broadcast envia o snapshot completo aos inscritos em "*" e o estado de cada
// mercado aos inscritos naquele mercado.
func (h *Hub) Broadcast(snap events.MarketSnapshot) {
	h.mu.Lock()
	h.last = &snap
	targets := make(map[*client][]ServerMsg)
	for c := range h.subs[allMarkets] {
		targets[c] = append(targets[c], ServerMsg{Type: "markets", Markets: &snap})
	}
	for i := range snap.Markets {
		m := &snap.Markets[i]
		for c := range h.subs[m.MarketID] {
			targets[c] = append(targets[c], ServerMsg{Type: "market", MarketID: m.MarketID, Market: m})
		}
	}
	h.mu.Unlock()

	for c, msgs := range targets {
		for _, msg := range msgs {
			if err := c.send(msg); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				break
			}
		}
	}
}

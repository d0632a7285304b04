package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func read(t *testing.T, c *websocket.Conn) ServerMsg {
	t.Helper()
	var m ServerMsg
	if err := c.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func snapshot(ids ...string) events.MarketSnapshot {
	s := events.MarketSnapshot{FetchedAt: time.Now().UTC()}
	for _, id := range ids {
		s.Markets = append(s.Markets, events.MarketState{MarketID: id, OpenResult: "XXX", CloseResult: "XXX"})
	}
	return s
}

func TestHubPushesSnapshots(t *testing.T) {
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	hub.Broadcast(snapshot("KALYAN")) // ninguém conectado; vira o último snapshot
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv)
	defer c.Close()

	first := read(t, c)
	if first.Type != "markets" || first.Markets == nil || len(first.Markets.Markets) != 1 {
		t.Fatalf("first message = %+v", first)
	}

	hub.Broadcast(snapshot("KALYAN", "MILAN DAY"))
	next := read(t, c)
	if next.Type != "markets" || len(next.Markets.Markets) != 2 {
		t.Errorf("broadcast = %+v", next)
	}
}

func TestHubMarketSubscription(t *testing.T) {
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv)
	defer c.Close()

	// sai do feed completo e assina só um mercado
	_ = c.WriteJSON(ClientMsg{Type: "unsubscribe"})
	if m := read(t, c); m.Type != "unsubscribed" {
		t.Fatalf("ack = %+v", m)
	}
	_ = c.WriteJSON(ClientMsg{Type: "subscribe", MarketID: "KALYAN"})
	if m := read(t, c); m.Type != "subscribed" || m.MarketID != "KALYAN" {
		t.Fatalf("ack = %+v", m)
	}

	hub.Broadcast(snapshot("MILAN DAY", "KALYAN"))
	m := read(t, c)
	if m.Type != "market" || m.Market == nil || m.Market.MarketID != "KALYAN" {
		t.Errorf("message = %+v", m)
	}

	_ = c.WriteJSON(ClientMsg{Type: "ping"})
	if m := read(t, c); m.Type != "pong" {
		t.Errorf("ping reply = %+v", m)
	}
}

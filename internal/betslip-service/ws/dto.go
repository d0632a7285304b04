package ws

import "github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MarketID vazio = todos os mercados
type ClientMsg struct {
	Type     string `json:"type"`
	MarketID string `json:"marketId,omitempty"`
}

// ServerMsg é o envelope enviado aos clientes.
// Type: markets (snapshot completo) | market (um mercado) | subscribed | unsubscribed | pong
type ServerMsg struct {
	Type     string                 `json:"type"`
	MarketID string                 `json:"marketId,omitempty"`
	Markets  *events.MarketSnapshot `json:"markets,omitempty"`
	Market   *events.MarketState    `json:"market,omitempty"`
}

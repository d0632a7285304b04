package events

import "time"

// MarketState é o estado de um mercado no momento da coleta.
type MarketState struct {
	MarketID    string `json:"market_id"`
	OpenTime    string `json:"open_time"`
	CloseTime   string `json:"close_time"`
	OpenResult  string `json:"open_result"`
	CloseResult string `json:"close_result"`
	WindowOpen  bool   `json:"window_open"`
}

// Publicado no canal Redis de mercados a cada coleta bem-sucedida.
type MarketSnapshot struct {
	Markets   []MarketState `json:"markets"`
	FetchedAt time.Time     `json:"fetched_at"`
}

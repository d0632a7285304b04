package topics

const (
	// Bilhetes
	TicketConfirmed = "ticket_confirmed"

	// DLQs
	TicketConfirmedDLQ = "ticket_confirmed_dlq"

	// Redis Pub/Sub (market-sync-worker -> betslip-service/ws)
	MarketBroadcast = "market_updates_broadcast"
)

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/db"
	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

// Roda só com um Postgres disponível (ex.: POSTGRES_TEST_DSN=postgres://...).
func TestSaveTicketIdempotent(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	pg, err := db.ConnectPostgres(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pg.Close()

	ctx := context.Background()
	repo := NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	ev := events.TicketConfirmed{
		TicketID:         uuid.NewString(),
		UserID:           "u1",
		TotalStake:       decimal.NewFromInt(150),
		PreviousBalance:  decimal.NewFromInt(500),
		ProjectedBalance: decimal.NewFromInt(350),
		ConfirmedAt:      time.Now().UTC(),
		Entries: []events.TicketEntry{
			{Number: "05", BetTypeID: 2, Category: "Jodi Digit", Amount: decimal.NewFromInt(100), Multiplier: decimal.NewFromInt(95), MarketID: "KALYAN"},
			{Number: "123", BetTypeID: 3, Category: "Single Panna", Session: "Open", Amount: decimal.NewFromInt(50), Multiplier: decimal.NewFromInt(140), MarketID: "KALYAN"},
		},
	}

	inserted, err := repo.SaveTicket(ctx, ev)
	if err != nil || !inserted {
		t.Fatalf("first save = %v, %v", inserted, err)
	}
	inserted, err = repo.SaveTicket(ctx, ev)
	if err != nil || inserted {
		t.Fatalf("redelivery = %v, %v", inserted, err)
	}

	var n int
	if err := pg.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticket_audit_entries WHERE ticket_id=$1`, ev.TicketID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
}

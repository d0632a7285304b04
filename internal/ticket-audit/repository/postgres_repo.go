package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

const schema = `
	CREATE TABLE IF NOT EXISTS ticket_audit (
		ticket_id         TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		total_stake       NUMERIC(14,2) NOT NULL,
		previous_balance  NUMERIC(14,2) NOT NULL,
		projected_balance NUMERIC(14,2) NOT NULL,
		confirmed_at      TIMESTAMPTZ NOT NULL,
		recorded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS ticket_audit_entries (
		id          UUID PRIMARY KEY,
		ticket_id   TEXT NOT NULL REFERENCES ticket_audit(ticket_id),
		position    INT NOT NULL,
		market_id   TEXT NOT NULL,
		bet_type_id INT NOT NULL,
		category    TEXT NOT NULL,
		session     TEXT,
		number      TEXT NOT NULL,
		amount      NUMERIC(14,2) NOT NULL,
		multiplier  NUMERIC(10,2) NOT NULL
	);
	CREATE INDEX IF NOT EXISTS ticket_audit_user_idx ON ticket_audit (user_id, confirmed_at DESC);
`

// PostgresRepo grava a trilha de auditoria dos bilhetes confirmados
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// EnsureSchema cria as tabelas se ainda não existirem
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// SaveTicket insere o bilhete e suas entradas numa transação.
// Idempotente por ticket_id: reentrega do Kafka devolve inserted=false.
func (r *PostgresRepo) SaveTicket(ctx context.Context, t events.TicketConfirmed) (inserted bool, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qTicket = `
		INSERT INTO ticket_audit
		  (ticket_id, user_id, total_stake, previous_balance, projected_balance, confirmed_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (ticket_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, qTicket,
		t.TicketID, t.UserID, t.TotalStake, t.PreviousBalance, t.ProjectedBalance, t.ConfirmedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, tx.Commit()
	}

	const qEntry = `
		INSERT INTO ticket_audit_entries
		  (id, ticket_id, position, market_id, bet_type_id, category, session, number, amount, multiplier)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	for i, e := range t.Entries {
		var session sql.NullString
		if e.Session != "" {
			session = sql.NullString{String: e.Session, Valid: true}
		}
		if _, err = tx.ExecContext(ctx, qEntry,
			uuid.New(), t.TicketID, i, e.MarketID, e.BetTypeID, e.Category, session, e.Number, e.Amount, e.Multiplier,
		); err != nil {
			return false, err
		}
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// The payment-session ledger makes webhook reconciliation idempotent:
// gateways retry delivery, and without a dedup key every retry that passed
// signature verification would create another order. A session id is claimed
// exactly once; the order id is recorded after creation so a redelivery can
// tell "already done" from "claimed but crashed mid-flight".

// Claim records that reconciliation of a payment session has started.
// Returns (true, nil) when this caller won the claim, or
// (false, existingOrderID) when the session was seen before.
// existingOrderID is nil if the earlier attempt never finished, in which
// case the caller should proceed and complete the work.
func (s *Store) Claim(ctx context.Context, sessionID string) (bool, *int64, error) {
	const ins = `
INSERT INTO payment_sessions (id, session_id)
VALUES ($1, $2)
ON CONFLICT (session_id) DO NOTHING
`
	tag, err := s.pool.Exec(ctx, ins, uuid.NewString(), sessionID)
	if err != nil {
		return false, nil, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil, nil
	}

	const sel = `SELECT order_id FROM payment_sessions WHERE session_id = $1`
	var orderID *int64
	if err := s.pool.QueryRow(ctx, sel, sessionID).Scan(&orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row vanished between insert and select; treat as fresh claim.
			return true, nil, nil
		}
		return false, nil, err
	}
	return false, orderID, nil
}

// RecordOrder marks a claimed session as reconciled into the given order.
func (s *Store) RecordOrder(ctx context.Context, sessionID string, orderID int64) error {
	const q = `
UPDATE payment_sessions
SET order_id = $2, reconciled_at = now()
WHERE session_id = $1
`
	_, err := s.pool.Exec(ctx, q, sessionID, orderID)
	return err
}

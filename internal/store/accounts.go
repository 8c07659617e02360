package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"dolls-storefront/internal/model"
)

// AccountByEmail fetches the local account for an email, case-insensitively.
// Returns model.ErrNotFound when no account exists.
func (s *Store) AccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	const q = `
SELECT id::text, email, woo_customer_id
FROM accounts
WHERE lower(email) = lower($1)
LIMIT 1
`
	return s.scanAccount(s.pool.QueryRow(ctx, q, email))
}

// AccountByID fetches an account by its id. Returns model.ErrNotFound when
// no account exists.
func (s *Store) AccountByID(ctx context.Context, id string) (*model.Account, error) {
	const q = `
SELECT id::text, email, woo_customer_id
FROM accounts
WHERE id = $1::uuid
LIMIT 1
`
	return s.scanAccount(s.pool.QueryRow(ctx, q, id))
}

// AccountBySession resolves the account bound to a session token. This is the
// only ambient-session access point; handlers resolve the account once and
// pass it down explicitly.
func (s *Store) AccountBySession(ctx context.Context, token string) (*model.Account, error) {
	const q = `
SELECT a.id::text, a.email, a.woo_customer_id
FROM accounts a
JOIN sessions s ON s.account_id = a.id
WHERE s.token = $1 AND s.expires_at > now()
LIMIT 1
`
	return s.scanAccount(s.pool.QueryRow(ctx, q, token))
}

// LinkCustomer persists the account → commerce-customer link. The guard
// clause enforces the write-once invariant: an already-linked account is
// left untouched (administrative overrides bypass this method).
func (s *Store) LinkCustomer(ctx context.Context, accountID string, customerID int64) error {
	const q = `
UPDATE accounts
SET woo_customer_id = $2
WHERE id = $1 AND woo_customer_id IS NULL
`
	_, err := s.pool.Exec(ctx, q, accountID, customerID)
	return err
}

func (s *Store) scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Email, &a.WooCustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

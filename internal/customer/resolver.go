// Package customer resolves buyer emails to WooCommerce customer records:
// find-or-create keyed by exact email, linked once to the local account.
// Both the direct-order path and the webhook reconciliation path run through
// here, possibly concurrently for the same new buyer.
package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"

	"dolls-storefront/internal/model"
	"dolls-storefront/internal/woocommerce"
)

// commerceClient is the slice of the WooCommerce client the resolver needs.
type commerceClient interface {
	SearchCustomersByEmail(ctx context.Context, email string) ([]woocommerce.Customer, error)
	CreateCustomer(ctx context.Context, in woocommerce.CustomerInput) (*woocommerce.Customer, error)
}

// accountLinker persists the local account → customer link.
type accountLinker interface {
	LinkCustomer(ctx context.Context, accountID string, customerID int64) error
}

// Resolver finds or creates commerce customers idempotently.
type Resolver struct {
	commerce commerceClient
	accounts accountLinker
	logger   *slog.Logger
}

// New creates a Resolver. accounts may be nil for guest-only setups.
func New(commerce commerceClient, accounts accountLinker, logger *slog.Logger) *Resolver {
	return &Resolver{commerce: commerce, accounts: accounts, logger: logger}
}

// Input carries what a new customer record would be built from.
type Input struct {
	Email     string
	FirstName string
	LastName  string
	Billing   woocommerce.Address
	Shipping  woocommerce.Address

	// Account is the already-resolved local account, or nil for guests.
	// Passed explicitly; the resolver never reads ambient session state.
	Account *model.Account
}

// Resolve returns the commerce customer id for an email.
//
// Order matters for idempotency:
//  1. an account with an existing link short-circuits, no network call;
//  2. exact-match search (the backend search is fuzzy, so results are
//     filtered to exact case-insensitive equality);
//  3. found → persist link, return;
//  4. else create with a write-once random password;
//  5. a creation conflict means another request won the race; search
//     again instead of failing.
//
// Repeated concurrent invocations converge on one id because the backend
// rejects duplicate emails and step 5 treats that rejection as a retry.
func (r *Resolver) Resolve(ctx context.Context, in Input) (int64, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" {
		return 0, model.NewValidationError("email", "required")
	}

	if in.Account.Linked() {
		return *in.Account.WooCustomerID, nil
	}

	if id, err := r.findExact(ctx, email); err != nil {
		return 0, err
	} else if id != 0 {
		r.link(ctx, in.Account, id)
		return id, nil
	}

	created, err := r.commerce.CreateCustomer(ctx, woocommerce.CustomerInput{
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  randomPassword(),
		Billing:   in.Billing,
		Shipping:  in.Shipping,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			// Lost a concurrent-create race; the customer exists now.
			r.logger.InfoContext(ctx, "customer create conflict, re-searching",
				slog.String("email", email))
			id, serr := r.findExact(ctx, email)
			if serr != nil {
				return 0, serr
			}
			if id == 0 {
				return 0, model.NewUpstreamError("WooCommerce",
					errors.New("customer reported as existing but not found by search"))
			}
			r.link(ctx, in.Account, id)
			return id, nil
		}
		return 0, err
	}

	r.link(ctx, in.Account, created.ID)
	return created.ID, nil
}

// findExact searches by email and accepts only exact matches. A fuzzy match
// would mis-link an order to the wrong buyer's purchase history.
func (r *Resolver) findExact(ctx context.Context, email string) (int64, error) {
	results, err := r.commerce.SearchCustomersByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	for _, c := range results {
		if model.NormalizeEmail(c.Email) == email {
			return c.ID, nil
		}
	}
	return 0, nil
}

// link persists the account link. Failures are logged, not fatal: the order
// flow must not break over a bookkeeping write, and all writers compute the
// same value for the same email.
func (r *Resolver) link(ctx context.Context, account *model.Account, customerID int64) {
	if account == nil || account.Linked() || r.accounts == nil {
		return
	}
	if err := r.accounts.LinkCustomer(ctx, account.ID, customerID); err != nil {
		r.logger.ErrorContext(ctx, "persisting customer link failed",
			slog.String("account_id", account.ID),
			slog.Int64("customer_id", customerID),
			slog.String("error", err.Error()),
		)
	}
}

// randomPassword generates the write-once password for backend customer
// records. Buyers authenticate through the local account, never with this.
func randomPassword() string {
	var buf [18]byte
	rand.Read(buf[:])
	return base64.RawURLEncoding.EncodeToString(buf[:])
}

// Package orders serves a signed-in buyer's order history.
package orders

import (
	"context"
	"log/slog"
	"strings"

	"dolls-storefront/internal/model"
	"dolls-storefront/internal/woocommerce"
)

// commerceClient is the slice of the WooCommerce client history needs.
type commerceClient interface {
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]woocommerce.Order, error)
	SearchOrders(ctx context.Context, query string) ([]woocommerce.Order, error)
}

// History lists a buyer's past orders.
type History struct {
	commerce commerceClient
	logger   *slog.Logger
}

// NewHistory creates a History service.
func NewHistory(commerce commerceClient, logger *slog.Logger) *History {
	return &History{commerce: commerce, logger: logger}
}

// List returns the account's orders, newest first. A linked account lists by
// its commerce customer id; an unlinked account falls back to an email
// search, filtered to exact billing-email matches because the search is
// fuzzy. Guests have no order history.
func (h *History) List(ctx context.Context, account *model.Account) ([]woocommerce.Order, error) {
	if account == nil {
		return nil, model.NewUnauthorizedError("sign in to view order history")
	}

	if account.Linked() {
		return h.commerce.ListOrdersByCustomer(ctx, *account.WooCustomerID)
	}

	found, err := h.commerce.SearchOrders(ctx, account.Email)
	if err != nil {
		return nil, err
	}

	orders := make([]woocommerce.Order, 0, len(found))
	for _, o := range found {
		if strings.EqualFold(o.Billing.Email, account.Email) {
			orders = append(orders, o)
		}
	}
	h.logger.DebugContext(ctx, "order history via email search",
		slog.String("email", account.Email),
		slog.Int("matched", len(orders)),
		slog.Int("searched", len(found)),
	)
	return orders, nil
}

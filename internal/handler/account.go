package handler

import (
	"log/slog"
	"net/http"

	"dolls-storefront/internal/model"
	"dolls-storefront/internal/woocommerce"
)

// historyOrder is the client-facing view of a past order.
type historyOrder struct {
	OrderID     int64             `json:"order_id"`
	Number      string            `json:"number"`
	Status      string            `json:"status"`
	Currency    string            `json:"currency"`
	Total       string            `json:"total"`
	DateCreated string            `json:"date_created"`
	LineItems   []historyLineItem `json:"line_items"`
}

type historyLineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

func toHistoryOrders(orders []woocommerce.Order) []historyOrder {
	out := make([]historyOrder, len(orders))
	for i, o := range orders {
		items := make([]historyLineItem, len(o.LineItems))
		for j, li := range o.LineItems {
			items[j] = historyLineItem{Name: li.Name, Quantity: li.Quantity, Total: li.Total}
		}
		out[i] = historyOrder{
			OrderID:     o.ID,
			Number:      o.Number,
			Status:      o.Status,
			Currency:    o.Currency,
			Total:       o.Total,
			DateCreated: o.DateCreated,
			LineItems:   items,
		}
	}
	return out
}

// handleOrderHistory lists the signed-in buyer's orders.
// GET /account/orders
func (h *Handler) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account := h.accountFromRequest(r)
	if account == nil {
		h.writeError(w, model.NewUnauthorizedError("sign in to view order history"))
		return
	}

	h.logger.InfoContext(ctx, "listing order history",
		slog.String("account_id", account.ID),
		slog.Bool("linked", account.Linked()),
	)

	orders, err := h.history.List(ctx, account)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": toHistoryOrders(orders),
	})
}

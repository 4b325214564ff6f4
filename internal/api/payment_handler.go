package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/theaivault/backend/internal/auth"
	"github.com/theaivault/backend/internal/payments"
	"github.com/theaivault/backend/internal/plans"
)

const (
	webhookSignatureHeader = "x-webhook-signature"
	webhookTimestampHeader = "x-webhook-timestamp"
)

type PaymentHandler struct {
	payments *payments.Service
	log      *slog.Logger
}

func NewPaymentHandler(paymentsService *payments.Service, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: paymentsService, log: log}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		PlanID string `json:"planId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.payments.InitiateOrder(r.Context(), user.ID, user.Email, req.PlanID)
	if err != nil {
		if errors.Is(err, payments.ErrUnknownPlan) {
			writeError(w, http.StatusBadRequest, "invalid plan selected")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Confirm is the client-redirect half of reconciliation. It races the
// webhook; both are safe to call for the same order.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	result, err := h.payments.Reconcile(r.Context(), req.OrderID, user.ID)
	if err != nil {
		if errors.Is(err, payments.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type webhookPayload struct {
	Data struct {
		Order struct {
			OrderID     string  `json:"order_id"`
			OrderStatus string  `json:"order_status"`
			OrderAmount float64 `json:"order_amount"`
		} `json:"order"`
	} `json:"data"`
}

// Webhook is the gateway-push half of reconciliation. The signature covers
// the timestamp concatenated with the raw body.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	signature := r.Header.Get(webhookSignatureHeader)
	timestamp := r.Header.Get(webhookTimestampHeader)
	if err := h.payments.VerifyWebhookSignature(timestamp, signature, rawBody); err != nil {
		h.log.Warn("webhook signature rejected", "err", err)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}
	order := payload.Data.Order
	if order.OrderID == "" {
		writeError(w, http.StatusBadRequest, "missing order_id")
		return
	}

	h.log.Info("payment webhook received", "order", order.OrderID, "status", order.OrderStatus)

	switch order.OrderStatus {
	case "PAID":
		if _, err := h.payments.Reconcile(r.Context(), order.OrderID, ""); err != nil {
			if errors.Is(err, payments.ErrOrderNotFound) {
				writeError(w, http.StatusNotFound, "order not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "FAILED", "CANCELLED":
		if err := h.payments.MarkFailed(r.Context(), order.OrderID); err != nil && !errors.Is(err, payments.ErrOrderNotFound) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PaymentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	catalog := make([]map[string]any, 0, len(plans.PlanOrder))
	for _, id := range plans.PlanOrder {
		plan := plans.Get(id)
		catalog = append(catalog, map[string]any{
			"id":       plan.ID,
			"name":     plan.DisplayName,
			"credits":  plan.Credits,
			"price":    plan.Price,
			"currency": plan.Currency,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": catalog})
}

package api

import (
	"errors"
	"net/http"

	"github.com/theaivault/backend/internal/auth"
	"github.com/theaivault/backend/internal/ledger"
)

type AccountHandler struct {
	ledger *ledger.Service
}

func NewAccountHandler(ledgerService *ledger.Service) *AccountHandler {
	return &AccountHandler{ledger: ledgerService}
}

// CreateProfile provisions the caller's account. Calling it again returns the
// existing account unchanged.
func (h *AccountHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	account, err := h.ledger.CreateAccount(r.Context(), user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":                 account.ID,
		"email":              account.Email,
		"creditsRemaining":   account.CreditsRemaining,
		"subscriptionStatus": string(account.SubscriptionStatus),
	})
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	account, err := h.ledger.GetBalance(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"creditsRemaining":   account.CreditsRemaining,
		"totalCreations":     account.TotalCreations,
		"subscriptionStatus": string(account.SubscriptionStatus),
		"lastCreationAt":     account.LastCreationAt,
	})
}

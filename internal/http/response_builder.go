package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
)

// transactionView is the wire form of a transaction. Type is derived from
// the amount sign.
type transactionView struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    core.Category   `json:"category"`
	Date        core.Date       `json:"date"`
	Type        core.Kind       `json:"type"`
	IsRecurring bool            `json:"isRecurring"`
	RecurringID *int64          `json:"recurringId,omitempty"`
}

func viewOf(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Date:        t.Date,
		Type:        t.Kind(),
		IsRecurring: t.IsRecurring,
		RecurringID: t.RecurringID,
	}
}

func viewsOf(txs []core.Transaction) []transactionView {
	out := make([]transactionView, len(txs))
	for i, t := range txs {
		out[i] = viewOf(t)
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

type importResponse struct {
	Transactions          int `json:"transactions"`
	RecurringTransactions int `json:"recurringTransactions"`
	TypeMismatches        int `json:"typeMismatches"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to write response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeServiceError maps a LedgerService error to a response. Persistence
// failures are server errors; everything else is rejected input.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrSaveFailed) {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Ledger change not persisted",
			err, log.ComponentHTTP, log.OpSave, log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
		writeError(w, r, http.StatusInternalServerError, "the change was applied but could not be saved")
		return
	}
	writeError(w, r, http.StatusBadRequest, err.Error())
}

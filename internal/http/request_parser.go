package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
)

const (
	maxJSONBodyBytes   = 64 << 10
	maxBackupBodyBytes = 10 << 20
)

// transactionRequest is the POST /api/transactions body. Amount accepts a
// JSON number or a numeric string; its sign is ignored in favour of type.
type transactionRequest struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	IsRecurring bool        `json:"isRecurring"`
}

func (req transactionRequest) input() core.TransactionInput {
	return core.TransactionInput{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount.String(),
		Kind:        req.Type,
		Category:    req.Category,
		Date:        req.Date,
		Recurring:   req.IsRecurring,
	}
}

type budgetRequest struct {
	Amount json.Number `json:"amount"`
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

// decodeJSON reads exactly one JSON object from the body into dst. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// readBackupBody returns the raw backup document from the request body.
func readBackupBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("backup exceeds %d bytes", maxErr.Limit)
		}
		return nil, fmt.Errorf("read backup: %w", err)
	}
	return data, nil
}

// parseID reads the {id} path segment. Any non-zero id is accepted, matching
// what a backup may carry.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidID, r.PathValue("id"))
	}
	return id, nil
}

// parseCategoryFilter maps the category query value to a filter; empty and
// "all" match every category.
func parseCategoryFilter(value string) (core.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return "", nil
	}
	return core.ParseCategory(value)
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

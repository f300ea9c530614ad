package http

import (
	"net/http"

	"ledger/internal/backup"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.reports.Dashboard(r.Context(), s.ledger.Now()))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category, err := parseCategoryFilter(query.Get("category"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	txs := s.reports.Transactions(sanitizeInput(query.Get("q")), category)
	writeJSON(w, r, http.StatusOK, viewsOf(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.ledger.AddTransaction(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, viewOf(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := s.ledger.DeleteTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, r, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.SetBudget(r.Context(), amount); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"monthlyBudget": amount})
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.SetCurrency(r.Context(), req.Currency); err != nil {
		writeServiceError(w, r, err)
		return
	}
	var current string
	s.ledger.View(func(l *ledger.Ledger) { current = l.Currency() })
	writeJSON(w, r, http.StatusOK, map[string]string{"selectedCurrency": current})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.Export(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Backup export failed", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.FileName(s.ledger.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBackupBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.ledger.Import(r.Context(), data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := importResponse{TypeMismatches: report.TypeMismatches}
	s.ledger.View(func(l *ledger.Ledger) {
		resp.Transactions = l.Len()
		resp.RecurringTransactions = len(l.Templates())
	})
	writeJSON(w, r, http.StatusOK, resp)
}

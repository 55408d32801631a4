package http

import (
	"net/http"

	"budget/internal/core"
)

type recordTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      moneyJSON `json:"amount"`
	Date        string    `json:"date"`
	Description string    `json:"description,omitempty"`
}

type transactionListResponse struct {
	Period       string                `json:"period"`
	Transactions []transactionResponse `json:"transactions"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      toMoneyJSON(tx.Amount),
		Date:        tx.Date.Format("2006-01-02"),
		Description: tx.Description,
	}
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req recordTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	date, err := parseTxDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	tx := core.Transaction{
		AccountID:   accountID,
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: req.Description,
	}

	id, err := s.ledger.RecordTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = id

	s.invalidateAccount(accountID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	period := periodFromQuery(r)
	txs, err := s.ledger.ListTransactions(r.Context(), accountID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := transactionListResponse{
		Period:       period,
		Transactions: make([]transactionResponse, 0, len(txs)),
	}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txID, err := parseTxID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), txID, accountID); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAccount(accountID)
	w.WriteHeader(http.StatusNoContent)
}

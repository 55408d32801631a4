package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"budget/internal/core"
)

type creditResponse struct {
	AccountID   string    `json:"account_id"`
	CreditLimit moneyJSON `json:"credit_limit"`
	UsedCredit  moneyJSON `json:"used_credit"`
	Available   moneyJSON `json:"available_credit"`
}

func toCreditResponse(ca core.CreditAccount) creditResponse {
	return creditResponse{
		AccountID:   ca.AccountID.String(),
		CreditLimit: toMoneyJSON(ca.CreditLimit),
		UsedCredit:  toMoneyJSON(ca.UsedCredit),
		Available:   toMoneyJSON(ca.AvailableCredit()),
	}
}

type setLimitRequest struct {
	Limit string `json:"limit"`
}

type recomputeRequest struct {
	Period string `json:"period"`
}

func (s *Server) handleGetCredit(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ca, err := s.credit.GetCreditAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditResponse(ca))
}

func (s *Server) handleSetCreditLimit(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req setLimitRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	// Zero is a valid limit, it disables the credit line.
	cents, err := core.ParseLimitToCents(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ca, err := s.credit.SetLimit(r.Context(), accountID, core.Money{Cents: cents})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Credit limit updated",
		"account_id", accountID, "limit_cents", cents)
	s.invalidateAccount(accountID)
	writeJSON(w, http.StatusOK, toCreditResponse(ca))
}

func (s *Server) handleResetCredit(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ca, err := s.credit.ResetUsedCredit(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Used credit reset", "account_id", accountID)
	s.invalidateAccount(accountID)
	writeJSON(w, http.StatusOK, toCreditResponse(ca))
}

func (s *Server) handleRecomputeCredit(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The period comes from the query string, with a body fallback for
	// clients that prefer posting JSON. Absent both, recompute all time.
	period := r.URL.Query().Get("period")
	if period == "" {
		var req recomputeRequest
		if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
			return
		}
		period = req.Period
	}
	if period == "" {
		period = core.PeriodAll
	}

	ca, err := s.credit.RecomputeUsedCredit(r.Context(), accountID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAccount(accountID)
	writeJSON(w, http.StatusOK, toCreditResponse(ca))
}

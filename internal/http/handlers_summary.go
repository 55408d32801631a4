package http

import (
	"log/slog"
	"net/http"
)

type summaryResponse struct {
	AccountID       string    `json:"account_id"`
	Period          string    `json:"period"`
	Income          moneyJSON `json:"income"`
	Expenses        moneyJSON `json:"expenses"`
	CreditLimit     moneyJSON `json:"credit_limit"`
	CreditUsed      moneyJSON `json:"credit_used"`
	OwnFunds        moneyJSON `json:"own_funds"`
	AvailableCredit moneyJSON `json:"available_credit"`
	TotalBalance    moneyJSON `json:"total_balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	period := periodFromQuery(r)
	key := s.summaryCacheKey(accountID, period)

	sum, cached := s.summaryCache.Get(key)
	if cached {
		slog.DebugContext(r.Context(), "Summary cache hit",
			"account_id", accountID, "period", period)
	} else {
		sum, err = s.summary.Summary(r.Context(), accountID, period)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Set(key, sum)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		AccountID:       accountID.String(),
		Period:          period,
		Income:          toMoneyJSON(sum.Income),
		Expenses:        toMoneyJSON(sum.Expenses),
		CreditLimit:     toMoneyJSON(sum.CreditLimit),
		CreditUsed:      toMoneyJSON(sum.CreditUsed),
		OwnFunds:        toMoneyJSON(sum.OwnFunds),
		AvailableCredit: toMoneyJSON(sum.AvailableCredit),
		TotalBalance:    toMoneyJSON(sum.TotalBalance),
	})
}

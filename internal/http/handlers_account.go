package http

import (
	"log/slog"
	"net/http"
)

type accountResponse struct {
	AccountID string `json:"account_id"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := s.ledger.CreateAccount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Account created", "account_id", id)
	writeJSON(w, http.StatusCreated, accountResponse{AccountID: id.String()})
}

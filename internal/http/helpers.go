package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Validation failures are
// 422, missing records 404, lost concurrent updates 409, everything else 500
// with the detail kept out of the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, core.ErrAccountNotFound), errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
		msg = "not found"
	case errors.Is(err, core.ErrVersionConflict):
		status = http.StatusConflict
		msg = "concurrent update, retry"
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

// accountIDFromPath parses the {id} path segment.
func accountIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, core.ErrAccountNotFound
	}
	return id, nil
}

// periodFromQuery returns the period token, defaulting to all time.
func periodFromQuery(r *http.Request) string {
	p := strings.TrimSpace(r.URL.Query().Get("period"))
	if p == "" {
		return core.PeriodAll
	}
	return p
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// moneyJSON is the wire form of an amount: raw cents plus a display string.
type moneyJSON struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Formatted: core.FormatHryvnias(m.Cents)}
}

// parseTxDate accepts YYYY-MM-DD and pins it to midnight UTC.
func parseTxDate(value string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return core.Date{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return core.Date{Time: t.UTC()}, nil
}

func parseTxID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("txID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, sql.ErrNoRows
	}
	return id, nil
}

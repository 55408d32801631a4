package memory

import (
	"context"
	"fmt"
	"sync"

	ports "budget/internal/sheets"
)

// Store is an in-memory SummaryWriter for development and tests.
type Store struct {
	mu   sync.Mutex
	rows []ports.SummaryRow
}

func New() *Store {
	return &Store{}
}

// AppendSummary records the row and returns a synthetic row reference.
func (s *Store) AppendSummary(_ context.Context, row ports.SummaryRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []ports.SummaryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.SummaryRow(nil), s.rows...)
}

// Package memory is an in-process sheets exporter. The worker uses it when no
// spreadsheet is configured so exports can still be inspected in tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pennypal/internal/core"
	ports "pennypal/internal/sheets"
)

var _ ports.Exporter = (*Store)(nil)

type Store struct {
	mu         sync.Mutex
	expenses   []core.Expense
	activities []core.Activity
	// failures makes the next n appends fail.
	failures int
}

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if e.ID == 0 {
		return "", errors.New("expense has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failLocked(); err != nil {
		return "", err
	}
	s.expenses = append(s.expenses, e)
	return fmt.Sprintf("mem:expenses:%d", len(s.expenses)), nil
}

// AppendActivity stores the activity and returns a synthetic row reference.
func (s *Store) AppendActivity(_ context.Context, a core.Activity) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failLocked(); err != nil {
		return "", err
	}
	s.activities = append(s.activities, a)
	return fmt.Sprintf("mem:activity:%d", len(s.activities)), nil
}

// FailNext makes the next n appends return an error.
func (s *Store) FailNext(n int) {
	s.mu.Lock()
	s.failures = n
	s.mu.Unlock()
}

func (s *Store) failLocked() error {
	if s.failures > 0 {
		s.failures--
		return errors.New("memory exporter: injected failure")
	}
	return nil
}

// Expenses returns a copy of the appended expenses.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Activities returns a copy of the appended activity rows.
func (s *Store) Activities() []core.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Activity(nil), s.activities...)
}

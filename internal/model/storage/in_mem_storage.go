package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/model/customerr"
)

// InMemStorage keeps expenses in a map. Used in tests and for local runs
// without a database.
type InMemStorage struct {
	mu       sync.RWMutex
	expenses map[int64]expense.Record
	nextID   int64
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{expenses: make(map[int64]expense.Record)}
}

func (s *InMemStorage) FindAll(_ context.Context) ([]expense.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]expense.Record, 0, len(s.expenses))
	for _, rec := range s.expenses {
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *InMemStorage) FindByID(_ context.Context, id int64) (expense.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.expenses[id]
	if !ok {
		return expense.Record{}, &customerr.NotFoundError{ID: id}
	}
	return rec, nil
}

func (s *InMemStorage) FindByDateRange(ctx context.Context, start, end time.Time) ([]expense.Record, error) {
	all, _ := s.FindAll(ctx)
	res := make([]expense.Record, 0, len(all))
	for _, rec := range all {
		if !rec.Date.Before(start) && !rec.Date.After(end) {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (s *InMemStorage) FindByCategory(ctx context.Context, category string) ([]expense.Record, error) {
	all, _ := s.FindAll(ctx)
	res := make([]expense.Record, 0, len(all))
	for _, rec := range all {
		if rec.Category == category {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (s *InMemStorage) Save(_ context.Context, rec expense.Record) (expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	}
	s.expenses[rec.ID] = rec
	return rec, nil
}

func (s *InMemStorage) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return &customerr.NotFoundError{ID: id}
	}
	delete(s.expenses, id)
	return nil
}

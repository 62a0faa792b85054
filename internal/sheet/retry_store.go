package sheet

import (
	"context"
	"errors"
	"infcheck/internal/providers"
)

// RetryStore decorates a Store with the bounded retry policy on GetAllRows.
// Clear, WriteRows and AppendRows pass straight through: retrying a
// destructive write after a partial failure risks duplicated or corrupted
// remote state.
type RetryStore struct {
	inner  Store
	policy providers.RetryPolicy
}

func NewRetryStore(inner Store, policy providers.RetryPolicy) *RetryStore {
	return &RetryStore{inner: inner, policy: policy}
}

func permanentReadError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuth)
}

func (s *RetryStore) GetAllRows(ctx context.Context) ([][]string, error) {
	var rows [][]string
	err := s.policy.Do(ctx, func() error {
		var opErr error
		rows, opErr = s.inner.GetAllRows(ctx)
		return opErr
	}, permanentReadError)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RetryStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

func (s *RetryStore) WriteRows(ctx context.Context, rows [][]string) error {
	return s.inner.WriteRows(ctx, rows)
}

func (s *RetryStore) AppendRows(ctx context.Context, rows [][]string) error {
	return s.inner.AppendRows(ctx, rows)
}

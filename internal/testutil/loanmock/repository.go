package loanmock

import (
	"context"

	domain "p2p-lending/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error, reads to context.Canceled.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	SaveLedgerFn           func(ctx context.Context, l *domain.Loan) error
	ListByBorrowerIDFn     func(ctx context.Context, borrowerID string) ([]*domain.Loan, error)
	ListAvailableFn        func(ctx context.Context) ([]*domain.Loan, error)
	ListFundedByFn         func(ctx context.Context, lenderID string) ([]*domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}
func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveLedger(ctx context.Context, l *domain.Loan) error {
	if m.SaveLedgerFn != nil {
		return m.SaveLedgerFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByBorrowerID(ctx context.Context, borrowerID string) ([]*domain.Loan, error) {
	if m.ListByBorrowerIDFn != nil {
		return m.ListByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAvailable(ctx context.Context) ([]*domain.Loan, error) {
	if m.ListAvailableFn != nil {
		return m.ListAvailableFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListFundedBy(ctx context.Context, lenderID string) ([]*domain.Loan, error) {
	if m.ListFundedByFn != nil {
		return m.ListFundedByFn(ctx, lenderID)
	}
	return nil, context.Canceled
}

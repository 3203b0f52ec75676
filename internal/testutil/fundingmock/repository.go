package fundingmock

import (
	"context"

	domain "p2p-lending/internal/domain/loan"
)

var _ domain.FundingRepository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.FundingRepository.
type Repo struct {
	CreateFn       func(ctx context.Context, loanID string, f *domain.Funding) error
	ListByLoanIDFn func(ctx context.Context, loanID string) ([]domain.Funding, error)
}

func (m *Repo) Create(ctx context.Context, loanID string, f *domain.Funding) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, loanID, f)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Funding, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

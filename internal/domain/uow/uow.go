package uow

import (
	"context"

	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/user"
)

// Repos are bound to the running transaction.
type Repos struct {
	Users    user.Repository
	Loans    loan.Repository
	Fundings loan.FundingRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}

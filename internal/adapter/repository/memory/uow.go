package memory

import (
	"context"

	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

// UoW serialises units of work on the store's write lock and restores the
// pre-transaction snapshot when fn fails.
type UoW struct{ s *Store }

func NewUoW(s *Store) *UoW { return &UoW{s: s} }

func (u *UoW) repos() uow.Repos {
	g := guard{s: u.s, held: true}
	return uow.Repos{
		Users:    &UserRepository{g: g},
		Loans:    &LoanRepository{g: g},
		Fundings: &FundingRepository{g: g},
	}
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	sn := u.s.snapshot()
	if err := fn(u.repos()); err != nil {
		u.s.restore(sn)
		return err
	}
	return nil
}

func (u *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

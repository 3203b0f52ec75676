package memory

import (
	"context"

	loanDomain "p2p-lending/internal/domain/loan"
)

type LoanRepository struct{ g guard }

func NewLoanRepository(s *Store) *LoanRepository { return &LoanRepository{g: guard{s: s}} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	defer r.g.write()()
	if r.g.s.loanIndex(l.ID) >= 0 {
		return ErrDuplicateID
	}
	r.g.s.loans = append(r.g.s.loans, l.Clone())
	return nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	defer r.g.read()()
	i := r.g.s.loanIndex(loanID)
	if i < 0 {
		return nil, loanDomain.ErrNotFound
	}
	return r.g.s.loans[i].Clone(), nil
}

// GetByLoanIDForUpdate is a plain read: the unit of work already holds the
// store's write lock.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *LoanRepository) SaveLedger(ctx context.Context, l *loanDomain.Loan) error {
	defer r.g.write()()
	i := r.g.s.loanIndex(l.ID)
	if i < 0 {
		return loanDomain.ErrNotFound
	}
	next := r.g.s.loans[i].Clone()
	next.FundedAmount = l.FundedAmount
	next.Status = l.Status
	r.g.s.loans[i] = next
	return nil
}

func (r *LoanRepository) ListByBorrowerID(ctx context.Context, borrowerID string) ([]*loanDomain.Loan, error) {
	return r.filter(func(l *loanDomain.Loan) bool { return l.BorrowerID == borrowerID }), nil
}

func (r *LoanRepository) ListAvailable(ctx context.Context) ([]*loanDomain.Loan, error) {
	return r.filter(func(l *loanDomain.Loan) bool { return l.Available() }), nil
}

func (r *LoanRepository) ListFundedBy(ctx context.Context, lenderID string) ([]*loanDomain.Loan, error) {
	return r.filter(func(l *loanDomain.Loan) bool {
		for _, f := range l.Funders {
			if f.LenderID == lenderID {
				return true
			}
		}
		return false
	}), nil
}

func (r *LoanRepository) filter(keep func(*loanDomain.Loan) bool) []*loanDomain.Loan {
	defer r.g.read()()
	out := make([]*loanDomain.Loan, 0)
	for _, l := range r.g.s.loans {
		if keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

type FundingRepository struct{ g guard }

func NewFundingRepository(s *Store) *FundingRepository {
	return &FundingRepository{g: guard{s: s}}
}

func (r *FundingRepository) Create(ctx context.Context, loanID string, f *loanDomain.Funding) error {
	defer r.g.write()()
	i := r.g.s.loanIndex(loanID)
	if i < 0 {
		return loanDomain.ErrNotFound
	}
	next := r.g.s.loans[i].Clone()
	next.Funders = append(next.Funders, *f)
	r.g.s.loans[i] = next
	return nil
}

func (r *FundingRepository) ListByLoanID(ctx context.Context, loanID string) ([]loanDomain.Funding, error) {
	defer r.g.read()()
	i := r.g.s.loanIndex(loanID)
	if i < 0 {
		return nil, loanDomain.ErrNotFound
	}
	return append([]loanDomain.Funding{}, r.g.s.loans[i].Funders...), nil
}

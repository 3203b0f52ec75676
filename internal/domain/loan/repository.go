package loan

import "context"

// Repository returns loans with their funders loaded, in creation order.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Row-locked read, only meaningful inside a unit of work.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// Persist FundedAmount and Status; funders are written through FundingRepository.
	SaveLedger(ctx context.Context, l *Loan) error

	ListByBorrowerID(ctx context.Context, borrowerID string) ([]*Loan, error)
	ListAvailable(ctx context.Context) ([]*Loan, error)
	ListFundedBy(ctx context.Context, lenderID string) ([]*Loan, error)
}

type FundingRepository interface {
	Create(ctx context.Context, loanID string, f *Funding) error
	ListByLoanID(ctx context.Context, loanID string) ([]Funding, error)
}

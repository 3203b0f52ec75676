package loan

import (
	"errors"
	"time"

	"p2p-lending/internal/domain/user"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("loan not found")
	ErrInvalidAmount   = errors.New("amount must be positive, below 10^16, with at most 2 decimal places")
	ErrInvalidDuration = errors.New("duration must be at least one month")
	ErrInvalidPurpose  = errors.New("unknown loan purpose")
	ErrOverFunding     = errors.New("amount exceeds remaining need")
	ErrNotFundable     = errors.New("loan is not open for funding")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusDefaulted  Status = "defaulted"
)

type Purpose string

const (
	PurposeEducation Purpose = "education"
	PurposeMedical   Purpose = "medical"
	PurposeBusiness  Purpose = "business"
	PurposePersonal  Purpose = "personal"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeEducation, PurposeMedical, PurposeBusiness, PurposePersonal:
		return true
	}
	return false
}

// Funding is one lender's single contribution to a loan. Repeated
// contributions by the same lender are separate entries.
type Funding struct {
	LenderID   string
	LenderName string
	Amount     decimal.Decimal
	FundedAt   time.Time
}

// Loan is a funding request together with its running ledger. The borrower
// fields are a snapshot taken at creation.
type Loan struct {
	ID                 string
	BorrowerID         string
	BorrowerName       string
	BorrowerTrustScore user.TrustScore
	Amount             decimal.Decimal
	FundedAmount       decimal.Decimal
	DurationMonths     int
	Purpose            Purpose
	Description        string
	Status             Status
	CreatedAt          time.Time
	Funders            []Funding
}

// MaxAmount is the first value the ledger columns (decimal(18,2)) cannot hold.
var MaxAmount = decimal.New(1, 16)

const (
	amountScale = 2
	// widest exponents a stored amount can carry, checked before any
	// arithmetic so oversized inputs are never expanded
	minAmountExp = -8
	maxAmountExp = 16
)

// ValidAmount reports whether d is a positive amount below MaxAmount with at
// most two decimal places.
func ValidAmount(d decimal.Decimal) bool {
	if d.Sign() <= 0 {
		return false
	}
	if exp := d.Exponent(); exp < minAmountExp || exp > maxAmountExp {
		return false
	}
	// 10^24 fits in 80 bits; anything wider is out of range at any allowed exponent
	if d.Coefficient().BitLen() > 80 {
		return false
	}
	return d.LessThan(MaxAmount) && d.Equal(d.Round(amountScale))
}

// Request opens a new pending loan for the borrower.
func Request(id string, borrower *user.User, amount decimal.Decimal, months int, purpose Purpose, description string, now time.Time) (*Loan, error) {
	if !borrower.IsBorrower() {
		return nil, user.ErrForbiddenRole
	}
	if !ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	if months <= 0 {
		return nil, ErrInvalidDuration
	}
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose
	}
	return &Loan{
		ID:                 id,
		BorrowerID:         borrower.ID,
		BorrowerName:       borrower.Name,
		BorrowerTrustScore: borrower.TrustScore(),
		Amount:             amount,
		FundedAmount:       decimal.Zero,
		DurationMonths:     months,
		Purpose:            purpose,
		Description:        description,
		Status:             StatusPending,
		CreatedAt:          now.UTC(),
		Funders:            []Funding{},
	}, nil
}

// Remaining is what is still needed to reach the requested amount.
func (l *Loan) Remaining() decimal.Decimal {
	r := l.Amount.Sub(l.FundedAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Available reports whether the loan still shows up for lenders.
func (l *Loan) Available() bool { return l.FundedAmount.LessThan(l.Amount) }

// ApplyFunding appends the contribution and recomputes the total and the
// status from it. On error the loan is left untouched.
func (l *Loan) ApplyFunding(f Funding) error {
	if !ValidAmount(f.Amount) {
		return ErrInvalidAmount
	}
	if l.Status != StatusPending && l.Status != StatusInProgress {
		return ErrNotFundable
	}
	if !l.Available() {
		return ErrNotFundable
	}
	if f.Amount.GreaterThan(l.Remaining()) {
		return ErrOverFunding
	}

	l.Funders = append(l.Funders, f)
	l.FundedAmount = l.FundedAmount.Add(f.Amount)
	l.Status = l.statusFromTotal()
	return nil
}

func (l *Loan) statusFromTotal() Status {
	if l.FundedAmount.GreaterThanOrEqual(l.Amount) {
		return StatusInProgress
	}
	return l.Status
}

// ContributionsBy sums every contribution the lender made to this loan.
func (l *Loan) ContributionsBy(lenderID string) (total decimal.Decimal, count int, last time.Time) {
	total = decimal.Zero
	for _, f := range l.Funders {
		if f.LenderID != lenderID {
			continue
		}
		total = total.Add(f.Amount)
		count++
		if f.FundedAt.After(last) {
			last = f.FundedAt
		}
	}
	return total, count, last
}

// Clone returns a deep copy; the funders slice is not shared.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	out := *l
	out.Funders = append([]Funding{}, l.Funders...)
	return &out
}

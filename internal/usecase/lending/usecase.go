package lending

import (
	"context"
	"errors"
	"time"

	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/uow"
	"p2p-lending/internal/domain/user"
	"p2p-lending/internal/gateway/messaging"
	"p2p-lending/internal/infrastructure/metrics"
	"p2p-lending/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Usecase struct {
	loans     loan.Repository
	uow       uow.UnitOfWork
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	log       *logrus.Logger
	now       func() time.Time
}

// NewUsecase: pub and m may be nil.
func NewUsecase(loans loan.Repository, tx uow.UnitOfWork, pub messaging.Publisher, m *metrics.Metrics, log *logrus.Logger) *Usecase {
	if pub == nil {
		pub = messaging.NoopPublisher{Log: log}
	}
	return &Usecase{loans: loans, uow: tx, publisher: pub, metrics: m, log: log, now: time.Now}
}

func (u *Usecase) CreateLoanRequest(ctx context.Context, s *session.Session, in CreateLoanInput) (*LoanDTO, error) {
	actor, err := s.Actor()
	if err != nil {
		return nil, err
	}

	l, err := loan.Request(id.NewID32(), actor, in.Amount, in.DurationMonths, loan.Purpose(in.Purpose), in.Description, u.now())
	if err != nil {
		u.log.WithError(err).WithFields(logrus.Fields{"borrower_id": actor.ID, "amount": logAmount(in.Amount)}).Warn("lending: loan request rejected")
		return nil, err
	}
	if err := u.loans.Create(ctx, l); err != nil {
		return nil, err
	}

	u.metrics.LoanRequested()
	u.publish(ctx, messaging.EventLoanRequested, l, "", l.Amount)
	u.log.WithFields(logrus.Fields{"loan_id": l.ID, "borrower_id": l.BorrowerID, "amount": l.Amount.String()}).Info("lending: loan requested")

	dto := ToLoanDTO(l)
	return &dto, nil
}

// FundLoan appends one contribution and moves the ledger inside a single
// unit of work holding the loan row.
func (u *Usecase) FundLoan(ctx context.Context, s *session.Session, loanID string, amount decimal.Decimal) (*LoanDTO, error) {
	actor, err := s.Actor()
	if err != nil {
		return nil, err
	}
	if !actor.IsLender() {
		return nil, u.rejectFunding(loanID, actor.ID, amount, user.ErrForbiddenRole)
	}
	if !loan.ValidAmount(amount) {
		return nil, u.rejectFunding(loanID, actor.ID, amount, loan.ErrInvalidAmount)
	}

	var (
		funded    *loan.Loan
		completed bool
	)
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		before := l.Status
		f := loan.Funding{LenderID: actor.ID, LenderName: actor.Name, Amount: amount, FundedAt: u.now().UTC()}
		if err := l.ApplyFunding(f); err != nil {
			return err
		}
		if err := r.Fundings.Create(ctx, l.ID, &f); err != nil {
			return err
		}
		if err := r.Loans.SaveLedger(ctx, l); err != nil {
			return err
		}
		funded = l
		completed = before != loan.StatusInProgress && l.Status == loan.StatusInProgress
		return nil
	})
	if err != nil {
		if isRejection(err) {
			return nil, u.rejectFunding(loanID, actor.ID, amount, err)
		}
		return nil, err
	}

	u.metrics.Funding(metrics.OutcomeAccepted, amount.InexactFloat64(), completed)
	u.publish(ctx, messaging.EventLoanFunded, funded, actor.ID, amount)
	if completed {
		u.publish(ctx, messaging.EventLoanFullyFunded, funded, "", funded.FundedAmount)
	}
	u.log.WithFields(logrus.Fields{
		"loan_id":       funded.ID,
		"lender_id":     actor.ID,
		"amount":        amount.String(),
		"funded_amount": funded.FundedAmount.String(),
		"status":        funded.Status,
	}).Info("lending: loan funded")

	dto := ToLoanDTO(funded)
	return &dto, nil
}

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	dto := ToLoanDTO(l)
	return &dto, nil
}

func (u *Usecase) LoansFor(ctx context.Context, borrowerID string) ([]LoanDTO, error) {
	ls, err := u.loans.ListByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return toLoanDTOs(ls), nil
}

func (u *Usecase) AvailableLoans(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.loans.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return toLoanDTOs(ls), nil
}

// InvestmentsFor lists each loan the lender funded once, with every
// contribution of that lender summed.
func (u *Usecase) InvestmentsFor(ctx context.Context, lenderID string) ([]InvestmentDTO, error) {
	ls, err := u.loans.ListFundedBy(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	out := make([]InvestmentDTO, 0, len(ls))
	for _, l := range ls {
		total, n, last := l.ContributionsBy(lenderID)
		if n == 0 {
			continue
		}
		out = append(out, InvestmentDTO{
			LoanID:         l.ID,
			BorrowerName:   l.BorrowerName,
			Purpose:        string(l.Purpose),
			LoanAmount:     l.Amount,
			FundedAmount:   l.FundedAmount,
			Status:         string(l.Status),
			AmountInvested: total,
			Contributions:  n,
			LastFundedAt:   last,
		})
	}
	return out, nil
}

func (u *Usecase) LenderSummary(ctx context.Context, lenderID string) (*LenderSummaryDTO, error) {
	inv, err := u.InvestmentsFor(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	out := &LenderSummaryDTO{LenderID: lenderID, TotalInvested: decimal.Zero, LoansSupported: len(inv)}
	for _, i := range inv {
		out.TotalInvested = out.TotalInvested.Add(i.AmountInvested)
		if i.Status == string(loan.StatusPending) || i.Status == string(loan.StatusInProgress) {
			out.ActiveLoans++
		}
	}
	return out, nil
}

func (u *Usecase) BorrowerSummary(ctx context.Context, borrowerID string) (*BorrowerSummaryDTO, error) {
	ls, err := u.loans.ListByBorrowerID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	out := &BorrowerSummaryDTO{
		BorrowerID:     borrowerID,
		TotalRequested: decimal.Zero,
		TotalFunded:    decimal.Zero,
		Loans:          len(ls),
		ByStatus:       map[string]int{},
	}
	for _, l := range ls {
		out.TotalRequested = out.TotalRequested.Add(l.Amount)
		out.TotalFunded = out.TotalFunded.Add(l.FundedAmount)
		out.ByStatus[string(l.Status)]++
	}
	return out, nil
}

func (u *Usecase) rejectFunding(loanID, lenderID string, amount decimal.Decimal, err error) error {
	u.metrics.Funding(metrics.OutcomeRejected, 0, false)
	u.log.WithError(err).WithFields(logrus.Fields{
		"loan_id":   loanID,
		"lender_id": lenderID,
		"amount":    logAmount(amount),
	}).Warn("lending: funding rejected")
	return err
}

// logAmount formats rejected input only when it is a storable amount.
func logAmount(d decimal.Decimal) string {
	if !loan.ValidAmount(d) {
		return "invalid"
	}
	return d.String()
}

// publish runs after commit; a broker failure is logged, not returned.
func (u *Usecase) publish(ctx context.Context, typ string, l *loan.Loan, lenderID string, amount decimal.Decimal) {
	err := u.publisher.Publish(ctx, messaging.LedgerEvent{
		Type:         typ,
		LoanID:       l.ID,
		BorrowerID:   l.BorrowerID,
		LenderID:     lenderID,
		Amount:       amount,
		FundedAmount: l.FundedAmount,
		Status:       string(l.Status),
		OccurredAt:   u.now().UTC(),
	})
	if err != nil {
		u.log.WithError(err).WithFields(logrus.Fields{"event": typ, "loan_id": l.ID}).Error("lending: publish failed")
	}
}

func isRejection(err error) bool {
	for _, e := range []error{loan.ErrNotFound, loan.ErrInvalidAmount, loan.ErrOverFunding, loan.ErrNotFundable} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

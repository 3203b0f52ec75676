package lending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"p2p-lending/internal/adapter/repository/memory"
	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/uow"
	"p2p-lending/internal/domain/user"
	"p2p-lending/internal/gateway/messaging"
	"p2p-lending/internal/infrastructure/metrics"
	"p2p-lending/internal/testutil/fundingmock"
	"p2p-lending/internal/testutil/loanmock"
	"p2p-lending/internal/testutil/uowmock"
	"p2p-lending/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type recorder struct {
	mu     sync.Mutex
	events []messaging.LedgerEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, e messaging.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sessionFor(t *testing.T, id, name string, role user.Role) *session.Session {
	t.Helper()
	u, err := user.New(id, name, id+"@example.com", role)
	require.NoError(t, err)
	return &session.Session{Token: "tok-" + id, User: u, Authenticated: true}
}

type LendingSuite struct {
	suite.Suite
	store    *memory.Store
	uc       *Usecase
	events   *recorder
	borrower *session.Session
	lender   *session.Session
	clock    time.Time
}

func (s *LendingSuite) SetupTest() {
	s.store = memory.NewStore()
	s.events = &recorder{}
	s.uc = NewUsecase(memory.NewLoanRepository(s.store), memory.NewUoW(s.store), s.events, metrics.New(), logger.Discard())
	s.clock = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	s.uc.now = func() time.Time { return s.clock }
	s.borrower = sessionFor(s.T(), "b1", "Ben Borrower", user.RoleBorrower)
	s.lender = sessionFor(s.T(), "l1", "Lena Lender", user.RoleLender)
}

func TestLendingSuite(t *testing.T) { suite.Run(t, new(LendingSuite)) }

func (s *LendingSuite) request(amount int64) *LoanDTO {
	dto, err := s.uc.CreateLoanRequest(context.Background(), s.borrower, CreateLoanInput{
		Amount: dec(amount), DurationMonths: 6, Purpose: "business", Description: "stock",
	})
	s.Require().NoError(err)
	return dto
}

func (s *LendingSuite) TestCreateLoanRequest_OpensPendingLoan() {
	dto := s.request(1000)

	s.True(dto.Amount.Equal(dec(1000)))
	s.True(dto.FundedAmount.IsZero())
	s.Equal("pending", dto.Status)
	s.Empty(dto.Funders)
	s.Equal("b1", dto.BorrowerID)
	s.Equal("Ben Borrower", dto.BorrowerName)
	s.Equal("medium", dto.BorrowerTrustScore)
	s.Equal(6, dto.DurationMonths)
	s.Equal("business", dto.Purpose)
	s.Equal("stock", dto.Description)
	s.Equal(s.clock, dto.CreatedAt)

	got, err := s.uc.GetLoan(context.Background(), dto.LoanID)
	s.Require().NoError(err)
	s.Equal(dto.LoanID, got.LoanID)
	s.Equal([]string{messaging.EventLoanRequested}, s.events.types())
}

func (s *LendingSuite) TestCreateLoanRequest_Rejections() {
	ctx := context.Background()
	valid := CreateLoanInput{Amount: dec(100), DurationMonths: 3, Purpose: "medical"}

	_, err := s.uc.CreateLoanRequest(ctx, &session.Session{}, valid)
	s.ErrorIs(err, session.ErrUnauthenticated)

	_, err = s.uc.CreateLoanRequest(ctx, s.lender, valid)
	s.ErrorIs(err, user.ErrForbiddenRole)

	bad := valid
	bad.Amount = dec(0)
	_, err = s.uc.CreateLoanRequest(ctx, s.borrower, bad)
	s.ErrorIs(err, loan.ErrInvalidAmount)

	bad = valid
	bad.DurationMonths = 0
	_, err = s.uc.CreateLoanRequest(ctx, s.borrower, bad)
	s.ErrorIs(err, loan.ErrInvalidDuration)

	bad = valid
	bad.Purpose = "vacation"
	_, err = s.uc.CreateLoanRequest(ctx, s.borrower, bad)
	s.ErrorIs(err, loan.ErrInvalidPurpose)

	all, err := s.uc.LoansFor(ctx, "b1")
	s.Require().NoError(err)
	s.Empty(all)
	s.Empty(s.events.types())
}

func (s *LendingSuite) TestFundLoan_TwoContributionsCompleteTheLoan() {
	ctx := context.Background()
	created := s.request(1000)

	first, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(400))
	s.Require().NoError(err)
	s.True(first.FundedAmount.Equal(dec(400)))
	s.Equal("pending", first.Status)

	second, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(600))
	s.Require().NoError(err)
	s.True(second.FundedAmount.Equal(dec(1000)))
	s.Equal("in-progress", second.Status)
	s.Require().Len(second.Funders, 2)
	s.True(second.Funders[0].Amount.Add(second.Funders[1].Amount).Equal(dec(1000)))
	s.Equal("Lena Lender", second.Funders[0].LenderName)
	s.Equal(s.clock, second.Funders[1].FundedAt)

	s.Equal([]string{
		messaging.EventLoanRequested,
		messaging.EventLoanFunded,
		messaging.EventLoanFunded,
		messaging.EventLoanFullyFunded,
	}, s.events.types())

	avail, err := s.uc.AvailableLoans(ctx)
	s.Require().NoError(err)
	s.Empty(avail)
}

func (s *LendingSuite) TestFundLoan_Additivity() {
	ctx := context.Background()
	created := s.request(10000)

	sum := decimal.Zero
	for _, a := range []int64{1, 250, 75, 999, 12} {
		dto, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(a))
		s.Require().NoError(err)
		sum = sum.Add(dec(a))
		s.True(dto.FundedAmount.Equal(sum), "funded %s, want %s", dto.FundedAmount, sum)
	}
	got, err := s.uc.GetLoan(ctx, created.LoanID)
	s.Require().NoError(err)
	s.Len(got.Funders, 5)
}

func (s *LendingSuite) TestFundLoan_RejectionsLeaveLedgerUnchanged() {
	ctx := context.Background()
	created := s.request(1000)
	_, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(300))
	s.Require().NoError(err)
	before, err := s.uc.GetLoan(ctx, created.LoanID)
	s.Require().NoError(err)

	cases := []struct {
		name string
		sess *session.Session
		id   string
		amt  int64
		want error
	}{
		{"unauthenticated", &session.Session{}, created.LoanID, 10, session.ErrUnauthenticated},
		{"borrower", s.borrower, created.LoanID, 10, user.ErrForbiddenRole},
		{"unknown loan", s.lender, "missing", 10, loan.ErrNotFound},
		{"zero", s.lender, created.LoanID, 0, loan.ErrInvalidAmount},
		{"negative", s.lender, created.LoanID, -5, loan.ErrInvalidAmount},
		{"over", s.lender, created.LoanID, 701, loan.ErrOverFunding},
	}
	for _, tc := range cases {
		_, err := s.uc.FundLoan(ctx, tc.sess, tc.id, dec(tc.amt))
		s.ErrorIs(err, tc.want, tc.name)
	}

	after, err := s.uc.GetLoan(ctx, created.LoanID)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *LendingSuite) TestAmountsOutsideLedgerRangeAreRejected() {
	ctx := context.Background()
	created := s.request(1000)

	for _, in := range []string{"0.005", "1e6000000"} {
		_, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, decimal.RequireFromString(in))
		s.ErrorIs(err, loan.ErrInvalidAmount, in)

		_, err = s.uc.CreateLoanRequest(ctx, s.borrower, CreateLoanInput{Amount: decimal.RequireFromString(in), DurationMonths: 6, Purpose: "medical"})
		s.ErrorIs(err, loan.ErrInvalidAmount, in)
	}

	got, err := s.uc.GetLoan(ctx, created.LoanID)
	s.Require().NoError(err)
	s.True(got.FundedAmount.IsZero())
}

func (s *LendingSuite) TestFundLoan_FullyFundedIsNotFundable() {
	ctx := context.Background()
	created := s.request(500)
	_, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(500))
	s.Require().NoError(err)

	_, err = s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(1))
	s.ErrorIs(err, loan.ErrNotFundable)

	got, err := s.uc.GetLoan(ctx, created.LoanID)
	s.Require().NoError(err)
	s.Equal("in-progress", got.Status)
}

func (s *LendingSuite) TestLoansFor_OnlyOwnInCreationOrderAndStable() {
	ctx := context.Background()
	other := sessionFor(s.T(), "b2", "Other", user.RoleBorrower)

	a := s.request(100)
	_, err := s.uc.CreateLoanRequest(ctx, other, CreateLoanInput{Amount: dec(50), DurationMonths: 1, Purpose: "personal"})
	s.Require().NoError(err)
	b := s.request(200)

	first, err := s.uc.LoansFor(ctx, "b1")
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal(a.LoanID, first[0].LoanID)
	s.Equal(b.LoanID, first[1].LoanID)

	again, err := s.uc.LoansFor(ctx, "b1")
	s.Require().NoError(err)
	s.Equal(first, again)
}

func (s *LendingSuite) TestAvailableLoans_ExcludesFullyFunded() {
	ctx := context.Background()
	open := s.request(100)
	full := s.request(100)
	_, err := s.uc.FundLoan(ctx, s.lender, full.LoanID, dec(100))
	s.Require().NoError(err)
	_, err = s.uc.FundLoan(ctx, s.lender, open.LoanID, dec(99))
	s.Require().NoError(err)

	avail, err := s.uc.AvailableLoans(ctx)
	s.Require().NoError(err)
	s.Require().Len(avail, 1)
	s.Equal(open.LoanID, avail[0].LoanID)
	for _, l := range avail {
		s.True(l.FundedAmount.LessThan(l.Amount))
	}
}

func (s *LendingSuite) TestInvestmentsFor_SumsRepeatContributions() {
	ctx := context.Background()
	other := sessionFor(s.T(), "l2", "Other Lender", user.RoleLender)

	x := s.request(1000)
	y := s.request(1000)
	s.request(1000) // never funded by l1

	_, err := s.uc.FundLoan(ctx, s.lender, x.LoanID, dec(100))
	s.Require().NoError(err)
	_, err = s.uc.FundLoan(ctx, other, x.LoanID, dec(300))
	s.Require().NoError(err)
	s.clock = s.clock.Add(time.Hour)
	_, err = s.uc.FundLoan(ctx, s.lender, x.LoanID, dec(150))
	s.Require().NoError(err)
	_, err = s.uc.FundLoan(ctx, s.lender, y.LoanID, dec(40))
	s.Require().NoError(err)

	inv, err := s.uc.InvestmentsFor(ctx, "l1")
	s.Require().NoError(err)
	s.Require().Len(inv, 2)
	s.Equal(x.LoanID, inv[0].LoanID)
	s.True(inv[0].AmountInvested.Equal(dec(250)))
	s.Equal(2, inv[0].Contributions)
	s.Equal(s.clock, inv[0].LastFundedAt)
	s.True(inv[0].FundedAmount.Equal(dec(550)))
	s.Equal(y.LoanID, inv[1].LoanID)
	s.True(inv[1].AmountInvested.Equal(dec(40)))

	sum, err := s.uc.LenderSummary(ctx, "l1")
	s.Require().NoError(err)
	s.True(sum.TotalInvested.Equal(dec(290)))
	s.Equal(2, sum.LoansSupported)
	s.Equal(2, sum.ActiveLoans)

	none, err := s.uc.InvestmentsFor(ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *LendingSuite) TestBorrowerSummary() {
	ctx := context.Background()
	a := s.request(400)
	s.request(600)
	_, err := s.uc.FundLoan(ctx, s.lender, a.LoanID, dec(400))
	s.Require().NoError(err)

	sum, err := s.uc.BorrowerSummary(ctx, "b1")
	s.Require().NoError(err)
	s.Equal(2, sum.Loans)
	s.True(sum.TotalRequested.Equal(dec(1000)))
	s.True(sum.TotalFunded.Equal(dec(400)))
	s.Equal(map[string]int{"in-progress": 1, "pending": 1}, sum.ByStatus)
}

func (s *LendingSuite) TestFundLoan_PublishFailureDoesNotFailCommit() {
	ctx := context.Background()
	created := s.request(100)
	s.events.err = errors.New("broker down")

	dto, err := s.uc.FundLoan(ctx, s.lender, created.LoanID, dec(60))
	s.Require().NoError(err)
	s.True(dto.FundedAmount.Equal(dec(60)))
}

func TestFundLoan_ConcurrentLendersNeverOverFund(t *testing.T) {
	store := memory.NewStore()
	uc := NewUsecase(memory.NewLoanRepository(store), memory.NewUoW(store), nil, nil, logger.Discard())
	ctx := context.Background()

	created, err := uc.CreateLoanRequest(ctx, sessionFor(t, "b1", "B", user.RoleBorrower), CreateLoanInput{Amount: dec(1000), DurationMonths: 12, Purpose: "education"})
	require.NoError(t, err)

	lenders := make([]*session.Session, 40)
	for i := range lenders {
		lenders[i] = sessionFor(t, fmt.Sprintf("l%02d", i), "L", user.RoleLender)
	}

	var wg sync.WaitGroup
	for _, lender := range lenders {
		wg.Add(1)
		go func(lender *session.Session) {
			defer wg.Done()
			_, _ = uc.FundLoan(ctx, lender, created.LoanID, dec(30))
		}(lender)
	}
	wg.Wait()

	got, err := uc.GetLoan(ctx, created.LoanID)
	require.NoError(t, err)
	assert.True(t, got.FundedAmount.Equal(dec(990)), "funded %s", got.FundedAmount)
	assert.Len(t, got.Funders, 33)
	assert.Equal(t, "pending", got.Status)
}

func TestFundLoan_InfrastructureErrorIsNotLoggedAsRejection(t *testing.T) {
	boom := errors.New("tx aborted")
	tx := uowmock.New().WithWithinLoanTx(func(context.Context, string, func(uow.Repos, *loan.Loan) error) error {
		return boom
	})
	uc := NewUsecase(&loanmock.Repo{}, tx, nil, nil, logger.Discard())

	_, err := uc.FundLoan(context.Background(), sessionFor(t, "l1", "L", user.RoleLender), "LN-1", dec(10))
	assert.ErrorIs(t, err, boom)
	assert.False(t, isRejection(err))
}

func TestFundLoan_PersistsThroughUnitOfWork(t *testing.T) {
	l := &loan.Loan{ID: "LN-1", BorrowerID: "b1", Amount: dec(100), FundedAmount: dec(0), Status: loan.StatusPending, Funders: []loan.Funding{}}
	var saved *loan.Loan
	var created *loan.Funding
	repos := uow.Repos{
		Loans: &loanmock.Repo{SaveLedgerFn: func(_ context.Context, got *loan.Loan) error {
			saved = got
			return nil
		}},
		Fundings: &fundingmock.Repo{CreateFn: func(_ context.Context, loanID string, f *loan.Funding) error {
			created = f
			return nil
		}},
	}
	tx := uowmock.New().WithWithinLoanTx(func(ctx context.Context, id string, fn func(uow.Repos, *loan.Loan) error) error {
		require.Equal(t, "LN-1", id)
		return fn(repos, l)
	})
	uc := NewUsecase(&loanmock.Repo{}, tx, nil, nil, logger.Discard())

	dto, err := uc.FundLoan(context.Background(), sessionFor(t, "l1", "Lena", user.RoleLender), "LN-1", dec(100))
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.NotNil(t, created)
	assert.Equal(t, "l1", created.LenderID)
	assert.True(t, saved.FundedAmount.Equal(dec(100)))
	assert.Equal(t, loan.StatusInProgress, saved.Status)
	assert.Equal(t, "in-progress", dto.Status)
}

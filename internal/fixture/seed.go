// Package fixture loads the demo accounts and their starting loan.
package fixture

import (
	"context"
	"errors"
	"time"

	"p2p-lending/internal/domain/loan"
	"p2p-lending/internal/domain/uow"
	"p2p-lending/internal/domain/user"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	SarahID   = "5a7a4c1e0b9d4f0e8c3a2b1d6e7f8a90"
	MichaelID = "3c9e2f7a1d4b4e6a9f0c8b7d5e2a1f34"
	LoanID    = "b1e0c7d2a9f84c3e8d6b5a4f3e2d1c0b"
)

func Sarah() *user.User {
	return &user.User{
		ID:        SarahID,
		Name:      "Sarah Johnson",
		Email:     "sarah@example.com",
		Role:      user.RoleBorrower,
		Avatar:    "https://images.pexels.com/photos/1239291/pexels-photo-1239291.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=2",
		Borrower:  &user.BorrowerProfile{TrustScore: user.TrustGood, RepaymentStreak: 12},
		CreatedAt: date(2024, 11, 1),
	}
}

func Michael() *user.User {
	return &user.User{
		ID:        MichaelID,
		Name:      "Michael Chen",
		Email:     "michael@example.com",
		Role:      user.RoleLender,
		Avatar:    "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=2",
		Lender:    &user.LenderProfile{SocialImpactScore: 850, Badges: []string{"Community Helper", "Top Supporter"}},
		CreatedAt: date(2024, 11, 2),
	}
}

// EducationLoan is Sarah's loan with Michael's contribution applied, so the
// status follows from the funded total.
func EducationLoan() (*loan.Loan, error) {
	sarah, michael := Sarah(), Michael()
	l, err := loan.Request(LoanID, sarah, decimal.NewFromInt(2500), 12, loan.PurposeEducation,
		"Need funding for online certification course in data science", date(2024, 12, 1))
	if err != nil {
		return nil, err
	}
	err = l.ApplyFunding(loan.Funding{
		LenderID:   michael.ID,
		LenderName: michael.Name,
		Amount:     decimal.NewFromInt(1800),
		FundedAt:   date(2024, 12, 2),
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Seed writes the fixture in one unit of work. It is a no-op when Sarah
// already exists, so restarts against a persistent store are safe.
func Seed(ctx context.Context, tx uow.UnitOfWork, log *logrus.Logger) error {
	l, err := EducationLoan()
	if err != nil {
		return err
	}
	err = tx.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByID(ctx, SarahID); err == nil {
			return errSeeded
		} else if !errors.Is(err, user.ErrNotFound) {
			return err
		}
		for _, u := range []*user.User{Sarah(), Michael()} {
			if err := r.Users.Create(ctx, u); err != nil {
				return err
			}
		}
		return r.Loans.Create(ctx, l)
	})
	if errors.Is(err, errSeeded) {
		log.Debug("fixtures already present")
		return nil
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"users": 2, "loans": 1}).Info("fixtures seeded")
	return nil
}

var errSeeded = errors.New("fixtures already seeded")

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

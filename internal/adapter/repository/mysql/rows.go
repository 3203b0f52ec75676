package mysql

import (
	"time"

	loanDomain "p2p-lending/internal/domain/loan"
	userDomain "p2p-lending/internal/domain/user"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Table rows. Plain varchar columns instead of ENUMs keep the schema
// portable to sqlite.

type userRow struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID            string    `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id"`
	Name              string    `gorm:"column:name;size:255;not null"`
	Email             string    `gorm:"column:email;size:255;not null;index:idx_users_email_role"`
	Role              string    `gorm:"column:role;size:16;not null;index:idx_users_email_role"`
	Avatar            string    `gorm:"column:avatar;type:text"`
	TrustScore        *string   `gorm:"column:trust_score;size:16"`
	RepaymentStreak   *int      `gorm:"column:repayment_streak"`
	SocialImpactScore *int      `gorm:"column:social_impact_score"`
	Badges            []string  `gorm:"column:badges;type:text;serializer:json"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

type loanRow struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	LoanID             string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id"`
	BorrowerID         string          `gorm:"column:borrower_id;size:32;not null;index:idx_loans_borrower"`
	BorrowerName       string          `gorm:"column:borrower_name;size:255"`
	BorrowerTrustScore string          `gorm:"column:borrower_trust_score;size:16"`
	Amount             decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null"`
	FundedAmount       decimal.Decimal `gorm:"column:funded_amount;type:decimal(18,2);not null"`
	DurationMonths     int             `gorm:"column:duration_months;not null"`
	Purpose            string          `gorm:"column:purpose;size:16;not null"`
	Description        string          `gorm:"column:description;type:text"`
	Status             string          `gorm:"column:status;size:16;not null;index:idx_loans_status"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	Fundings           []fundingRow    `gorm:"foreignKey:LoanID;references:LoanID"`
}

func (loanRow) TableName() string { return "loans" }

type fundingRow struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	LoanID     string          `gorm:"column:loan_id;size:32;not null;index:idx_fundings_loan"`
	LenderID   string          `gorm:"column:lender_id;size:32;not null;index:idx_fundings_lender"`
	LenderName string          `gorm:"column:lender_name;size:255"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null"`
	FundedAt   time.Time       `gorm:"column:funded_at;not null"`
}

func (fundingRow) TableName() string { return "loan_fundings" }

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &loanRow{}, &fundingRow{})
}

// ---- converters ----

func toUserRow(u *userDomain.User) *userRow {
	r := &userRow{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
	if b := u.Borrower; b != nil {
		ts := string(b.TrustScore)
		streak := b.RepaymentStreak
		r.TrustScore, r.RepaymentStreak = &ts, &streak
	}
	if l := u.Lender; l != nil {
		score := l.SocialImpactScore
		r.SocialImpactScore = &score
		r.Badges = append([]string{}, l.Badges...)
	}
	return r
}

func (r *userRow) toDomain() *userDomain.User {
	u := &userDomain.User{
		ID:        r.UserID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      userDomain.Role(r.Role),
		Avatar:    r.Avatar,
		CreatedAt: r.CreatedAt,
	}
	switch u.Role {
	case userDomain.RoleBorrower:
		b := &userDomain.BorrowerProfile{TrustScore: userDomain.TrustMedium}
		if r.TrustScore != nil {
			b.TrustScore = userDomain.TrustScore(*r.TrustScore)
		}
		if r.RepaymentStreak != nil {
			b.RepaymentStreak = *r.RepaymentStreak
		}
		u.Borrower = b
	case userDomain.RoleLender:
		l := &userDomain.LenderProfile{Badges: append([]string{}, r.Badges...)}
		if r.SocialImpactScore != nil {
			l.SocialImpactScore = *r.SocialImpactScore
		}
		u.Lender = l
	}
	return u
}

func toLoanRow(l *loanDomain.Loan) *loanRow {
	return &loanRow{
		LoanID:             l.ID,
		BorrowerID:         l.BorrowerID,
		BorrowerName:       l.BorrowerName,
		BorrowerTrustScore: string(l.BorrowerTrustScore),
		Amount:             l.Amount,
		FundedAmount:       l.FundedAmount,
		DurationMonths:     l.DurationMonths,
		Purpose:            string(l.Purpose),
		Description:        l.Description,
		Status:             string(l.Status),
		CreatedAt:          l.CreatedAt,
	}
}

func (r *loanRow) toDomain() *loanDomain.Loan {
	l := &loanDomain.Loan{
		ID:                 r.LoanID,
		BorrowerID:         r.BorrowerID,
		BorrowerName:       r.BorrowerName,
		BorrowerTrustScore: userDomain.TrustScore(r.BorrowerTrustScore),
		Amount:             r.Amount,
		FundedAmount:       r.FundedAmount,
		DurationMonths:     r.DurationMonths,
		Purpose:            loanDomain.Purpose(r.Purpose),
		Description:        r.Description,
		Status:             loanDomain.Status(r.Status),
		CreatedAt:          r.CreatedAt,
		Funders:            make([]loanDomain.Funding, 0, len(r.Fundings)),
	}
	for _, f := range r.Fundings {
		l.Funders = append(l.Funders, f.toDomain())
	}
	return l
}

func toFundingRow(loanID string, f *loanDomain.Funding) *fundingRow {
	return &fundingRow{
		LoanID:     loanID,
		LenderID:   f.LenderID,
		LenderName: f.LenderName,
		Amount:     f.Amount,
		FundedAt:   f.FundedAt,
	}
}

func (r fundingRow) toDomain() loanDomain.Funding {
	return loanDomain.Funding{
		LenderID:   r.LenderID,
		LenderName: r.LenderName,
		Amount:     r.Amount,
		FundedAt:   r.FundedAt,
	}
}

package mysql

import (
	"context"
	"errors"
	"time"

	loanDomain "p2p-lending/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Create inserts the loan header and any funders it already carries
// (seeded loans) in one transaction.
func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(toLoanRow(l)).Error; err != nil {
			return err
		}
		for i := range l.Funders {
			if err := tx.Create(toFundingRow(l.ID, &l.Funders[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.first(r.withFundings(ctx), loanID)
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	q := r.withFundings(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(q, loanID)
}

func (r *LoanRepository) first(q *gorm.DB, loanID string) (*loanDomain.Loan, error) {
	var out loanRow
	if err := q.Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loanDomain.ErrNotFound
		}
		return nil, err
	}
	return out.toDomain(), nil
}

func (r *LoanRepository) SaveLedger(ctx context.Context, l *loanDomain.Loan) error {
	res := r.db.WithContext(ctx).
		Model(&loanRow{}).
		Where("loan_id = ?", l.ID).
		Updates(map[string]any{
			"funded_amount": l.FundedAmount,
			"status":        string(l.Status),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) ListByBorrowerID(ctx context.Context, borrowerID string) ([]*loanDomain.Loan, error) {
	return r.list(r.withFundings(ctx).Where("borrower_id = ?", borrowerID))
}

func (r *LoanRepository) ListAvailable(ctx context.Context) ([]*loanDomain.Loan, error) {
	return r.list(r.withFundings(ctx).Where("funded_amount < amount"))
}

func (r *LoanRepository) ListFundedBy(ctx context.Context, lenderID string) ([]*loanDomain.Loan, error) {
	sub := r.db.WithContext(ctx).Model(&fundingRow{}).Select("loan_id").Where("lender_id = ?", lenderID)
	return r.list(r.withFundings(ctx).Where("loan_id IN (?)", sub))
}

func (r *LoanRepository) withFundings(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Fundings", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// creation order = primary key order
func (r *LoanRepository) list(q *gorm.DB) ([]*loanDomain.Loan, error) {
	var rows []loanRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*loanDomain.Loan, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

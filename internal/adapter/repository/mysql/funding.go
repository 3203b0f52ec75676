package mysql

import (
	"context"

	loanDomain "p2p-lending/internal/domain/loan"

	"gorm.io/gorm"
)

type FundingRepository struct{ db *gorm.DB }

func NewFundingRepository(db *gorm.DB) *FundingRepository { return &FundingRepository{db: db} }

func (r *FundingRepository) Create(ctx context.Context, loanID string, f *loanDomain.Funding) error {
	return r.db.WithContext(ctx).Create(toFundingRow(loanID, f)).Error
}

func (r *FundingRepository) ListByLoanID(ctx context.Context, loanID string) ([]loanDomain.Funding, error) {
	var rows []fundingRow
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make([]loanDomain.Funding, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

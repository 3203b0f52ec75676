package lending

import (
	"time"

	"p2p-lending/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	Amount         decimal.Decimal `json:"amount"`
	DurationMonths int             `json:"duration_months"`
	Purpose        string          `json:"purpose"`
	Description    string          `json:"description"`
}

type FundingDTO struct {
	LenderID   string          `json:"lender_id"`
	LenderName string          `json:"lender_name"`
	Amount     decimal.Decimal `json:"amount"`
	FundedAt   time.Time       `json:"funded_at"`
}

type LoanDTO struct {
	LoanID             string          `json:"loan_id"`
	BorrowerID         string          `json:"borrower_id"`
	BorrowerName       string          `json:"borrower_name"`
	BorrowerTrustScore string          `json:"borrower_trust_score"`
	Amount             decimal.Decimal `json:"amount"`
	FundedAmount       decimal.Decimal `json:"funded_amount"`
	Remaining          decimal.Decimal `json:"remaining"`
	DurationMonths     int             `json:"duration_months"`
	Purpose            string          `json:"purpose"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	Funders            []FundingDTO    `json:"funders"`
}

// InvestmentDTO is one loan as seen by a lender who funded it.
type InvestmentDTO struct {
	LoanID         string          `json:"loan_id"`
	BorrowerName   string          `json:"borrower_name"`
	Purpose        string          `json:"purpose"`
	LoanAmount     decimal.Decimal `json:"loan_amount"`
	FundedAmount   decimal.Decimal `json:"funded_amount"`
	Status         string          `json:"status"`
	AmountInvested decimal.Decimal `json:"amount_invested"`
	Contributions  int             `json:"contributions"`
	LastFundedAt   time.Time       `json:"last_funded_at"`
}

type LenderSummaryDTO struct {
	LenderID       string          `json:"lender_id"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	LoansSupported int             `json:"loans_supported"`
	ActiveLoans    int             `json:"active_loans"`
}

type BorrowerSummaryDTO struct {
	BorrowerID     string          `json:"borrower_id"`
	TotalRequested decimal.Decimal `json:"total_requested"`
	TotalFunded    decimal.Decimal `json:"total_funded"`
	Loans          int             `json:"loans"`
	ByStatus       map[string]int  `json:"by_status"`
}

func ToLoanDTO(l *loan.Loan) LoanDTO {
	funders := make([]FundingDTO, 0, len(l.Funders))
	for _, f := range l.Funders {
		funders = append(funders, FundingDTO{LenderID: f.LenderID, LenderName: f.LenderName, Amount: f.Amount, FundedAt: f.FundedAt})
	}
	return LoanDTO{
		LoanID:             l.ID,
		BorrowerID:         l.BorrowerID,
		BorrowerName:       l.BorrowerName,
		BorrowerTrustScore: string(l.BorrowerTrustScore),
		Amount:             l.Amount,
		FundedAmount:       l.FundedAmount,
		Remaining:          l.Remaining(),
		DurationMonths:     l.DurationMonths,
		Purpose:            string(l.Purpose),
		Description:        l.Description,
		Status:             string(l.Status),
		CreatedAt:          l.CreatedAt,
		Funders:            funders,
	}
}

func toLoanDTOs(ls []*loan.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, ToLoanDTO(l))
	}
	return out
}

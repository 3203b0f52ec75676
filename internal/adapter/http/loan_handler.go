package http

import (
	"net/http"

	"p2p-lending/internal/adapter/middleware"
	"p2p-lending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LoanHandler struct {
	uc  *lending.Usecase
	log *logrus.Logger
}

func NewLoanHandler(uc *lending.Usecase, log *logrus.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type createLoanReq struct {
	Amount         decimal.Decimal `json:"amount"          validate:"money"`
	DurationMonths int             `json:"duration_months" validate:"gte=1,lte=360"`
	Purpose        string          `json:"purpose"         validate:"required,purpose"`
	Description    string          `json:"description"     validate:"required,max=1000"`
}

type fundLoanReq struct {
	Amount decimal.Decimal `json:"amount" validate:"money"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.CreateLoanRequest(c.Request().Context(), middleware.SessionFrom(c), lending.CreateLoanInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req fundLoanReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.FundLoan(c.Request().Context(), middleware.SessionFrom(c), loanID, req.Amount)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.GetLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) AvailableLoans(c echo.Context) error {
	list, err := h.uc.AvailableLoans(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) BorrowerLoans(c echo.Context) error {
	list, err := h.uc.LoansFor(c.Request().Context(), c.Param("borrower_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) BorrowerSummary(c echo.Context) error {
	sum, err := h.uc.BorrowerSummary(c.Request().Context(), c.Param("borrower_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *LoanHandler) LenderInvestments(c echo.Context) error {
	list, err := h.uc.InvestmentsFor(c.Request().Context(), c.Param("lender_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LoanHandler) LenderSummary(c echo.Context) error {
	sum, err := h.uc.LenderSummary(c.Request().Context(), c.Param("lender_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, sum)
}

package http

import (
	"time"

	"p2p-lending/internal/adapter/middleware"
	"p2p-lending/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Health *Handler
	Auth   *AuthHandler
	Loans  *LoanHandler

	Sessions middleware.Resolver
	// nil turns idempotency off
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration
	Metrics        *metrics.Metrics
	Log            *logrus.Logger
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	if d.Metrics != nil {
		e.Use(middleware.RequestMetrics(d.Metrics))
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	e.GET("/health", d.Health.Health)

	api := e.Group("", middleware.Session(d.Sessions, d.Log))

	mutating := []echo.MiddlewareFunc{middleware.RequireSession}
	if d.Redis != nil {
		mutating = append(mutating, middleware.Idempotency(d.Redis, d.IdempotencyTTL, d.Log))
	}

	a := api.Group("/auth")
	a.POST("/login", d.Auth.Login)
	a.POST("/signup", d.Auth.Signup)
	a.POST("/logout", d.Auth.Logout)
	a.GET("/session", d.Auth.Session, middleware.RequireSession)
	a.POST("/session/dark-mode", d.Auth.ToggleDarkMode, middleware.RequireSession)

	api.POST("/loans", d.Loans.CreateLoan, mutating...)
	api.GET("/loans/available", d.Loans.AvailableLoans)
	api.GET("/loans/:loan_id", d.Loans.GetLoan)
	api.POST("/loans/:loan_id/fund", d.Loans.FundLoan, mutating...)

	api.GET("/borrowers/:borrower_id/loans", d.Loans.BorrowerLoans)
	api.GET("/borrowers/:borrower_id/summary", d.Loans.BorrowerSummary)
	api.GET("/lenders/:lender_id/investments", d.Loans.LenderInvestments)
	api.GET("/lenders/:lender_id/summary", d.Loans.LenderSummary)
}

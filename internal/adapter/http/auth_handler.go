package http

import (
	"net/http"

	"p2p-lending/internal/adapter/middleware"
	"p2p-lending/internal/usecase/auth"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	uc  *auth.Usecase
	log *logrus.Logger
}

func NewAuthHandler(uc *auth.Usecase, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

type loginReq struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,role"`
}

// Password rules live here; the store never sees them.
type signupReq struct {
	Name            string `json:"name"             validate:"required,max=120"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role"             validate:"required,role"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Login(c.Request().Context(), auth.LoginInput{Email: req.Email, Password: req.Password, Role: req.Role})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	s := middleware.SessionFrom(c)
	if s == nil {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.uc.Logout(c.Request().Context(), s.Token); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Session(c echo.Context) error {
	s := middleware.SessionFrom(c)
	if _, err := s.Actor(); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, auth.ToSessionDTO(s))
}

func (h *AuthHandler) ToggleDarkMode(c echo.Context) error {
	s := middleware.SessionFrom(c)
	if s == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
	}
	dto, err := h.uc.ToggleDarkMode(c.Request().Context(), s.Token)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

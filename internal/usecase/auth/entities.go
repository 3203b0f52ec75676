package auth

import (
	"time"

	"p2p-lending/internal/domain/session"
	"p2p-lending/internal/domain/user"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type BorrowerDTO struct {
	TrustScore      string `json:"trust_score"`
	RepaymentStreak int    `json:"repayment_streak"`
}

type LenderDTO struct {
	SocialImpactScore int      `json:"social_impact_score"`
	Badges            []string `json:"badges"`
}

type UserDTO struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Avatar    string       `json:"avatar,omitempty"`
	Borrower  *BorrowerDTO `json:"borrower,omitempty"`
	Lender    *LenderDTO   `json:"lender,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type SessionDTO struct {
	Token         string   `json:"token"`
	Authenticated bool     `json:"authenticated"`
	DarkMode      bool     `json:"dark_mode"`
	User          *UserDTO `json:"user,omitempty"`
}

func ToUserDTO(u *user.User) *UserDTO {
	if u == nil {
		return nil
	}
	out := &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
	if u.Borrower != nil {
		out.Borrower = &BorrowerDTO{TrustScore: string(u.TrustScore()), RepaymentStreak: u.Borrower.RepaymentStreak}
	}
	if u.Lender != nil {
		badges := append([]string{}, u.Lender.Badges...)
		out.Lender = &LenderDTO{SocialImpactScore: u.Lender.SocialImpactScore, Badges: badges}
	}
	return out
}

func ToSessionDTO(s *session.Session) *SessionDTO {
	return &SessionDTO{
		Token:         s.Token,
		Authenticated: s.Authenticated,
		DarkMode:      s.DarkMode,
		User:          ToUserDTO(s.User),
	}
}

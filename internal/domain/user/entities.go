package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrForbiddenRole      = errors.New("role not allowed for this operation")
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

func (r Role) Valid() bool { return r == RoleBorrower || r == RoleLender }

type TrustScore string

const (
	TrustGood     TrustScore = "good"
	TrustMedium   TrustScore = "medium"
	TrustHighRisk TrustScore = "high-risk"
)

func (t TrustScore) Valid() bool {
	switch t {
	case TrustGood, TrustMedium, TrustHighRisk:
		return true
	}
	return false
}

// BorrowerProfile is the reputation attached to borrower accounts.
type BorrowerProfile struct {
	TrustScore      TrustScore
	RepaymentStreak int // consecutive on-time months
}

// LenderProfile is the reputation attached to lender accounts.
type LenderProfile struct {
	SocialImpactScore int
	Badges            []string
}

// User shares identity fields across roles; exactly one of Borrower or
// Lender is set, matching Role.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Avatar    string
	Borrower  *BorrowerProfile
	Lender    *LenderProfile
	CreatedAt time.Time
}

// New builds a user with the role's default reputation.
func New(id, name, email string, role Role) (*User, error) {
	u := &User{ID: id, Name: name, Email: email, Role: role, CreatedAt: time.Now().UTC()}
	switch role {
	case RoleBorrower:
		u.Borrower = &BorrowerProfile{TrustScore: TrustMedium}
	case RoleLender:
		u.Lender = &LenderProfile{Badges: []string{}}
	default:
		return nil, ErrInvalidRole
	}
	return u, nil
}

func (u *User) IsBorrower() bool { return u != nil && u.Role == RoleBorrower }
func (u *User) IsLender() bool   { return u != nil && u.Role == RoleLender }

// TrustScore falls back to medium when the borrower has no score yet.
func (u *User) TrustScore() TrustScore {
	if u.Borrower == nil || !u.Borrower.TrustScore.Valid() {
		return TrustMedium
	}
	return u.Borrower.TrustScore
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Borrower != nil {
		b := *u.Borrower
		out.Borrower = &b
	}
	if u.Lender != nil {
		l := *u.Lender
		l.Badges = append([]string{}, u.Lender.Badges...)
		out.Lender = &l
	}
	return &out
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"p2p-lending/internal/domain/session"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const sessionKey = "lending.session"

type Resolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// Session attaches the session named by the bearer token. Requests without
// a token, or with an unknown one, pass through anonymous.
func Session(r Resolver, log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request())
			if token == "" {
				return next(c)
			}
			s, err := r.Resolve(c.Request().Context(), token)
			switch {
			case err == nil:
				c.Set(sessionKey, s)
			case errors.Is(err, session.ErrNotFound):
			default:
				log.WithError(err).Error("middleware: session lookup failed")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests that carry no signed-in session.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := SessionFrom(c).Actor(); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		}
		return next(c)
	}
}

// SessionFrom returns the request's session or nil.
func SessionFrom(c echo.Context) *session.Session {
	s, _ := c.Get(sessionKey).(*session.Session)
	return s
}

func WithSession(c echo.Context, s *session.Session) { c.Set(sessionKey, s) }

func BearerToken(req *http.Request) string {
	h := strings.TrimSpace(req.Header.Get(echo.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

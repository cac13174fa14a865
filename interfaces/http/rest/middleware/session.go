package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"trustie-admin/pkg/auth"
	"trustie-admin/pkg/common"
)

// SessionGate admits requests carrying a valid session token. Pages redirect
// to the login route with the original path as return target; API routes
// answer 401.
type SessionGate struct {
	validator  *auth.SessionValidator
	cookieName string
	loginPath  string
	logger     *zap.Logger
}

// NewSessionGate creates a session gate
func NewSessionGate(validator *auth.SessionValidator, cookieName, loginPath string, logger *zap.Logger) *SessionGate {
	return &SessionGate{
		validator:  validator,
		cookieName: cookieName,
		loginPath:  loginPath,
		logger:     logger,
	}
}

// Pages gates dashboard pages
func (g *SessionGate) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticate(r)
		if err != nil {
			target := g.loginPath + "?origin=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
	})
}

// API gates JSON routes
func (g *SessionGate) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticate(r)
		if err != nil {
			message := "Invalid session"
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				message = "Missing session token"
			case errors.Is(err, auth.ErrExpiredToken):
				message = "Session has expired"
			}
			common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
	})
}

func (g *SessionGate) authenticate(r *http.Request) (*auth.UserContext, error) {
	claims, err := g.validator.ValidateToken(g.extractToken(r))
	if err != nil {
		if !errors.Is(err, auth.ErrMissingToken) {
			g.logger.Debug("Rejected session",
				zap.Error(err),
				zap.String("path", r.URL.Path),
			)
		}
		return nil, err
	}
	return &auth.UserContext{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}

// extractToken reads the session cookie, then the Authorization header
func (g *SessionGate) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

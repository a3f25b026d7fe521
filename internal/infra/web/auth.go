package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-credit-service/internal/infra/logging"
)

// ===== Session/JWT primitives =====

// Roles accepted by the API.
const (
	RolePatient = "patient"
	RoleClinic  = "clinic"
	RoleAdmin   = "admin"
)

type AuthConfig struct {
	HMACSecret []byte
	TTL        time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret: []byte(secret),
		TTL:        ttl, // e.g., 30 * time.Minute
	}}
}

// SessionClaims identifies the caller: Subject is the patient, clinic
// or admin id depending on Role.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (a *AuthManager) Mint(role, subject string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.cfg.HMACSecret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	return nil, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type sessionCtxKey struct{}

// sessionFromContext returns the claims stored by requireRole.
func sessionFromContext(ctx context.Context) *SessionClaims {
	c, _ := ctx.Value(sessionCtxKey{}).(*SessionClaims)
	return c
}

// requireRole authenticates the request and checks the caller holds one
// of the allowed roles. Admins pass every gate.
func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.auth.ParseFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
				return
			}
			allowed := claims.Role == RoleAdmin
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), sessionCtxKey{}, claims)
			switch claims.Role {
			case RolePatient:
				ctx = logging.WithPatientID(ctx, claims.Subject)
			case RoleClinic:
				ctx = logging.WithClinicID(ctx, claims.Subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package token

import (
	"github.com/golang-jwt/jwt/v5"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
	"clinic-credit-service/internal/domain/ports/adapter"
)

// Ensure compile-time conformance
var _ adapter.TokenSigner = (*JWTSigner)(nil)

type qrClaims struct {
	UserPlanID string `json:"upl"`
	Nonce      string `json:"nce"`
	jwt.RegisteredClaims
}

// JWTSigner encodes QR claims as HS256 JWTs. The payload rides inside
// the QR code, so claim names are kept short.
type JWTSigner struct {
	secret []byte
}

func NewJWTSigner(secret string) *JWTSigner {
	return &JWTSigner{secret: []byte(secret)}
}

func (s *JWTSigner) Sign(claims *model.QRClaims) (string, error) {
	if claims == nil || claims.Nonce == "" {
		return "", domain.ErrInvalidArgument
	}
	jc := qrClaims{
		UserPlanID: claims.UserPlanID,
		Nonce:      claims.Nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.PatientID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			NotBefore: jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jc).SignedString(s.secret)
}

// Verify checks the signature and shape only. Expiry is left to the
// caller so an expired token can still be reported with its timestamp.
func (s *JWTSigner) Verify(tok string) (*model.QRClaims, error) {
	claims := &qrClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidQR
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidQR
	}
	if claims.Subject == "" || claims.UserPlanID == "" || claims.Nonce == "" ||
		claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidQR
	}
	return &model.QRClaims{
		PatientID:  claims.Subject,
		UserPlanID: claims.UserPlanID,
		Nonce:      claims.Nonce,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

package adapter

import (
	"clinic-credit-service/internal/domain/model"
)

// TokenSigner signs QR claims into a compact token and verifies the
// reverse direction. Verify checks the signature only; expiry and
// replay are the caller's concern.
type TokenSigner interface {
	Sign(claims *model.QRClaims) (string, error)
	Verify(token string) (*model.QRClaims, error)
}

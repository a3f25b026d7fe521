package model

import (
	"strings"
	"time"

	"clinic-credit-service/internal/domain"

	"github.com/google/uuid"
)

// Clinic is a service provider authorized to redeem patient credits.
type Clinic struct {
	ID        string
	Name      string
	Slug      string
	City      string
	Address   string
	Active    bool
	CreatedAt time.Time
}

func NewClinic(id, name, city, address string) (*Clinic, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Clinic{
		ID:        id,
		Name:      name,
		Slug:      Slugify(name),
		City:      city,
		Address:   address,
		Active:    true,
		CreatedAt: time.Now(),
	}, nil
}

// Slugify lowercases the name and collapses non-alphanumeric runs to a
// single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

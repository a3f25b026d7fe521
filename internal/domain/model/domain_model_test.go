//go:build !integration

package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"clinic-credit-service/internal/domain"
	"clinic-credit-service/internal/domain/model"
)

func newTestPlan(t *testing.T) *model.Plan {
	t.Helper()
	p, err := model.NewPlan("", "Essencial 10", 10, decimal.RequireFromString("499.00"), 365)
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	return p
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Clinica Central", "clinica-central"},
		{"Sorriso  Norte!", "sorriso-norte"},
		{"A&B Odonto 24h", "a-b-odonto-24h"},
		{"  trailing   ", "trailing"},
	}
	for _, c := range cases {
		if got := model.Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUserPlanLifecycle(t *testing.T) {
	plan := newTestPlan(t)
	up, err := model.NewUserPlan("", "patient-1", plan)
	if err != nil {
		t.Fatalf("new user plan: %v", err)
	}
	if up.CreditsRemaining != plan.Credits {
		t.Fatalf("CreditsRemaining = %d, want %d", up.CreditsRemaining, plan.Credits)
	}
	if !up.Redeemable(time.Now()) {
		t.Fatal("fresh plan should be redeemable")
	}

	t.Run("debit", func(t *testing.T) {
		if err := up.Debit(3); err != nil {
			t.Fatalf("debit: %v", err)
		}
		if up.CreditsRemaining != 7 {
			t.Errorf("remaining = %d, want 7", up.CreditsRemaining)
		}
		if up.CreditsUsed() != 3 {
			t.Errorf("used = %d, want 3", up.CreditsUsed())
		}
	})

	t.Run("overdraw is rejected", func(t *testing.T) {
		err := up.Debit(100)
		var ice *domain.InsufficientCreditsError
		if !errors.As(err, &ice) {
			t.Fatalf("err = %v, want InsufficientCreditsError", err)
		}
		if ice.Available != 7 || ice.Required != 100 {
			t.Errorf("details = (%d, %d), want (7, 100)", ice.Available, ice.Required)
		}
		if !errors.Is(err, domain.ErrInsufficientCredits) {
			t.Error("should match ErrInsufficientCredits sentinel")
		}
	})

	t.Run("refund is capped at the grant", func(t *testing.T) {
		if err := up.Refund(50); err != nil {
			t.Fatalf("refund: %v", err)
		}
		if up.CreditsRemaining != up.Credits {
			t.Errorf("remaining = %d, want %d", up.CreditsRemaining, up.Credits)
		}
	})

	t.Run("expired plan is not redeemable", func(t *testing.T) {
		past := up.ExpiresAt.Add(time.Minute)
		if up.Redeemable(past) {
			t.Error("plan past expiry should not be redeemable")
		}
	})
}

func TestTransactionCancel(t *testing.T) {
	tr, err := model.NewTransaction("up-1", "c-1", 2, decimal.RequireFromString("49.90"), "cleaning")
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	if tr.Status != model.TransactionStatusValidated {
		t.Fatalf("status = %s, want validated", tr.Status)
	}
	if tr.Code == "" || tr.ValidatedAt == nil {
		t.Fatal("expected a code and validation timestamp")
	}

	if err := tr.Cancel("ops", "", true); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("cancel without reason: err = %v, want ErrInvalidArgument", err)
	}
	if err := tr.Cancel("ops", "front desk mistake", true); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if tr.Status != model.TransactionStatusCancelled || !tr.Refunded || tr.CancelledBy != "ops" {
		t.Errorf("unexpected state after cancel: %+v", tr)
	}
	if err := tr.Cancel("ops", "again", true); !errors.Is(err, domain.ErrNotCancellable) {
		t.Errorf("second cancel: err = %v, want ErrNotCancellable", err)
	}
}

func TestNewTransactionCodeIsSortable(t *testing.T) {
	earlier := model.NewTransactionCode(time.Now().Add(-time.Hour))
	later := model.NewTransactionCode(time.Now())
	if !(earlier < later) {
		t.Errorf("codes should sort by creation time: %s !< %s", earlier, later)
	}
}

func TestQRClaims(t *testing.T) {
	c, err := model.NewQRClaims("patient-1", "up-1", 10*time.Minute)
	if err != nil {
		t.Fatalf("new claims: %v", err)
	}
	if c.Nonce == "" {
		t.Fatal("expected a nonce")
	}
	if c.Expired(time.Now()) {
		t.Error("fresh claims should not be expired")
	}
	if !c.Expired(c.ExpiresAt.Add(time.Second)) {
		t.Error("claims past expiry should report expired")
	}

	if _, err := model.NewQRClaims("", "up-1", time.Minute); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("missing patient: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := model.NewQRClaims("p", "up-1", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("zero ttl: err = %v, want ErrInvalidArgument", err)
	}
}

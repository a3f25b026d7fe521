package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/domain/ports/adapter"
	"clinic-credit-service/internal/domain/ports/repository"
)

// Notification kinds recorded in the dedupe log.
const (
	NotificationKindLowBalance  = "low_balance"
	NotificationKindPlanExpiry  = "plan_expiry"
	DefaultLowBalanceThreshold  = int64(2)
	DefaultExpiryWarnWithinDays = 3
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// NotifyLowBalance warns the patient once per plan when the balance
	// drops to the threshold or below.
	NotifyLowBalance(ctx context.Context, userPlanID, patientID string, remaining int64) error
	// NotifyExpiring warns patients whose plans expire within the given
	// window and returns how many notifications went out.
	NotifyExpiring(ctx context.Context, withinDays int) (int, error)
}

type notificationUC struct {
	userPlans repository.UserPlanRepository
	patients  repository.PatientRepository
	logRepo   repository.NotificationLogRepository
	notifier  adapter.Notifier
	events    adapter.EventPublisher
	threshold int64
	log       *zerolog.Logger
}

func NewNotificationUseCase(
	userPlans repository.UserPlanRepository,
	patients repository.PatientRepository,
	logRepo repository.NotificationLogRepository,
	notifier adapter.Notifier,
	events adapter.EventPublisher,
	threshold int64,
	logger *zerolog.Logger,
) *notificationUC {
	if threshold <= 0 {
		threshold = DefaultLowBalanceThreshold
	}
	return &notificationUC{
		userPlans: userPlans,
		patients:  patients,
		logRepo:   logRepo,
		notifier:  notifier,
		events:    events,
		threshold: threshold,
		log:       logger,
	}
}

func (n *notificationUC) NotifyLowBalance(ctx context.Context, userPlanID, patientID string, remaining int64) error {
	if remaining > n.threshold {
		return nil
	}
	sent, err := n.logRepo.Exists(ctx, repository.NoTX, userPlanID, NotificationKindLowBalance, n.threshold)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	patient, err := n.patients.FindByID(ctx, repository.NoTX, patientID)
	if err != nil {
		return err
	}

	subject := "Your credit balance is running low"
	body := fmt.Sprintf("Hi %s,\n\nYour plan has %d credit(s) remaining. Top up to keep booking services without interruption.\n", patient.FullName, remaining)
	if n.notifier != nil {
		if err := n.notifier.Notify(ctx, patient.Email, subject, body); err != nil {
			return err
		}
	}
	if n.events != nil {
		payload := map[string]any{
			"user_plan_id": userPlanID,
			"patient_id":   patientID,
			"remaining":    remaining,
		}
		if err := n.events.Publish(ctx, adapter.TopicLowBalance, userPlanID, payload); err != nil {
			n.log.Warn().Err(err).Msg("low balance event publish failed")
		}
	}

	if err := n.logRepo.Save(ctx, repository.NoTX, userPlanID, patientID, NotificationKindLowBalance, n.threshold); err != nil {
		return err
	}
	n.log.Info().Str("user_plan_id", userPlanID).Int64("remaining", remaining).Msg("low balance notification sent")
	return nil
}

func (n *notificationUC) NotifyExpiring(ctx context.Context, withinDays int) (int, error) {
	if withinDays <= 0 {
		withinDays = DefaultExpiryWarnWithinDays
	}
	items, err := n.userPlans.FindExpiring(ctx, repository.NoTX, withinDays)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, up := range items {
		already, err := n.logRepo.Exists(ctx, repository.NoTX, up.ID, NotificationKindPlanExpiry, int64(withinDays))
		if err != nil {
			n.log.Warn().Err(err).Str("user_plan_id", up.ID).Msg("dedupe check failed")
			continue
		}
		if already {
			continue
		}
		patient, err := n.patients.FindByID(ctx, repository.NoTX, up.PatientID)
		if err != nil {
			n.log.Warn().Err(err).Str("patient_id", up.PatientID).Msg("patient lookup failed")
			continue
		}

		subject := "Your credit plan expires soon"
		body := fmt.Sprintf("Hi %s,\n\nYour plan expires on %s with %d credit(s) left. Use them before they lapse.\n",
			patient.FullName, up.ExpiresAt.Format("2006-01-02"), up.CreditsRemaining)
		if n.notifier != nil {
			if err := n.notifier.Notify(ctx, patient.Email, subject, body); err != nil {
				n.log.Warn().Err(err).Str("patient_id", patient.ID).Msg("expiry notification failed")
				continue
			}
		}
		if err := n.logRepo.Save(ctx, repository.NoTX, up.ID, up.PatientID, NotificationKindPlanExpiry, int64(withinDays)); err != nil {
			n.log.Warn().Err(err).Msg("notification log save failed")
			continue
		}
		sent++
	}
	return sent, nil
}

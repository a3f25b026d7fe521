package repository

import (
	"context"
)

// NotificationLogRepository deduplicates outbound notifications.
type NotificationLogRepository interface {
	// Save records that a notification was sent.
	Save(ctx context.Context, tx Tx, userPlanID, patientID, kind string, threshold int64) error
	// Exists checks if a specific notification has already been sent.
	Exists(ctx context.Context, tx Tx, userPlanID, kind string, threshold int64) (bool, error)
}

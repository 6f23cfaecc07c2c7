package ports

import (
	"context"

	"cryptoScanBot/internal/domain"
)

// Dispatcher delivers a finalized alert batch to its destination (Telegram,
// console, ...). Dispatch is fire-and-forget from the scanners' perspective:
// a delivery failure is logged by the caller and never rolls back the
// cooldown state already recorded for the batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []domain.Alert) error
}

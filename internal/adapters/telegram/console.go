package telegram

import (
	"context"

	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"
)

// ConsoleDispatcher logs alert batches instead of sending them.
// Used when no Telegram credentials are configured.
type ConsoleDispatcher struct {
	logger ports.Logger
}

// NewConsoleDispatcher creates a console-only dispatcher.
func NewConsoleDispatcher(logger ports.Logger) *ConsoleDispatcher {
	return &ConsoleDispatcher{logger: logger}
}

// Dispatch logs each alert at info level.
func (d *ConsoleDispatcher) Dispatch(ctx context.Context, alerts []domain.Alert) error {
	for _, a := range alerts {
		d.logger.Info(ctx, "ALERT", map[string]interface{}{
			"strategy":  string(a.Strategy),
			"symbol":    a.Symbol,
			"sub_kind":  a.SubKind,
			"direction": string(a.Direction),
			"price":     a.Price,
			"metric":    a.MetricValue,
		})
	}
	return nil
}

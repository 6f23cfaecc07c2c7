// Package telegram delivers finalized alert batches as Telegram messages.
// Captions link each symbol to its TradingView perpetual chart; chart image
// rendering itself is out of scope.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"
)

const (
	apiBaseURL     = "https://api.telegram.org"
	defaultTimeout = 30 * time.Second
)

// Dispatcher implements ports.Dispatcher against the Telegram bot API.
type Dispatcher struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// Config holds configuration for the Telegram dispatcher.
type Config struct {
	Token   string
	ChatID  string
	Timeout time.Duration
	Logger  ports.Logger
}

// New creates a Telegram dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram dispatcher")
	}
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		token:      cfg.Token,
		chatID:     cfg.ChatID,
		baseURL:    apiBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}, nil
}

// Dispatch sends the batch as one Markdown message.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":    d.chatID,
		"text":       BuildMessage(alerts),
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", d.baseURL, d.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send failed: unexpected status %d", resp.StatusCode)
	}

	d.logger.Info(ctx, "Alert batch delivered to Telegram", map[string]interface{}{"alerts": len(alerts)})
	return nil
}

// BuildMessage renders a batch into one Markdown caption.
func BuildMessage(alerts []domain.Alert) string {
	var sb strings.Builder
	for i, a := range alerts {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(captionFor(a))
	}
	return sb.String()
}

func captionFor(a domain.Alert) string {
	link := fmt.Sprintf("[%s](%s)", a.Symbol, TradingViewURL(a.Symbol))
	switch a.Strategy {
	case domain.StrategyEMATouch:
		return fmt.Sprintf("📈 %s - EMA touch\nDistance: %.2f%% (%s), EMA: $%.6f", link, a.MetricValue, a.Direction, a.Reference)
	case domain.StrategyDailyFlip:
		arrow := "🔴➡️🟢"
		if a.Direction == domain.DirectionGreenToRed {
			arrow = "🟢➡️🔴"
		}
		return fmt.Sprintf("%s %s Daily Flip\nChange: %.2f%%", arrow, link, a.MetricValue)
	case domain.StrategyVolume:
		if a.Direction == domain.DirectionGainer {
			return fmt.Sprintf("🚀 %s +%.2f%%", link, a.MetricValue)
		}
		return fmt.Sprintf("📉 %s %.2f%%", link, a.MetricValue)
	case domain.StrategyATHATL:
		if a.SubKind == "ath" {
			if a.NewExtremum {
				return fmt.Sprintf("🚀 %s NEW ATH!\nPrice: $%.6f", link, a.Price)
			}
			return fmt.Sprintf("📈 %s near ATH\nDistance: %.2f%%, ATH: $%.6f", link, a.MetricValue, a.Reference)
		}
		if a.NewExtremum {
			return fmt.Sprintf("💥 %s NEW ATL!\nPrice: $%.6f", link, a.Price)
		}
		return fmt.Sprintf("📉 %s near ATL\nDistance: %.2f%%, ATL: $%.6f", link, a.MetricValue, a.Reference)
	default:
		return fmt.Sprintf("%s %s: %.2f", link, a.Strategy, a.MetricValue)
	}
}

// TradingViewURL links a USDT pair to its perpetual chart on TradingView.
func TradingViewURL(symbol string) string {
	perpetual := strings.Replace(symbol, "USDT", "USDT.P", 1)
	return fmt.Sprintf("https://www.tradingview.com/chart/?symbol=BINANCE:%s", perpetual)
}

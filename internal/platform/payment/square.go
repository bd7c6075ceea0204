package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oneplanet-market/internal/config"
)

const (
	squareProductionURL = "https://connect.squareup.com"
	squareSandboxURL    = "https://connect.squareupsandbox.com"
	squareAPIVersion    = "2024-01-18"
)

// SquareCharger implements CardCharger against the Square Payments API. The
// charge is synchronous: the buyer's card nonce is exchanged for a completed
// payment before the order is stored.
type SquareCharger struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	locationID  string
	logger      *slog.Logger
}

// NewSquareCharger creates a Square card charger
func NewSquareCharger(logger *slog.Logger, cfg *config.PaymentsConfig) *SquareCharger {
	baseURL := squareProductionURL
	if strings.EqualFold(cfg.SquareEnvironment, "sandbox") {
		baseURL = squareSandboxURL
	}

	return &SquareCharger{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		accessToken: cfg.SquareAccessToken,
		locationID:  cfg.SquareLocationID,
		logger:      logger,
	}
}

type squarePaymentRequest struct {
	SourceID       string            `json:"source_id"`
	IdempotencyKey string            `json:"idempotency_key"`
	AmountMoney    squareAmountMoney `json:"amount_money"`
	LocationID     string            `json:"location_id"`
}

type squareAmountMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squarePaymentResponse struct {
	Payment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"payment"`
	Errors []struct {
		Category string `json:"category"`
		Code     string `json:"code"`
		Detail   string `json:"detail"`
	} `json:"errors"`
}

// Charge creates a Square payment from a card nonce. The idempotency key
// makes retried requests safe: Square returns the original payment instead of
// charging twice.
func (c *SquareCharger) Charge(ctx context.Context, sourceID string, amount int64, idempotencyKey string) (string, error) {
	body, err := json.Marshal(squarePaymentRequest{
		SourceID:       sourceID,
		IdempotencyKey: idempotencyKey,
		AmountMoney: squareAmountMoney{
			Amount:   amount,
			Currency: strings.ToUpper(Currency),
		},
		LocationID: c.locationID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal square payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/payments", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build square payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", squareAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Square payment request failed", "error", err)
		return "", fmt.Errorf("square payment request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read square payment response: %w", err)
	}

	var paymentResp squarePaymentResponse
	if err := json.Unmarshal(respBody, &paymentResp); err != nil {
		return "", fmt.Errorf("failed to parse square payment response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || len(paymentResp.Errors) > 0 {
		detail := "unknown error"
		if len(paymentResp.Errors) > 0 {
			detail = paymentResp.Errors[0].Code + ": " + paymentResp.Errors[0].Detail
		}
		c.logger.Error("Square payment was declined",
			"status_code", resp.StatusCode,
			"detail", detail,
		)
		return "", fmt.Errorf("square payment failed: %s", detail)
	}

	if paymentResp.Payment.Status != "COMPLETED" && paymentResp.Payment.Status != "APPROVED" {
		return "", fmt.Errorf("square payment not completed: status %s", paymentResp.Payment.Status)
	}

	return paymentResp.Payment.ID, nil
}

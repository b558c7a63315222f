package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"wallet-remittance-engine/config"
	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// ifscPattern matches the RBI IFSC format: four letters, a zero, six
// alphanumerics.
var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// Client implements ports.PayoutGateway against the payout provider's HTTP
// API. Transfers carry the batch id as idempotency key, so a retried
// InitiatePayout for the same batch never moves money twice.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	currency      string
	httpClient    *http.Client
	sigSvc        ports.SignatureService
	replayGuard   ports.ReplayGuard
	log           zerolog.Logger
}

// NewClient creates a payout provider client. currency is the ISO 4217 code
// transfers are denominated in, from the remittance configuration.
func NewClient(cfg config.PayoutConfig, currency string, sigSvc ports.SignatureService, replayGuard ports.ReplayGuard, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if currency == "" {
		currency = "INR"
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
		httpClient:    &http.Client{Timeout: timeout},
		sigSvc:        sigSvc,
		replayGuard:   replayGuard,
		log:           log,
	}
}

type validateAccountRequest struct {
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

type validateAccountResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type registerPayeeRequest struct {
	TenantID      string `json:"tenant_id"`
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

type registerPayeeResponse struct {
	PayeeID string `json:"payee_id"`
}

type initiatePayoutRequest struct {
	BatchID  string `json:"batch_id"`
	TenantID string `json:"tenant_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type initiatePayoutResponse struct {
	PayoutReference string `json:"payout_reference"`
	Status          string `json:"status"`
}

// apiError is the provider's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("payout provider error %s: %s", e.Code, e.Message)
}

// ValidateBankAccount checks the settlement account with the provider.
// Format problems are rejected locally without an API round trip.
func (c *Client) ValidateBankAccount(ctx context.Context, accountNumber, ifsc string) (*ports.BankAccountValidation, error) {
	if len(accountNumber) < 6 || len(accountNumber) > 20 {
		return &ports.BankAccountValidation{Valid: false, Reason: "account number length out of range"}, nil
	}
	if !ifscPattern.MatchString(ifsc) {
		return &ports.BankAccountValidation{Valid: false, Reason: "malformed IFSC code"}, nil
	}

	var resp validateAccountResponse
	err := c.post(ctx, "/v1/accounts/validate", "", validateAccountRequest{
		AccountNumber: accountNumber,
		IFSC:          ifsc,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &ports.BankAccountValidation{Valid: resp.Valid, Reason: resp.Reason}, nil
}

// RegisterPayee registers the tenant's settlement account with the provider
// and returns the provider-side payee id.
func (c *Client) RegisterPayee(ctx context.Context, reg ports.PayeeRegistration) (string, error) {
	validation, err := c.ValidateBankAccount(ctx, reg.AccountNumber, reg.IFSC)
	if err != nil {
		return "", err
	}
	if !validation.Valid {
		return "", fmt.Errorf("bank account rejected: %s", validation.Reason)
	}

	var resp registerPayeeResponse
	err = c.post(ctx, "/v1/payees", "", registerPayeeRequest{
		TenantID:      reg.TenantID,
		AccountHolder: reg.AccountHolder,
		AccountNumber: reg.AccountNumber,
		IFSC:          reg.IFSC,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.PayeeID, nil
}

// InitiatePayout requests a transfer of the batch's net payable. The batch
// id rides the Idempotency-Key header.
func (c *Client) InitiatePayout(ctx context.Context, batch *domain.RemittanceBatch) (*ports.PayoutInitiation, error) {
	var resp initiatePayoutResponse
	err := c.post(ctx, "/v1/payouts", batch.ID.String(), initiatePayoutRequest{
		BatchID:  batch.ID.String(),
		TenantID: batch.TenantID,
		Amount:   batch.Financials.NetPayable.StringFixed(2),
		Currency: c.currency,
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("batch_id", batch.ID.String()).
		Str("payout_reference", resp.PayoutReference).
		Str("status", resp.Status).
		Msg("payout transfer requested")

	return &ports.PayoutInitiation{
		PayoutReference: resp.PayoutReference,
		Status:          resp.Status,
	}, nil
}

// VerifyWebhookSignature checks the HMAC over the raw, unparsed payload.
func (c *Client) VerifyWebhookSignature(rawPayload []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	return c.sigSvc.Verify(c.webhookSecret, rawPayload, signatureHeader)
}

// IsReplay reports whether the event id was already processed. Pure lookup:
// ids are marked only once their effect is durable.
func (c *Client) IsReplay(ctx context.Context, eventID string) (bool, error) {
	return c.replayGuard.Seen(ctx, eventID)
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := &apiError{}
		if err := json.Unmarshal(respBody, errResp); err != nil || errResp.Message == "" {
			return fmt.Errorf("provider returned status %d", resp.StatusCode)
		}
		return errResp
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

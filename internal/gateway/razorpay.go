package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.razorpay.com/v1"

	// minAmountMinorUnits is the gateway's minimum chargeable amount
	// (1.00 in the major unit).
	minAmountMinorUnits = 100
)

// RazorpayProvider implements Provider against the Razorpay Orders API.
// Authentication is HTTP basic auth with the key id and secret; the same
// secret keys the callback signature HMAC.
type RazorpayProvider struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

var _ Provider = (*RazorpayProvider)(nil)

// NewRazorpayProvider creates a provider with the given credentials. Timeout
// bounds every API call; zero means 15 seconds.
func NewRazorpayProvider(keyID, keySecret string, timeout time.Duration) *RazorpayProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayProvider{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type apiErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent registers an order with the gateway. Credentials are checked
// before any network call so a misconfigured server fails fast instead of
// leaking a half-created checkout.
func (p *RazorpayProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	if p.keyID == "" || p.keySecret == "" {
		return nil, ErrMissingCredentials
	}
	if params.AmountMinorUnits < minAmountMinorUnits {
		return nil, ErrAmountTooSmall
	}

	payload := createOrderRequest{
		Amount:   params.AmountMinorUnits,
		Currency: params.Currency,
		Receipt:  params.Receipt,
		Notes:    params.Notes,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.keyID, p.keySecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        apiErr.Error.Code,
			Description: apiErr.Error.Description,
		}
	}

	var result orderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &Intent{
		ID:               result.ID,
		AmountMinorUnits: result.Amount,
		Currency:         result.Currency,
		Receipt:          result.Receipt,
		Status:           result.Status,
		CreatedAt:        time.Unix(result.CreatedAt, 0),
	}, nil
}

func (p *RazorpayProvider) VerifySignature(orderRef, paymentRef, signature string) error {
	return verifySignature(p.keySecret, orderRef, paymentRef, signature)
}

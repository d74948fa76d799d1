package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock payment gateway for testing and credential-less
// development. Signatures verify against the configured KeySecret using the
// real HMAC scheme, so the verification path is exercised end to end.
type MockProvider struct {
	// KeySecret keys the mock's signature scheme.
	KeySecret string

	// CreateIntentFunc allows customizing intent creation behavior
	CreateIntentFunc func(ctx context.Context, params CreateIntentParams) (*Intent, error)

	// VerifySignatureFunc allows customizing verification behavior
	VerifySignatureFunc func(orderRef, paymentRef, signature string) error

	// Intents stores created intents for retrieval
	Intents map[string]*Intent

	// CallLog tracks method calls for test assertions
	CallLog []string
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock gateway provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		KeySecret: "mock-secret",
		Intents:   make(map[string]*Intent),
		CallLog:   []string{},
	}
}

// CreateIntent creates a mock intent.
func (m *MockProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateIntent(%d, %s)", params.AmountMinorUnits, params.Currency))

	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, params)
	}

	if params.AmountMinorUnits < minAmountMinorUnits {
		return nil, ErrAmountTooSmall
	}

	intent := &Intent{
		ID:               "order_" + uuid.New().String(),
		AmountMinorUnits: params.AmountMinorUnits,
		Currency:         params.Currency,
		Receipt:          params.Receipt,
		Status:           "created",
		CreatedAt:        time.Now(),
	}
	m.Intents[intent.ID] = intent
	return intent, nil
}

// VerifySignature verifies against the mock's key secret.
func (m *MockProvider) VerifySignature(orderRef, paymentRef, signature string) error {
	m.CallLog = append(m.CallLog, fmt.Sprintf("VerifySignature(%s, %s)", orderRef, paymentRef))

	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(orderRef, paymentRef, signature)
	}
	return verifySignature(m.KeySecret, orderRef, paymentRef, signature)
}

// Sign produces a valid signature for the given references, for tests and
// dev tooling driving the mock.
func (m *MockProvider) Sign(orderRef, paymentRef string) string {
	return signPayload(m.KeySecret, orderRef, paymentRef)
}

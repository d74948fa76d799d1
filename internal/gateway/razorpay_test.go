package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProvider points a provider at a stub of the orders API.
func newTestProvider(t *testing.T, handler http.HandlerFunc) *RazorpayProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewRazorpayProvider("key_test", "secret_test", 5*time.Second)
	p.baseURL = srv.URL
	return p
}

func TestRazorpayProvider_CreateIntent(t *testing.T) {
	var gotReq createOrderRequest
	var gotAuth bool

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "key_test" && pass == "secret_test"

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(orderResponse{
			ID:        "order_Nxy123",
			Amount:    gotReq.Amount,
			Currency:  gotReq.Currency,
			Receipt:   gotReq.Receipt,
			Status:    "created",
			CreatedAt: 1700000000,
		})
	})

	intent, err := p.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinorUnits: 7500,
		Currency:         "INR",
		Receipt:          "session-1",
		Notes:            map[string]string{"ownerId": "owner-1"},
	})
	require.NoError(t, err)

	assert.True(t, gotAuth, "request must carry basic auth credentials")
	assert.Equal(t, int64(7500), gotReq.Amount)
	assert.Equal(t, "INR", gotReq.Currency)
	assert.Equal(t, "session-1", gotReq.Receipt)

	assert.Equal(t, "order_Nxy123", intent.ID)
	assert.Equal(t, int64(7500), intent.AmountMinorUnits)
	assert.Equal(t, "created", intent.Status)
	assert.Equal(t, time.Unix(1700000000, 0), intent.CreatedAt)
}

func TestRazorpayProvider_CreateIntent_MissingCredentials(t *testing.T) {
	p := NewRazorpayProvider("", "", 0)

	_, err := p.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinorUnits: 7500,
		Currency:         "INR",
	})
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRazorpayProvider_CreateIntent_AmountBelowMinimum(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for sub-minimum amount")
	})

	_, err := p.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinorUnits: 99,
		Currency:         "INR",
	})
	require.ErrorIs(t, err, ErrAmountTooSmall)
}

func TestRazorpayProvider_CreateIntent_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinorUnits: 7500,
		Currency:         "INR",
	})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRazorpayProvider_CreateIntent_APIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "Currency is not supported",
			},
		})
	})

	_, err := p.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinorUnits: 7500,
		Currency:         "XXX",
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
	assert.Equal(t, "Currency is not supported", apiErr.Description)
}

func TestRazorpayProvider_CreateIntent_ConnectionRefused(t *testing.T) {
	p := NewRazorpayProvider("key_test", "secret_test", time.Second)
	p.baseURL = "http://127.0.0.1:1"

	_, err := p.CreateIntent(context.Background(), CreateIntentParams{
		AmountMinorUnits: 7500,
		Currency:         "INR",
	})
	require.ErrorIs(t, err, ErrUnavailable)
}

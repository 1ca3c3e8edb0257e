package mercadopago

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		AccessToken:     "test-token",
		BaseURL:         srv.URL,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  500 * time.Millisecond,
	}, logger.NewNop())
}

func TestGetPreapproval(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/preapproval/pre-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pre-1",
			"status": "authorized",
			"payer_id": 123456,
			"external_reference": "salon-1",
			"next_payment_date": "2026-02-10T12:00:00.000-03:00",
			"auto_recurring": {"frequency": 1, "frequency_type": "months", "transaction_amount": 89.9, "currency_id": "BRL"}
		}`))
	})

	pre, err := client.GetPreapproval(context.Background(), "pre-1")
	require.NoError(t, err)
	assert.Equal(t, "pre-1", pre.ID.String())
	assert.Equal(t, "authorized", pre.Status)
	assert.Equal(t, "123456", pre.PayerID.String())
	assert.Equal(t, "salon-1", pre.ExternalReference)
	require.NotNil(t, pre.NextPaymentDate)
	assert.True(t, pre.Amount().Equal(decimal.RequireFromString("89.9")))
}

func TestGetPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/987", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 987,
			"status": "approved",
			"status_detail": "accredited",
			"transaction_amount": 89.9,
			"currency_id": "BRL",
			"payment_method_id": "pix",
			"date_approved": "2026-01-10T12:00:00Z",
			"metadata": {"preapproval_id": "pre-1"}
		}`))
	})

	p, err := client.GetPayment(context.Background(), "987")
	require.NoError(t, err)
	assert.Equal(t, "987", p.ID.String())
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, "pre-1", p.SubscriptionID())
	require.NotNil(t, p.DateApproved)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id": "pre-1", "status": "paused"}`))
	})

	pre, err := client.GetPreapproval(context.Background(), "pre-1")
	require.NoError(t, err)
	assert.Equal(t, "paused", pre.Status)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestRetriesRateLimit(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id": 1, "status": "rejected"}`))
	})

	p, err := client.GetPayment(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "rejected", p.Status)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClientErrorIsPermanent(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "not found"}`))
	})

	_, err := client.GetPayment(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGivesUpAfterMaxElapsed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetPreapproval(context.Background(), "pre-1")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestIDUnmarshal(t *testing.T) {
	var id ID
	require.NoError(t, id.UnmarshalJSON([]byte(`42`)))
	assert.Equal(t, ID("42"), id)
	require.NoError(t, id.UnmarshalJSON([]byte(`"abc"`)))
	assert.Equal(t, ID("abc"), id)
	require.NoError(t, id.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, ID(""), id)
}

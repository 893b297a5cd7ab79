package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	key    string
	body   map[string]any
}

func stubServer(t *testing.T, status int, response any) (*BookingClient, *recorded) {
	t.Helper()
	got := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.key = r.Header.Get("Idempotency-Key")
		if r.ContentLength > 0 {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(srv.Close)
	return NewBookingClient(srv.URL, "tok"), got
}

func TestBookingClient_Routes(t *testing.T) {
	ok := map[string]any{"data": map[string]any{"id": "b1", "status": "confirmed"}}

	tests := []struct {
		name   string
		call   func(c *BookingClient) (*model.Booking, error)
		method string
		path   string
		key    string
	}{
		{
			name: "create",
			call: func(c *BookingClient) (*model.Booking, error) {
				return c.Create(context.Background(), &model.CreateBookingRequest{VenueID: "v1"})
			},
			method: http.MethodPost,
			path:   "/api/v1/bookings",
		},
		{
			name:   "get",
			call:   func(c *BookingClient) (*model.Booking, error) { return c.Get(context.Background(), "b1") },
			method: http.MethodGet,
			path:   "/api/v1/bookings/id/b1",
		},
		{
			name: "transition",
			call: func(c *BookingClient) (*model.Booking, error) {
				return c.Transition(context.Background(), "b1", &model.TransitionRequest{Status: model.StatusConfirmed})
			},
			method: http.MethodPut,
			path:   "/api/v1/bookings/id/b1/status",
		},
		{
			name: "payment",
			call: func(c *BookingClient) (*model.Booking, error) {
				return c.RecordPayment(context.Background(), "b1", &model.PaymentRequest{Amount: 100, Method: "upi", TransactionID: "T1"}, "pay-1")
			},
			method: http.MethodPost,
			path:   "/api/v1/bookings/id/b1/payments",
			key:    "pay-1",
		},
		{
			name:   "refund",
			call:   func(c *BookingClient) (*model.Booking, error) { return c.SettleRefund(context.Background(), "b1") },
			method: http.MethodPost,
			path:   "/api/v1/bookings/id/b1/refund",
		},
		{
			name: "review",
			call: func(c *BookingClient) (*model.Booking, error) {
				return c.AttachReview(context.Background(), "b1", &model.ReviewRequest{Rating: 5})
			},
			method: http.MethodPost,
			path:   "/api/v1/bookings/id/b1/review",
		},
		{
			name: "message",
			call: func(c *BookingClient) (*model.Booking, error) {
				return c.PostMessage(context.Background(), "b1", &model.MessageRequest{Message: "hi"})
			},
			method: http.MethodPost,
			path:   "/api/v1/bookings/id/b1/messages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, got := stubServer(t, http.StatusOK, ok)

			b, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, "b1", b.ID)
			assert.Equal(t, model.StatusConfirmed, b.Status)

			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.path, got.path)
			assert.Equal(t, "Bearer tok", got.auth)
			assert.Equal(t, tt.key, got.key)
		})
	}
}

func TestBookingClient_List(t *testing.T) {
	c, got := stubServer(t, http.StatusOK, map[string]any{
		"data":        []map[string]any{{"id": "b2"}, {"id": "b1"}},
		"total_count": 7,
		"limit":       2,
		"offset":      4,
	})

	bookings, meta, err := c.List(context.Background(), ListOptions{Status: model.StatusPending, Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "b2", bookings[0].ID)
	assert.Equal(t, &Metadata{TotalCount: 7, Limit: 2, Offset: 4}, meta)
	assert.Equal(t, "limit=2&offset=4&status=pending", got.query)
}

func TestBookingClient_APIError(t *testing.T) {
	c, _ := stubServer(t, http.StatusConflict, map[string]any{
		"code":    "TERMINAL_STATE",
		"message": "Booking is cancelled",
	})

	_, err := c.Get(context.Background(), "b1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "TERMINAL_STATE", apiErr.Code)
	assert.Equal(t, "Booking is cancelled", apiErr.Message)
}

func TestBookingClient_PathEscapesID(t *testing.T) {
	c, got := stubServer(t, http.StatusOK, map[string]any{"data": map[string]any{"id": "a b"}})

	_, err := c.Get(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/bookings/id/a b", got.path)
}

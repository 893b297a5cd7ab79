package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"eventhub/pkg/model"
)

const bookingsPath = "/api/v1/bookings"

// APIError is a non-2xx answer from the booking API.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Metadata struct {
	TotalCount int64
	Limit      int
	Offset     int64
}

type ListOptions struct {
	Status model.BookingStatus
	Venue  string
	Limit  int
	Offset int64
}

// BookingClient calls the booking API as the principal owning Token.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl, token string) *BookingClient {
	hc := NewHttpClient(baseUrl)
	hc.Token = token
	return &BookingClient{httpClient: hc}
}

func byID(id string, suffix string) string {
	return bookingsPath + "/id/" + url.PathEscape(id) + suffix
}

func (c *BookingClient) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	return c.booking(c.httpClient.POST(ctx, bookingsPath, req))
}

func (c *BookingClient) Get(ctx context.Context, id string) (*model.Booking, error) {
	return c.booking(c.httpClient.GET(ctx, byID(id, "")))
}

func (c *BookingClient) List(ctx context.Context, opts ListOptions) ([]*model.Booking, *Metadata, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Venue != "" {
		q.Set("venue", opts.Venue)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.FormatInt(opts.Offset, 10))
	}

	path := bookingsPath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return DecodeBookings(resp)
}

func (c *BookingClient) Transition(ctx context.Context, id string, req *model.TransitionRequest) (*model.Booking, error) {
	return c.booking(c.httpClient.PUT(ctx, byID(id, "/status"), req))
}

// RecordPayment sends idempotencyKey so a retried call records the payment once.
func (c *BookingClient) RecordPayment(ctx context.Context, id string, req *model.PaymentRequest, idempotencyKey string) (*model.Booking, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return c.booking(c.httpClient.POSTWithHeaders(ctx, byID(id, "/payments"), req, headers))
}

func (c *BookingClient) SettleRefund(ctx context.Context, id string) (*model.Booking, error) {
	return c.booking(c.httpClient.POST(ctx, byID(id, "/refund"), struct{}{}))
}

func (c *BookingClient) AttachReview(ctx context.Context, id string, req *model.ReviewRequest) (*model.Booking, error) {
	return c.booking(c.httpClient.POST(ctx, byID(id, "/review"), req))
}

func (c *BookingClient) PostMessage(ctx context.Context, id string, req *model.MessageRequest) (*model.Booking, error) {
	return c.booking(c.httpClient.POST(ctx, byID(id, "/messages"), req))
}

func (c *BookingClient) booking(resp *Response, err error) (*model.Booking, error) {
	if err != nil {
		return nil, err
	}
	return DecodeBooking(resp)
}

func checkStatus(resp *Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := resp.DecodeJSON(apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Message = string(resp.Body)
	}
	return apiErr
}

func DecodeBooking(resp *Response) (*model.Booking, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking wrapper: %s: %w", resp, err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking json: %s: %w", resp, err)
	}
	return &booking, nil
}

func DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	if err := checkStatus(resp); err != nil {
		return nil, nil, err
	}

	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp: %s: %w", resp, err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list: %s: %w", resp, err)
	}

	return bookings, &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}, nil
}

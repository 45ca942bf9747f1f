package finalize

import (
	"bytes"
	"clinic/src/booking"
	"clinic/src/lib"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBytes = 1 << 20

// EdgeClient calls the remote process-booking function.
type EdgeClient struct {
	url    string
	apiKey string
	secret []byte
	http   *http.Client
	now    func() time.Time
}

func NewEdgeClient(url, apiKey string, secret []byte, timeout time.Duration) *EdgeClient {
	return &EdgeClient{
		url:    url,
		apiKey: apiKey,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

type edgeResponse struct {
	Booking json.RawMessage `json:"booking"`
	Error   string          `json:"error"`
}

func (c *EdgeClient) FinalizeBooking(ctx context.Context, req booking.FinalizeRequest) (*booking.FinalizeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	token, err := lib.SignServiceToken(c.secret, "booking-success", c.now())
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		httpReq.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", snippet(raw))}
	}

	var env edgeResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %s", booking.ErrMalformedPayload, err.Error())}
	}
	res := &booking.FinalizeResult{Error: env.Error}
	if len(env.Booking) > 0 && string(env.Booking) != "null" {
		b, err := booking.DecodeIntent(env.Booking)
		if err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		res.Booking = b
	}
	return res, nil
}

func snippet(b []byte) string {
	if len(b) > 200 {
		b = b[:200]
	}
	return string(b)
}

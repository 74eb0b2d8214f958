package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"orgnotify/internal/models"
)

// ErrUnauthorized indicates the gateway rejected the credentials. Callers
// surface it distinctly so the UI can prompt for re-configuration.
var ErrUnauthorized = errors.New("gateway rejected credentials")

// Destination is one phone/message pair within a send call
type Destination struct {
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Balance is the result of a balance query
type Balance struct {
	Cash    float64        `json:"cash_balance"`
	Bundles map[string]int `json:"bundle_counts,omitempty"`
}

// Client talks to the external SMS gateway. There is deliberately no
// request timeout here: callers own the deadline via ctx.
type Client struct {
	baseURL     string
	countryCode string
	http        *http.Client
}

// NewClient creates a gateway client. httpClient may be nil, in which
// case http.DefaultClient is used.
func NewClient(baseURL, countryCode string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		countryCode: countryCode,
		http:        httpClient,
	}
}

// CountryCode returns the dialing code this client normalizes numbers to
func (c *Client) CountryCode() string {
	return c.countryCode
}

// Normalize applies the client's country code to NormalizePhone
func (c *Client) Normalize(phone string) string {
	return NormalizePhone(phone, c.countryCode)
}

type sendPayload struct {
	APIKey       string        `json:"api_key"`
	PartnerID    string        `json:"partner_id"`
	SenderID     string        `json:"sender_id"`
	Destinations []Destination `json:"destinations"`
}

// Send dispatches one batch of destinations through the gateway. A
// failure of any kind, network included, comes back as an unsuccessful
// Outcome rather than an error; the single error return covers only
// invalid input (bad credentials, empty batch).
func (c *Client) Send(ctx context.Context, creds *models.ProviderConfig, destinations []Destination) (Outcome, error) {
	if err := creds.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("invalid provider credentials: %w", err)
	}
	if len(destinations) == 0 {
		return Outcome{}, fmt.Errorf("at least one destination is required")
	}

	for i := range destinations {
		destinations[i].Phone = c.Normalize(destinations[i].Phone)
	}

	payload := sendPayload{
		APIKey:       creds.APIKey,
		PartnerID:    creds.PartnerID,
		SenderID:     creds.SenderID,
		Destinations: destinations,
	}

	body, status, err := c.post(ctx, "/v1/sms/send", payload)
	if err != nil {
		return Outcome{Success: false, Error: "network error calling sms gateway"}, nil
	}
	if status < 200 || status >= 300 {
		out := decodeOutcome(body)
		out.Success = false
		if out.Error == "" {
			out.Error = fmt.Sprintf("gateway returned HTTP %d", status)
		}
		return out, nil
	}
	return decodeOutcome(body), nil
}

// TestConnection sends a single test message and returns the same shape
// as Send.
func (c *Client) TestConnection(ctx context.Context, creds *models.ProviderConfig, testPhone string) (Outcome, error) {
	return c.Send(ctx, creds, []Destination{{
		Phone:   testPhone,
		Message: "Test message: your SMS configuration is working.",
	}})
}

type balancePayload struct {
	APIKey    string `json:"api_key"`
	PartnerID string `json:"partner_id"`
}

// GetBalance queries the gateway account balance. An authorization-style
// rejection is returned as ErrUnauthorized so callers can distinguish
// bad credentials from a transient failure.
func (c *Client) GetBalance(ctx context.Context, creds *models.ProviderConfig) (*Balance, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider credentials: %w", err)
	}

	body, status, err := c.post(ctx, "/v1/account/balance", balancePayload{
		APIKey:    creds.APIKey,
		PartnerID: creds.PartnerID,
	})
	if err != nil {
		return nil, fmt.Errorf("network error calling sms gateway: %w", err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("balance query failed: gateway returned HTTP %d", status)
	}

	var resp gatewayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unparseable balance response: %w", err)
	}

	bal := &Balance{Bundles: resp.Bundles}
	if len(resp.Balance) > 0 {
		// the balance field arrives as either a bare number or a quoted one
		if err := json.Unmarshal(resp.Balance, &bal.Cash); err != nil {
			var s string
			if err := json.Unmarshal(resp.Balance, &s); err != nil {
				return nil, fmt.Errorf("unparseable balance value %q", string(resp.Balance))
			}
			if _, err := fmt.Sscanf(s, "%f", &bal.Cash); err != nil {
				return nil, fmt.Errorf("unparseable balance value %q", s)
			}
		}
	}
	return bal, nil
}

// post issues a JSON POST and returns the raw body and status code
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

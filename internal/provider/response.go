package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// gatewayResponse mirrors the union of shapes the gateway has been
// observed returning. None of the fields is guaranteed to be present.
type gatewayResponse struct {
	Success   *bool           `json:"success,omitempty"`
	Status    string          `json:"status,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	MessageID string          `json:"message_id,omitempty"`
	Cost      *float64        `json:"cost,omitempty"`
	Balance   json.RawMessage `json:"balance,omitempty"`
	Bundles   map[string]int  `json:"bundles,omitempty"`
}

// Outcome is the strict shape all callers see. Downstream code never
// inspects raw gateway payloads; this decode is the contract.
type Outcome struct {
	Success           bool
	ProviderMessageID string
	Cost              float64
	Error             string
}

// statuses the gateway uses to mean "accepted"
var successStatuses = map[string]bool{
	"success":   true,
	"sent":      true,
	"queued":    true,
	"submitted": true,
	"ok":        true,
}

// decodeOutcome collapses the gateway's unstable success/error shape into
// a strict Outcome. Success is inferred from, in order: the explicit
// boolean flag, the status literal, and finally a human-readable message
// containing "accepted" or "processing".
func decodeOutcome(body []byte) Outcome {
	var resp gatewayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{Success: false, Error: fmt.Sprintf("unparseable gateway response: %v", err)}
	}

	out := Outcome{ProviderMessageID: resp.MessageID}
	if resp.Cost != nil {
		out.Cost = *resp.Cost
	}

	switch {
	case resp.Success != nil:
		out.Success = *resp.Success
	case resp.Status != "":
		out.Success = successStatuses[strings.ToLower(resp.Status)]
	default:
		msg := strings.ToLower(resp.Message)
		out.Success = strings.Contains(msg, "accepted") || strings.Contains(msg, "processing")
	}

	if !out.Success {
		out.Error = errorText(resp)
	}
	return out
}

// errorText picks the most specific error description the response offers
func errorText(resp gatewayResponse) string {
	if resp.Error != "" {
		return resp.Error
	}
	if resp.Message != "" {
		return resp.Message
	}
	if resp.Status != "" {
		return fmt.Sprintf("gateway returned status %q", resp.Status)
	}
	return "gateway rejected the request"
}

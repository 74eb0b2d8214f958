// Package correlation builds and parses the identifier embedded in every
// outbound gateway request and echoed back by the delivery webhook. The
// wire format is {PREFIX}_{messageID}_{recipientID}_{epochMillis}.
package correlation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PrefixUser marks ordinary user-initiated sends
	PrefixUser = "SMS"
	// PrefixAuto marks sends produced by automation triggers
	PrefixAuto = "AUTO"

	delimiter = "_"
)

// ID is a decoded correlation identifier
type ID struct {
	Prefix      string
	MessageID   int64
	RecipientID int64
}

// New encodes a correlation id for one recipient of one message
func New(prefix string, messageID, recipientID int64, at time.Time) string {
	return strings.Join([]string{
		prefix,
		strconv.FormatInt(messageID, 10),
		strconv.FormatInt(recipientID, 10),
		strconv.FormatInt(at.UnixMilli(), 10),
	}, delimiter)
}

// Parse decodes a correlation id. At least three segments are required:
// prefix, message id and recipient id. A fourth timestamp segment is
// optional and ignored, as is the prefix value itself.
func Parse(raw string) (ID, error) {
	parts := strings.Split(raw, delimiter)
	if len(parts) < 3 {
		return ID{}, fmt.Errorf("malformed correlation id %q: want at least 3 segments, got %d", raw, len(parts))
	}

	messageID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("malformed correlation id %q: bad message id segment", raw)
	}
	recipientID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("malformed correlation id %q: bad recipient id segment", raw)
	}

	return ID{Prefix: parts[0], MessageID: messageID, RecipientID: recipientID}, nil
}

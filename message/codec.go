package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

/* Format tells which shape a persisted history was read from
 * Current documents hold the whole sequence; legacy documents hold one message
 * and are upgraded to a one-element sequence on decode.
 */
type Format int

const (
	FormatCurrent Format = iota + 1
	FormatLegacy
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatCurrent:
		return "current"
	case FormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// EncodeHistory serialises a history in the current format
func EncodeHistory(h History) ([]byte, error) {
	if h == nil {
		h = History{}
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling history: %w", err)
	}
	return data, nil
}

// DecodeHistory reads a persisted history in either format
func DecodeHistory(data []byte) (History, Format, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty document")
	}

	switch trimmed[0] {
	case '[':
		var h History
		if err := json.Unmarshal(trimmed, &h); err != nil {
			return nil, 0, fmt.Errorf("unmarshaling history: %w", err)
		}
		return h, FormatCurrent, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, 0, fmt.Errorf("unmarshaling legacy message: %w", err)
		}
		_, hasBody := probe["body"]
		_, hasPath := probe["path"]
		if !hasBody || !hasPath {
			return nil, 0, errors.New("object is not a stored message")
		}
		var m Message
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, 0, err
		}
		return History{m}, FormatLegacy, nil
	default:
		return nil, 0, fmt.Errorf("unexpected document starting with %q", trimmed[0])
	}
}

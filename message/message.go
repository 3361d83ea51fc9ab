package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-recorder/message/payload"
)

// DefaultMaxStored is the history bound used when a path does not set one
const DefaultMaxStored = 50

/* Message represents one webhook body recorded for a path
 * Uses value semantics as it represents data. The body map is copied when the
 * message is recorded, so it is never shared between histories.
 */
type Message struct {
	Body      map[string]string `json:"body"`
	Timestamp int64             `json:"timestamp"` // epoch milliseconds
	Path      string            `json:"path"`
}

// Time returns the receive time of the message
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// UnmarshalJSON accepts bodies with non-string values, which older files may hold
func (m *Message) UnmarshalJSON(data []byte) error {
	var aux struct {
		Body      map[string]any `json:"body"`
		Timestamp json.Number    `json:"timestamp"`
		Path      string         `json:"path"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&aux); err != nil {
		return fmt.Errorf("unmarshaling message: %w", err)
	}

	var ts int64
	if aux.Timestamp != "" {
		i, err := aux.Timestamp.Int64()
		if err != nil {
			f, ferr := aux.Timestamp.Float64()
			if ferr != nil {
				return fmt.Errorf("parsing timestamp: %w", ferr)
			}
			i = int64(f)
		}
		ts = i
	}

	m.Timestamp = ts
	m.Path = aux.Path
	m.Body = nil
	if aux.Body != nil {
		m.Body = payload.Flatten(aux.Body)
	}
	return nil
}

// History is the ordered list of messages of one path, oldest first
type History []Message

// Clone returns a copy that shares nothing with h
func (h History) Clone() History {
	out := make(History, len(h))
	for i, m := range h {
		out[i] = Message{Body: cloneBody(m.Body), Timestamp: m.Timestamp, Path: m.Path}
	}
	return out
}

// Entry is a message together with its external index (1 = most recent)
type Entry struct {
	Message Message
	Index   int
}

// Retention is the storage policy of a path
type Retention struct {
	StoreAll bool // keep up to Max messages; otherwise only the latest one
	Max      int
}

// Limit returns the maximum history length for bulk storage
func (r Retention) Limit() int {
	if r.Max < 1 {
		return DefaultMaxStored
	}
	return r.Max
}

func cloneBody(body map[string]string) map[string]string {
	if body == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(body))
	for k, v := range body {
		out[k] = v
	}
	return out
}

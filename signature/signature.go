package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix is the prefix for Standard Webhooks symmetric secrets
	SecretPrefix = "whsec_"

	// Version is the only signature scheme accepted
	Version = "v1"

	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	// Tolerance bounds the clock skew accepted for webhook-timestamp
	Tolerance = 5 * time.Minute
)

var (
	ErrMissingHeaders   = errors.New("missing signature headers")
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")
	ErrTimestampSkew    = errors.New("webhook timestamp outside tolerance")
	ErrNoMatch          = errors.New("no matching signature")
)

// Secret is a decoded signing secret
type Secret []byte

// ParseSecret decodes a whsec_ prefixed base64 secret
func ParseSecret(encoded string) (Secret, error) {
	b64, ok := strings.CutPrefix(encoded, SecretPrefix)
	if !ok {
		return nil, fmt.Errorf("secret must start with %s", SecretPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 secret: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("secret is empty")
	}
	return Secret(raw), nil
}

// Sign returns the "v1,<base64>" signature of {msgID}.{timestamp}.{payload}
func Sign(secret Secret, msgID string, timestamp time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s.%d.", msgID, timestamp.Unix())
	mac.Write(payload)
	return Version + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the Standard Webhooks headers of a request against payload
// The signature header may hold several space separated signatures; one match is enough.
func Verify(secret Secret, header http.Header, payload []byte, now time.Time) error {
	msgID := header.Get(HeaderID)
	rawTimestamp := header.Get(HeaderTimestamp)
	signatures := header.Get(HeaderSignature)
	if msgID == "" || rawTimestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	seconds, err := strconv.ParseInt(rawTimestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimestamp, rawTimestamp)
	}
	timestamp := time.Unix(seconds, 0)
	if d := now.Sub(timestamp); d > Tolerance || d < -Tolerance {
		return ErrTimestampSkew
	}

	want := Sign(secret, msgID, timestamp, payload)
	for _, sig := range strings.Fields(signatures) {
		if hmac.Equal([]byte(sig), []byte(want)) {
			return nil
		}
	}
	return ErrNoMatch
}

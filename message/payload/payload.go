package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strconv"
)

/* Bodies are kept as flat string maps
 * Every value ends up as the text a template placeholder is replaced with
 */

// Parse extracts the body of a request according to its content type
// Form bodies are decoded as url values, anything else must be a JSON object
func Parse(contentType string, body []byte) (map[string]string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]string{}, nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parsing form body: %w", err)
		}
		return FromValues(values), nil
	}

	return ParseJSON(body)
}

// ParseJSON decodes a JSON object and flattens it
func ParseJSON(data []byte) (map[string]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}
	return Flatten(raw), nil
}

// FromValues keeps the first value of every key, like a query string read by a browser
func FromValues(values url.Values) map[string]string {
	result := make(map[string]string, len(values))
	for key, v := range values {
		if len(v) > 0 {
			result[key] = v[0]
		} else {
			result[key] = ""
		}
	}
	return result
}

// Flatten converts every value of a decoded JSON object to text
func Flatten(raw map[string]any) map[string]string {
	result := make(map[string]string, len(raw))
	for key, value := range raw {
		result[key] = Text(value)
	}
	return result
}

// Text returns the string form of a decoded JSON value
// Nested objects and arrays are kept as compact JSON
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

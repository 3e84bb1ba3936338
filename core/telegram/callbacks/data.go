package callbacks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxDataBytes is Telegram's limit for inline button callback data. Built
// payloads must stay strictly below it.
const MaxDataBytes = 64

// ActionKey is the payload field that carries the alias token.
const ActionKey = "action"

var (
	// ErrPayloadTooLarge is matched by PayloadTooLargeError.
	ErrPayloadTooLarge = errors.New("callbacks: payload too large")
	// ErrReservedParam is returned when params try to set the action field.
	ErrReservedParam = errors.New("callbacks: param name is reserved")
	// ErrMalformed is returned by Parse for data it cannot interpret.
	ErrMalformed = errors.New("callbacks: malformed callback data")
	// ErrInvalidUTF8 is returned by Build for a route, key or value that JSON
	// could not carry unchanged.
	ErrInvalidUTF8 = errors.New("callbacks: invalid UTF-8")
)

// PayloadTooLargeError reports a payload that would not fit into a button.
type PayloadTooLargeError struct {
	Route string
	Size  int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("callbacks: payload for %q is %d bytes, limit is %d", e.Route, e.Size, MaxDataBytes-1)
}

func (e *PayloadTooLargeError) Unwrap() error { return ErrPayloadTooLarge }

// Code implements the error code contract used by router logging.
func (e *PayloadTooLargeError) Code() string { return "CALLBACK_TOO_LARGE" }

// Build encodes route with codec and serializes it with params as a JSON
// object: action first, remaining keys sorted. It never truncates; a result
// of MaxDataBytes or more is rejected, and so is invalid UTF-8, which JSON
// would replace with U+FFFD. A nil codec sends the route unencoded.
func Build(codec *Codec, route string, params Params) (string, error) {
	if _, ok := params[ActionKey]; ok {
		return "", fmt.Errorf("%w: %q", ErrReservedParam, ActionKey)
	}
	if !utf8.ValidString(route) {
		return "", fmt.Errorf("%w: route %q", ErrInvalidUTF8, route)
	}
	for k, v := range params {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return "", fmt.Errorf("%w: param %q", ErrInvalidUTF8, k)
		}
	}
	token := route
	if codec != nil {
		token = codec.Encode(route)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField(&buf, ActionKey, token)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		buf.WriteByte(',')
		writeField(&buf, k, params[k])
	}
	buf.WriteByte('}')

	if buf.Len() >= MaxDataBytes {
		return "", &PayloadTooLargeError{Route: route, Size: buf.Len()}
	}
	return buf.String(), nil
}

func writeField(buf *bytes.Buffer, key, value string) {
	writeString(buf, key)
	buf.WriteByte(':')
	writeString(buf, value)
}

// writeString emits a JSON string without HTML escaping so that '<' and '&'
// cost one byte each.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}

// Parse splits callback data into the action token and params. It accepts
// payloads produced by Build, a bare token, and telebot's
// "\f<unique>|<payload>" form, where a JSON payload is parsed for params and
// any other payload is kept under the "payload" key.
func Parse(data string) (string, Params, error) {
	data = strings.Trim(data, " \t\r\n")
	if data == "" {
		return "", nil, ErrMalformed
	}
	if strings.HasPrefix(data, "{") {
		token, params, err := parseJSON(data)
		if err == nil && token == "" {
			err = fmt.Errorf("%w: no %s field", ErrMalformed, ActionKey)
		}
		if err != nil {
			return "", nil, err
		}
		return token, params, nil
	}
	if rest, ok := strings.CutPrefix(data, "\f"); ok {
		unique, payload, _ := strings.Cut(rest, "|")
		if strings.HasPrefix(payload, "{") {
			token, params, err := parseJSON(payload)
			if err != nil {
				return "", nil, err
			}
			if token == "" {
				token = unique
			}
			if token == "" {
				return "", nil, ErrMalformed
			}
			return token, params, nil
		}
		if unique == "" {
			return "", nil, ErrMalformed
		}
		var params Params
		if payload != "" {
			params = Params{"payload": payload}
		}
		return unique, params, nil
	}
	return data, nil, nil
}

func parseJSON(data string) (string, Params, error) {
	var raw map[string]any
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	params := make(Params, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			params[k] = val
		case json.Number:
			params[k] = val.String()
		case bool:
			params[k] = strconv.FormatBool(val)
		case nil:
		default:
			return "", nil, fmt.Errorf("%w: field %q is not flat", ErrMalformed, k)
		}
	}
	token := params[ActionKey]
	delete(params, ActionKey)
	return token, params, nil
}

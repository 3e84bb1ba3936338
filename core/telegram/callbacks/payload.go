package callbacks

import (
	"maps"
	"strconv"
	"strings"
)

// Params are flat string parameters carried next to the action token.
type Params map[string]string

// Get returns the value for key, or "" when absent.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Int64 parses the value under key as int64.
func (p Params) Int64(key string) (int64, error) {
	v, ok := p[key]
	if !ok {
		return 0, &MissingParamError{Key: key}
	}
	return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
}

// Int parses the value under key as int.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, &MissingParamError{Key: key}
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

// Clone returns an independent copy. The copy of nil is an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Merge returns base overlaid with override. Keys in override win.
func Merge(base, override Params) Params {
	out := base.Clone()
	maps.Copy(out, override)
	return out
}

// MissingParamError reports a required parameter that was not sent.
type MissingParamError struct {
	Key string
}

func (e *MissingParamError) Error() string { return "callbacks: missing param " + strconv.Quote(e.Key) }

// Code implements the error code contract used by router logging.
func (e *MissingParamError) Code() string { return "CALLBACK_PARAM_MISSING" }

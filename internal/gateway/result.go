package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Result is what every JSON call returns, whatever happened on the wire.
// Status is 0 when no response was received.
type Result struct {
	OK     bool
	Status int
	Data   any
	Err    string
}

// TextResult is the SOAP counterpart of Result; the body is kept verbatim.
type TextResult struct {
	OK     bool
	Status int
	Body   string
	Err    string
}

func (r Result) object() map[string]any {
	m, _ := r.Data.(map[string]any)
	return m
}

func (r Result) String(key string) string {
	v, ok := r.object()[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (r Result) Bool(key string) bool {
	b, _ := r.object()[key].(bool)
	return b
}

func (r Result) Message() string {
	return r.String("message")
}

// Describe returns the server message, falling back to the transport error.
func (r Result) Describe() string {
	if msg := r.Message(); msg != "" {
		return msg
	}
	return r.Err
}

// Count returns the length of the first array found under keys, or of Data
// itself when it is an array.
func (r Result) Count(keys ...string) int {
	obj := r.object()
	for _, k := range keys {
		if arr, ok := obj[k].([]any); ok {
			return len(arr)
		}
	}
	if arr, ok := r.Data.([]any); ok {
		return len(arr)
	}
	return 0
}

// Decode re-marshals Data into v.
func (r Result) Decode(v any) error {
	b, err := json.Marshal(r.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Pretty renders Data as indented JSON.
func (r Result) Pretty() string {
	b, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return fmt.Sprint(r.Data)
	}
	return string(b)
}

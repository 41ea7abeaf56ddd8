package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means no HTTP response was received.
	KindTransport Kind = iota + 1
	// KindStatus means the server answered with a non-2xx status.
	KindStatus
	// KindDecode means a 2xx response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is returned by every Client method on failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("apiclient: ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " %d", e.Status)
	}
	if msg := e.detail(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// FieldMessage returns the first message of the alphabetically first field
// carrying one.
func (e *Error) FieldMessage() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, m := range e.Fields[k] {
			if strings.TrimSpace(m) != "" {
				return m
			}
		}
	}
	return ""
}

func (e *Error) detail() string {
	if m := e.FieldMessage(); m != "" {
		return m
	}
	return e.Message
}

// Unauthorized reports whether the server rejected the credential.
func (e *Error) Unauthorized() bool {
	return e.Kind == KindStatus && e.Status == http.StatusUnauthorized
}

// Message reduces err to one human-readable line: a field-level message from
// the response first, then the top-level message, then fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindStatus {
		if m := apiErr.detail(); m != "" {
			return m
		}
	}
	return fallback
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func decodeError(status int, body []byte) *Error {
	e := &Error{Kind: KindStatus, Status: status}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		e.Err = fmt.Errorf("unparseable error body: %w", err)
		return e
	}
	e.Message = strings.TrimSpace(parsed.Message)
	e.Fields = parsed.Errors
	return e
}

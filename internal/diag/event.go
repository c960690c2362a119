// Package diag provides append-only diagnostic event recording.
// Events capture request metadata, state transitions and errors for
// postmortem review; they are never read back on the request path.
package diag

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

// Step tags for diagnostic events.
const (
	StepAPIRequest  = "api_request"
	StepUserUpdate  = "user_update"
	StepAlertUpdate = "alert_update"
	StepAPIRegister = "api_register"
	StepError       = "error"
)

// snapshotHeaders are the request headers worth keeping in a snapshot.
// Cookies and authorization material are deliberately excluded.
var snapshotHeaders = []string{
	"Content-Type",
	"User-Agent",
	"Referer",
	"X-Request-ID",
}

// Event is an immutable diagnostic log record for one request phase.
type Event struct {
	ID        string          `json:"id"`
	Step      string          `json:"step"`
	Request   json.RawMessage `json:"request,omitempty"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(step string) *Event {
	return &Event{
		ID:        ulid.Make().String(),
		Step:      step,
		CreatedAt: time.Now().UTC(),
	}
}

// requestSnapshot is the JSON shape stored in Event.Request.
type requestSnapshot struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
}

// WithRequest attaches a snapshot of the inbound request.
func (e *Event) WithRequest(r *http.Request) *Event {
	snap := requestSnapshot{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: make(map[string]string, len(snapshotHeaders)),
	}
	for _, name := range snapshotHeaders {
		if v := r.Header.Get(name); v != "" {
			snap.Headers[name] = v
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return e
	}
	e.Request = data
	return e
}

// WithAfter attaches the post-update state of the mutated record.
func (e *Event) WithAfter(state any) *Event {
	data, err := json.Marshal(state)
	if err != nil {
		return e
	}
	e.After = data
	return e
}

// WithBefore attaches the pre-update state of the mutated record.
func (e *Event) WithBefore(state any) *Event {
	data, err := json.Marshal(state)
	if err != nil {
		return e
	}
	e.Before = data
	return e
}

// WithResponse attaches a snapshot of the outbound response.
func (e *Event) WithResponse(state any) *Event {
	data, err := json.Marshal(state)
	if err != nil {
		return e
	}
	e.Response = data
	return e
}

// WithError appends an error descriptor.
func (e *Event) WithError(err error) *Event {
	if err != nil {
		e.Errors = append(e.Errors, err.Error())
	}
	return e
}

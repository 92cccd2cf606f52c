package transport

import (
	"encoding/json"

	"github.com/facturapro/sessiond/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// SessionPayload is the wire view of a session snapshot, with the
// derived permission set included so the UI never computes it.
type SessionPayload struct {
	Status      string               `json:"status"`
	LastError   string               `json:"last_error,omitempty"`
	Identity    *domain.Identity     `json:"identity"`
	Permissions domain.PermissionSet `json:"permissions,omitempty"`
}

// NewSessionPayload projects a session snapshot onto the wire shape.
func NewSessionPayload(s domain.Session) SessionPayload {
	return SessionPayload{
		Status:      string(s.Status),
		LastError:   s.LastError,
		Identity:    s.Identity,
		Permissions: s.Permissions(),
	}
}

// AuthorizeResponse is the guard's allow/deny answer.
type AuthorizeResponse struct {
	Allowed bool `json:"allowed"`
}

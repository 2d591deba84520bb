package twilio

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cast"
)

var (
	// ErrDestroyed is matched by errors returned from operations on a
	// destroyed resource.
	ErrDestroyed = errors.New("resource has already been destroyed")

	// ErrNotPersisted is matched by errors returned when a member operation
	// is attempted on a resource without a SID.
	ErrNotPersisted = errors.New("resource has not been persisted")

	// ErrNoSuchMethod is matched by errors returned when an accessor name
	// resolves to nothing.
	ErrNoSuchMethod = errors.New("no such method")

	// ErrNotConfigured is returned by Default before Setup has been called.
	ErrNotConfigured = errors.New("twilio: default client not configured")

	// ErrAlreadyConfigured is returned by a second call to Setup.
	ErrAlreadyConfigured = errors.New("twilio: default client already configured")

	// ErrUnknownKind is returned by LookupKind for undeclared names.
	ErrUnknownKind = errors.New("twilio: unknown resource kind")
)

// APIError is a failure reported by the API (HTTP 400-599).
type APIError struct {
	Status   int    `json:"status"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Error #%d: %s", e.Code, e.Message)
}

// newAPIError builds an APIError from a failed response. Bodies that are not
// Twilio error documents still produce an error carrying the HTTP status.
func newAPIError(status int, fields map[string]any) *APIError {
	e := &APIError{Status: status}
	if v, ok := fields["code"]; ok {
		if s, ok := stringify(v); ok {
			e.Code, _ = cast.ToIntE(s)
		}
	}
	if v, ok := fields["message"]; ok {
		e.Message, _ = stringify(v)
	}
	if v, ok := fields["more_info"]; ok {
		e.MoreInfo, _ = stringify(v)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// PreconditionError is a local failure raised before any request is made.
type PreconditionError struct {
	Kind string
	Op   string
	Err  error
}

func (e *PreconditionError) Error() string {
	if errors.Is(e.Err, ErrDestroyed) {
		return e.Kind + " has already been destroyed"
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// NoSuchMethodError reports an accessor name with no matching attribute.
type NoSuchMethodError struct {
	Kind string
	Name string
}

func (e *NoSuchMethodError) Error() string {
	return fmt.Sprintf("undefined method %q for %s", e.Name, e.Kind)
}

func (e *NoSuchMethodError) Is(target error) bool { return target == ErrNoSuchMethod }

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

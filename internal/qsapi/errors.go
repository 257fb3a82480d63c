package qsapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// resourceExistsCode is the provider's error code for create calls against an
// asset that already exists; it routes the call through update instead.
const resourceExistsCode = "ResourceExistsException"

// APIError is a transport-level error returned by the QuickSight REST
// surface: a non-2xx HTTP response carrying a provider error code.
type APIError struct {
	Op         string
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Code, e.HTTPStatus, e.Message)
}

// IsResourceExists reports whether err signals that the asset being created
// already exists in the target account.
func IsResourceExists(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == resourceExistsCode
}

// ResponseError is raised when a call succeeds at the transport level but the
// response status falls outside 200-299. The raw response is kept for
// diagnostics.
type ResponseError struct {
	Op       string
	Status   int
	Response Document
}

func (e *ResponseError) Error() string {
	raw, _ := json.Marshal(e.Response)
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, raw)
}

// NotFoundError is raised when a filtered search matches nothing.
type NotFoundError struct {
	Op      string
	Filters []Document
}

func (e *NotFoundError) Error() string {
	raw, _ := json.Marshal(e.Filters)
	return fmt.Sprintf("%s: no assets found for filters %s", e.Op, raw)
}

// AmbiguousMatchError is raised when a lookup that expects exactly one match
// finds several.
type AmbiguousMatchError struct {
	Op  string
	IDs []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s: multiple assets matched: %v", e.Op, e.IDs)
}

// MissingFieldError is raised when a definition entry lacks a reference field
// the extractor expects, which indicates a malformed definition rather than
// an absent optional category.
type MissingFieldError struct {
	Field string
	Entry Document
}

func (e *MissingFieldError) Error() string {
	raw, _ := json.Marshal(e.Entry)
	return fmt.Sprintf("field %q not found in %s", e.Field, raw)
}

package shared

import "fmt"

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindPermissionDenied       ErrorKind = "PERMISSION_DENIED"
	KindPreconditionFailed     ErrorKind = "PRECONDITION_FAILED"
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindConflict               ErrorKind = "CONFLICT"
	KindIntegrationUnavailable ErrorKind = "INTEGRATION_UNAVAILABLE"
)

// DomainError carries a stable machine-readable code alongside the message.
// Codes are part of the API contract and must not change between releases.
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a precondition error with the given code.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindPreconditionFailed, Code: code, Message: message}
}

// NewNotFound creates a not-found error for the named resource.
func NewNotFound(resource string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "not_found",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewPermissionDenied creates a role/matrix refusal for an action.
func NewPermissionDenied(action string) *DomainError {
	return &DomainError{
		Kind:    KindPermissionDenied,
		Code:    "not_allowed_for_role",
		Message: fmt.Sprintf("not allowed to perform %s", action),
	}
}

// NewValidationError creates a field-scoped payload error.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    "payload_invalid:" + field,
		Message: message,
		Field:   field,
	}
}

// NewConflict reports a concurrent state change.
func NewConflict(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: "conflict", Message: message}
}

// NewIntegrationUnavailable reports a retryable upstream failure.
func NewIntegrationUnavailable(system string) *DomainError {
	return &DomainError{
		Kind:    KindIntegrationUnavailable,
		Code:    "integration_unavailable",
		Message: fmt.Sprintf("%s is unavailable, retry later", system),
	}
}

// RequiredField builds the stable code for a missing-field guard failure.
func RequiredField(name string) *DomainError {
	return NewDomainError("required_field:"+name, fmt.Sprintf("%s is required", name))
}

// GuardFailed builds the stable code for a named guard failure.
func GuardFailed(name string) *DomainError {
	return NewDomainError("guard_failed:"+name, fmt.Sprintf("guard %s failed", name))
}

// Stable precondition codes shared across the workflow and inventory cores.
var (
	ErrInvalidStatusTransition = NewDomainError("invalid_status_transition", "Operation not allowed in current status")
	ErrAlreadyCheckedIn        = NewDomainError("already_checked_in", "Transfer has already been checked in")
	ErrQuantitiesDoNotSum      = NewDomainError("quantities_do_not_sum", "Split quantities must sum to the original quantity")
	ErrUOMNotInMap             = NewDomainError("uom_not_in_map", "Unit of measure is not defined for this material")
	ErrConversionMismatch      = NewDomainError("conversion_factor_mismatch", "Conversion factor does not preserve the base quantity")
	ErrSecondaryTypeNotAllowed = NewDomainError("secondary_type_not_allowed_for_primary", "Secondary type is not allowed for the primary type")
	ErrDescriptionAlreadySet   = NewDomainError("description_already_set", "Description can only be set once")
	ErrStockExistsUnderPoI     = NewDomainError("stock_exists_under_location", "Location still has items destined to it")
	ErrConsigneeExists         = NewDomainError("l_consignee_already_exists", "A consignee already exists for this location")
)

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}

// CodeOf returns the machine-readable code of err, or "" for non-domain errors.
func CodeOf(err error) string {
	if de, ok := err.(*DomainError); ok {
		return de.Code
	}
	return ""
}

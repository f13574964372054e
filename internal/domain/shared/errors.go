package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped or re-messaged
// errors still match their sentinel with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidState         = "INVALID_STATE"
	CodeInvalidTransition    = "INVALID_STATE_TRANSITION"
	CodeWrongWorkflowContext = "WRONG_WORKFLOW_CONTEXT"
	CodeAmbiguousRate        = "AMBIGUOUS_RATE_CONFIGURATION"
	CodeTotalMismatch        = "TOTAL_MISMATCH"
	CodeNoApplicableRate     = "NO_APPLICABLE_RATE"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists        = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput         = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized         = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden            = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidTransition    = NewDomainError(CodeInvalidTransition, "Status transition is not allowed")
	ErrWrongWorkflowContext = NewDomainError(CodeWrongWorkflowContext, "Status transition requires a different workflow context")
	ErrAmbiguousRate        = NewDomainError(CodeAmbiguousRate, "More than one equally specific rate slab matches")
	ErrTotalMismatch        = NewDomainError(CodeTotalMismatch, "Supplied total does not match the computed total")
	ErrNoApplicableRate     = NewDomainError(CodeNoApplicableRate, "No contract, standard or manual rate applies")
	ErrInvalidCredentials   = NewDomainError(CodeInvalidCredentials, "Invalid username or password")
)

// NewValidationError creates a VALIDATION_ERROR with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrCSRFTokenMismatch  = errors.New("csrf token missing or invalid")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrUsernameExists       = errors.New("username already exists")
	ErrRegistrationDisabled = errors.New("registration is currently disabled")
)

// Catalog errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrModuleNotFound   = errors.New("module not found")
	ErrInvalidCategory  = errors.New("invalid category")
)

// Assessment errors
var (
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrRubricNotFound      = errors.New("rubric not found for this assessment")
	ErrWorkNotFound        = errors.New("student work not found")
	ErrMarkNotFound        = errors.New("mark not found")
	ErrAnalyticsNotFound   = errors.New("analytics not found")
	ErrNoMarkedWork        = errors.New("no marked student work found for this assessment")
	ErrFileRequired        = errors.New("file is required")
	ErrFileTypeNotAllowed  = errors.New("file type not allowed")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrWorkAlreadyMarked   = errors.New("student work has already been marked")
	ErrMarkingDisabled     = errors.New("ai marking is currently disabled")
	ErrMarkingInProgress   = errors.New("student work is already being marked")
	ErrInvalidLayoutFormat = errors.New("layout sections must be a JSON array")
)

// Website errors
var (
	ErrSectionNotFound  = errors.New("website section not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrLayoutNotFound   = errors.New("page layout not found")
)

// notFoundErrors lists the sentinels that map to a 404
var notFoundErrors = []error{
	ErrUserNotFound,
	ErrCategoryNotFound,
	ErrModuleNotFound,
	ErrAssessmentNotFound,
	ErrRubricNotFound,
	ErrWorkNotFound,
	ErrMarkNotFound,
	ErrAnalyticsNotFound,
	ErrNoMarkedWork,
	ErrSectionNotFound,
	ErrTemplateNotFound,
	ErrLayoutNotFound,
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// IsNotFound reports whether err is the generic or any domain specific not found error
func IsNotFound(err error) bool {
	return Is(err, ErrResourceNotFound, notFoundErrors...)
}

// IsConflict reports whether err is a uniqueness or state conflict
func IsConflict(err error) bool {
	return Is(err, ErrConflict, ErrResourceAlreadyExists, ErrEmailAlreadyExists, ErrUsernameExists, ErrWorkAlreadyMarked, ErrMarkingInProgress)
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

package app

import (
	"fmt"
	"net/http"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// The four local, recoverable failure kinds every engine operation reports.
// None of them crash the process.

func errNotFound(message string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", message, nil)
}

func errUnauthorized(message string) *DomainError {
	return domainError(http.StatusForbidden, "UNAUTHORIZED", message, nil)
}

func errInvalidState(message string) *DomainError {
	return domainError(http.StatusBadRequest, "INVALID_STATE", message, nil)
}

func errValidation(message string, details any) *DomainError {
	return domainError(http.StatusBadRequest, "VALIDATION", message, details)
}

package app

import (
	"errors"
	"fmt"
	"net/http"

	"contractview/internal/artifact"
	"contractview/internal/auth"
	"contractview/internal/contract"
	"contractview/internal/export"
	"contractview/internal/gitrepo"
	"contractview/internal/library"
	"contractview/internal/session"
	"contractview/internal/store"
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

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var loadErr *library.LoadError
	switch {
	case errors.Is(err, library.ErrNotFound), errors.Is(err, store.ErrNotFound), errors.Is(err, gitrepo.ErrNoRepository):
		return http.StatusNotFound, "NOT_FOUND", "Contract not found", nil
	case errors.Is(err, gitrepo.ErrUnknownRevision):
		return http.StatusNotFound, "REVISION_NOT_FOUND", "Revision not found", nil
	case errors.As(err, &loadErr):
		return http.StatusUnprocessableEntity, "CONTRACT_UNPARSEABLE", "Failed to load contract: " + loadErr.Name, nil
	case errors.Is(err, contract.ErrUnparseable):
		return http.StatusUnprocessableEntity, "CONTRACT_UNPARSEABLE", "Contract data could not be parsed", nil
	case errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest, "INVALID_SESSION", "Invalid session id", nil
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Unsupported export format", nil
	case errors.Is(err, export.ErrPDFDependencyMissing), errors.Is(err, export.ErrDOCXDependencyMissing):
		return http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", err.Error(), nil
	case errors.Is(err, artifact.ErrInvalidKey):
		return http.StatusBadRequest, "INVALID_KEY", "Invalid object key", nil
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrInvalidKey):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	case errors.Is(err, auth.ErrLoginDisabled):
		return http.StatusForbidden, "LOGIN_DISABLED", "Login is disabled", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ExtensionErrorBadInput          = "EXTENSIONS_BAD_INPUT"
	ExtensionErrorNotFound          = "EXTENSIONS_NOT_FOUND"
	ExtensionErrorConflict          = "EXTENSIONS_CONFLICT"
	ExtensionErrorOAuthStateInvalid = "EXTENSIONS_OAUTH_STATE_INVALID"
	ExtensionErrorUnauthorized      = "EXTENSIONS_UNAUTHORIZED"
	ExtensionErrorUpstream          = "EXTENSIONS_UPSTREAM_ERROR"
	ExtensionErrorUpstreamAuth      = "EXTENSIONS_UPSTREAM_AUTH"
	ExtensionErrorUpstreamWebhook   = "EXTENSIONS_UPSTREAM_PROVISIONING"
	ExtensionErrorUpstreamTimeout   = "EXTENSIONS_UPSTREAM_TIMEOUT"
	ExtensionErrorPersistence       = "EXTENSIONS_PERSISTENCE"
	ExtensionErrorCodeExhausted     = "EXTENSIONS_CODE_EXHAUSTED"
	ExtensionErrorInternal          = "EXTENSIONS_INTERNAL_ERROR"
)

func extensionErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureExtensionErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return newExtensionError(err.Error(), goerrors.CategoryNotFound, ExtensionErrorNotFound)
	case errors.Is(err, ErrInvalidRequest):
		return newExtensionError(err.Error(), goerrors.CategoryBadInput, ExtensionErrorBadInput)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAccountDisabled):
		return newExtensionError(err.Error(), goerrors.CategoryConflict, ExtensionErrorConflict)
	case errors.Is(err, ErrOAuthStateInvalid):
		return newExtensionError(err.Error(), goerrors.CategoryAuth, ExtensionErrorOAuthStateInvalid)
	case errors.Is(err, ErrUpstreamTimeout):
		return newExtensionError(err.Error(), goerrors.CategoryOperation, ExtensionErrorUpstreamTimeout).
			WithCode(http.StatusGatewayTimeout)
	case errors.Is(err, ErrUpstreamAuth):
		return newExtensionError(err.Error(), goerrors.CategoryOperation, ExtensionErrorUpstreamAuth).
			WithCode(http.StatusBadGateway)
	case errors.Is(err, ErrUpstreamProvisioning):
		return newExtensionError(err.Error(), goerrors.CategoryOperation, ExtensionErrorUpstreamWebhook).
			WithCode(http.StatusBadGateway)
	case errors.Is(err, ErrUpstream):
		return newExtensionError(err.Error(), goerrors.CategoryOperation, ExtensionErrorUpstream).
			WithCode(http.StatusBadGateway)
	case errors.Is(err, ErrCodeSpaceExhausted):
		return newExtensionError(err.Error(), goerrors.CategoryOperation, ExtensionErrorCodeExhausted)
	case errors.Is(err, ErrPersistence):
		return newExtensionError(err.Error(), goerrors.CategoryInternal, ExtensionErrorPersistence)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "oauth state"):
		return newExtensionError(err.Error(), goerrors.CategoryAuth, ExtensionErrorOAuthStateInvalid)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newExtensionError(err.Error(), goerrors.CategoryBadInput, ExtensionErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureExtensionErrorEnvelope(mapped)
}

func newExtensionError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureExtensionErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureExtensionErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = extensionHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultExtensionTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultExtensionTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ExtensionErrorBadInput
	case goerrors.CategoryNotFound:
		return ExtensionErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ExtensionErrorOAuthStateInvalid
	case goerrors.CategoryConflict:
		return ExtensionErrorConflict
	case goerrors.CategoryOperation:
		return ExtensionErrorUpstream
	default:
		return ExtensionErrorInternal
	}
}

func extensionHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

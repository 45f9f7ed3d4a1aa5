package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeUnauthorized       Code = "AUTHENTICATION_REQUIRED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeTokenRevoked       Code = "TOKEN_REVOKED"
	CodeAdminRequired      Code = "ADMIN_REQUIRED"
	CodeFreshTokenRequired Code = "FRESH_TOKEN_REQUIRED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeIdempotency        Code = "IDEMPOTENCY_KEY_REUSED"
	CodeStorage            Code = "STORAGE_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeDependency         Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Request does not contain an access token.",
	},
	CodeInvalidCredentials: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Invalid credentials.",
	},
	CodeTokenInvalid: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Signature verification failed.",
	},
	CodeTokenExpired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "The token has expired.",
	},
	CodeTokenRevoked: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "The token has been revoked.",
	},
	CodeAdminRequired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Admin privilege required.",
	},
	CodeFreshTokenRequired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "The token is not fresh.",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "conflict detected",
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeStorage: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "An error occurred while saving to the database.",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// ExposesMessage reports whether the caller-facing message may replace the public default.
func ExposesMessage(code Code) bool {
	switch code {
	case CodeStorage, CodeInternal, CodeDependency:
		return false
	}
	_, known := metadataByCode[code]
	return known
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the provided code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/dtos"
)

/*
	Utility functions to facilitate returning error responses to HTTP clients
*/

// -- Simplest: 1 error with message
func CreateSimpleBadRequest(message string) dtos.GeneralErrorResponseDto {
	return create(http.StatusBadRequest, message)
}
func CreateSimpleNotFound(message string) dtos.GeneralErrorResponseDto {
	return create(http.StatusNotFound, message)
}
func CreateSimpleInternalServerError(message string) dtos.GeneralErrorResponseDto {
	return create(http.StatusInternalServerError, message)
}

// FromError maps the error taxonomy onto a response. Only user-facing
// messages pass through; anything else gets a generic one.
func FromError(err error) dtos.GeneralErrorResponseDto {
	var dataErr *apierrors.DataAccessError

	switch {
	case apierrors.IsParseError(err), apierrors.IsTooLarge(err):
		return CreateSimpleBadRequest(err.Error())
	case apierrors.IsNotFound(err):
		return CreateSimpleNotFound(err.Error())
	case errors.As(err, &dataErr):
		return CreateSimpleInternalServerError(dataErr.Error())
	default:
		return CreateSimpleInternalServerError("Internal server error")
	}
}

func create(code int, message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      code,
		Message:   http.StatusText(code),
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: message,
			},
		},
	}
}

// --

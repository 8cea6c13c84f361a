package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{apierrors.NewParseError("bad variant"), http.StatusBadRequest, "bad variant"},
		{&apierrors.QueryTooLargeError{Max: 2000, Requested: 2001}, http.StatusBadRequest, "Too many variants in the query (2001). The maximum is 2000."},
		{&apierrors.RegionTooLargeError{What: "padding", Max: 5000000, Requested: 9000000}, http.StatusBadRequest, "The padding (9000000) is too large. The maximum is 5000000."},
		{&apierrors.GeneNotFoundError{Gene: "FOO"}, http.StatusNotFound, "Gene FOO not found"},
		{fmt.Errorf("wrapped: %w", &apierrors.VariantNotFoundError{}), http.StatusNotFound, "wrapped: No variants found"},
		{&apierrors.DataAccessError{Resource: "FinnGen", Err: errors.New("/data/finngen.tsv.gz: EOF")}, http.StatusInternalServerError, "failed to read data"},
		{errors.New("nil map write in /src/app"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		dto := FromError(tc.err)
		assert.Equal(t, tc.code, dto.Code)
		assert.Equal(t, http.StatusText(tc.code), dto.Message)
		if assert.Len(t, dto.Errors, 1) {
			assert.Equal(t, tc.message, dto.Errors[0].Message)
		}
	}
}

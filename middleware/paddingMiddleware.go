package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/contexts"
)

// ValidatePotentialPaddingQueryParameter accepts an optional non-negative
// `padding` query parameter (bases added on both sides of a gene).
func ValidatePotentialPaddingQueryParameter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ac := c.(*contexts.ApiContext)
		paddingQP := c.QueryParam("padding")

		padding := 0
		if len(paddingQP) > 0 {
			p, err := strconv.Atoi(paddingQP)
			if err != nil || p < 0 {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid padding %s", paddingQP))
			}
			padding = p
		}

		ac.Padding = padding
		return next(c)
	}
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/models/constants/chromosome"
)

/*
	Echo middleware to ensure a valid `chr` path parameter was provided
*/
func MandateChromosomeParam(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		chrom := c.Param("chr")
		if len(chrom) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing chromosome!")
		}

		if !chromosome.IsValidHumanChromosome(chrom) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid chromosome %q, expected one of 1-22, X, Y, MT", chrom))
		}

		return next(c)
	}
}

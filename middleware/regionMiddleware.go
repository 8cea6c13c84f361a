package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/contexts"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
)

// MandateRegionBounds reads the `start` and `end` path parameters into the
// context's region. Run after MandateChromosomeParam.
func MandateRegionBounds(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ac := c.(*contexts.ApiContext)

		start, startErr := strconv.Atoi(c.Param("start"))
		end, endErr := strconv.Atoi(c.Param("end"))
		if startErr != nil || endErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start or end")
		}

		// allow call to pass if and only if the bounds are balanced
		if start < 1 || end < start {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid start and end bounds!")
		}

		region, err := tabix.NewRegion(c.Param("chr"), start, end)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		ac.Region = region
		return next(c)
	}
}

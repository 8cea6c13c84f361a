package results

import (
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/contexts"
	"github.com/fulltiltgenomics/genetics-results-api/mvc"
)

// PostResults takes a plain text body of variants (or a gene name) and
// returns the joined results.
func PostResults(c echo.Context) error {
	rs, _ := mvc.RetrieveCommonElements(c)

	body, err := ioutil.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read request body")
	}

	resp, err := rs.Query(c.Request().Context(), string(body))
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func GetGeneResults(c echo.Context) error {
	ac := c.(*contexts.ApiContext)
	rs, _ := mvc.RetrieveCommonElements(c)

	resp, err := rs.ByGene(c.Request().Context(), c.Param("gene"), ac.Padding)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func GetRegionResults(c echo.Context) error {
	ac := c.(*contexts.ApiContext)
	rs, _ := mvc.RetrieveCommonElements(c)

	resp, err := rs.ByRange(c.Request().Context(), ac.Region)
	if err != nil {
		return mvc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

package metadata

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/mvc"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/sqlite"
	"github.com/fulltiltgenomics/genetics-results-api/services/results"
)

func PostTraitMetadata(c echo.Context) error {
	rs, _ := mvc.RetrieveCommonElements(c)

	var keys []sqlite.TraitKey
	if err := json.NewDecoder(c.Request().Body).Decode(&keys); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON array of {resource, phenocode}")
	}

	traits, err := rs.TraitMetadata(c.Request().Context(), keys)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, traits)
}

func GetDataset(c echo.Context) error {
	rs, _ := mvc.RetrieveCommonElements(c)

	d, err := rs.Dataset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func respond(c echo.Context, err error) error {
	if errors.Is(err, results.ErrNoMetadata) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return mvc.RespondError(c, err)
}

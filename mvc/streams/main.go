package streams

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo"
	"github.com/labstack/gommon/log"

	"github.com/fulltiltgenomics/genetics-results-api/contexts"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/mvc"
	"github.com/fulltiltgenomics/genetics-results-api/services/results"
)

const textTSV = "text/tab-separated-values; charset=utf-8"

// GetGeneCredibleSets streams raw fine-mapping rows around a gene. Once the
// status line is written a failure can only be signalled in-band.
func GetGeneCredibleSets(c echo.Context) error {
	ac := c.(*contexts.ApiContext)
	rs, _ := mvc.RetrieveCommonElements(c)

	region, err := rs.CredibleSetRegion(c.Param("gene"), ac.Padding)
	if err != nil {
		if apierrors.IsNotFound(err) || apierrors.IsTooLarge(err) {
			return mvc.RespondError(c, err)
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	startStream(c)
	if err := rs.StreamCredibleSets(c.Request().Context(), c.Response(), region); err != nil {
		log.Debugf("credible set stream for %s aborted: %v", c.Param("gene"), err)
	}
	return nil
}

func GetGeneModel(c echo.Context) error {
	ac := c.(*contexts.ApiContext)
	rs, _ := mvc.RetrieveCommonElements(c)

	if rs.GeneModel == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, results.ErrNoGeneModel.Error())
	}
	if err := rs.CheckRegion(ac.Region); err != nil {
		return mvc.RespondError(c, err)
	}

	startStream(c)
	if err := rs.StreamGeneModel(c.Request().Context(), c.Response(), ac.Region); err != nil {
		log.Debugf("gene model stream aborted: %v", err)
	}
	return nil
}

// PostVariantAnnotation takes a JSON array of variant ids that lie within the
// path region and streams their frequency rows.
func PostVariantAnnotation(c echo.Context) error {
	ac := c.(*contexts.ApiContext)
	rs, _ := mvc.RetrieveCommonElements(c)

	if err := rs.CheckRegion(ac.Region); err != nil {
		return mvc.RespondError(c, err)
	}

	var ids []string
	if err := json.NewDecoder(c.Request().Body).Decode(&ids); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON array of variant ids")
	}
	variants, err := results.ParseVariants(ids)
	if err != nil {
		return mvc.RespondError(c, err)
	}

	startStream(c)
	if err := rs.StreamVariantAnnotation(c.Request().Context(), c.Response(), ac.Region, variants); err != nil {
		log.Debugf("variant annotation stream aborted: %v", err)
	}
	return nil
}

func startStream(c echo.Context) {
	c.Response().Header().Set(echo.HeaderContentType, textTSV)
	c.Response().WriteHeader(http.StatusOK)
}

package serviceInfo

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/mvc"
	"github.com/fulltiltgenomics/genetics-results-api/models/dtos"
	serviceInfo "github.com/fulltiltgenomics/genetics-results-api/models/constants/service-info"
)

// Spec: https://github.com/ga4gh-discovery/ga4gh-service-info
func GetServiceInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type": map[string]interface{}{
			"artifact": serviceInfo.SERVICE_ARTIFACT,
			"group":    serviceInfo.SERVICE_TYPE_NO_VER,
			"version":  serviceInfo.SERVICE_VERSION,
		},
		"id":          serviceInfo.SERVICE_ID,
		"name":        serviceInfo.SERVICE_NAME,
		"description": serviceInfo.SERVICE_DESCRIPTION,
		"version":     serviceInfo.SERVICE_VERSION,
	})
}

func GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, dtos.HealthResponseDto{Status: "ok!"})
}

// GetConfig exposes the public part of the resource configuration.
func GetConfig(c echo.Context) error {
	_, cfg := mvc.RetrieveCommonElements(c)
	return c.JSON(http.StatusOK, cfg.Resources)
}

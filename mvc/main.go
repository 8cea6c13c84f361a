package mvc

import (
	"errors"

	"github.com/labstack/echo"
	"github.com/labstack/gommon/log"

	"github.com/fulltiltgenomics/genetics-results-api/contexts"
	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	errorsDtos "github.com/fulltiltgenomics/genetics-results-api/models/dtos/errors"
	"github.com/fulltiltgenomics/genetics-results-api/services/results"
)

func RetrieveCommonElements(c echo.Context) (*results.Service, *models.Config) {
	ac := c.(*contexts.ApiContext)
	return ac.ResultsService, ac.Config
}

// RespondError writes the error taxonomy as a JSON error body. Internal
// details only go to the log.
func RespondError(c echo.Context, err error) error {
	dto := errorsDtos.FromError(err)

	var dataErr *apierrors.DataAccessError
	switch {
	case errors.As(err, &dataErr):
		log.Errorf("%s %s: %s", c.Request().Method, c.Path(), dataErr.Detail())
	case dto.Code >= 500:
		log.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	default:
		log.Debugf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(dto.Code, dto)
}

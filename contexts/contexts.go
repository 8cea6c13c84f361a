package contexts

import (
	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/repositories/tabix"
	"github.com/fulltiltgenomics/genetics-results-api/services/results"
)

type (
	// "Helper" Context to pass into routes that need
	//  the results service and other variables
	ApiContext struct {
		echo.Context
		Config         *models.Config
		ResultsService *results.Service

		// set by middleware
		Region  tabix.Region
		Padding int
	}
)

package dataTypes

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	c "github.com/fulltiltgenomics/genetics-results-api/models/constants/category"
	"github.com/fulltiltgenomics/genetics-results-api/mvc"
)

type dataType struct {
	ID        constants.Category `json:"id"`
	Label     string             `json:"label"`
	Count     int                `json:"count"`
	Resources []string           `json:"resources"`
}

// GetDataTypes lists the result categories and the resources behind each.
func GetDataTypes(ctx echo.Context) error {
	_, cfg := mvc.RetrieveCommonElements(ctx)

	assoc := cfg.Resources.AssocIDs()
	finemapped := models.IDs(cfg.Resources.Finemapped)
	return ctx.JSON(http.StatusOK, []dataType{
		{ID: c.Assoc, Label: "Associations", Count: len(assoc), Resources: assoc},
		{ID: c.Finemapped, Label: "Fine-mapped credible sets", Count: len(finemapped), Resources: finemapped},
		{ID: c.Frequency, Label: "Allele frequencies", Count: 1, Resources: []string{"gnomad"}},
	})
}

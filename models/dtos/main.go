package dtos

import (
	"time"

	"gopkg.in/guregu/null.v3"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
)

type (
	// VariantResult joins everything known about one variant. Beta and
	// Custom echo the input line in group mode.
	VariantResult struct {
		Variant    string                  `json:"variant"`
		Beta       null.Float              `json:"beta"`
		Custom     null.String             `json:"custom"`
		Assoc      []models.ResourceRecord `json:"assoc"`
		Finemapped []models.ResourceRecord `json:"finemapped"`
		Gnomad     *models.FrequencyResult `json:"gnomad"`
	}

	CategorySummary struct {
		Resources []string `json:"resources"`
		Failed    []string `json:"failed,omitempty"`
		Time      float64  `json:"time"`
	}

	ResultsResponse struct {
		QueryID   string              `json:"query_id"`
		QueryType constants.QueryMode `json:"query_type"`
		// gene symbol or region string for gene and range queries
		Query string `json:"query,omitempty"`

		Data        []VariantResult            `json:"data"`
		NotFound    []string                   `json:"not_found"`
		AC0Variants []string                   `json:"ac0_variants"`
		FreqSummary []models.PopulationSummary `json:"freq_summary"`

		Assoc      CategorySummary `json:"assoc"`
		Finemapped CategorySummary `json:"finemapped"`
		Gnomad     CategorySummary `json:"gnomad"`

		Time float64 `json:"time"`
	}

	HealthResponseDto struct {
		Status string `json:"status"`
	}
)

// Complete reports whether every category answered.
func (r *ResultsResponse) Complete() bool {
	return len(r.Assoc.Failed) == 0 && len(r.Finemapped.Failed) == 0 && len(r.Gnomad.Failed) == 0
}

type (
	GeneralErrorResponseDto struct {
		Code      int            `json:"code"`
		Message   string         `json:"message"`
		Timestamp time.Time      `json:"timestamp"`
		Errors    []GeneralError `json:"errors"`
	}

	GeneralError struct {
		Message string `json:"message"`
	}
)

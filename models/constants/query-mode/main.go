package queryMode

import "github.com/fulltiltgenomics/genetics-results-api/models/constants"

const (
	// one variant per token, no attached values
	Single constants.QueryMode = "single"
	// variant, beta and optionally a custom value per line
	Group constants.QueryMode = "group"

	Gene  constants.QueryMode = "gene"
	Range constants.QueryMode = "range"
)

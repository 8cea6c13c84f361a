package category

import (
	"strings"

	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
)

const (
	Unknown constants.Category = ""

	Assoc      constants.Category = "assoc"
	Finemapped constants.Category = "finemapped"
	Frequency  constants.Category = "frequency"
	// association rows reached through an LD proxy
	LDAssoc constants.Category = "ld_assoc"
)

func CastToCategory(text string) constants.Category {
	switch strings.ToLower(text) {
	case "assoc", "association":
		return Assoc
	case "finemapped", "finemapping":
		return Finemapped
	case "frequency", "gnomad":
		return Frequency
	case "ld_assoc", "ld":
		return LDAssoc
	default:
		return Unknown
	}
}

func IsKnownCategory(text string) bool {
	return CastToCategory(text) != Unknown
}

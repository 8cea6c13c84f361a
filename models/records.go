package models

import (
	"gopkg.in/guregu/null.v3"

	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
)

// Sentinel carried by placeholder records in dataset, data_type and phenocode.
const Missing = "NA"

type (
	ResourceRecord struct {
		Variant   string     `json:"variant"`
		Resource  string     `json:"resource"`
		Dataset   string     `json:"dataset"`
		DataType  string     `json:"data_type"`
		Phenocode string     `json:"phenocode"`
		Mlog10p   null.Float `json:"mlog10p"`
		Beta      null.Float `json:"beta"`
		SE        null.Float `json:"sebeta"`

		// fine-mapping only
		PIP     null.Float `json:"pip"`
		CSSize  null.Int   `json:"cs_size"`
		CSMinR2 null.Float `json:"cs_min_r2"`

		// set when the row was reached through LD with a lead variant. Lead
		// is true when the queried variant is the lead itself, otherwise the
		// lead fields name it.
		LD        bool       `json:"ld"`
		Lead      null.Bool  `json:"lead"`
		LeadChr   string     `json:"lead_chr,omitempty"`
		LeadPos   int        `json:"lead_pos,omitempty"`
		LeadRef   string     `json:"lead_ref,omitempty"`
		LeadAlt   string     `json:"lead_alt,omitempty"`
		OverallR2 null.Float `json:"overall_r2"`

		Placeholder bool `json:"placeholder,omitempty"`
	}

	// CategoryResult is the merged outcome of one category's fan-out.
	CategoryResult struct {
		Category  constants.Category          `json:"category"`
		Data      map[string][]ResourceRecord `json:"data"`
		Resources []string                    `json:"resources"`
		// resources whose query failed and were left out of the merge
		Failed []string `json:"failed,omitempty"`
		Time   float64  `json:"time"`
	}
)

// NewPlaceholder marks a configured resource that was queried but had no
// usable row for the variant.
func NewPlaceholder(variantKey string, resource string) ResourceRecord {
	return ResourceRecord{
		Variant:     variantKey,
		Resource:    resource,
		Dataset:     Missing,
		DataType:    Missing,
		Phenocode:   Missing,
		Mlog10p:     null.FloatFrom(-1),
		Beta:        null.FloatFrom(0),
		SE:          null.FloatFrom(0),
		Placeholder: true,
	}
}

func EmptyCategoryResult(cat constants.Category) CategoryResult {
	return CategoryResult{
		Category:  cat,
		Data:      map[string][]ResourceRecord{},
		Resources: []string{},
	}
}

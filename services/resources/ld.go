package resources

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/guregu/null.v3"

	"github.com/fulltiltgenomics/genetics-results-api/models"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
)

// smallest positive float64; a p-value of 0 is reported at this significance
const minPValue = 5e-324

// parseLDRow reads a row of an LD proxy table. The row is keyed on the tag
// variant and describes the association of its lead variant.
func (a *Adapter) parseLDRow(fields []string, tag variant.Variant, resource string) (models.ResourceRecord, bool, error) {
	var rec models.ResourceRecord

	dataset := a.Descriptor.Dataset
	trait := a.field(fields, "trait")
	if a.ignored[dataset+":"+trait] || a.ignored[trait] {
		return rec, false, nil
	}

	rawP := a.field(fields, "pval")
	p, err := strconv.ParseFloat(rawP, 64)
	if err != nil || p < 0 {
		return rec, false, fmt.Errorf("invalid pval %q", rawP)
	}

	leadPos, err := strconv.Atoi(a.field(fields, "lead_pos"))
	if err != nil {
		return rec, false, fmt.Errorf("invalid lead position %q", a.field(fields, "lead_pos"))
	}
	lead, err := variant.New(tag.Chr, leadPos, a.field(fields, "lead_ref"), a.field(fields, "lead_alt"))
	if err != nil {
		return rec, false, err
	}

	rec = models.ResourceRecord{
		Variant:   tag.Key(),
		Resource:  resource,
		Dataset:   dataset,
		DataType:  a.Descriptor.DataType(),
		Phenocode: trait,
		Mlog10p:   null.FloatFrom(PValueToMlog10p(p)),
		Beta:      ldBeta(a.field(fields, "beta"), a.field(fields, "odds_ratio")),
		LD:        true,
		Lead:      null.BoolFrom(lead == tag),
	}
	if lead != tag {
		rec.LeadChr = lead.Chr
		rec.LeadPos = lead.Pos
		rec.LeadRef = lead.Ref
		rec.LeadAlt = lead.Alt
	}
	if r2, ok := parseLDFloat(a.field(fields, "overall_r2")); ok {
		rec.OverallR2 = null.FloatFrom(r2)
	}
	return rec, true, nil
}

// PValueToMlog10p caps p-values that underflowed to 0.
func PValueToMlog10p(p float64) float64 {
	m := -math.Log10(p)
	if math.IsInf(m, 1) {
		return -math.Log10(minPValue)
	}
	return m
}

// ldBeta falls back to the log odds ratio when the table has no beta.
func ldBeta(rawBeta string, rawOR string) null.Float {
	if beta, ok := parseLDFloat(rawBeta); ok {
		return null.FloatFrom(beta)
	}
	if or, ok := parseLDFloat(rawOR); ok && or > 0 {
		return null.FloatFrom(math.Log(or))
	}
	return null.Float{}
}

// LD proxy tables write missing values as None
func parseLDFloat(text string) (float64, bool) {
	if text == "None" {
		return 0, false
	}
	return parseFloat(text)
}

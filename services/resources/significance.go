package resources

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

var halfLog2Pi = 0.5 * math.Log(2*math.Pi)

// IsMissingSignificance reports whether a significance field holds one of
// the sentinels that trigger the fallback.
func IsMissingSignificance(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "na", "nan", "inf", "+inf", "infinity":
		return true
	}
	return false
}

// FallbackMlog10p is the two-sided Wald test significance
//
//	-log10(2 * (1 - Phi(|beta| / se)))
//
// It is an approximation that ignores the t distribution and case/control
// corrections. For z beyond the range where the survival function underflows
// the asymptotic expansion of the normal log tail is used. ok is false when
// se is not positive.
func FallbackMlog10p(beta, se float64) (mlog10p float64, ok bool) {
	if se <= 0 || math.IsNaN(beta) || math.IsNaN(se) {
		return 0, false
	}

	z := math.Abs(beta) / se
	if sf := distuv.UnitNormal.Survival(z); sf > 0 {
		return -math.Log10(2 * sf), true
	}

	// log(1 - Phi(z)) ~ -z^2/2 - log(z) - log(2 pi)/2
	logSf := -z*z/2 - math.Log(z) - halfLog2Pi
	return -(logSf + math.Ln2) / math.Ln10, true
}

// parseFloat treats the NA sentinel and empty fields as null.
func parseFloat(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "NA" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

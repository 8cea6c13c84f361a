package chromosome

import (
	"fmt"
	"strconv"
	"strings"
)

// letter chromosomes sort after the numbered ones, in this order
var letterRank = map[string]int{
	"X":  23,
	"Y":  24,
	"MT": 25,
}

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 23; i++ {
		humChroms = append(humChroms, fmt.Sprint(i))
	}
	humChroms = append(humChroms, "X")
	humChroms = append(humChroms, "Y")
	humChroms = append(humChroms, "MT")
	return humChroms
}

// Normalize strips a leading "chr", upper-cases letters and maps the
// numeric aliases 23/24/25 and "M" onto X/Y/MT.
func Normalize(text string) string {
	chrom := strings.TrimSpace(text)
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		chrom = chrom[3:]
	}
	chrom = strings.ToUpper(chrom)

	switch chrom {
	case "23":
		return "X"
	case "24":
		return "Y"
	case "25", "M":
		return "MT"
	}
	return chrom
}

func IsValidHumanChromosome(text string) bool {
	chrom := Normalize(text)

	// Check if number can be represented as an int and is non-zero
	chromNumber, err := strconv.Atoi(chrom)
	if err == nil {
		return chromNumber > 0 && chromNumber < 23
	}

	_, ok := letterRank[chrom]
	return ok
}

// Compare orders numeric chromosomes before letter chromosomes. Numeric ones
// compare by value, known letters by X < Y < MT and anything else
// lexicographically at the end.
func Compare(a, b string) int {
	ra, aKnown := rank(a)
	rb, bKnown := rank(b)

	switch {
	case aKnown && bKnown:
		return ra - rb
	case aKnown:
		return -1
	case bKnown:
		return 1
	}
	return strings.Compare(a, b)
}

func rank(chrom string) (int, bool) {
	if n, err := strconv.Atoi(chrom); err == nil && n > 0 {
		if n > 22 {
			// unusual numbering still sorts after the autosomes
			return 100 + n, true
		}
		return n, true
	}
	r, ok := letterRank[chrom]
	return r, ok
}

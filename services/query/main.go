package query

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"

	"github.com/fulltiltgenomics/genetics-results-api/models/apierrors"
	"github.com/fulltiltgenomics/genetics-results-api/models/constants"
	qm "github.com/fulltiltgenomics/genetics-results-api/models/constants/query-mode"
	"github.com/fulltiltgenomics/genetics-results-api/models/variant"
)

var (
	lineSplit  = regexp.MustCompile(`[\r\n]+`)
	tokenSplit = regexp.MustCompile(`[\s,]+`)
	rsidRe     = regexp.MustCompile(`(?i)^rs\d+$`)
)

type (
	// Item is one input line. Beta and Custom are only set in group mode.
	Item struct {
		Variant variant.Variant `json:"variant"`
		Beta    null.Float      `json:"beta"`
		Custom  null.String     `json:"custom"`
	}

	Query struct {
		Mode  constants.QueryMode `json:"mode"`
		Items []Item              `json:"items"`
	}
)

// Parse reads free text as either a list of variants (any separators) or, when
// the first line's second token is a number, as "variant beta [custom]" lines.
func Parse(text string) (Query, error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return Query{}, apierrors.NewParseError("Empty query. %s", apierrors.AcceptedFormats)
	}

	first := tokens(lines[0])
	if len(first) > 1 && isNumber(first[1]) {
		return parseGroup(lines, len(first) > 2)
	}
	return parseSingle(text)
}

// Variants returns the distinct variants of the query in genomic order.
func (q Query) Variants() []variant.Variant {
	out := make([]variant.Variant, 0, len(q.Items))
	for _, it := range q.Items {
		out = append(out, it.Variant)
	}
	return variant.Unique(out)
}

func parseSingle(text string) (Query, error) {
	q := Query{Mode: qm.Single, Items: []Item{}}
	seen := map[variant.Variant]bool{}
	for _, tok := range tokens(text) {
		v, err := parseVariant(tok)
		if err != nil {
			return Query{}, err
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		q.Items = append(q.Items, Item{Variant: v})
	}
	return q, nil
}

func parseGroup(lines []string, withCustom bool) (Query, error) {
	q := Query{Mode: qm.Group, Items: make([]Item, 0, len(lines))}
	for _, line := range lines {
		toks := tokens(line)
		if len(toks) < 2 {
			return Query{}, apierrors.NewParseError("Oops, I cannot parse line %q. %s", line, apierrors.AcceptedFormats)
		}

		v, err := parseVariant(toks[0])
		if err != nil {
			return Query{}, err
		}
		beta, err := strconv.ParseFloat(toks[1], 64)
		if err != nil {
			return Query{}, apierrors.NewParseError("Oops, I cannot parse that. Looks like some beta value is not numeric in the input: %q", toks[1])
		}

		it := Item{Variant: v, Beta: null.FloatFrom(beta)}
		if withCustom && len(toks) > 2 {
			it.Custom = null.StringFrom(strings.Join(toks[2:], " "))
		}
		q.Items = append(q.Items, it)
	}
	return q, nil
}

func parseVariant(tok string) (variant.Variant, error) {
	if rsidRe.MatchString(tok) {
		return variant.Variant{}, apierrors.NewParseError("rsids such as %s are not supported, please give variants as chr:pos:ref:alt", tok)
	}
	v, err := variant.Parse(tok)
	if err != nil {
		return variant.Variant{}, apierrors.NewParseError("Oops, I cannot parse %q. %s", tok, apierrors.AcceptedFormats)
	}
	return v, nil
}

func nonEmptyLines(text string) []string {
	out := make([]string, 0)
	for _, l := range lineSplit.Split(text, -1) {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func tokens(text string) []string {
	out := make([]string, 0)
	for _, t := range tokenSplit.Split(strings.TrimSpace(text), -1) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isNumber(text string) bool {
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

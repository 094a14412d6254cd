package dedupe

import (
	"fmt"
	"math/big"
	"strings"
)

// Report renders a plain-text duplicate detection report for res.
func Report(res *Result) string {
	var b strings.Builder

	b.WriteString("=== DUPLICATE DETECTION REPORT ===\n\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "- Total new studies: %d\n", res.Summary.Total)
	fmt.Fprintf(&b, "- Duplicates found: %d\n", res.Summary.Duplicates)
	fmt.Fprintf(&b, "- Potential duplicates: %d\n", res.Summary.PotentialDuplicates)
	fmt.Fprintf(&b, "- Unique studies: %d\n", res.Summary.Unique)
	fmt.Fprintf(&b, "- Duplicate rate: %s%%\n\n", percent(res.Summary.DuplicateRate, 2))

	if len(res.Duplicates) > 0 {
		b.WriteString("=== CONFIRMED DUPLICATES ===\n")
		for i, m := range res.Duplicates {
			writeMatch(&b, i+1, m)
			if m.Record.HasDOI() {
				fmt.Fprintf(&b, "   DOI: %s\n", m.Record.DOI)
			}
			b.WriteString("\n")
		}
	}

	if len(res.PotentialDuplicates) > 0 {
		b.WriteString("=== POTENTIAL DUPLICATES (REVIEW NEEDED) ===\n")
		for i, m := range res.PotentialDuplicates {
			writeMatch(&b, i+1, m)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeMatch(b *strings.Builder, n int, m Match) {
	fmt.Fprintf(b, "%d. %s (%s%% confidence)\n", n, m.MatchType, percent(m.Confidence, 1))
	fmt.Fprintf(b, "   New: \"%s\"\n", m.Record.Title)
	existing := ""
	if m.Matched != nil {
		existing = m.Matched.Title
	}
	fmt.Fprintf(b, "   Existing: \"%s\"\n", existing)
}

// percent formats ratio*100 with digits decimals, rounding exact halves up
// (0.8125 prints as 81.3 at one digit). ratio must be non-negative.
func percent(ratio float64, digits int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	v := new(big.Float).SetPrec(256).SetFloat64(ratio * 100)
	v.Mul(v, new(big.Float).SetInt(scale))
	v.Add(v, big.NewFloat(0.5))
	n, _ := v.Int(nil)

	s := n.String()
	if digits == 0 {
		return s
	}
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	return s[:len(s)-digits] + "." + s[len(s)-digits:]
}

package roster

import (
	"sort"
	"strings"
)

// TokenReport summarizes token hygiene across a roster. A row without a
// token counts as the NotAvailable token, so it takes one slot in Unique.
type TokenReport struct {
	Total      int      `json:"total"`
	Unique     int      `json:"unique"`
	Duplicates []string `json:"duplicates"`
	Missing    int      `json:"missing"`
}

// Tokens builds a TokenReport for r. Duplicates holds every repeat
// occurrence of a real token in roster order, so three rows sharing a token
// contribute two entries. Missing tokens are never listed as duplicates.
func Tokens(r Roster) TokenReport {
	rep := TokenReport{Total: len(r), Duplicates: []string{}}
	seen := make(map[string]bool, len(r))
	for _, p := range r {
		tok := strings.TrimSpace(p.Token)
		if tok == "" {
			rep.Missing++
			tok = NotAvailable
		} else if seen[tok] {
			rep.Duplicates = append(rep.Duplicates, tok)
		}
		seen[tok] = true
	}
	rep.Unique = len(seen)
	return rep
}

// Count is one bucket of a Breakdown. Percent is the bucket's share of the
// roster, rounded to one decimal place.
type Count struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Breakdown groups a roster by course, college, and payment status. Buckets
// are ordered by descending count, then label.
type Breakdown struct {
	Total     int     `json:"total"`
	ByCourse  []Count `json:"by_course"`
	ByCollege []Count `json:"by_college"`
	ByPayment []Count `json:"by_payment"`
}

// Breakdowns computes a Breakdown for r. Empty values are counted under
// NotAvailable.
func Breakdowns(r Roster) Breakdown {
	course := map[string]int{}
	college := map[string]int{}
	payment := map[string]int{}
	for _, p := range r {
		course[orNA(strings.TrimSpace(p.Course))]++
		college[orNA(strings.TrimSpace(p.College))]++
		payment[orNA(string(p.PaymentStatus))]++
	}
	return Breakdown{
		Total:     len(r),
		ByCourse:  sortedCounts(course, len(r)),
		ByCollege: sortedCounts(college, len(r)),
		ByPayment: sortedCounts(payment, len(r)),
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(n)*1000/float64(total)+0.5)) / 10
}

func sortedCounts(m map[string]int, total int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n, Percent: percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

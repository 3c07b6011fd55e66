package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CurrencyCounts is the multiset of original currency codes in a bucket.
type CurrencyCounts map[string]int

// ParseCurrencySummary reads either a plain code ("EUR", counted once) or a
// summary written by FormatCurrencySummary ("EUR:2,USD:1").
func ParseCurrencySummary(s string) (CurrencyCounts, error) {
	counts := make(CurrencyCounts)
	if s == "" {
		return counts, nil
	}
	for _, part := range strings.Split(s, ",") {
		code, n, found := strings.Cut(part, ":")
		if code == "" {
			return nil, fmt.Errorf("empty currency code in %q", s)
		}
		if !found {
			counts[code]++
			continue
		}
		c, err := strconv.Atoi(n)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("invalid currency count in %q", s)
		}
		counts[code] += c
	}
	return counts, nil
}

// Merge adds other into c.
func (c CurrencyCounts) Merge(other CurrencyCounts) {
	for code, n := range other {
		c[code] += n
	}
}

// FormatCurrencySummary renders counts sorted by code, e.g. "EUR:2,USD:1".
func FormatCurrencySummary(c CurrencyCounts) string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = code + ":" + strconv.Itoa(c[code])
	}
	return strings.Join(parts, ",")
}

package suggest

import "sort"

// Match is a suggested term and its document frequency summed over everything scanned.
type Match struct {
	Term      string
	Frequency int
}

// rank orders freqs by descending frequency, then ascending term.
func rank(freqs map[string]int) []Match {
	matches := make([]Match, 0, len(freqs))
	for term, freq := range freqs {
		matches = append(matches, Match{Term: term, Frequency: freq})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Frequency != matches[j].Frequency {
			return matches[i].Frequency > matches[j].Frequency
		}
		return matches[i].Term < matches[j].Term
	})
	return matches
}

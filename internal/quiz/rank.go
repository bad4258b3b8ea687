package quiz

import (
	"math"
	"sort"
)

// Rank turns aggregated totals into the final recommendation list: sorted by
// descending raw score, each entry carrying its display profile and a
// suitability percentage relative to the top candidate.
//
// Tie-break is deliberate: the sort is stable and candidates enter in catalog
// order (unknown keys after, sorted), so equal scores keep a reproducible
// relative order across runs.
func Rank(totals map[CandidateKey]int, catalog *Catalog) []RankedResult {
	if len(totals) == 0 {
		return []RankedResult{}
	}

	keys := orderedKeys(totals, catalog)

	max := totals[keys[0]]
	for _, key := range keys[1:] {
		if totals[key] > max {
			max = totals[key]
		}
	}

	results := make([]RankedResult, 0, len(keys))
	for _, key := range keys {
		score := totals[key]
		profile, ok := catalog.Profile(key)
		if !ok {
			// Placeholder rather than failing on an unmapped key.
			profile = CandidateProfile{Key: key, Name: string(key), Strengths: []string{}, Caveats: []string{}}
		}
		results = append(results, RankedResult{
			Key:         key,
			Score:       score,
			Suitability: suitability(score, max),
			Profile:     profile,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// suitability expresses score as a percentage of max, clamped to [0,100].
// max == 0 would divide by zero; a zero top score means only the candidates
// matching it are a full fit.
func suitability(score, max int) int {
	if max == 0 {
		if score == 0 {
			return 100
		}
		return 0
	}
	pct := int(math.Round(100 * float64(score) / float64(max)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// orderedKeys lists the contributing candidates in catalog order, appending
// keys missing from the catalog in sorted order so iteration stays
// deterministic.
func orderedKeys(totals map[CandidateKey]int, catalog *Catalog) []CandidateKey {
	keys := make([]CandidateKey, 0, len(totals))
	seen := make(map[CandidateKey]bool, len(totals))

	for _, p := range catalog.Candidates {
		if _, ok := totals[p.Key]; ok {
			keys = append(keys, p.Key)
			seen[p.Key] = true
		}
	}

	rest := make([]CandidateKey, 0)
	for key := range totals {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return append(keys, rest...)
}

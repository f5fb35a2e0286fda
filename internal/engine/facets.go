package engine

import "sort"

// maxFacetValues caps each facet list to the ten most frequent values.
const maxFacetValues = 10

// aggregateFacets counts field values over the full post-filter candidate
// set, not just the current page, so facet counts stay stable while a
// caller paginates. Only the recognised fields produce output.
func aggregateFacets(scored []scoredDoc, fields []string) map[string][]FacetCount {
	facets := make(map[string][]FacetCount, len(fields))
	for _, field := range fields {
		counts := make(map[string]int)
		switch field {
		case FilterCategory:
			for _, cand := range scored {
				if cand.doc.Category != "" {
					counts[cand.doc.Category]++
				}
			}
		case FilterType:
			for _, cand := range scored {
				counts[string(cand.doc.ResultType)]++
			}
		case FilterTags:
			for _, cand := range scored {
				for _, tag := range cand.doc.Tags {
					counts[tag]++
				}
			}
		default:
			continue
		}
		facets[field] = rankFacetCounts(counts)
	}
	return facets
}

func rankFacetCounts(counts map[string]int) []FacetCount {
	ranked := make([]FacetCount, 0, len(counts))
	for value, count := range counts {
		ranked = append(ranked, FacetCount{Value: value, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})
	if len(ranked) > maxFacetValues {
		ranked = ranked[:maxFacetValues]
	}
	return ranked
}

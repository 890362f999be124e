package news

import "sort"

// Rank orders items by (relevance score desc, published date desc), scoring
// any item that arrives without a relevance score. The sort must be stable:
// items tying on both keys keep their input order, so the ordering is
// reproducible across runs regardless of comparator internals.
func Rank(items []Item, topics []string, scorer *Scorer) []Item {
	for i := range items {
		if items[i].RelevanceScore == 0 {
			items[i].RelevanceScore = scorer.Score(items[i].Title, topics)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RelevanceScore != items[j].RelevanceScore {
			return items[i].RelevanceScore > items[j].RelevanceScore
		}
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	return items
}

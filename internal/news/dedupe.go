package news

import "strings"

// Dedupe removes items whose lowercase-normalized titles were already seen,
// keeping the first occurrence. Single pass over the input, no fuzzy
// matching: two items are duplicates iff their lowered titles are equal.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	unique := make([]Item, 0, len(items))

	for _, it := range items {
		key := strings.ToLower(it.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, it)
	}
	return unique
}

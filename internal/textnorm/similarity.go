package textnorm

// Similarity scores two strings as the Jaccard index of their character
// sets: |intersection| / |union|, symmetric, in [0,1]. Returns 0 when either
// string is empty. Character sets (not token sets) tolerate word-order and
// spacing differences common in re-posted listings, at the cost of being
// insensitive to anagram-like shuffles.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := make(map[rune]struct{})
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{})
	for _, r := range b {
		setB[r] = struct{}{}
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

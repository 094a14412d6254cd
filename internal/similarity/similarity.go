// Package similarity scores how alike two normalized strings are using
// Levenshtein edit distance.
package similarity

// Distance returns the Levenshtein distance between a and b: the minimum
// number of single-character insertions, deletions and substitutions needed
// to turn one into the other. Characters are compared as runes.
//
// The full dynamic-programming table is computed. Inputs are expected to be
// normalized (and therefore length-capped) text, so the quadratic cost is small.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	// matrix[i][j] is the distance between rb[:i] and ra[:j].
	matrix := make([][]int, len(rb)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(ra)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(ra); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(rb); i++ {
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = min(
				matrix[i-1][j-1]+1, // substitution
				matrix[i][j-1]+1,   // insertion
				matrix[i-1][j]+1,   // deletion
			)
		}
	}

	return matrix[len(rb)][len(ra)]
}

// Score returns a similarity in [0, 1] defined as 1 - Distance/maxLen.
//
// Identical strings (including two empty strings) score exactly 1.0. If only
// one side is empty the score is 0.0: an empty string carries no signal.
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0.0
	}

	distance := Distance(a, b)
	return 1 - float64(distance)/float64(max(la, lb))
}

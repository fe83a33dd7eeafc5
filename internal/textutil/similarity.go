package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// SequenceRatio returns 2*M/(len(a)+len(b)) where M is the number of runes
// covered by the matching blocks of a and b. Matching blocks are found by
// taking the longest common substring and recursing on both sides of it,
// so the score rewards long contiguous agreement rather than edit distance.
// Two empty strings are identical and score 1.
func SequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(MatchingRunes(ra, rb)) / float64(total)
}

// MatchingRunes returns the total size of the matching blocks between a and b.
func MatchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := &matcher{
		a:    a,
		b:    b,
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		i, j, k := m.longest(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

type matcher struct {
	a, b      []rune
	prev, cur []int
}

// longest finds the longest common run inside a[alo:ahi] and b[blo:bhi].
// Ties resolve to the earliest start in a, then the earliest start in b.
func (m *matcher) longest(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestk := alo, blo, 0
	for j := blo; j <= bhi; j++ {
		m.prev[j] = 0
	}
	for i := alo; i < ahi; i++ {
		m.cur[blo] = 0
		for j := blo; j < bhi; j++ {
			if m.a[i] != m.b[j] {
				m.cur[j+1] = 0
				continue
			}
			k := m.prev[j] + 1
			m.cur[j+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		m.prev, m.cur = m.cur, m.prev
	}
	return besti, bestj, bestk
}

// RuneRatio is SequenceRatio for callers that already hold rune slices.
func RuneRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(MatchingRunes(a, b)) / float64(total)
}

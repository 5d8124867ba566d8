// Package quota spreads requested question counts across text chunks.
package quota

import "github.com/studyquest/studyquest/internal/quiz"

// Distribute splits total across n chunks. Every chunk gets total/n and the
// first total%n chunks get one extra. A negative total is treated as zero;
// n < 1 yields nil.
func Distribute(total, n int) []int {
	if n < 1 {
		return nil
	}
	if total < 0 {
		total = 0
	}

	base, extra := total/n, total%n
	out := make([]int, n)
	for i := range out {
		out[i] = base
		if i < extra {
			out[i]++
		}
	}
	return out
}

// Split distributes every type of q independently across n chunks and
// returns one quota per chunk.
func Split(q quiz.Quota, n int) []quiz.Quota {
	if n < 1 {
		return nil
	}

	out := make([]quiz.Quota, n)
	for i := range out {
		out[i] = quiz.Quota{}
	}
	for _, t := range quiz.Types {
		for i, c := range Distribute(q[t], n) {
			out[i][t] = c
		}
	}
	return out
}

// Cap limits a chunk's share to what is still missing from the total:
// min(share, requested - generated) per type, never below zero.
func Cap(share, requested, generated quiz.Quota) quiz.Quota {
	out := quiz.Quota{}
	for _, t := range quiz.Types {
		need := min(share[t], requested[t]-generated[t])
		out[t] = max(need, 0)
	}
	return out
}

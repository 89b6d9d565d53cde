// Package threshold picks the significant head of a topic popularity curve by
// cutting at the sharpest drop between neighbouring counts.
package threshold

import (
	"sort"

	"topic-insights-go/internal/types"
)

const (
	// MinDropRatio is the smallest count ratio that counts as a real drop.
	MinDropRatio = 2.5
	MinTopics    = 3
	MaxTopics    = 10
)

// Select sorts topics by count (stable), cuts after the largest adjacent
// ratio when it reaches MinDropRatio and clamps the result to
// [min(MinTopics, n), MaxTopics]. Ranks are assigned 1..N.
func Select(raw []types.RawTopic) types.ThresholdResult {
	n := len(raw)
	sorted := make([]types.RawTopic, n)
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })

	bestRatio, bestIndex := 1.0, 0
	for i := 0; i+1 < n; i++ {
		next := sorted[i+1].Count
		if next <= 0 {
			continue
		}
		ratio := float64(sorted[i].Count) / float64(next)
		if ratio > bestRatio {
			bestRatio, bestIndex = ratio, i+1
		}
	}

	cutoff := bestIndex
	if bestIndex == 0 || bestRatio < MinDropRatio {
		cutoff = n
	}
	if floor := min(MinTopics, n); cutoff < floor {
		cutoff = floor
	}
	if cutoff > MaxTopics {
		cutoff = MaxTopics
	}

	significant := make([]types.Topic, 0, cutoff)
	for i := 0; i < cutoff; i++ {
		significant = append(significant, types.Topic{RawTopic: sorted[i], Rank: i + 1})
	}

	return types.ThresholdResult{
		SignificantTopics: significant,
		CutoffIndex:       cutoff,
		CutoffRatio:       bestRatio,
		TotalTopics:       n,
	}
}

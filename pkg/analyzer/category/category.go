// Package category clusters topics by the longest common prefix of their names.
package category

import (
	"sort"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
)

// DefaultMinPrefixLen is the shortest shared prefix that forms a category.
const DefaultMinPrefixLen = 3

// Assignment is the category of one topic.
type Assignment struct {
	TopicID  string `json:"topic_id" toon:"topic_id"`
	Name     string `json:"name" toon:"name"`
	Category string `json:"category" toon:"category"`
}

// Categories maps topic ids to their category key.
type Categories map[string]string

// LongestCommonPrefix returns the byte-wise, case-sensitive common prefix of a and b.
func LongestCommonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// Build assigns every topic the longest prefix it shares with any other topic
// name, provided the prefix has at least minLen bytes; otherwise the topic's
// own name. Topics are visited in ascending id order and a later prefix only
// replaces the current best when strictly longer.
//
// Cost is quadratic in the number of topics.
func Build(topics []models.Entity, minLen int) Categories {
	sorted := make([]models.Entity, len(topics))
	copy(sorted, topics)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	cats := make(Categories, len(sorted))
	for _, t := range sorted {
		name := t.DisplayName()
		best := ""
		for _, other := range sorted {
			if other.ID == t.ID {
				continue
			}
			lcp := LongestCommonPrefix(name, other.DisplayName())
			if len(lcp) >= minLen && len(lcp) > len(best) {
				best = lcp
			}
		}
		if best == "" {
			best = name
		}
		cats[t.ID] = best
	}
	return cats
}

// Assignments lists the categories sorted by topic id.
func (c Categories) Assignments(names map[string]string) []Assignment {
	out := make([]Assignment, 0, len(c))
	for id, cat := range c {
		out = append(out, Assignment{TopicID: id, Name: names[id], Category: cat})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TopicID < out[j].TopicID })
	return out
}

// Distinct returns the number of distinct category keys.
func (c Categories) Distinct() int {
	seen := make(map[string]struct{}, len(c))
	for _, cat := range c {
		seen[cat] = struct{}{}
	}
	return len(seen)
}
